package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	VerbsDirect   = "direct"
	VerbsOverride = "override"

	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

type Config struct {
	Env          string
	Build        string
	AppName      string
	Debug        bool
	TestMode     bool
	RollbarToken string

	Backend struct {
		BaseURL         string
		Timeout         time.Duration
		LongTimeout     time.Duration
		Verbs           string
		OverrideField   string
		OverrideHeader  string
		OverrideMethods []string
	}

	Session struct {
		Store string
		Path  string
	}

	Display struct {
		Timezone string
	}

	Server struct {
		Host               string
		Address            string
		SecretKey          string
		JWTExpirationDelta time.Duration
		ShutdownTimeout    time.Duration
		AdminEmail         string
		AdminPassword      string
	}
}

// NewConfig loads the configuration from defaults, the environment and `config/.env.<env>`.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Hydrofarm")
	conf.SetDefault("build", "dev")
	conf.SetDefault("rollbarToken", "")

	conf.SetDefault("backend.baseURL", "http://localhost:8000/api/v1")
	conf.SetDefault("backend.timeout", 5*time.Second)
	conf.SetDefault("backend.longTimeout", 10*time.Second)
	conf.SetDefault("backend.verbs", VerbsDirect)
	conf.SetDefault("backend.overrideField", "_method")
	conf.SetDefault("backend.overrideHeader", "X-HTTP-Method-Override")
	conf.SetDefault("backend.overrideMethods", []string{"PUT", "DELETE"})

	conf.SetDefault("session.store", StoreFile)
	conf.SetDefault("session.path", defaultSessionPath())

	conf.SetDefault("display.timezone", "Asia/Tokyo")

	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.address", ":8000")
	conf.SetDefault("server.secretKey", "k8#n2v!x0q@hydro-dev-secret$3m9")
	conf.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.adminEmail", "admin@example.com")
	conf.SetDefault("server.adminPassword", "hydro-admin")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()
	_ = conf.BindEnv("backend.baseURL", env+"_API_URL", "API_URL")

	c := &Config{
		Env:          env,
		Build:        conf.GetString("build"),
		AppName:      conf.GetString("appName"),
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		RollbarToken: conf.GetString("rollbarToken"),
	}

	c.Backend.BaseURL = strings.TrimRight(conf.GetString("backend.baseURL"), "/")
	c.Backend.Timeout = conf.GetDuration("backend.timeout")
	c.Backend.LongTimeout = conf.GetDuration("backend.longTimeout")
	c.Backend.Verbs = strings.ToLower(conf.GetString("backend.verbs"))
	c.Backend.OverrideField = conf.GetString("backend.overrideField")
	c.Backend.OverrideHeader = conf.GetString("backend.overrideHeader")
	c.Backend.OverrideMethods = conf.GetStringSlice("backend.overrideMethods")

	c.Session.Store = strings.ToLower(conf.GetString("session.store"))
	c.Session.Path = conf.GetString("session.path")

	c.Display.Timezone = conf.GetString("display.timezone")

	c.Server.Host = conf.GetString("server.host")
	c.Server.Address = conf.GetString("server.address")
	c.Server.SecretKey = conf.GetString("server.secretKey")
	c.Server.JWTExpirationDelta = conf.GetDuration("server.jwtExpirationDelta")
	c.Server.ShutdownTimeout = conf.GetDuration("server.shutdownTimeout")
	c.Server.AdminEmail = conf.GetString("server.adminEmail")
	c.Server.AdminPassword = conf.GetString("server.adminPassword")

	return c
}

// DisplayLocation returns the configured display timezone, falling back to UTC.
func (c *Config) DisplayLocation() *time.Location {
	if loc, err := time.LoadLocation(c.Display.Timezone); err == nil {
		return loc
	}
	return time.UTC
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "hydrofarm", "session.json")
}
