// Command api serves the classroom farm REST API over an in-memory, seeded farm.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/trezcool/hydrofarm/apps/api/echo"
	"github.com/trezcool/hydrofarm/core"
	"github.com/trezcool/hydrofarm/core/farm"
	logsvc "github.com/trezcool/hydrofarm/services/logger"
	inmemdb "github.com/trezcool/hydrofarm/storage/database/inmem"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	db := inmemdb.Open()
	err := inmemdb.Seed(db, time.Now(), inmemdb.SeedOptions{
		AdminEmail:    conf.Server.AdminEmail,
		AdminPassword: conf.Server.AdminPassword,
	})
	if err != nil {
		logger.Fatal(fmt.Sprintf("seeding database: %v", err), err)
	}
	farmSvc := farm.NewService(inmemdb.NewFarmRepository(db), conf.DisplayLocation())

	validate, translator := core.NewValidator()

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	server := echoapi.NewServer(&echoapi.Options{
		Address:        conf.Server.Address,
		Debug:          conf.Debug,
		SecretKey:      conf.Server.SecretKey,
		TokenTTL:       conf.Server.JWTExpirationDelta,
		OverrideField:  conf.Backend.OverrideField,
		OverrideHeader: conf.Backend.OverrideHeader,
		FarmSvc:        farmSvc,
		Validate:       validate,
		Translator:     translator,
		Logger:         logger,
	})

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err = <-serverErrors:
		if err != nil {
			logger.Fatal(fmt.Sprintf("server error: %v", err), err)
		}

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err = server.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}
