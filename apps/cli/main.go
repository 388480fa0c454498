// Command hydrofarm is the terminal client of the classroom farm dashboard.
package main

import (
	"log"
	"os"

	"github.com/trezcool/hydrofarm/core"
	"github.com/trezcool/hydrofarm/core/session"
	backendsvc "github.com/trezcool/hydrofarm/services/backend"
	logsvc "github.com/trezcool/hydrofarm/services/logger"
	"github.com/trezcool/hydrofarm/storage/sessionstore"
)

func main() {
	conf := core.NewConfig()

	std := log.New(os.Stderr, "HYDROFARM : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, conf)
	logger.Enable(!conf.Debug)

	// set up the session
	store, closeStore, err := sessionstore.Open(conf)
	errAndDie(std, err)
	defer func() { _ = closeStore() }()

	sess := session.NewContext(store)
	errAndDie(std, sess.Init())

	backend, err := backendsvc.NewFromConfig(conf, sess, logger)
	errAndDie(std, err)

	validate, translator := core.NewValidator()

	// start CLI
	cli := newCommandLine(backend, sess, validate, translator, logger, conf.DisplayLocation())
	if err := cli.run(os.Args); err != nil {
		_ = closeStore()
		if err != errHelp {
			std.Printf("error: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(std *log.Logger, err error) {
	if err != nil {
		std.Fatal(err)
	}
}
