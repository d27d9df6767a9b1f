// Package main is the entrypoint of Playlistarr.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"playlistarr/internal/app"
	"playlistarr/internal/cfg"
	"playlistarr/internal/database"
	"playlistarr/internal/domain/setup"
	"playlistarr/internal/downloads"
	"playlistarr/internal/events"
	"playlistarr/internal/listing"
	"playlistarr/internal/repo"
	"playlistarr/internal/utils/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Playlistarr exiting with error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the application together and executes the selected command.
func run() error {
	if err := setup.InitCfgFilesDirs(); err != nil {
		return err
	}
	if err := logging.Setup(setup.LogFilePath); err != nil {
		return err
	}
	logging.D(1, "Playlistarr file locations:\nDatabase: %s\nLog file: %s", setup.DBFilePath, setup.LogFilePath)

	db, err := database.InitDB(setup.DBFilePath)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.E(0, "Failed to close database: %v", err)
		}
	}()

	store := repo.InitStores(db.DB)
	bus := events.NewBus()
	coord := app.NewCoordinator(listing.New(), downloads.NewClient(), store.SessionStore(), bus)

	// Cancellable context for shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
	defer cancel()

	if err := cfg.InitCommands(ctx, store, coord, bus); err != nil {
		return err
	}
	if err := cfg.Execute(); err != nil {
		return err
	}

	// Flush any event handlers still running before teardown.
	bus.Wait()
	return nil
}
