// Package main implements the entry point for the opsdesk server,
// which aggregates operational tasks for a medical equipment rental
// and sales business into a single actionable feed.
package main

import (
	"fmt"
	"log"
	"log/slog"
)

// main initializes configuration, logging, the database connection and
// all application components, then runs the HTTP server until it
// receives a shutdown signal.
func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.cleanup()

	if err := app.startHTTPServer(); err != nil {
		app.logger.Error("Server terminated with error", slog.String("error", err.Error()))
		log.Fatalf("Server terminated: %v", err)
	}
}

// initializeApp loads configuration and wires up application components
// in dependency order: config, logger, database, migrations, stores,
// feed readers, aggregator, lifecycle controller, HTTP handlers.
func initializeApp() (*application, error) {
	app, err := newApplication()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}

	app.logger.Info("Server configuration loaded",
		slog.Int("port", app.config.Server.Port),
		slog.String("log_level", app.config.Server.LogLevel),
		slog.Duration("reader_timeout", app.config.Feed.ReaderTimeout()))

	return app, nil
}
