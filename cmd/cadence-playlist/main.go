// Command cadence-playlist runs the cadence playlist generator web application.
package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/justestif/go-cadence-playlist/internal/db"
	"github.com/justestif/go-cadence-playlist/internal/reccobeats"
	"github.com/justestif/go-cadence-playlist/internal/web"
	webfs "github.com/justestif/go-cadence-playlist/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Validate environment variables
	clientID := os.Getenv("SPOTIFY_ID")
	clientSecret := os.Getenv("SPOTIFY_SECRET")
	databaseURL := os.Getenv("DATABASE_URL")

	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("please set SPOTIFY_ID and SPOTIFY_SECRET environment variables")
	}
	if databaseURL == "" {
		return fmt.Errorf("please set DATABASE_URL environment variable")
	}

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = web.DefaultAddr
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "cadence",
	})

	// Connect to the database and ensure the schema exists
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	database, err := db.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	if err := database.InitSchema(ctx); err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}

	if n, err := database.Sessions().DeleteExpired(ctx); err != nil {
		logger.Warn("pruning expired sessions", "err", err)
	} else if n > 0 {
		logger.Info("pruned expired sessions", "count", n)
	}

	// Create sub-filesystems for templates and static files
	templates, err := fs.Sub(webfs.TemplatesFS, "templates")
	if err != nil {
		return fmt.Errorf("creating templates filesystem: %w", err)
	}

	static, err := fs.Sub(webfs.StaticFS, "static")
	if err != nil {
		return fmt.Errorf("creating static filesystem: %w", err)
	}

	// Create and start server
	server, err := web.NewServer(web.ServerConfig{
		Addr:         addr,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Database:     database,
		Tempo:        reccobeats.NewClient(),
		Logger:       logger,
		TemplatesFS:  templates,
		StaticFS:     static,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return server.Run()
}
