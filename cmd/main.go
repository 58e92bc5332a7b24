package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"pastify/internal/repositories"
	"pastify/internal/services"
	"pastify/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := "config.toml"
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loaded, err := shared.LoadConfig(configPath); err == nil {
			config = loaded
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
		}
	}

	var (
		catalog     services.Catalog
		tokens      services.TokenStore
		submissions *repositories.SubmissionRepository
	)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		logger.Warn("database unavailable, run 'pastify setup'", "error", err)
	} else {
		defer db.Close()
		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

		tokenRepo := repositories.NewTokenRepository(db)
		tokens = tokenRepo
		submissions = repositories.NewSubmissionRepository(db)
		catalog = services.NewSpotifyClient(tokenRepo, nil)
	}

	runner := NewRunner(RunnerOpts{
		Config:      config,
		ConfigPath:  configPath,
		Catalog:     catalog,
		Tokens:      tokens,
		Submissions: submissions,
		Logger:      logger,
	})

	app := &cli.Command{
		Name:     "pastify",
		Usage:    "Paste track names and bulk-add the matches to a Spotify playlist",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
