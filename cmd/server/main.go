package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/barter-backend/internal/config"
	"github.com/ignatzorin/barter-backend/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:           "barter",
	Short:         "P2P barter marketplace backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.Log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

// loadConfig читает конфигурацию и настраивает логгер.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger.Init(cfg.LogLevel)
	if cfg.Env == "development" {
		logger.SetTextFormatter()
	}
	return cfg, nil
}
