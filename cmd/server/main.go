package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sorayamlj/FocusTache/internal/config"
	"github.com/sorayamlj/FocusTache/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "focustache",
	Short: "FocusTâche task and focus tracking backend",
	Long: `focustache serves the task lifecycle and dashboard API, applies database
migrations, and can assemble a dashboard snapshot from a running server.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger shared by every command.
func setup(stderr bool) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config error: %w", err)
	}
	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Stderr:   stderr,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("logger error: %w", err)
	}
	return cfg, zapLogger, nil
}
