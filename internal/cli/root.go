// Package cli defines the swellwatch command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ngmaloney/swellwatch/internal/app"
	"github.com/ngmaloney/swellwatch/internal/config"
	"github.com/ngmaloney/swellwatch/internal/logging"
)

var (
	logLevel  string
	appHandle *app.App
)

var rootCmd = &cobra.Command{
	Use:           "swellwatch",
	Short:         "Match surf triggers against live buoy and tide conditions",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if appHandle != nil {
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		if logLevel != "" {
			cfg.LogLevel = logLevel
		}

		logger := logging.NewLogger(logging.Config{
			Level:  cfg.LogLevel,
			Format: cfg.LogFormat,
		})
		appHandle = app.NewApp(cfg, logger)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL")

	rootCmd.AddCommand(provisionCmd)
	rootCmd.AddCommand(nearestCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(tideCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

func getApp() *app.App {
	if appHandle == nil {
		panic("application not initialized; PersistentPreRunE not executed")
	}
	return appHandle
}
