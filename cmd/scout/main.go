package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/player-scout/internal/app"
	"github.com/riskibarqy/player-scout/internal/config"
	"github.com/riskibarqy/player-scout/internal/platform/logging"
)

// appLoader builds the wired core; tests swap it for one without network sources.
type appLoader func(logLevel string) (*app.App, error)

func main() {
	if err := newRootCmd(loadApp).Execute(); err != nil {
		os.Exit(1)
	}
}

func loadApp(logLevel string) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.MCPEnabled = false
	cfg.MetricsEnabled = false

	level := cfg.LogLevel
	if strings.TrimSpace(logLevel) != "" {
		level = logging.ParseLevel(logLevel)
	}
	logger := logging.New(os.Stderr, level, logging.FormatConsole)
	logging.SetDefault(logger)

	return app.New(cfg, logger)
}

func newRootCmd(load appLoader) *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "scout",
		Short:         "Look up football players across a structured API and a scraped market site",
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	withApp := func(run func(cmd *cobra.Command, args []string, a *app.App) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, err := load(logLevel)
			if err != nil {
				return err
			}
			defer a.Close()
			return run(cmd, args, a)
		}
	}

	root.AddCommand(
		newChatCmd(withApp),
		newProfileCmd(withApp),
		newSearchCmd(withApp),
	)
	return root
}
