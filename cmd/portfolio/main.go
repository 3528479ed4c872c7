// Command portfolio serves the interactive navigation graph of the
// portfolio site and renders it headlessly.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/g-s-k-zoro/gsk-man-page/internal/config"
	"github.com/g-s-k-zoro/gsk-man-page/internal/di"
	"github.com/g-s-k-zoro/gsk-man-page/internal/observability"
	"github.com/g-s-k-zoro/gsk-man-page/internal/site"
	"github.com/g-s-k-zoro/gsk-man-page/internal/ui"
)

var (
	configPath string
	logLevel   string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "portfolio",
		Short: "Force-directed navigation graph for the portfolio site",
		Long: ui.Brand.Sprint("portfolio") + " serves and renders the site's navigation graph\n" +
			ui.Subtle.Sprint("Configuration comes from --config, then PORTFOLIO_* environment variables"),
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")

	root.AddCommand(
		serveCmd(),
		layoutCmd(),
		renderCmd(),
		searchCmd(),
		checkCmd(),
	)
	return root
}

// loadConfig reads the configuration and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

// offlineLogger is for one-shot commands: quiet unless asked otherwise.
func offlineLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.LogLevel
	if level == "" {
		level = "warn"
	}
	return observability.NewLogger(cfg.Environment, level)
}

// loadSite builds the site the same way the server does, without the
// network-facing parts.
func loadSite(cfg *config.Config, logger *zap.Logger) (*site.Site, error) {
	collector := di.ProvideCollector(cfg)
	return di.ProvideSite(cfg, di.ProvideGraphLoader(logger), collector, logger)
}
