package main

import (
	"fmt"
	"os"

	"github.com/GriffinCanCode/gatorbrowse/internal/browser"
	"github.com/GriffinCanCode/gatorbrowse/internal/infrastructure/config"
	"github.com/GriffinCanCode/gatorbrowse/internal/logging"
	"github.com/GriffinCanCode/gatorbrowse/internal/sites/uf"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gatorbrowse",
		Short: "Scriptable browser for the UF web sites",
		Long: `gatorbrowse loads pages the way a desktop browser would: it keeps
cookies, follows HTTP, meta refresh and SAML redirects, and can sign in
to GatorLink and open ISIS pages.

Settings are read from the environment (BROWSER_*, RETRY_*, THROTTLE_*,
SITE_*, LOG_*). Flags override the logging settings.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().Bool("dev", false, "Use colored development logging")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(NewFetchCmd())
	cmd.AddCommand(NewLoginCmd())
	cmd.AddCommand(NewPluginsCmd())

	return cmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration and builds a logger and a browser for cmd
func setup(cmd *cobra.Command, opts ...browser.Option) (*config.Config, *zap.Logger, *browser.Browser, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Development = cfg.Logging.Development
	if dev, _ := cmd.Flags().GetBool("dev"); dev {
		logCfg = logging.DevelopmentConfig()
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		logCfg.Level = level
	}

	log, err := logging.New(logCfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("logger: %w", err)
	}

	b, err := uf.NewBrowser(cfg, log, opts...)
	if err != nil {
		_ = log.Sync()
		return nil, nil, nil, err
	}
	return cfg, log, b, nil
}
