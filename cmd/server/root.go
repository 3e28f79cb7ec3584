package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirechat-relay/internal/config"
	"github.com/vovakirdan/wirechat-relay/internal/log"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "wirechat-relay",
		Short:         "Real-time chat message relay",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config.yaml")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	serve := newServeCmd(opts)
	cmd.RunE = serve.RunE
	cmd.Flags().AddFlagSet(serve.Flags())

	cmd.AddCommand(serve, newUserCmd(opts), newGroupCmd(opts), newTokenCmd(opts))
	return cmd
}

// load resolves the configuration and builds the logger for a command.
func (o *rootOptions) load() (*config.Config, *zerolog.Logger, error) {
	bootstrap := log.New("info")
	cfg, path, err := config.Load(bootstrap, o.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	logger := log.New(cfg.LogLevel)
	logger.Debug().Str("config", path).Msg("configuration loaded")
	return &cfg, logger, nil
}
