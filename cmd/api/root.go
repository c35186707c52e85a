package main

import (
	"github.com/spf13/cobra"

	"epaws/internal/platform/config"
	"epaws/internal/platform/logger"
)

type rootOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "epaws",
		Short:         "API de rescate y adopción de animales",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "archivo YAML de configuración (env pisa al archivo)")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newSweepCommand(opts))
	cmd.AddCommand(newTokenCommand(opts))
	return cmd
}

func (o *rootOptions) load() (config.Config, logger.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger.New(cfg.LoggerOptions()), nil
}
