package main

import (
	"errors"

	"github.com/spf13/cobra"

	pg "epaws/internal/adapters/storage/postgres"
)

func newMigrateCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica el schema en la base configurada",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := root.load()
			if err != nil {
				return err
			}
			if cfg.Storage.DSN == "" {
				return errors.New("storage.dsn (DB_DSN) is required")
			}
			db, err := pg.Open(cfg.Storage.DSN)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := pg.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			log.Info("schema applied", nil)
			return nil
		},
	}
}
