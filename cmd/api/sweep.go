package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"epaws/internal/domain/notifications"
	"epaws/internal/platform/metrics"
	"epaws/internal/router"
)

// sweep-notifications: una pasada, pensado para cron.
func newSweepCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-notifications",
		Short: "Borra notificaciones leídas más antiguas que la retención",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := root.load()
			if err != nil {
				return err
			}
			db, err := openDB(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			if db != nil {
				defer db.Close()
			}

			stores := router.NewStores(db)
			s := notifications.NewSweeper(stores.Notifications, cfg.Notifications.Retention, cfg.Notifications.SweepInterval, log, metrics.New(prometheus.NewRegistry()))
			n, err := s.SweepOnce(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d notifications\n", n)
			return nil
		},
	}
}
