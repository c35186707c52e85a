package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"epaws/internal/adapters/auth/jwtverifier"
	"epaws/internal/ports/auth"
)

type tokenOptions struct {
	subject string
	email   string
	role    string
	ttl     time.Duration
}

// token firma un JWT con el secreto configurado; útil en entornos de prueba.
func newTokenCommand(root *rootOptions) *cobra.Command {
	opts := &tokenOptions{}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite un token firmado para un principal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := root.load()
			if err != nil {
				return err
			}
			if opts.subject == "" {
				return errors.New("--sub is required")
			}
			v, err := jwtverifier.New(cfg.Auth.JWTSecret, cfg.AppName)
			if err != nil {
				return err
			}
			tok, err := v.Issue(auth.Claims{
				UserID: opts.subject,
				Email:  opts.email,
				Role:   auth.ParseRole(opts.role),
			}, opts.ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.subject, "sub", "", "ID del principal (usuario, organización o clínica)")
	cmd.Flags().StringVar(&opts.email, "email", "", "email del principal")
	cmd.Flags().StringVar(&opts.role, "role", string(auth.RoleUser), "user | organization | veterinary | admin")
	cmd.Flags().DurationVar(&opts.ttl, "ttl", time.Hour, "vigencia del token")
	return cmd
}
