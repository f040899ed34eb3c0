package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	jwtmw "cardlens/internal/platform/jwt"
)

func tokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin token for the refresh endpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.Auth.JWTSecret == "" {
				return errors.New("auth.jwt_secret is not set (CARDLENS_AUTH_JWT_SECRET)")
			}
			if ttl <= 0 {
				ttl = cfg.Auth.TokenTTL
			}
			tok, err := jwtmw.NewGenerator(cfg.Auth.JWTSecret, ttl).GenerateToken(subject, jwtmw.ScopeAdmin)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "cardctl", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default: auth.token_ttl)")
	return cmd
}
