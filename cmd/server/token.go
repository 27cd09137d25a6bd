package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"msgbarrier/internal/platform/config"
	"msgbarrier/internal/platform/middleware"
)

const adminIssuer = "msgbarrier"

func newTokenCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "issue an admin bearer token signed with ADMIN_JWT_SIGNING_KEY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if ttl <= 0 {
				return fmt.Errorf("ttl must be positive, got %s", ttl)
			}
			validator, err := middleware.NewHMACValidator(cfg.JWTSigningKey, adminIssuer)
			if err != nil {
				return err
			}
			token, err := validator.IssueToken(args[0], ttl, time.Now())
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
