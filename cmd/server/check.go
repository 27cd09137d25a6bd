package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"msgbarrier/internal/barrier/policies/admission"
	"msgbarrier/internal/barrier/policies/suspension"
	"msgbarrier/internal/barrier/policyconfig"
	"msgbarrier/internal/barrier/store/originlist"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [policy-file]",
		Short: "validate a policy file and print its layout",
		Long: `Loads and builds the policy file against empty origin lists. Without an
argument the built-in default layout is checked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			file, hash, err := policyconfig.Load(path)
			if err != nil {
				return err
			}
			chains, err := policyconfig.Build(file, policyconfig.Deps{
				AllowOrigins: originlist.NewSnapshot(),
				DenyOrigins:  originlist.NewSnapshot(),
				Switch:       suspension.NewSwitch(),
				Queries:      admission.NewExpectedQueries(),
			})
			if err != nil {
				return fmt.Errorf("invalid policy file: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "policy %s\n", hash)
			fmt.Fprintf(out, "deny:    %d policies\n", chains.Deny.Len())
			fmt.Fprintf(out, "suspend: %d policies\n", chains.Suspend.Len())
			fmt.Fprintf(out, "admit:   %d policies (isolation=%t)\n", chains.Admit.Len(), file.Isolation)
			return nil
		},
	}
}
