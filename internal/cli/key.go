package cli

import (
	"github.com/spf13/cobra"
)

func newKeyCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the OpenRouter API key of the tenant",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <api-key>",
			Short: "Store an API key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := e.store.SetCredential(cmd.Context(), args[0]); err != nil {
					return err
				}
				e.out.linef("API key saved for tenant %s", e.tenant)
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove the stored API key",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := e.store.ClearCredential(cmd.Context()); err != nil {
					return err
				}
				e.out.linef("API key cleared for tenant %s", e.tenant)
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Report whether an API key is available",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if e.store.HasCredential(cmd.Context()) {
					e.out.linef("API key: configured")
				} else {
					e.out.linef("API key: not configured")
				}
				return nil
			},
		},
	)
	return cmd
}

func newTokenCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage bearer tokens for the HTTP server",
	}

	var name string
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Issue a bearer token for the tenant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, key, err := e.app.Keys.Issue(cmd.Context(), e.tenant, name)
			if err != nil {
				return err
			}
			e.out.linef("Token: %s", token)
			e.out.linef("Key ID: %s (tenant %s)", key.ID, key.TenantID)
			e.out.linef("The token is shown once; store it now.")
			return nil
		},
	}
	issue.Flags().StringVar(&name, "name", "cli", "label stored with the key")

	revoke := &cobra.Command{
		Use:   "revoke <key-id>",
		Short: "Revoke a bearer token by key id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.app.Keys.Revoke(cmd.Context(), args[0]); err != nil {
				return err
			}
			e.out.linef("Revoked %s", args[0])
			return nil
		},
	}

	cmd.AddCommand(issue, revoke)
	return cmd
}
