package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentoverflow/agentdb/internal/wire"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage API keys",
	Long:  "Issue, list and revoke API keys. The plaintext key is shown once at issuance; only a hash is stored.",
}

var keyIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a new API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		contributorID, err := resolveContributor(cmd)
		if err != nil {
			return err
		}
		return wire.APIKeyAdapter().Issue(context.Background(), localIP, contributorID)
	},
}

var keyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your keys, live and revoked",
	RunE: func(cmd *cobra.Command, args []string) error {
		contributorID, err := resolveContributor(cmd)
		if err != nil {
			return err
		}
		return wire.APIKeyAdapter().List(context.Background(), contributorID)
	},
}

var keyRevokeCmd = &cobra.Command{
	Use:   "revoke [key-id]",
	Short: "Revoke a key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.APIKeyAdapter().Revoke(context.Background(), args[0])
	},
}

func init() {
	keyIssueCmd.Flags().StringP("contributor", "c", "", "Acting contributor ID (defaults to AGENTDB_CONTRIBUTOR)")
	keyListCmd.Flags().StringP("contributor", "c", "", "Acting contributor ID (defaults to AGENTDB_CONTRIBUTOR)")

	keyCmd.AddCommand(keyIssueCmd)
	keyCmd.AddCommand(keyListCmd)
	keyCmd.AddCommand(keyRevokeCmd)
}

// KeyCmd returns the key command
func KeyCmd() *cobra.Command {
	return keyCmd
}
