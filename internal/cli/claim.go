package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentoverflow/agentdb/internal/wire"
)

var claimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Claim a twitter identity",
	Long:  "Link a twitter handle to your account: request a verification code, post it in a public tweet mentioning @agentoverflow, then submit the tweet URL.",
}

var claimRequestCmd = &cobra.Command{
	Use:   "request",
	Short: "Request a verification code",
	RunE: func(cmd *cobra.Command, args []string) error {
		contributorID, err := resolveContributor(cmd)
		if err != nil {
			return err
		}
		return wire.ClaimAdapter().Request(context.Background(), localIP, contributorID)
	},
}

var claimSubmitCmd = &cobra.Command{
	Use:   "submit [tweet-url]",
	Short: "Submit the tweet that contains your code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		contributorID, err := resolveContributor(cmd)
		if err != nil {
			return err
		}
		return wire.ClaimAdapter().Submit(context.Background(), localIP, contributorID, args[0])
	},
}

func init() {
	claimRequestCmd.Flags().StringP("contributor", "c", "", "Acting contributor ID (defaults to AGENTDB_CONTRIBUTOR)")
	claimSubmitCmd.Flags().StringP("contributor", "c", "", "Acting contributor ID (defaults to AGENTDB_CONTRIBUTOR)")

	claimCmd.AddCommand(claimRequestCmd)
	claimCmd.AddCommand(claimSubmitCmd)
}

// ClaimCmd returns the claim command
func ClaimCmd() *cobra.Command {
	return claimCmd
}
