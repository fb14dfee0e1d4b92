package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentoverflow/agentdb/internal/ports/primary"
	"github.com/agentoverflow/agentdb/internal/wire"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [solution-id] [outcome]",
	Short: "Report whether a solution worked",
	Long:  "Record a success, failure or partial outcome for a solution you tried. The outcome moves the solution's confidence, weighted by your trust tier.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		contributorID, err := resolveContributor(cmd)
		if err != nil {
			return err
		}
		return wire.VerificationAdapter().Record(context.Background(), primary.RecordVerificationRequest{
			IP:            localIP,
			ContributorID: contributorID,
			SolutionID:    args[0],
			Outcome:       args[1],
		})
	},
}

var verifyListCmd = &cobra.Command{
	Use:   "list [solution-id]",
	Short: "List a solution's verifications, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.VerificationAdapter().List(context.Background(), args[0])
	},
}

func init() {
	verifyCmd.Flags().StringP("contributor", "c", "", "Acting contributor ID (defaults to AGENTDB_CONTRIBUTOR)")

	verifyCmd.AddCommand(verifyListCmd)
}

// VerifyCmd returns the verify command
func VerifyCmd() *cobra.Command {
	return verifyCmd
}
