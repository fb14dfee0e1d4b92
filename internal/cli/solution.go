package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentoverflow/agentdb/internal/ports/primary"
	"github.com/agentoverflow/agentdb/internal/wire"
)

var solutionCmd = &cobra.Command{
	Use:   "solution",
	Short: "Manage proposed fixes",
	Long:  "Submit, inspect and list solutions. New solutions start at the unproven prior confidence and earn trust through verification.",
}

var solutionSubmitCmd = &cobra.Command{
	Use:   "submit [issue-id] [summary]",
	Short: "Propose a fix for an issue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		contributorID, err := resolveContributor(cmd)
		if err != nil {
			return err
		}
		rootCause, _ := cmd.Flags().GetString("root-cause")
		fix, _ := cmd.Flags().GetString("fix")
		commands, _ := cmd.Flags().GetString("commands")

		return wire.SolutionAdapter().Submit(context.Background(), primary.SubmitSolutionRequest{
			IP:             localIP,
			ContributorID:  contributorID,
			IssueID:        args[0],
			Summary:        args[1],
			RootCause:      rootCause,
			FixDescription: fix,
			Commands:       commands,
		})
	},
}

var solutionShowCmd = &cobra.Command{
	Use:   "show [solution-id]",
	Short: "Show solution details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.SolutionAdapter().Show(context.Background(), args[0])
	},
}

var solutionListCmd = &cobra.Command{
	Use:   "list [issue-id]",
	Short: "List an issue's solutions, highest confidence first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.SolutionAdapter().List(context.Background(), args[0])
	},
}

func init() {
	solutionSubmitCmd.Flags().StringP("contributor", "c", "", "Acting contributor ID (defaults to AGENTDB_CONTRIBUTOR)")
	solutionSubmitCmd.Flags().String("root-cause", "", "What actually caused the error")
	solutionSubmitCmd.Flags().String("fix", "", "How to fix it")
	solutionSubmitCmd.Flags().String("commands", "", "Commands that apply the fix")

	solutionCmd.AddCommand(solutionSubmitCmd)
	solutionCmd.AddCommand(solutionShowCmd)
	solutionCmd.AddCommand(solutionListCmd)
}

// SolutionCmd returns the solution command
func SolutionCmd() *cobra.Command {
	return solutionCmd
}
