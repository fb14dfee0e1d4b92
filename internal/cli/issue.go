package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentoverflow/agentdb/internal/ports/primary"
	"github.com/agentoverflow/agentdb/internal/wire"
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Manage deduplicated error reports",
	Long:  "Submit, inspect and list error reports. Repeat reports of the same normalized error fold into one issue.",
}

var issueSubmitCmd = &cobra.Command{
	Use:   "submit [title]",
	Short: "Report an error",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		contributorID, err := resolveContributor(cmd)
		if err != nil {
			return err
		}
		message, _ := cmd.Flags().GetString("message")
		errorType, _ := cmd.Flags().GetString("type")
		stack, _ := cmd.Flags().GetString("stack")
		runtime, _ := cmd.Flags().GetString("runtime")

		var stackTags []string
		if stack != "" {
			for _, tag := range strings.Split(stack, ",") {
				stackTags = append(stackTags, strings.TrimSpace(tag))
			}
		}

		return wire.IssueAdapter().Submit(context.Background(), primary.SubmitIssueRequest{
			IP:            localIP,
			ContributorID: contributorID,
			Title:         args[0],
			ErrorType:     errorType,
			ErrorMessage:  message,
			StackTags:     stackTags,
			Runtime:       runtime,
		})
	},
}

var issueShowCmd = &cobra.Command{
	Use:   "show [issue-id]",
	Short: "Show issue details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.IssueAdapter().Show(context.Background(), args[0])
	},
}

var issueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List issues",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")
		return wire.IssueAdapter().List(context.Background(), status, limit)
	},
}

func init() {
	issueSubmitCmd.Flags().StringP("contributor", "c", "", "Acting contributor ID (defaults to AGENTDB_CONTRIBUTOR)")
	issueSubmitCmd.Flags().StringP("message", "m", "", "Raw error message (required)")
	issueSubmitCmd.Flags().StringP("type", "t", "", "Error type or exception class")
	issueSubmitCmd.Flags().String("stack", "", "Comma-separated stack tags (e.g. redis,docker)")
	issueSubmitCmd.Flags().String("runtime", "", "Runtime and version (e.g. node@20.11.0)")

	issueListCmd.Flags().StringP("status", "s", "", "Filter by status (open, solved, stale)")
	issueListCmd.Flags().IntP("limit", "n", 0, "Maximum rows")

	issueCmd.AddCommand(issueSubmitCmd)
	issueCmd.AddCommand(issueShowCmd)
	issueCmd.AddCommand(issueListCmd)
}

// IssueCmd returns the issue command
func IssueCmd() *cobra.Command {
	return issueCmd
}
