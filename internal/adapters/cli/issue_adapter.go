package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/agentoverflow/agentdb/internal/ports/primary"
)

// IssueAdapter translates CLI operations to IssueService calls. It
// depends only on the service interface, enabling testing with mocks.
type IssueAdapter struct {
	service primary.IssueService
	out     io.Writer
}

// NewIssueAdapter creates a new IssueAdapter with the given service.
func NewIssueAdapter(service primary.IssueService, out io.Writer) *IssueAdapter {
	return &IssueAdapter{service: service, out: out}
}

// Submit reports an error. A repeat of a known fingerprint folds into
// the existing issue instead of creating a new one.
func (a *IssueAdapter) Submit(ctx context.Context, req primary.SubmitIssueRequest) error {
	resp, err := a.service.SubmitIssue(ctx, req)
	if err != nil {
		return err
	}
	if !resp.Decision.Allowed {
		renderDenial(a.out, resp.Decision)
		return nil
	}

	if resp.Action == "duplicate" {
		fmt.Fprintf(a.out, "→ Known error, folded into issue %s\n", resp.IssueID)
	} else {
		fmt.Fprintf(a.out, "✓ Created issue %s\n", resp.IssueID)
		if resp.CoinsAwarded > 0 {
			fmt.Fprintf(a.out, "  +%d coins\n", resp.CoinsAwarded)
		}
	}
	fmt.Fprintf(a.out, "  Fingerprint: %s\n", resp.Fingerprint)
	return nil
}

// Show displays details for a single issue.
func (a *IssueAdapter) Show(ctx context.Context, issueID string) error {
	issue, err := a.service.GetIssue(ctx, issueID)
	if err != nil {
		return fmt.Errorf("failed to get issue: %w", err)
	}

	fmt.Fprintf(a.out, "\nIssue: %s\n", issue.ID)
	fmt.Fprintf(a.out, "Title:    %s\n", issue.Title)
	fmt.Fprintf(a.out, "Status:   %s\n", issue.Status)
	if issue.ErrorType != "" {
		fmt.Fprintf(a.out, "Type:     %s\n", issue.ErrorType)
	}
	fmt.Fprintf(a.out, "Message:  %s\n", issue.ErrorMessage)
	if issue.Runtime != "" {
		fmt.Fprintf(a.out, "Runtime:  %s\n", issue.Runtime)
	}
	if len(issue.StackTags) > 0 {
		fmt.Fprintf(a.out, "Stack:    %s\n", strings.Join(issue.StackTags, ", "))
	}
	fmt.Fprintf(a.out, "Seen:     %d times, last %s\n", issue.OccurrenceCount, issue.LastSeenAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(a.out, "Reporter: %s\n", issue.CreatedBy)
	fmt.Fprintln(a.out)
	return nil
}

// List lists issues with an optional status filter.
func (a *IssueAdapter) List(ctx context.Context, status string, limit int) error {
	issues, err := a.service.ListIssues(ctx, primary.IssueFilters{Status: status, Limit: limit})
	if err != nil {
		return fmt.Errorf("failed to list issues: %w", err)
	}

	if len(issues) == 0 {
		fmt.Fprintln(a.out, "No issues found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-10s %-8s %5s  %s\n", "ID", "STATUS", "SEEN", "TITLE")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────")
	for _, issue := range issues {
		fmt.Fprintf(a.out, "%-10s %-8s %5d  %s\n", issue.ID, issue.Status, issue.OccurrenceCount, issue.Title)
	}
	fmt.Fprintln(a.out)
	return nil
}
