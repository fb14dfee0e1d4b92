package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/agentoverflow/agentdb/internal/ports/primary"
)

// SolutionAdapter translates CLI operations to SolutionService calls.
type SolutionAdapter struct {
	service primary.SolutionService
	out     io.Writer
}

// NewSolutionAdapter creates a new SolutionAdapter with the given service.
func NewSolutionAdapter(service primary.SolutionService, out io.Writer) *SolutionAdapter {
	return &SolutionAdapter{service: service, out: out}
}

// Submit proposes a fix for an issue.
func (a *SolutionAdapter) Submit(ctx context.Context, req primary.SubmitSolutionRequest) error {
	resp, err := a.service.SubmitSolution(ctx, req)
	if err != nil {
		return err
	}
	if !resp.Decision.Allowed {
		renderDenial(a.out, resp.Decision)
		return nil
	}

	fmt.Fprintf(a.out, "✓ Created solution %s for %s\n", resp.SolutionID, req.IssueID)
	if resp.CoinsAwarded > 0 {
		fmt.Fprintf(a.out, "  +%d coins\n", resp.CoinsAwarded)
	}
	return nil
}

// Show displays details for a single solution.
func (a *SolutionAdapter) Show(ctx context.Context, solutionID string) error {
	solution, err := a.service.GetSolution(ctx, solutionID)
	if err != nil {
		return fmt.Errorf("failed to get solution: %w", err)
	}

	fmt.Fprintf(a.out, "\nSolution: %s (issue %s)\n", solution.ID, solution.IssueID)
	fmt.Fprintf(a.out, "Summary:    %s\n", solution.Summary)
	if solution.RootCause != "" {
		fmt.Fprintf(a.out, "Root cause: %s\n", solution.RootCause)
	}
	if solution.FixDescription != "" {
		fmt.Fprintf(a.out, "Fix:        %s\n", solution.FixDescription)
	}
	if solution.Commands != "" {
		fmt.Fprintf(a.out, "Commands:   %s\n", solution.Commands)
	}
	fmt.Fprintf(a.out, "Confidence: %.0f%% (%d verifications)\n", solution.ConfidenceScore*100, solution.VerificationCount)
	if solution.LastVerifiedAt != nil {
		fmt.Fprintf(a.out, "Last verified: %s\n", solution.LastVerifiedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(a.out, "Author:     %s\n", solution.CreatedBy)
	fmt.Fprintln(a.out)
	return nil
}

// List lists an issue's solutions, highest confidence first.
func (a *SolutionAdapter) List(ctx context.Context, issueID string) error {
	solutions, err := a.service.ListSolutions(ctx, issueID)
	if err != nil {
		return fmt.Errorf("failed to list solutions: %w", err)
	}

	if len(solutions) == 0 {
		fmt.Fprintf(a.out, "No solutions for %s yet\n", issueID)
		return nil
	}

	fmt.Fprintf(a.out, "\n%-10s %10s %6s  %s\n", "ID", "CONFIDENCE", "CHECKS", "SUMMARY")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────")
	for _, s := range solutions {
		fmt.Fprintf(a.out, "%-10s %9.0f%% %6d  %s\n", s.ID, s.ConfidenceScore*100, s.VerificationCount, s.Summary)
	}
	fmt.Fprintln(a.out)
	return nil
}
