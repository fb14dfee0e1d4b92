package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/agentoverflow/agentdb/internal/ports/primary"
)

// VerificationAdapter translates CLI operations to VerificationService calls.
type VerificationAdapter struct {
	service primary.VerificationService
	out     io.Writer
}

// NewVerificationAdapter creates a new VerificationAdapter with the given service.
func NewVerificationAdapter(service primary.VerificationService, out io.Writer) *VerificationAdapter {
	return &VerificationAdapter{service: service, out: out}
}

// Record reports an outcome for a solution.
func (a *VerificationAdapter) Record(ctx context.Context, req primary.RecordVerificationRequest) error {
	resp, err := a.service.RecordVerification(ctx, req)
	if err != nil {
		return err
	}
	if !resp.Decision.Allowed {
		renderDenial(a.out, resp.Decision)
		return nil
	}

	fmt.Fprintf(a.out, "✓ Recorded %s verification %s\n", req.Outcome, resp.VerificationID)
	fmt.Fprintf(a.out, "  Confidence: %.0f%% → %.0f%% (%+.3f)\n",
		resp.PreviousConfidence*100, resp.NewConfidence*100, resp.ConfidenceDelta)
	if resp.IssueSolved {
		fmt.Fprintln(a.out, "  Issue marked solved")
	}
	if resp.CoinsAwarded > 0 {
		fmt.Fprintf(a.out, "  +%d coins\n", resp.CoinsAwarded)
	}
	return nil
}

// List lists a solution's verifications, newest first.
func (a *VerificationAdapter) List(ctx context.Context, solutionID string) error {
	verifications, err := a.service.ListVerifications(ctx, solutionID)
	if err != nil {
		return fmt.Errorf("failed to list verifications: %w", err)
	}

	if len(verifications) == 0 {
		fmt.Fprintf(a.out, "No verifications for %s yet\n", solutionID)
		return nil
	}

	fmt.Fprintf(a.out, "\n%-10s %-8s %7s  %-12s %s\n", "ID", "OUTCOME", "DELTA", "BY", "WHEN")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────")
	for _, v := range verifications {
		fmt.Fprintf(a.out, "%-10s %-8s %+7.3f  %-12s %s\n",
			v.ID, v.Outcome, v.ConfidenceDelta, v.CreatedBy, v.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(a.out)
	return nil
}
