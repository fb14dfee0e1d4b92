// Package cli provides thin CLI adapters that translate between CLI
// concerns and application services. Adapters handle output formatting
// but delegate all business logic to services.
package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/agentoverflow/agentdb/internal/ports/primary"
)

// renderDenial prints a refused guard decision in a consistent shape
// across all mutating commands.
func renderDenial(out io.Writer, d primary.Decision) {
	fmt.Fprintf(out, "✗ Refused: %s\n", denyText(d.Reason))
	if d.RetryAfter > 0 {
		fmt.Fprintf(out, "  Retry after: %s\n", d.RetryAfter.Round(time.Second))
	}
	if !d.ResetsAt.IsZero() {
		fmt.Fprintf(out, "  Resets at: %s\n", d.ResetsAt.Local().Format("2006-01-02 15:04"))
	}
	if d.DuplicateID != "" {
		fmt.Fprintf(out, "  Existing: %s\n", d.DuplicateID)
	}
	if d.Reason.Conflict() {
		fmt.Fprintln(out, "  Retrying with the same payload will not help")
	}
}

func denyText(r primary.DenyReason) string {
	switch r {
	case primary.DenyRateLimited:
		return "too many requests from this address"
	case primary.DenyDailyQuota:
		return "daily quota exhausted"
	case primary.DenyCooldown:
		return "too soon after your previous action"
	case primary.DenyDuplicateContent:
		return "identical content was posted recently"
	case primary.DenySelfVerification:
		return "you cannot verify your own solution"
	case primary.DenyAlreadyVerified:
		return "you already verified this solution"
	case primary.DenyKeyLimit:
		return "live API key limit reached"
	}
	return string(r)
}
