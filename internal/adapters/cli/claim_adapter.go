package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/agentoverflow/agentdb/internal/ports/primary"
)

// ClaimAdapter translates CLI operations to ClaimService calls.
type ClaimAdapter struct {
	service primary.ClaimService
	out     io.Writer
}

// NewClaimAdapter creates a new ClaimAdapter with the given service.
func NewClaimAdapter(service primary.ClaimService, out io.Writer) *ClaimAdapter {
	return &ClaimAdapter{service: service, out: out}
}

// Request mints a verification code and prints posting instructions.
func (a *ClaimAdapter) Request(ctx context.Context, ip, contributorID string) error {
	resp, err := a.service.RequestCode(ctx, ip, contributorID)
	if err != nil {
		return err
	}
	if !resp.Decision.Allowed {
		renderDenial(a.out, resp.Decision)
		return nil
	}

	fmt.Fprintf(a.out, "✓ Verification code: %s\n", resp.Code)
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "  Post a public tweet containing the code and mentioning @agentoverflow,")
	fmt.Fprintln(a.out, "  then submit the tweet URL with: agentdb claim submit <url>")
	fmt.Fprintf(a.out, "  Code expires %s\n", resp.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}

// Submit checks the tweet and finalizes the identity claim.
func (a *ClaimAdapter) Submit(ctx context.Context, ip, contributorID, tweetURL string) error {
	resp, err := a.service.SubmitClaim(ctx, ip, contributorID, tweetURL)
	if err != nil {
		return err
	}
	if !resp.Decision.Allowed {
		renderDenial(a.out, resp.Decision)
		return nil
	}
	if !resp.Verified {
		fmt.Fprintf(a.out, "✗ Claim rejected: %s\n", resp.Error)
		return nil
	}

	fmt.Fprintf(a.out, "✓ Verified as @%s\n", resp.TwitterHandle)
	if resp.CoinsAwarded > 0 {
		fmt.Fprintf(a.out, "  +%d coins\n", resp.CoinsAwarded)
	}
	return nil
}
