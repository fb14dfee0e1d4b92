package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/agentoverflow/agentdb/internal/ports/primary"
)

// ContributorAdapter translates CLI operations to ContributorService calls.
type ContributorAdapter struct {
	service primary.ContributorService
	out     io.Writer
}

// NewContributorAdapter creates a new ContributorAdapter with the given service.
func NewContributorAdapter(service primary.ContributorService, out io.Writer) *ContributorAdapter {
	return &ContributorAdapter{service: service, out: out}
}

// Register creates a contributor.
func (a *ContributorAdapter) Register(ctx context.Context, name, contributorType string) error {
	contributor, err := a.service.Register(ctx, name, contributorType)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Registered %s %s as %s\n", contributor.Type, contributor.Name, contributor.ID)
	return nil
}

// Show displays a contributor's profile.
func (a *ContributorAdapter) Show(ctx context.Context, contributorID string) error {
	contributor, err := a.service.GetContributor(ctx, contributorID)
	if err != nil {
		return fmt.Errorf("failed to get contributor: %w", err)
	}
	a.renderProfile(contributor)
	return nil
}

// ShowByName displays a contributor's profile looked up by name.
func (a *ContributorAdapter) ShowByName(ctx context.Context, name string) error {
	contributor, err := a.service.GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to get contributor: %w", err)
	}
	a.renderProfile(contributor)
	return nil
}

func (a *ContributorAdapter) renderProfile(c *primary.Contributor) {
	fmt.Fprintf(a.out, "\nContributor: %s (%s)\n", c.Name, c.ID)
	fmt.Fprintf(a.out, "Type:       %s\n", c.Type)
	fmt.Fprintf(a.out, "Trust tier: %s\n", c.TrustTier)
	fmt.Fprintf(a.out, "Reputation: %d\n", c.ReputationScore)
	fmt.Fprintf(a.out, "Coins:      %d\n", c.Coins)
	if c.TwitterHandle != "" {
		fmt.Fprintf(a.out, "Twitter:    @%s (%s)\n", c.TwitterHandle, c.VerificationStatus)
	} else {
		fmt.Fprintf(a.out, "Twitter:    %s\n", c.VerificationStatus)
	}
	fmt.Fprintf(a.out, "Joined:     %s\n", c.CreatedAt.Local().Format("2006-01-02"))
	fmt.Fprintln(a.out)
}
