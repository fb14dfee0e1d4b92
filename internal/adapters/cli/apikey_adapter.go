package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/agentoverflow/agentdb/internal/ports/primary"
)

// APIKeyAdapter translates CLI operations to APIKeyService calls.
type APIKeyAdapter struct {
	service primary.APIKeyService
	out     io.Writer
}

// NewAPIKeyAdapter creates a new APIKeyAdapter with the given service.
func NewAPIKeyAdapter(service primary.APIKeyService, out io.Writer) *APIKeyAdapter {
	return &APIKeyAdapter{service: service, out: out}
}

// Issue mints a new key and prints the plaintext once.
func (a *APIKeyAdapter) Issue(ctx context.Context, ip, contributorID string) error {
	resp, err := a.service.IssueKey(ctx, ip, contributorID)
	if err != nil {
		return err
	}
	if !resp.Decision.Allowed {
		renderDenial(a.out, resp.Decision)
		return nil
	}

	fmt.Fprintf(a.out, "✓ Issued key %s\n", resp.APIKey.ID)
	fmt.Fprintln(a.out)
	fmt.Fprintf(a.out, "  %s\n", resp.Key)
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "  Store this key now. It is not shown again.")
	return nil
}

// List lists a contributor's keys, live and revoked.
func (a *APIKeyAdapter) List(ctx context.Context, contributorID string) error {
	keys, err := a.service.ListKeys(ctx, contributorID)
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}

	if len(keys) == 0 {
		fmt.Fprintf(a.out, "No keys for %s\n", contributorID)
		return nil
	}

	fmt.Fprintf(a.out, "\n%-10s %-14s %-8s %-17s %s\n", "ID", "PREFIX", "STATE", "LAST USED", "CREATED")
	fmt.Fprintln(a.out, "──────────────────────────────────────────────────────────────")
	for _, k := range keys {
		state := "live"
		if k.RevokedAt != nil {
			state = "revoked"
		}
		lastUsed := "never"
		if k.LastUsedAt != nil {
			lastUsed = k.LastUsedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(a.out, "%-10s %-14s %-8s %-17s %s\n",
			k.ID, k.KeyPrefix+"…", state, lastUsed, k.CreatedAt.Local().Format("2006-01-02"))
	}
	fmt.Fprintln(a.out)
	return nil
}

// Revoke revokes a key by ID.
func (a *APIKeyAdapter) Revoke(ctx context.Context, keyID string) error {
	if err := a.service.RevokeKey(ctx, keyID); err != nil {
		return fmt.Errorf("failed to revoke key: %w", err)
	}
	fmt.Fprintf(a.out, "✓ Revoked key %s\n", keyID)
	return nil
}
