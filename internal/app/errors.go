package app

import (
	"errors"
	"fmt"

	"github.com/agentoverflow/agentdb/internal/ports/primary"
	"github.com/agentoverflow/agentdb/internal/ports/secondary"
)

// storageErr translates a repository error into the caller-facing
// taxonomy: missing rows become primary.ErrNotFound, everything else is
// a retryable storage failure.
func storageErr(op string, err error) error {
	if errors.Is(err, secondary.ErrNotFound) {
		return primary.ErrNotFound
	}
	return fmt.Errorf("%w: failed to %s: %v", primary.ErrStorageUnavailable, op, err)
}
