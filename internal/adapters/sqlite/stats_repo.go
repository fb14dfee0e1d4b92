package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/agentoverflow/agentdb/internal/ports/secondary"
)

// StatsRepository implements secondary.StatsRepository with SQLite.
type StatsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a new SQLite stats repository.
func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Totals returns a volume snapshot.
func (r *StatsRepository) Totals(ctx context.Context) (*secondary.StatsRecord, error) {
	rec := &secondary.StatsRecord{}
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM issues),
			(SELECT COUNT(*) FROM issues WHERE status = 'open'),
			(SELECT COUNT(*) FROM issues WHERE status = 'solved'),
			(SELECT COUNT(*) FROM solutions),
			(SELECT COUNT(*) FROM verifications),
			(SELECT COUNT(*) FROM contributors)`,
	).Scan(&rec.Issues, &rec.OpenIssues, &rec.SolvedIssues, &rec.Solutions, &rec.Verifications, &rec.Contributors)
	if err != nil {
		return nil, fmt.Errorf("failed to read stats: %w", err)
	}
	return rec, nil
}
