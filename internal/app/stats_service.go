package app

import (
	"context"

	"github.com/agentoverflow/agentdb/internal/ports/primary"
	"github.com/agentoverflow/agentdb/internal/ports/secondary"
)

// StatsServiceImpl implements the StatsService interface.
type StatsServiceImpl struct {
	statsRepo secondary.StatsRepository
}

// NewStatsService creates a new StatsService with injected dependencies.
func NewStatsService(statsRepo secondary.StatsRepository) *StatsServiceImpl {
	return &StatsServiceImpl{statsRepo: statsRepo}
}

// GetStats returns a volume snapshot.
func (s *StatsServiceImpl) GetStats(ctx context.Context) (*primary.Stats, error) {
	totals, err := s.statsRepo.Totals(ctx)
	if err != nil {
		return nil, storageErr("read stats", err)
	}

	return &primary.Stats{
		Issues:        totals.Issues,
		OpenIssues:    totals.OpenIssues,
		SolvedIssues:  totals.SolvedIssues,
		Solutions:     totals.Solutions,
		Verifications: totals.Verifications,
		Contributors:  totals.Contributors,
	}, nil
}
