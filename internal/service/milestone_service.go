package service

import (
	"context"

	"github.com/contentkit/studio/internal/model"
	"github.com/contentkit/studio/internal/session"
)

type AnalyticsBackend interface {
	GetSummary(ctx context.Context, period string) (*model.AnalyticsSummary, error)
}

// MilestoneService reports milestones reached since the user last looked.
type MilestoneService struct {
	backend AnalyticsBackend
	session *session.Session
}

func NewMilestoneService(backend AnalyticsBackend, sess *session.Session) *MilestoneService {
	return &MilestoneService{backend: backend, session: sess}
}

// Check returns the milestones reached since the stored count and records
// the new count. The first call after a reset of the backend count
// returns nothing.
func (s *MilestoneService) Check(ctx context.Context, period string) ([]model.Milestone, error) {
	summary, err := s.backend.GetSummary(ctx, period)
	if err != nil {
		return nil, err
	}
	last, err := s.session.LastSeenMilestones(ctx)
	if err != nil {
		return nil, err
	}

	reached := summary.MilestonesReached
	if reached == last {
		return nil, nil
	}
	if err := s.session.SetLastSeenMilestones(ctx, reached); err != nil {
		return nil, err
	}
	if reached < last {
		return nil, nil
	}

	fresh := reached - last
	ms := summary.Milestones
	if fresh > len(ms) {
		fresh = len(ms)
	}
	return ms[len(ms)-fresh:], nil
}
