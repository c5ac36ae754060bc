package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentkit/studio/internal/model"
	"github.com/contentkit/studio/internal/session"
)

type staticSuggestions []model.Suggestion

func (s staticSuggestions) ListSuggestions(context.Context) ([]model.Suggestion, error) {
	return append([]model.Suggestion(nil), s...), nil
}

func TestSuggestionService_HidesDismissed(t *testing.T) {
	ctx := context.Background()
	sess := session.New(session.NewMemoryStore())
	svc := NewSuggestionService(staticSuggestions{{ID: "s1"}, {ID: "s2"}, {ID: "s3"}}, sess)

	require.NoError(t, svc.Dismiss(ctx, "s2"))
	got, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "s1", got[0].ID)
	assert.Equal(t, "s3", got[1].ID)
}

type summaryFunc func() *model.AnalyticsSummary

func (f summaryFunc) GetSummary(context.Context, string) (*model.AnalyticsSummary, error) {
	return f(), nil
}

func TestMilestoneService_Check(t *testing.T) {
	ctx := context.Background()
	sess := session.New(session.NewMemoryStore())
	now := time.Now()
	summary := &model.AnalyticsSummary{
		MilestonesReached: 2,
		Milestones: []model.Milestone{
			{ID: "m1", Name: "First kit", ReachedAt: now.Add(-time.Hour)},
			{ID: "m2", Name: "Ten posts", ReachedAt: now},
		},
	}
	svc := NewMilestoneService(summaryFunc(func() *model.AnalyticsSummary { return summary }), sess)

	fresh, err := svc.Check(ctx, "30d")
	require.NoError(t, err)
	assert.Len(t, fresh, 2)

	fresh, err = svc.Check(ctx, "30d")
	require.NoError(t, err)
	assert.Empty(t, fresh)

	summary.MilestonesReached = 3
	summary.Milestones = append(summary.Milestones, model.Milestone{ID: "m3", Name: "Hundred likes"})
	fresh, err = svc.Check(ctx, "30d")
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, "m3", fresh[0].ID)

	n, err := sess.LastSeenMilestones(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
