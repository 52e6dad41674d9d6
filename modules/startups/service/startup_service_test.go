package service

import (
	"context"
	"testing"

	"github.com/andreypavlenko/scout/internal/platform/logger"
	"github.com/andreypavlenko/scout/modules/startups/model"
	"github.com/andreypavlenko/scout/modules/startups/taxonomy"
	votesModel "github.com/andreypavlenko/scout/modules/votes/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockVoteRepository implements the votes ports.VoteRepository interface
type MockVoteRepository struct {
	VotesOfFunc      func(ctx context.Context, userID string) ([]*votesModel.Vote, error)
	SeenStartupsFunc func(ctx context.Context, userID string) (map[int64]struct{}, error)
}

func (m *MockVoteRepository) RecordVote(ctx context.Context, vote *votesModel.Vote) error { return nil }

func (m *MockVoteRepository) VotesOf(ctx context.Context, userID string) ([]*votesModel.Vote, error) {
	if m.VotesOfFunc != nil {
		return m.VotesOfFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockVoteRepository) SeenStartups(ctx context.Context, userID string) (map[int64]struct{}, error) {
	if m.SeenStartupsFunc != nil {
		return m.SeenStartupsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockVoteRepository) RecordRating(ctx context.Context, rating *votesModel.Rating) error {
	return nil
}

func (m *MockVoteRepository) RatingsOf(ctx context.Context, userID string) ([]*votesModel.Rating, error) {
	return nil, nil
}

func newTestService(t *testing.T, votes *MockVoteRepository, startups []*model.Startup) *StartupService {
	t.Helper()
	log, err := logger.New("error", "json")
	require.NoError(t, err)

	if votes == nil {
		votes = &MockVoteRepository{}
	}
	svc := NewStartupService(nil, votes, taxonomy.Default(), nil, log)
	svc.ReplaceSnapshot(startups)
	return svc
}

func TestStartupService_GetStartup(t *testing.T) {
	svc := newTestService(t, nil, []*model.Startup{
		{ID: 1, Name: "Hookle", Description: "marketing automation"},
	})

	t.Run("returns startup", func(t *testing.T) {
		s, err := svc.GetStartup(1)
		require.NoError(t, err)
		assert.Equal(t, "Hookle", s.Name)
	})

	t.Run("returns not found", func(t *testing.T) {
		_, err := svc.GetStartup(42)
		assert.Equal(t, model.ErrStartupNotFound, err)
	})
}

func TestStartupService_GetStartupByName(t *testing.T) {
	svc := newTestService(t, nil, []*model.Startup{
		{ID: 1, Name: "Hookle"},
		{ID: 2, Name: "Hook"},
	})

	t.Run("prefers exact match", func(t *testing.T) {
		s, err := svc.GetStartupByName("hook")
		require.NoError(t, err)
		assert.Equal(t, int64(2), s.ID)
	})

	t.Run("falls back to substring match", func(t *testing.T) {
		s, err := svc.GetStartupByName("ookl")
		require.NoError(t, err)
		assert.Equal(t, int64(1), s.ID)
	})

	t.Run("returns not found", func(t *testing.T) {
		_, err := svc.GetStartupByName("absent")
		assert.Equal(t, model.ErrStartupNotFound, err)
	})
}

func TestStartupService_Insights(t *testing.T) {
	svc := newTestService(t, nil, []*model.Startup{
		{ID: 1, Name: "AgentHub", Description: "agent orchestration platform", Stage: model.StageSeed},
	})

	insights, err := svc.Insights(1)

	require.NoError(t, err)
	assert.Equal(t, []string{"AgenticPlatformEnabler"}, insights.Categories)
	assert.Equal(t, 1, insights.Tier)
	assert.Equal(t, 100, insights.BaseScore)
}

func TestStartupService_BatchInsights(t *testing.T) {
	svc := newTestService(t, nil, []*model.Startup{
		{ID: 1, Name: "A", Description: "insurance"},
		{ID: 2, Name: "B", Description: "devops tooling"},
	})

	t.Run("accepts string and numeric ids, skips unknown", func(t *testing.T) {
		insights := svc.BatchInsights([]any{"1", float64(2), "999", "junk"})
		require.Len(t, insights, 2)
		assert.Equal(t, int64(1), insights[0].StartupID)
		assert.Equal(t, int64(2), insights[1].StartupID)
	})
}

func TestStartupService_Prioritize(t *testing.T) {
	corpus := []*model.Startup{
		{ID: 1, Name: "MarketingCo", Description: "marketing automation", Stage: model.StageSeed},
		{ID: 2, Name: "InsureCo", Description: "insurance claims", Stage: model.StageSeriesB},
		{ID: 3, Name: "AgentHub", Description: "agent orchestration platform", Stage: model.StageSeed},
	}

	t.Run("anonymous request is not personalized", func(t *testing.T) {
		svc := newTestService(t, nil, corpus)

		result := svc.Prioritize(context.Background(), "", 10, 30)

		assert.False(t, result.Personalized)
		assert.Equal(t, 3, result.Total)
		assert.Len(t, result.Startups, 3)
	})

	t.Run("votes mark the result personalized", func(t *testing.T) {
		votes := &MockVoteRepository{
			VotesOfFunc: func(ctx context.Context, userID string) ([]*votesModel.Vote, error) {
				return []*votesModel.Vote{
					{UserID: userID, StartupID: 1, Interested: true},
				}, nil
			},
			SeenStartupsFunc: func(ctx context.Context, userID string) (map[int64]struct{}, error) {
				return map[int64]struct{}{1: {}}, nil
			},
		}
		svc := newTestService(t, votes, corpus)

		result := svc.Prioritize(context.Background(), "user-1", 10, 30)

		assert.True(t, result.Personalized)
	})

	t.Run("empty snapshot yields empty result", func(t *testing.T) {
		svc := newTestService(t, nil, nil)

		result := svc.Prioritize(context.Background(), "user-1", 10, 30)

		assert.Empty(t, result.Startups)
		assert.False(t, result.Personalized)
	})
}

func TestStartupService_EnrichmentStats(t *testing.T) {
	svc := newTestService(t, nil, []*model.Startup{
		{ID: 1, Name: "A", Enrichment: map[string]any{"emails": []any{"a@a.com"}}},
		{ID: 2, Name: "B"},
		{ID: 3, Name: "C", Enrichment: map[string]any{"emails": []any{"c@c.com"}, "phones": []any{"123"}}},
	})

	stats := svc.EnrichmentStats()

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.WithData)
	assert.InDelta(t, 66.7, stats.CoveragePct, 0.1)
	assert.Equal(t, 2, stats.ByType["emails"])
	assert.Equal(t, 1, stats.ByType["phones"])
}

func TestStartupService_Enrichment(t *testing.T) {
	svc := newTestService(t, nil, []*model.Startup{
		{ID: 1, Name: "A", Enrichment: map[string]any{"emails": []any{"a@a.com"}}},
		{ID: 2, Name: "B"},
	})

	t.Run("returns enrichment", func(t *testing.T) {
		enrichment, err := svc.Enrichment(1)
		require.NoError(t, err)
		assert.Contains(t, enrichment, "emails")
	})

	t.Run("not found without data", func(t *testing.T) {
		_, err := svc.Enrichment(2)
		assert.Equal(t, model.ErrEnrichmentNotFound, err)
	})
}
