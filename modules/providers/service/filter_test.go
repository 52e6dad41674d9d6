package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andreypavlenko/scout/internal/platform/cache"
	"github.com/andreypavlenko/scout/internal/platform/llm"
	"github.com/andreypavlenko/scout/internal/platform/logger"
	"github.com/andreypavlenko/scout/modules/providers/model"
	"github.com/andreypavlenko/scout/modules/startups/taxonomy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockGateway implements the completer interface
type mockGateway struct {
	calls        atomic.Int64
	breakerState string
	CompleteFunc func(ctx context.Context, req *llm.Request) (*llm.Response, error)
}

func (m *mockGateway) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	m.calls.Add(1)
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return &llm.Response{Content: "DECISION: VIABLE\nCONFIDENCE: 90\nREASON: solid b2b vendor"}, nil
}

func (m *mockGateway) DefaultModel() string { return "test-model" }

func (m *mockGateway) BreakerState() string {
	if m.breakerState == "" {
		return llm.StateClosed
	}
	return m.breakerState
}

func newTestFilter(t *testing.T, gateway *mockGateway) *ProviderFilter {
	t.Helper()
	log, err := logger.New("error", "json")
	require.NoError(t, err)

	assessments := cache.NewLRU[model.Decision](100, time.Hour, time.Hour)
	t.Cleanup(assessments.Close)

	scorer := NewScorer(taxonomy.Default())
	return NewProviderFilter(gateway, assessments, scorer, 3, log)
}

func TestProviderFilter_HardExclusion(t *testing.T) {
	// A dating app is rejected locally: the gateway must see zero requests.
	gateway := &mockGateway{}
	f := newTestFilter(t, gateway)

	result := f.Filter(context.Background(), []*model.Candidate{
		{Name: "DatingApp Inc", Description: "dating app for singles"},
	})

	require.Len(t, result.Rejected, 1)
	assert.Empty(t, result.Accepted)
	assert.Equal(t, model.ReasonHardExcluded, result.Rejected[0].Reason.Kind)
	assert.Equal(t, "dating app", result.Rejected[0].Reason.Detail)
	assert.Equal(t, int64(0), gateway.calls.Load())
}

func TestProviderFilter_KeywordGate(t *testing.T) {
	gateway := &mockGateway{}
	f := newTestFilter(t, gateway)

	result := f.Filter(context.Background(), []*model.Candidate{
		{Name: "ClaimsFlow", Description: "enterprise saas for claims teams"},
	})

	require.Len(t, result.Accepted, 1)
	assert.Equal(t, "keyword_gate", result.Accepted[0].Via)
	assert.Equal(t, int64(0), gateway.calls.Load())
}

func TestProviderFilter_LLMAssessment(t *testing.T) {
	t.Run("accepts confident viable", func(t *testing.T) {
		gateway := &mockGateway{}
		f := newTestFilter(t, gateway)

		result := f.Filter(context.Background(), []*model.Candidate{
			{Name: "QuietCo", Description: "we make things for companies"},
		})

		require.Len(t, result.Accepted, 1)
		assert.Equal(t, "llm_assessment", result.Accepted[0].Via)
		assert.Equal(t, int64(1), gateway.calls.Load())
	})

	t.Run("rejects confident not viable", func(t *testing.T) {
		gateway := &mockGateway{
			CompleteFunc: func(ctx context.Context, req *llm.Request) (*llm.Response, error) {
				return &llm.Response{Content: "DECISION: NOT_VIABLE\nCONFIDENCE: 95\nREASON: consumer product"}, nil
			},
		}
		f := newTestFilter(t, gateway)

		result := f.Filter(context.Background(), []*model.Candidate{
			{Name: "QuietCo", Description: "we make things"},
		})

		require.Len(t, result.Rejected, 1)
		assert.Equal(t, model.ReasonNotViable, result.Rejected[0].Reason.Kind)
	})

	t.Run("rejects low confidence conservatively", func(t *testing.T) {
		gateway := &mockGateway{
			CompleteFunc: func(ctx context.Context, req *llm.Request) (*llm.Response, error) {
				return &llm.Response{Content: "DECISION: VIABLE\nCONFIDENCE: 55\nREASON: unclear"}, nil
			},
		}
		f := newTestFilter(t, gateway)

		result := f.Filter(context.Background(), []*model.Candidate{
			{Name: "QuietCo", Description: "we make things"},
		})

		require.Len(t, result.Rejected, 1)
		assert.Equal(t, model.ReasonLowConfidence, result.Rejected[0].Reason.Kind)
		assert.Equal(t, "55", result.Rejected[0].Reason.Detail)
	})

	t.Run("rejects as unavailable on gateway error", func(t *testing.T) {
		gateway := &mockGateway{
			CompleteFunc: func(ctx context.Context, req *llm.Request) (*llm.Response, error) {
				return nil, llm.ErrRateLimited
			},
		}
		f := newTestFilter(t, gateway)

		result := f.Filter(context.Background(), []*model.Candidate{
			{Name: "QuietCo", Description: "we make things"},
		})

		require.Len(t, result.Rejected, 1)
		assert.Equal(t, model.ReasonUnavailable, result.Rejected[0].Reason.Kind)
	})
}

func TestProviderFilter_OpenCircuitSkipsAssessment(t *testing.T) {
	gateway := &mockGateway{breakerState: llm.StateOpen}
	f := newTestFilter(t, gateway)

	result := f.Filter(context.Background(), []*model.Candidate{
		{Name: "QuietCo", Description: "we make things"},
	})

	require.Len(t, result.Rejected, 1)
	assert.Equal(t, model.ReasonUnavailable, result.Rejected[0].Reason.Kind)
	assert.Equal(t, int64(0), gateway.calls.Load())
}

func TestProviderFilter_CachesAssessments(t *testing.T) {
	gateway := &mockGateway{}
	f := newTestFilter(t, gateway)
	cand := &model.Candidate{Name: "QuietCo", Description: "we make things"}

	f.Filter(context.Background(), []*model.Candidate{cand})
	f.Filter(context.Background(), []*model.Candidate{cand})

	assert.Equal(t, int64(1), gateway.calls.Load())
}

func TestProviderFilter_Partition(t *testing.T) {
	// accepted ∪ rejected = candidates, disjoint, input order preserved.
	gateway := &mockGateway{}
	f := newTestFilter(t, gateway)

	candidates := []*model.Candidate{
		{Name: "A", Description: "enterprise saas"},
		{Name: "B", Description: "dating app"},
		{Name: "C", Description: "b2b integration tooling"},
		{Name: "D", Description: "we make things"},
	}

	result := f.Filter(context.Background(), candidates)

	assert.Len(t, result.Accepted, 3)
	assert.Len(t, result.Rejected, 1)
	assert.False(t, result.Partial)

	assert.Equal(t, "A", result.Accepted[0].Candidate.Name)
	assert.Equal(t, "C", result.Accepted[1].Candidate.Name)
	assert.Equal(t, "D", result.Accepted[2].Candidate.Name)
	assert.Equal(t, "B", result.Rejected[0].Candidate.Name)
}

func TestProviderFilter_CancellationYieldsPartialResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gateway := &mockGateway{
		CompleteFunc: func(ctx context.Context, req *llm.Request) (*llm.Response, error) {
			cancel()
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	f := newTestFilter(t, gateway)

	var candidates []*model.Candidate
	for i := 0; i < 10; i++ {
		candidates = append(candidates, &model.Candidate{
			Name:        fmt.Sprintf("Cand-%d", i),
			Description: "we make things",
		})
	}

	result := f.Filter(ctx, candidates)

	assert.True(t, result.Partial)
	assert.NotEmpty(t, result.Pending)
	total := len(result.Accepted) + len(result.Rejected) + len(result.Pending)
	assert.Equal(t, len(candidates), total)
}

func TestParseDecision(t *testing.T) {
	t.Run("parses full response", func(t *testing.T) {
		d, err := parseDecision("DECISION: VIABLE\nCONFIDENCE: 85\nREASON: strong enterprise focus")
		require.NoError(t, err)
		assert.Equal(t, model.DecisionViable, d.Kind)
		assert.Equal(t, 85, d.Confidence)
		assert.Equal(t, "strong enterprise focus", d.Reason)
	})

	t.Run("parses not viable", func(t *testing.T) {
		d, err := parseDecision("DECISION: NOT_VIABLE\nCONFIDENCE: 72\nREASON: consumer app")
		require.NoError(t, err)
		assert.Equal(t, model.DecisionNotViable, d.Kind)
	})

	t.Run("clamps confidence", func(t *testing.T) {
		d, err := parseDecision("DECISION: VIABLE\nCONFIDENCE: 150\nREASON: x")
		require.NoError(t, err)
		assert.Equal(t, 100, d.Confidence)
	})

	t.Run("errors without decision line", func(t *testing.T) {
		_, err := parseDecision("I think this company is great")
		assert.Error(t, err)
	})
}

func TestErrorDetail(t *testing.T) {
	assert.Equal(t, "circuit open", errorDetail(llm.ErrCircuitOpen))
	assert.Equal(t, "rate limited", errorDetail(llm.ErrRateLimited))
	assert.Equal(t, "assessment failed", errorDetail(errors.New("boom")))
}
