package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/andreypavlenko/scout/internal/platform/llm"
	"github.com/andreypavlenko/scout/internal/platform/logger"
	"github.com/andreypavlenko/scout/modules/concierge/model"
	"github.com/andreypavlenko/scout/modules/concierge/tools"
	startupsModel "github.com/andreypavlenko/scout/modules/startups/model"
	startupsService "github.com/andreypavlenko/scout/modules/startups/service"
	"github.com/andreypavlenko/scout/modules/startups/taxonomy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockGateway scripts gateway turns for the tool loop.
type mockGateway struct {
	turns     []*llm.Response
	err       error
	requests  []*llm.Request
	available bool
}

func (m *mockGateway) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.turns) == 0 {
		return &llm.Response{Content: "no script left", FinishReason: "end_turn"}, nil
	}
	turn := m.turns[0]
	m.turns = m.turns[1:]
	return turn, nil
}

func (m *mockGateway) Available() bool { return m.available }

func toolCall(id, name, args string) llm.ToolCall {
	return llm.ToolCall{ID: id, Name: name, Input: json.RawMessage(args)}
}

func newTestOrchestrator(t *testing.T, gateway *mockGateway) *Orchestrator {
	t.Helper()
	log, err := logger.New("error", "json")
	require.NoError(t, err)

	corpus := startupsService.NewStartupService(nil, nil, taxonomy.Default(), nil, log)
	var startups []*startupsModel.Startup
	funding := 15.0
	for i := int64(1); i <= 3; i++ {
		startups = append(startups, &startupsModel.Startup{
			ID: i, Name: fmt.Sprintf("GermanAI-%d", i), PrimaryIndustry: "AI",
			Country: "Germany", TotalFundingUSDM: &funding,
		})
	}
	corpus.ReplaceSnapshot(startups)

	registry := tools.NewCorpusRegistry(corpus, time.Second)
	return NewOrchestrator(gateway, registry, nil, log)
}

func TestOrchestrator_ToolCallLoop(t *testing.T) {
	// "Find AI startups in Germany with over $10M funding" drives a
	// location search, then an industry search, then the final answer.
	gateway := &mockGateway{
		available: true,
		turns: []*llm.Response{
			{ToolCalls: []llm.ToolCall{toolCall("t1", "search_startups_by_location", `{"country": "Germany"}`)}, FinishReason: "tool_use"},
			{ToolCalls: []llm.ToolCall{toolCall("t2", "search_startups_by_industry", `{"industry": "AI"}`)}, FinishReason: "tool_use"},
			{Content: "Three German AI startups raised over $10M.", FinishReason: "end_turn"},
		},
	}
	o := newTestOrchestrator(t, gateway)

	resp, err := o.Answer(context.Background(), &model.AskRequest{
		Question: "Find AI startups in Germany with over $10M funding",
	})

	require.NoError(t, err)
	assert.Equal(t, "Three German AI startups raised over $10M.", resp.Answer)
	assert.Equal(t, model.IntentStartupInfo, resp.QuestionType)

	// Three gateway rounds, tool results fed back in order.
	require.Len(t, gateway.requests, 3)
	second := gateway.requests[1].Messages
	require.GreaterOrEqual(t, len(second), 3)
	assert.Equal(t, "t1", second[2].ToolResults[0].ToolCallID)
	third := gateway.requests[2].Messages
	assert.Equal(t, "t2", third[4].ToolResults[0].ToolCallID)
}

func TestOrchestrator_IterationBound(t *testing.T) {
	// A model that never stops calling tools is cut off after five rounds.
	var turns []*llm.Response
	for i := 0; i < 10; i++ {
		turns = append(turns, &llm.Response{
			ToolCalls:    []llm.ToolCall{toolCall(fmt.Sprintf("t%d", i), "get_top_startups_by_funding", `{}`)},
			FinishReason: "tool_use",
		})
	}
	gateway := &mockGateway{available: true, turns: turns}
	o := newTestOrchestrator(t, gateway)

	resp, err := o.Answer(context.Background(), &model.AskRequest{Question: "best funded startup?"})

	require.NoError(t, err)
	assert.Len(t, gateway.requests, 5)
	assert.NotEmpty(t, resp.Answer)
}

func TestOrchestrator_SchemaCorrectionRetry(t *testing.T) {
	t.Run("one correction round recovers", func(t *testing.T) {
		gateway := &mockGateway{
			available: true,
			turns: []*llm.Response{
				{ToolCalls: []llm.ToolCall{toolCall("t1", "search_startups_by_name", `{"wrong": true}`)}, FinishReason: "tool_use"},
				{ToolCalls: []llm.ToolCall{toolCall("t2", "search_startups_by_name", `{"query": "GermanAI"}`)}, FinishReason: "tool_use"},
				{Content: "Found them.", FinishReason: "end_turn"},
			},
		}
		o := newTestOrchestrator(t, gateway)

		resp, err := o.Answer(context.Background(), &model.AskRequest{Question: "find the startup GermanAI"})

		require.NoError(t, err)
		assert.Equal(t, "Found them.", resp.Answer)
	})

	t.Run("second violation surfaces internal error", func(t *testing.T) {
		gateway := &mockGateway{
			available: true,
			turns: []*llm.Response{
				{ToolCalls: []llm.ToolCall{toolCall("t1", "search_startups_by_name", `{"wrong": true}`)}, FinishReason: "tool_use"},
				{ToolCalls: []llm.ToolCall{toolCall("t2", "search_startups_by_name", `{"still_wrong": 1}`)}, FinishReason: "tool_use"},
			},
		}
		o := newTestOrchestrator(t, gateway)

		_, err := o.Answer(context.Background(), &model.AskRequest{Question: "find the startup GermanAI"})

		assert.ErrorIs(t, err, model.ErrInternal)
	})
}

func TestOrchestrator_UnknownToolContinuesLoop(t *testing.T) {
	gateway := &mockGateway{
		available: true,
		turns: []*llm.Response{
			{ToolCalls: []llm.ToolCall{toolCall("t1", "imaginary_tool", `{}`)}, FinishReason: "tool_use"},
			{Content: "Answered without it.", FinishReason: "end_turn"},
		},
	}
	o := newTestOrchestrator(t, gateway)

	resp, err := o.Answer(context.Background(), &model.AskRequest{Question: "anything about startups"})

	require.NoError(t, err)
	assert.Equal(t, "Answered without it.", resp.Answer)
}

func TestOrchestrator_GatewayErrorsAreClassified(t *testing.T) {
	t.Run("rate limit surfaces service busy", func(t *testing.T) {
		gateway := &mockGateway{available: true, err: llm.ErrRateLimited}
		o := newTestOrchestrator(t, gateway)

		_, err := o.Answer(context.Background(), &model.AskRequest{Question: "any startup news?"})
		assert.ErrorIs(t, err, model.ErrServiceBusy)
	})

	t.Run("open circuit surfaces service busy", func(t *testing.T) {
		gateway := &mockGateway{available: true, err: llm.ErrCircuitOpen}
		o := newTestOrchestrator(t, gateway)

		_, err := o.Answer(context.Background(), &model.AskRequest{Question: "any startup news?"})
		assert.ErrorIs(t, err, model.ErrServiceBusy)
	})

	t.Run("missing gateway surfaces unavailable", func(t *testing.T) {
		gateway := &mockGateway{available: false}
		o := newTestOrchestrator(t, gateway)

		_, err := o.Answer(context.Background(), &model.AskRequest{Question: "any startup news?"})
		assert.ErrorIs(t, err, model.ErrUnavailable)
	})
}

func TestOrchestrator_FeedbackIntentDelegates(t *testing.T) {
	o := newTestOrchestrator(t, &mockGateway{available: true})

	resp, err := o.Answer(context.Background(), &model.AskRequest{Question: "start meeting feedback for my last meeting"})

	require.NoError(t, err)
	assert.Equal(t, model.IntentFeedbackFlow, resp.QuestionType)
}

func TestOrchestrator_EmptyQuestion(t *testing.T) {
	o := newTestOrchestrator(t, &mockGateway{available: true})

	_, err := o.Answer(context.Background(), &model.AskRequest{Question: "  "})
	assert.ErrorIs(t, err, model.ErrQuestionRequired)
}

func TestClassifyIntent(t *testing.T) {
	cases := []struct {
		question string
		expected model.QuestionType
	}{
		{"Write a LinkedIn post about the keynote", model.IntentLinkedInPost},
		{"generate post for my meeting with Hookle", model.IntentLinkedInPost},
		{"start meeting feedback", model.IntentFeedbackFlow},
		{"directions to the main stage", model.IntentDirections},
		{"Which startup raised the most funding?", model.IntentStartupInfo},
		{"When is the AI keynote?", model.IntentEventInfo},
		{"hello there", model.IntentGeneral},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, ClassifyIntent(tc.question, nil), tc.question)
	}

	t.Run("hint breaks ties", func(t *testing.T) {
		intent := ClassifyIntent("hmm", &model.UserContext{Hint: "event_info"})
		assert.Equal(t, model.IntentEventInfo, intent)
	})

	t.Run("invalid hint falls back to general", func(t *testing.T) {
		intent := ClassifyIntent("hmm", &model.UserContext{Hint: "nonsense"})
		assert.Equal(t, model.IntentGeneral, intent)
	})
}
