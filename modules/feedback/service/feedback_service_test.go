package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/andreypavlenko/scout/internal/platform/logger"
	"github.com/andreypavlenko/scout/modules/feedback/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memorySessionRepo implements ports.SessionRepository in memory
type memorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.FeedbackSession
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{sessions: make(map[string]*model.FeedbackSession)}
}

func (r *memorySessionRepo) Create(ctx context.Context, session *model.FeedbackSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session.ID = uuid.New().String()
	session.CreatedAt = time.Now().UTC()
	session.UpdatedAt = session.CreatedAt
	clone := *session
	r.sessions[session.ID] = &clone
	return nil
}

func (r *memorySessionRepo) GetByID(ctx context.Context, id string) (*model.FeedbackSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	clone := *session
	return &clone, nil
}

func (r *memorySessionRepo) GetLatestByMeeting(ctx context.Context, meetingID string) (*model.FeedbackSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *model.FeedbackSession
	for _, session := range r.sessions {
		if session.MeetingID != meetingID {
			continue
		}
		if latest == nil || session.CreatedAt.After(latest.CreatedAt) {
			latest = session
		}
	}
	if latest == nil {
		return nil, model.ErrSessionNotFound
	}
	clone := *latest
	return &clone, nil
}

func (r *memorySessionRepo) Update(ctx context.Context, session *model.FeedbackSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.ID]; !ok {
		return model.ErrSessionNotFound
	}
	session.UpdatedAt = time.Now().UTC()
	clone := *session
	r.sessions[session.ID] = &clone
	return nil
}

// memoryInsightRepo implements ports.InsightRepository in memory
type memoryInsightRepo struct {
	mu       sync.Mutex
	insights map[string]*model.Insight
}

func newMemoryInsightRepo() *memoryInsightRepo {
	return &memoryInsightRepo{insights: make(map[string]*model.Insight)}
}

func (r *memoryInsightRepo) Create(ctx context.Context, insight *model.Insight) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	insight.ID = uuid.New().String()
	insight.CreatedAt = time.Now().UTC()
	insight.UpdatedAt = insight.CreatedAt
	clone := *insight
	r.insights[insight.ID] = &clone
	return nil
}

func (r *memoryInsightRepo) GetByID(ctx context.Context, id string) (*model.Insight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	insight, ok := r.insights[id]
	if !ok {
		return nil, model.ErrInsightNotFound
	}
	clone := *insight
	return &clone, nil
}

func (r *memoryInsightRepo) GetBySession(ctx context.Context, sessionID string) (*model.Insight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, insight := range r.insights {
		if insight.SessionID == sessionID {
			clone := *insight
			return &clone, nil
		}
	}
	return nil, model.ErrInsightNotFound
}

func (r *memoryInsightRepo) Update(ctx context.Context, insight *model.Insight) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.insights[insight.ID]; !ok {
		return model.ErrInsightNotFound
	}
	insight.UpdatedAt = time.Now().UTC()
	clone := *insight
	r.insights[insight.ID] = &clone
	return nil
}

func newTestFeedbackService(t *testing.T) (*FeedbackService, *memorySessionRepo, *memoryInsightRepo) {
	t.Helper()
	log, err := logger.New("error", "json")
	require.NoError(t, err)

	sessions := newMemorySessionRepo()
	insights := newMemoryInsightRepo()
	// No gateway: question generation uses the deterministic templates.
	svc := NewFeedbackService(sessions, insights, nil, nil, log)
	return svc, sessions, insights
}

func startSession(t *testing.T, svc *FeedbackService) *model.SessionDTO {
	t.Helper()
	session, err := svc.Start(context.Background(), &model.StartRequest{
		MeetingID:          "m1",
		UserID:             "u1",
		StartupName:        "Hookle",
		StartupDescription: "AI marketing automation",
	})
	require.NoError(t, err)
	return session
}

func TestFeedbackService_Start(t *testing.T) {
	t.Run("opens session with three ordered questions", func(t *testing.T) {
		svc, _, _ := newTestFeedbackService(t)

		session := startSession(t, svc)

		require.Len(t, session.Questions, 3)
		assert.Equal(t, model.CategoryTechnical, session.Questions[0].Category)
		assert.Equal(t, model.CategoryBusiness, session.Questions[1].Category)
		assert.Equal(t, model.CategoryAction, session.Questions[2].Category)
		assert.Equal(t, model.StatusInProgress, session.Status)
		assert.Equal(t, 0, session.CurrentIndex)
		assert.Empty(t, session.Answers)
		require.Len(t, session.History, 1)
		assert.Equal(t, "assistant", session.History[0].Role)
	})

	t.Run("validates required fields", func(t *testing.T) {
		svc, _, _ := newTestFeedbackService(t)
		ctx := context.Background()

		_, err := svc.Start(ctx, &model.StartRequest{UserID: "u1", StartupName: "X"})
		assert.Equal(t, model.ErrMeetingIDRequired, err)

		_, err = svc.Start(ctx, &model.StartRequest{MeetingID: "m1", StartupName: "X"})
		assert.Equal(t, model.ErrUserIDRequired, err)

		_, err = svc.Start(ctx, &model.StartRequest{MeetingID: "m1", UserID: "u1"})
		assert.Equal(t, model.ErrStartupNameRequired, err)
	})
}

func TestFeedbackService_FullRoundTrip(t *testing.T) {
	// Start, three replies, Completed; the insight carries the exact
	// submitted answers and the session invariants hold along the way.
	svc, _, _ := newTestFeedbackService(t)
	ctx := context.Background()

	session := startSession(t, svc)
	replies := []string{"Multi-platform automation", "60% workload reduction", "Schedule demo"}

	var final *model.ChatResponse
	for i, reply := range replies {
		resp, err := svc.Chat(ctx, &model.ChatRequest{SessionID: session.ID, Message: reply})
		require.NoError(t, err)

		assert.Equal(t, i+1, resp.Session.CurrentIndex)
		assert.Len(t, resp.Session.Answers, resp.Session.CurrentIndex)
		final = resp
	}

	require.Equal(t, model.StatusCompleted, final.Session.Status)
	assert.Equal(t, 3, final.Session.CurrentIndex)
	require.NotNil(t, final.Insight)
	require.Len(t, final.Insight.StructuredQA, 3)
	assert.Equal(t, "Multi-platform automation", final.Insight.StructuredQA[0].Answer)
	assert.Equal(t, "Schedule demo", final.Insight.StructuredQA[2].Answer)

	// Resumable read returns the completed state.
	got, err := svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)

	// A fourth reply is rejected.
	_, err = svc.Chat(ctx, &model.ChatRequest{SessionID: session.ID, Message: "more"})
	assert.Equal(t, model.ErrSessionNotActive, err)
}

func TestFeedbackService_Chat(t *testing.T) {
	t.Run("rejects empty message", func(t *testing.T) {
		svc, _, _ := newTestFeedbackService(t)
		session := startSession(t, svc)

		_, err := svc.Chat(context.Background(), &model.ChatRequest{SessionID: session.ID, Message: "  "})
		assert.Equal(t, model.ErrMessageRequired, err)
	})

	t.Run("unknown session", func(t *testing.T) {
		svc, _, _ := newTestFeedbackService(t)

		_, err := svc.Chat(context.Background(), &model.ChatRequest{SessionID: "missing", Message: "hi"})
		assert.Equal(t, model.ErrSessionNotFound, err)
	})

	t.Run("abandons session after a day of inactivity", func(t *testing.T) {
		svc, sessions, _ := newTestFeedbackService(t)
		session := startSession(t, svc)

		svc.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

		_, err := svc.Chat(context.Background(), &model.ChatRequest{SessionID: session.ID, Message: "late"})
		assert.Equal(t, model.ErrSessionNotActive, err)

		stored, err := sessions.GetByID(context.Background(), session.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusAbandoned, stored.Status)
	})
}

func TestFeedbackService_Preview(t *testing.T) {
	svc, _, _ := newTestFeedbackService(t)
	ctx := context.Background()

	session := startSession(t, svc)

	t.Run("returns in-progress session without insight", func(t *testing.T) {
		got, insight, err := svc.Preview(ctx, "m1")
		require.NoError(t, err)
		assert.Equal(t, session.ID, got.ID)
		assert.Nil(t, insight)
	})

	t.Run("returns insight after completion", func(t *testing.T) {
		for _, reply := range []string{"a", "b", "c"} {
			_, err := svc.Chat(ctx, &model.ChatRequest{SessionID: session.ID, Message: reply})
			require.NoError(t, err)
		}

		_, insight, err := svc.Preview(ctx, "m1")
		require.NoError(t, err)
		require.NotNil(t, insight)
		assert.Len(t, insight.StructuredQA, 3)
	})

	t.Run("unknown meeting", func(t *testing.T) {
		_, _, err := svc.Preview(ctx, "nope")
		assert.Equal(t, model.ErrSessionNotFound, err)
	})
}

func TestFeedbackService_EditInsight(t *testing.T) {
	svc, sessions, _ := newTestFeedbackService(t)
	ctx := context.Background()

	session := startSession(t, svc)
	var insightID string
	for _, reply := range []string{"a", "b", "c"} {
		resp, err := svc.Chat(ctx, &model.ChatRequest{SessionID: session.ID, Message: reply})
		require.NoError(t, err)
		if resp.Insight != nil {
			insightID = resp.Insight.ID
		}
	}
	require.NotEmpty(t, insightID)

	stored, err := sessions.GetByID(ctx, session.ID)
	require.NoError(t, err)
	historyLen := len(stored.History)

	t.Run("replaces structured qa and preserves history", func(t *testing.T) {
		qa := []model.QA{
			{QuestionID: "q1", Question: "Tech?", Category: model.CategoryTechnical, Answer: "edited tech"},
			{QuestionID: "q2", Question: "Business?", Category: model.CategoryBusiness, Answer: "edited biz"},
			{QuestionID: "q3", Question: "Action?", Category: model.CategoryAction, Answer: "edited action"},
		}

		edited, err := svc.EditInsight(ctx, insightID, &model.EditInsightRequest{StructuredQA: qa})
		require.NoError(t, err)
		assert.Equal(t, "edited action", edited.StructuredQA[2].Answer)

		after, err := sessions.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Len(t, after.History, historyLen)
	})

	t.Run("rejects wrong shape", func(t *testing.T) {
		_, err := svc.EditInsight(ctx, insightID, &model.EditInsightRequest{
			StructuredQA: []model.QA{{Question: "only one", Answer: "x"}},
		})
		assert.Equal(t, model.ErrInvalidQA, err)
	})

	t.Run("unknown insight", func(t *testing.T) {
		_, err := svc.EditInsight(ctx, "missing", &model.EditInsightRequest{
			StructuredQA: []model.QA{
				{Question: "a", Answer: "1"}, {Question: "b", Answer: "2"}, {Question: "c", Answer: "3"},
			},
		})
		assert.Equal(t, model.ErrInsightNotFound, err)
	})
}
