package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/andreypavlenko/scout/internal/platform/llm"
	"github.com/andreypavlenko/scout/internal/platform/logger"
	"github.com/andreypavlenko/scout/modules/feedback/model"
	"github.com/andreypavlenko/scout/modules/feedback/ports"
	"go.uber.org/zap"
)

// completer is the slice of the LLM gateway used for question generation.
type completer interface {
	Complete(ctx context.Context, req *llm.Request) (*llm.Response, error)
	Available() bool
}

// Mailer sends the recap email after a completed session. Optional.
type Mailer interface {
	SendInsightRecap(ctx context.Context, userID string, insight *model.Insight) error
}

// FeedbackService drives the three-question feedback state machine. A
// per-session lock serializes replies against edits; all state lives in the
// repository so any replica can resume a session.
type FeedbackService struct {
	sessions ports.SessionRepository
	insights ports.InsightRepository
	gateway  completer
	mailer   Mailer
	log      *logger.Logger
	now      func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFeedbackService creates a new feedback service. gateway and mailer are
// optional.
func NewFeedbackService(
	sessions ports.SessionRepository,
	insights ports.InsightRepository,
	gateway completer,
	mailer Mailer,
	log *logger.Logger,
) *FeedbackService {
	return &FeedbackService{
		sessions: sessions,
		insights: insights,
		gateway:  gateway,
		mailer:   mailer,
		log:      log,
		now:      time.Now,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Start opens a session: three questions are generated and the first one is
// asked.
func (s *FeedbackService) Start(ctx context.Context, req *model.StartRequest) (*model.SessionDTO, error) {
	if strings.TrimSpace(req.MeetingID) == "" {
		return nil, model.ErrMeetingIDRequired
	}
	if strings.TrimSpace(req.UserID) == "" {
		return nil, model.ErrUserIDRequired
	}
	if strings.TrimSpace(req.StartupName) == "" {
		return nil, model.ErrStartupNameRequired
	}

	questions := s.generateQuestions(ctx, req.StartupName, req.StartupDescription)

	now := s.now().UTC()
	session := &model.FeedbackSession{
		MeetingID:          strings.TrimSpace(req.MeetingID),
		UserID:             strings.TrimSpace(req.UserID),
		StartupID:          req.StartupID,
		StartupName:        strings.TrimSpace(req.StartupName),
		StartupDescription: req.StartupDescription,
		Questions:          questions,
		Answers:            make(map[string]string),
		CurrentIndex:       0,
		Status:             model.StatusInProgress,
		History: []model.ChatTurn{
			{
				Role:      "assistant",
				Content:   fmt.Sprintf("Let's capture your feedback on %s. %s", req.StartupName, questions[0].Text),
				CreatedAt: now,
			},
		},
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	return session.ToDTO(), nil
}

// Chat records the reply to the current question and advances the machine.
// The third reply completes the session and persists its insight.
func (s *FeedbackService) Chat(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return nil, model.ErrSessionNotFound
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, model.ErrMessageRequired
	}

	lock := s.lockFor(req.SessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.sessions.GetByID(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	if session.Expired(s.now()) {
		session.Status = model.StatusAbandoned
		if err := s.sessions.Update(ctx, session); err != nil {
			return nil, err
		}
		return nil, model.ErrSessionNotActive
	}
	if session.Status != model.StatusInProgress {
		return nil, model.ErrSessionNotActive
	}

	question := session.CurrentQuestion()
	if question == nil {
		return nil, model.ErrSessionNotActive
	}

	now := s.now().UTC()
	session.History = append(session.History, model.ChatTurn{
		Role:      "user",
		Content:   message,
		CreatedAt: now,
	})
	session.Answers[question.ID] = message
	session.CurrentIndex++

	var reply string
	var insightDTO *model.InsightDTO

	if session.CurrentIndex >= model.QuestionCount {
		session.Status = model.StatusCompleted
		reply = fmt.Sprintf("That's all three — your feedback on %s is saved. Thanks!", session.StartupName)

		insight, err := s.persistInsight(ctx, session)
		if err != nil {
			return nil, err
		}
		insightDTO = insight.ToDTO()
	} else {
		next := session.CurrentQuestion()
		reply = fmt.Sprintf("Noted. %s", next.Text)
	}

	session.History = append(session.History, model.ChatTurn{
		Role:      "assistant",
		Content:   reply,
		CreatedAt: now,
	})

	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, err
	}

	return &model.ChatResponse{
		Session: session.ToDTO(),
		Reply:   reply,
		Insight: insightDTO,
	}, nil
}

// GetSession returns the full session state for resumption.
func (s *FeedbackService) GetSession(ctx context.Context, id string) (*model.SessionDTO, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.Expired(s.now()) {
		session.Status = model.StatusAbandoned
		if err := s.sessions.Update(ctx, session); err != nil {
			return nil, err
		}
	}

	return session.ToDTO(), nil
}

// Preview returns the latest session of a meeting, with its insight when
// completed.
func (s *FeedbackService) Preview(ctx context.Context, meetingID string) (*model.SessionDTO, *model.InsightDTO, error) {
	session, err := s.sessions.GetLatestByMeeting(ctx, meetingID)
	if err != nil {
		return nil, nil, err
	}

	var insightDTO *model.InsightDTO
	if session.Status == model.StatusCompleted {
		if insight, err := s.insights.GetBySession(ctx, session.ID); err == nil {
			insightDTO = insight.ToDTO()
		}
	}

	return session.ToDTO(), insightDTO, nil
}

// EditInsight replaces the structured Q/A of a completed session's insight.
// The session history is append-only and stays untouched.
func (s *FeedbackService) EditInsight(ctx context.Context, insightID string, req *model.EditInsightRequest) (*model.InsightDTO, error) {
	if len(req.StructuredQA) != model.QuestionCount {
		return nil, model.ErrInvalidQA
	}
	for _, qa := range req.StructuredQA {
		if strings.TrimSpace(qa.Question) == "" || strings.TrimSpace(qa.Answer) == "" {
			return nil, model.ErrInvalidQA
		}
	}

	insight, err := s.insights.GetByID(ctx, insightID)
	if err != nil {
		return nil, err
	}

	lock := s.lockFor(insight.SessionID)
	lock.Lock()
	defer lock.Unlock()

	insight.StructuredQA = req.StructuredQA
	if err := s.insights.Update(ctx, insight); err != nil {
		return nil, err
	}

	return insight.ToDTO(), nil
}

// persistInsight serializes a completed session into its insight record and
// fires the optional recap email.
func (s *FeedbackService) persistInsight(ctx context.Context, session *model.FeedbackSession) (*model.Insight, error) {
	qa := make([]model.QA, 0, len(session.Questions))
	for _, question := range session.Questions {
		qa = append(qa, model.QA{
			QuestionID: question.ID,
			Question:   question.Text,
			Category:   question.Category,
			Answer:     session.Answers[question.ID],
		})
	}

	insight := &model.Insight{
		SessionID:    session.ID,
		MeetingID:    session.MeetingID,
		UserID:       session.UserID,
		StartupID:    session.StartupID,
		StartupName:  session.StartupName,
		StructuredQA: qa,
	}

	if err := s.insights.Create(ctx, insight); err != nil {
		return nil, err
	}

	if s.mailer != nil {
		if err := s.mailer.SendInsightRecap(ctx, session.UserID, insight); err != nil {
			s.log.Warn("failed to send insight recap",
				zap.String("session_id", session.ID),
				zap.Error(err),
			)
		}
	}

	return insight, nil
}

func (s *FeedbackService) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}
