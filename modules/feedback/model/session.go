package model

import "time"

// SessionStatus is the lifecycle state of a feedback session.
type SessionStatus string

const (
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
	StatusAbandoned  SessionStatus = "abandoned"
)

// QuestionCategory orders the three structured questions.
type QuestionCategory string

const (
	CategoryTechnical QuestionCategory = "technical"
	CategoryBusiness  QuestionCategory = "business"
	CategoryAction    QuestionCategory = "action"
)

// QuestionCount is the fixed number of questions per session.
const QuestionCount = 3

// AbandonAfter is the inactivity window after which an in-progress session
// is considered abandoned.
const AbandonAfter = 24 * time.Hour

// Question is one structured question of a session.
type Question struct {
	ID          string           `json:"id"`
	Text        string           `json:"text"`
	Category    QuestionCategory `json:"category"`
	Placeholder string           `json:"placeholder,omitempty"`
}

// ChatTurn is one turn of the session transcript. History is append-only.
type ChatTurn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedbackSession is a resumable three-question feedback conversation.
type FeedbackSession struct {
	ID                 string
	MeetingID          string
	UserID             string
	StartupID          *int64
	StartupName        string
	StartupDescription string
	Questions          []Question
	Answers            map[string]string
	CurrentIndex       int
	Status             SessionStatus
	History            []ChatTurn
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CurrentQuestion returns the question awaiting an answer, or nil when the
// session is complete.
func (s *FeedbackSession) CurrentQuestion() *Question {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return nil
	}
	return &s.Questions[s.CurrentIndex]
}

// Expired reports whether the session passed its inactivity window at the
// given instant.
func (s *FeedbackSession) Expired(now time.Time) bool {
	return s.Status == StatusInProgress && now.Sub(s.UpdatedAt) > AbandonAfter
}

// SessionDTO is the JSON shape of a session.
type SessionDTO struct {
	ID              string            `json:"id"`
	MeetingID       string            `json:"meeting_id"`
	UserID          string            `json:"user_id"`
	StartupID       *int64            `json:"startup_id,omitempty"`
	StartupName     string            `json:"startup_name"`
	Questions       []Question        `json:"questions"`
	Answers         map[string]string `json:"answers"`
	CurrentIndex    int               `json:"current_index"`
	CurrentQuestion *Question         `json:"current_question,omitempty"`
	Status          SessionStatus     `json:"status"`
	History         []ChatTurn        `json:"history"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// ToDTO converts FeedbackSession to SessionDTO
func (s *FeedbackSession) ToDTO() *SessionDTO {
	return &SessionDTO{
		ID:              s.ID,
		MeetingID:       s.MeetingID,
		UserID:          s.UserID,
		StartupID:       s.StartupID,
		StartupName:     s.StartupName,
		Questions:       s.Questions,
		Answers:         s.Answers,
		CurrentIndex:    s.CurrentIndex,
		CurrentQuestion: s.CurrentQuestion(),
		Status:          s.Status,
		History:         s.History,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}
