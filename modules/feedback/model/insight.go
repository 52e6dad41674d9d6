package model

import "time"

// QA is one answered question inside an insight.
type QA struct {
	QuestionID string           `json:"question_id"`
	Question   string           `json:"question"`
	Category   QuestionCategory `json:"category"`
	Answer     string           `json:"answer"`
}

// Insight is the structured record a completed session serializes into.
// Edits replace StructuredQA; the session history stays untouched.
type Insight struct {
	ID           string
	SessionID    string
	MeetingID    string
	UserID       string
	StartupID    *int64
	StartupName  string
	StructuredQA []QA
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// InsightDTO is the JSON shape of an insight.
type InsightDTO struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	MeetingID    string    `json:"meeting_id"`
	UserID       string    `json:"user_id"`
	StartupID    *int64    `json:"startup_id,omitempty"`
	StartupName  string    `json:"startup_name"`
	StructuredQA []QA      `json:"structured_qa"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToDTO converts Insight to InsightDTO
func (i *Insight) ToDTO() *InsightDTO {
	return &InsightDTO{
		ID:           i.ID,
		SessionID:    i.SessionID,
		MeetingID:    i.MeetingID,
		UserID:       i.UserID,
		StartupID:    i.StartupID,
		StartupName:  i.StartupName,
		StructuredQA: i.StructuredQA,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}
