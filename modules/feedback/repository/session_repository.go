package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/andreypavlenko/scout/modules/feedback/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository implements ports.SessionRepository
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

const sessionColumns = `
	id, meeting_id, user_id, startup_id, startup_name, startup_description,
	questions, answers, current_index, status, history, created_at, updated_at
`

// Create creates a new feedback session
func (r *SessionRepository) Create(ctx context.Context, session *model.FeedbackSession) error {
	query := `
		INSERT INTO feedback_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	session.ID = uuid.New().String()
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	questions, answers, history, err := encodeSessionJSON(session)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, query,
		session.ID,
		session.MeetingID,
		session.UserID,
		session.StartupID,
		session.StartupName,
		session.StartupDescription,
		questions,
		answers,
		session.CurrentIndex,
		string(session.Status),
		history,
		session.CreatedAt,
		session.UpdatedAt,
	)

	return err
}

// GetByID retrieves a session by ID
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*model.FeedbackSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM feedback_sessions WHERE id = $1`

	session, err := scanSession(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	return session, nil
}

// GetLatestByMeeting retrieves the most recent session for a meeting
func (r *SessionRepository) GetLatestByMeeting(ctx context.Context, meetingID string) (*model.FeedbackSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM feedback_sessions
		WHERE meeting_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	session, err := scanSession(r.pool.QueryRow(ctx, query, meetingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	return session, nil
}

// Update persists the full session state
func (r *SessionRepository) Update(ctx context.Context, session *model.FeedbackSession) error {
	query := `
		UPDATE feedback_sessions
		SET answers = $2, current_index = $3, status = $4, history = $5, updated_at = $6
		WHERE id = $1
	`

	session.UpdatedAt = time.Now().UTC()

	_, answers, history, err := encodeSessionJSON(session)
	if err != nil {
		return err
	}

	result, err := r.pool.Exec(ctx, query,
		session.ID,
		answers,
		session.CurrentIndex,
		string(session.Status),
		history,
		session.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return model.ErrSessionNotFound
	}

	return nil
}

func encodeSessionJSON(session *model.FeedbackSession) (questions, answers, history []byte, err error) {
	if questions, err = json.Marshal(session.Questions); err != nil {
		return nil, nil, nil, err
	}
	if session.Answers == nil {
		session.Answers = make(map[string]string)
	}
	if answers, err = json.Marshal(session.Answers); err != nil {
		return nil, nil, nil, err
	}
	if history, err = json.Marshal(session.History); err != nil {
		return nil, nil, nil, err
	}
	return questions, answers, history, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*model.FeedbackSession, error) {
	session := &model.FeedbackSession{}
	var status string
	var questions, answers, history []byte

	if err := row.Scan(
		&session.ID,
		&session.MeetingID,
		&session.UserID,
		&session.StartupID,
		&session.StartupName,
		&session.StartupDescription,
		&questions,
		&answers,
		&session.CurrentIndex,
		&status,
		&history,
		&session.CreatedAt,
		&session.UpdatedAt,
	); err != nil {
		return nil, err
	}

	session.Status = model.SessionStatus(status)
	if err := json.Unmarshal(questions, &session.Questions); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answers, &session.Answers); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(history, &session.History); err != nil {
		return nil, err
	}

	return session, nil
}
