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

// InsightRepository implements ports.InsightRepository
type InsightRepository struct {
	pool *pgxpool.Pool
}

// NewInsightRepository creates a new insight repository
func NewInsightRepository(pool *pgxpool.Pool) *InsightRepository {
	return &InsightRepository{pool: pool}
}

const insightColumns = `id, session_id, meeting_id, user_id, startup_id, startup_name, structured_qa, created_at, updated_at`

// Create creates a new insight
func (r *InsightRepository) Create(ctx context.Context, insight *model.Insight) error {
	query := `
		INSERT INTO insights (` + insightColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	insight.ID = uuid.New().String()
	now := time.Now().UTC()
	insight.CreatedAt = now
	insight.UpdatedAt = now

	qa, err := json.Marshal(insight.StructuredQA)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, query,
		insight.ID,
		insight.SessionID,
		insight.MeetingID,
		insight.UserID,
		insight.StartupID,
		insight.StartupName,
		qa,
		insight.CreatedAt,
		insight.UpdatedAt,
	)

	return err
}

// GetByID retrieves an insight by ID
func (r *InsightRepository) GetByID(ctx context.Context, id string) (*model.Insight, error) {
	query := `SELECT ` + insightColumns + ` FROM insights WHERE id = $1`

	insight, err := scanInsight(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrInsightNotFound
		}
		return nil, err
	}

	return insight, nil
}

// GetBySession retrieves the insight of a session
func (r *InsightRepository) GetBySession(ctx context.Context, sessionID string) (*model.Insight, error) {
	query := `SELECT ` + insightColumns + ` FROM insights WHERE session_id = $1`

	insight, err := scanInsight(r.pool.QueryRow(ctx, query, sessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrInsightNotFound
		}
		return nil, err
	}

	return insight, nil
}

// Update replaces the structured Q/A of an insight
func (r *InsightRepository) Update(ctx context.Context, insight *model.Insight) error {
	query := `
		UPDATE insights
		SET structured_qa = $2, updated_at = $3
		WHERE id = $1
	`

	insight.UpdatedAt = time.Now().UTC()

	qa, err := json.Marshal(insight.StructuredQA)
	if err != nil {
		return err
	}

	result, err := r.pool.Exec(ctx, query, insight.ID, qa, insight.UpdatedAt)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return model.ErrInsightNotFound
	}

	return nil
}

func scanInsight(row rowScanner) (*model.Insight, error) {
	insight := &model.Insight{}
	var qa []byte

	if err := row.Scan(
		&insight.ID,
		&insight.SessionID,
		&insight.MeetingID,
		&insight.UserID,
		&insight.StartupID,
		&insight.StartupName,
		&qa,
		&insight.CreatedAt,
		&insight.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(qa, &insight.StructuredQA); err != nil {
		return nil, err
	}

	return insight, nil
}
