package repository

import (
	"context"
	"time"

	"github.com/andreypavlenko/scout/modules/votes/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VoteRepository implements ports.VoteRepository
type VoteRepository struct {
	pool *pgxpool.Pool
}

// NewVoteRepository creates a new vote repository
func NewVoteRepository(pool *pgxpool.Pool) *VoteRepository {
	return &VoteRepository{pool: pool}
}

// RecordVote appends a vote. Re-voting on the same startup overwrites the
// effective vote via the latest-wins read path.
func (r *VoteRepository) RecordVote(ctx context.Context, vote *model.Vote) error {
	query := `
		INSERT INTO votes (id, user_id, startup_id, interested, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	vote.ID = uuid.New().String()
	vote.CreatedAt = time.Now().UTC()

	_, err := r.pool.Exec(ctx, query,
		vote.ID,
		vote.UserID,
		vote.StartupID,
		vote.Interested,
		vote.CreatedAt,
	)

	return err
}

// VotesOf returns the effective (latest) vote per startup for a user.
func (r *VoteRepository) VotesOf(ctx context.Context, userID string) ([]*model.Vote, error) {
	query := `
		SELECT DISTINCT ON (startup_id) id, user_id, startup_id, interested, created_at
		FROM votes
		WHERE user_id = $1
		ORDER BY startup_id, created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var votes []*model.Vote
	for rows.Next() {
		vote := &model.Vote{}
		if err := rows.Scan(
			&vote.ID,
			&vote.UserID,
			&vote.StartupID,
			&vote.Interested,
			&vote.CreatedAt,
		); err != nil {
			return nil, err
		}
		votes = append(votes, vote)
	}

	return votes, rows.Err()
}

// SeenStartups returns the set of startup ids the user has voted on.
func (r *VoteRepository) SeenStartups(ctx context.Context, userID string) (map[int64]struct{}, error) {
	query := `SELECT DISTINCT startup_id FROM votes WHERE user_id = $1`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		seen[id] = struct{}{}
	}

	return seen, rows.Err()
}

// RecordRating upserts a rating, last-write-wins per (user, startup).
func (r *VoteRepository) RecordRating(ctx context.Context, rating *model.Rating) error {
	query := `
		INSERT INTO ratings (id, user_id, startup_id, score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (user_id, startup_id)
		DO UPDATE SET score = EXCLUDED.score, updated_at = EXCLUDED.updated_at
	`

	rating.ID = uuid.New().String()
	now := time.Now().UTC()
	rating.CreatedAt = now
	rating.UpdatedAt = now

	_, err := r.pool.Exec(ctx, query,
		rating.ID,
		rating.UserID,
		rating.StartupID,
		rating.Score,
		now,
	)

	return err
}

// RatingsOf returns all ratings for a user.
func (r *VoteRepository) RatingsOf(ctx context.Context, userID string) ([]*model.Rating, error) {
	query := `
		SELECT id, user_id, startup_id, score, created_at, updated_at
		FROM ratings
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []*model.Rating
	for rows.Next() {
		rating := &model.Rating{}
		if err := rows.Scan(
			&rating.ID,
			&rating.UserID,
			&rating.StartupID,
			&rating.Score,
			&rating.CreatedAt,
			&rating.UpdatedAt,
		); err != nil {
			return nil, err
		}
		ratings = append(ratings, rating)
	}

	return ratings, rows.Err()
}
