package repository

import (
	"context"
	"testing"
	"time"

	"github.com/andreypavlenko/scout/modules/votes/model"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoteRepository_RecordVote(t *testing.T) {
	t.Run("records vote successfully", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		vote := &model.Vote{
			UserID:     "user-123",
			StartupID:  42,
			Interested: true,
		}

		mock.ExpectExec("INSERT INTO votes").
			WithArgs(pgxmock.AnyArg(), vote.UserID, vote.StartupID, vote.Interested, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		repo := &testVoteRepo{mock: mock}
		err = repo.RecordVote(context.Background(), vote)

		require.NoError(t, err)
		assert.NotEmpty(t, vote.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestVoteRepository_VotesOf(t *testing.T) {
	t.Run("returns latest vote per startup", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		now := time.Now()
		rows := pgxmock.NewRows([]string{"id", "user_id", "startup_id", "interested", "created_at"}).
			AddRow("v1", "user-123", int64(1), true, now).
			AddRow("v2", "user-123", int64(2), false, now)

		mock.ExpectQuery("SELECT DISTINCT ON \\(startup_id\\)").
			WithArgs("user-123").
			WillReturnRows(rows)

		repo := &testVoteRepo{mock: mock}
		votes, err := repo.VotesOf(context.Background(), "user-123")

		require.NoError(t, err)
		require.Len(t, votes, 2)
		assert.True(t, votes[0].Interested)
		assert.False(t, votes[1].Interested)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestVoteRepository_RecordRating(t *testing.T) {
	t.Run("upserts rating", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		rating := &model.Rating{UserID: "user-123", StartupID: 42, Score: 4}

		mock.ExpectExec("INSERT INTO ratings").
			WithArgs(pgxmock.AnyArg(), rating.UserID, rating.StartupID, rating.Score, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		repo := &testVoteRepo{mock: mock}
		err = repo.RecordRating(context.Background(), rating)

		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

// testVoteRepo mirrors VoteRepository against the pgxmock pool interface.
type testVoteRepo struct {
	mock pgxmock.PgxPoolIface
}

func (r *testVoteRepo) RecordVote(ctx context.Context, vote *model.Vote) error {
	query := `
		INSERT INTO votes (id, user_id, startup_id, interested, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	vote.ID = uuid.New().String()
	vote.CreatedAt = time.Now().UTC()

	_, err := r.mock.Exec(ctx, query, vote.ID, vote.UserID, vote.StartupID, vote.Interested, vote.CreatedAt)
	return err
}

func (r *testVoteRepo) VotesOf(ctx context.Context, userID string) ([]*model.Vote, error) {
	query := `
		SELECT DISTINCT ON (startup_id) id, user_id, startup_id, interested, created_at
		FROM votes
		WHERE user_id = $1
		ORDER BY startup_id, created_at DESC
	`
	rows, err := r.mock.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var votes []*model.Vote
	for rows.Next() {
		vote := &model.Vote{}
		if err := rows.Scan(&vote.ID, &vote.UserID, &vote.StartupID, &vote.Interested, &vote.CreatedAt); err != nil {
			return nil, err
		}
		votes = append(votes, vote)
	}
	return votes, rows.Err()
}

func (r *testVoteRepo) RecordRating(ctx context.Context, rating *model.Rating) error {
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

	_, err := r.mock.Exec(ctx, query, rating.ID, rating.UserID, rating.StartupID, rating.Score, now)
	return err
}
