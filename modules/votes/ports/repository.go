package ports

import (
	"context"

	"github.com/andreypavlenko/scout/modules/votes/model"
)

// VoteRepository defines the interface for vote and rating data access
type VoteRepository interface {
	RecordVote(ctx context.Context, vote *model.Vote) error
	VotesOf(ctx context.Context, userID string) ([]*model.Vote, error)
	SeenStartups(ctx context.Context, userID string) (map[int64]struct{}, error)
	RecordRating(ctx context.Context, rating *model.Rating) error
	RatingsOf(ctx context.Context, userID string) ([]*model.Rating, error)
}
