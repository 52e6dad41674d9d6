package ports

import (
	"context"

	"github.com/andreypavlenko/scout/modules/startups/model"
)

// StartupRepository defines the interface for startup data access. The corpus
// is read-mostly: runtime reads go through the in-memory snapshot, the
// repository feeds snapshot builds and the seed command.
type StartupRepository interface {
	All(ctx context.Context) ([]*model.Startup, error)
	GetByID(ctx context.Context, id int64) (*model.Startup, error)
	InsertBatch(ctx context.Context, startups []*model.Startup) error
	Count(ctx context.Context) (int, error)
}
