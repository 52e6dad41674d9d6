package ports

import (
	"context"

	"github.com/andreypavlenko/scout/modules/feedback/model"
)

// SessionRepository defines the interface for feedback session persistence.
// Sessions are normalized records: any replica can resume one.
type SessionRepository interface {
	Create(ctx context.Context, session *model.FeedbackSession) error
	GetByID(ctx context.Context, id string) (*model.FeedbackSession, error)
	GetLatestByMeeting(ctx context.Context, meetingID string) (*model.FeedbackSession, error)
	Update(ctx context.Context, session *model.FeedbackSession) error
}

// InsightRepository defines the interface for insight persistence
type InsightRepository interface {
	Create(ctx context.Context, insight *model.Insight) error
	GetByID(ctx context.Context, id string) (*model.Insight, error)
	GetBySession(ctx context.Context, sessionID string) (*model.Insight, error)
	Update(ctx context.Context, insight *model.Insight) error
}
