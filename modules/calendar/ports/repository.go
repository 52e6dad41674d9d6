package ports

import (
	"context"
	"time"

	"github.com/andreypavlenko/scout/modules/calendar/model"
)

// EventRepository defines the interface for calendar event data access
type EventRepository interface {
	Create(ctx context.Context, event *model.CalendarEvent) error
	GetByID(ctx context.Context, id string) (*model.CalendarEvent, error)
	List(ctx context.Context, from, to *time.Time) ([]*model.CalendarEvent, error)
	ListByAttendee(ctx context.Context, userID string) ([]*model.CalendarEvent, error)
	Update(ctx context.Context, event *model.CalendarEvent) error
	Delete(ctx context.Context, id string) error
}
