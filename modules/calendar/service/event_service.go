package service

import (
	"context"
	"strings"
	"time"

	"github.com/andreypavlenko/scout/modules/calendar/model"
	"github.com/andreypavlenko/scout/modules/calendar/ports"
)

// EventService handles calendar business logic
type EventService struct {
	repo ports.EventRepository
}

// NewEventService creates a new event service
func NewEventService(repo ports.EventRepository) *EventService {
	return &EventService{repo: repo}
}

// Create validates the event, checks attendees for double booking, and
// persists it.
func (s *EventService) Create(ctx context.Context, req *model.CreateEventRequest) (*model.EventDTO, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, model.ErrTitleRequired
	}
	if !req.Start.Before(req.End) {
		return nil, model.ErrInvalidTimeRange
	}

	event := &model.CalendarEvent{
		Title:     strings.TrimSpace(req.Title),
		Start:     req.Start.UTC(),
		End:       req.End.UTC(),
		Attendees: dedupe(req.Attendees),
		Type:      req.Type,
		Category:  req.Category,
		Stage:     req.Stage,
	}

	if err := s.checkConflicts(ctx, event, ""); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}

	return event.ToDTO(), nil
}

// GetByID retrieves an event by ID
func (s *EventService) GetByID(ctx context.Context, id string) (*model.EventDTO, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return event.ToDTO(), nil
}

// List retrieves events, optionally bounded to a time window or an attendee.
func (s *EventService) List(ctx context.Context, from, to *time.Time, attendee string) ([]*model.EventDTO, error) {
	var events []*model.CalendarEvent
	var err error

	if attendee != "" {
		events, err = s.repo.ListByAttendee(ctx, attendee)
	} else {
		events, err = s.repo.List(ctx, from, to)
	}
	if err != nil {
		return nil, err
	}

	dtos := make([]*model.EventDTO, 0, len(events))
	for _, event := range events {
		dtos = append(dtos, event.ToDTO())
	}
	return dtos, nil
}

// Update applies a partial update, re-validating time range and conflicts.
func (s *EventService) Update(ctx context.Context, id string, req *model.UpdateEventRequest) (*model.EventDTO, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, model.ErrTitleRequired
		}
		event.Title = strings.TrimSpace(*req.Title)
	}
	if req.Start != nil {
		event.Start = req.Start.UTC()
	}
	if req.End != nil {
		event.End = req.End.UTC()
	}
	if req.Attendees != nil {
		event.Attendees = dedupe(req.Attendees)
	}
	if req.Type != nil {
		event.Type = *req.Type
	}
	if req.Category != nil {
		event.Category = req.Category
	}
	if req.Stage != nil {
		event.Stage = req.Stage
	}

	if !event.Start.Before(event.End) {
		return nil, model.ErrInvalidTimeRange
	}

	if err := s.checkConflicts(ctx, event, event.ID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, event); err != nil {
		return nil, err
	}

	return event.ToDTO(), nil
}

// Delete deletes an event
func (s *EventService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// checkConflicts rejects the event when any attendee already has an
// overlapping event. excludeID skips the event being updated.
func (s *EventService) checkConflicts(ctx context.Context, event *model.CalendarEvent, excludeID string) error {
	for _, attendee := range event.Attendees {
		existing, err := s.repo.ListByAttendee(ctx, attendee)
		if err != nil {
			return err
		}
		for _, other := range existing {
			if other.ID == excludeID {
				continue
			}
			if event.Overlaps(other) {
				return model.ErrAttendeeConflict
			}
		}
	}
	return nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
