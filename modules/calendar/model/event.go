package model

import "time"

// CalendarEvent is a conference calendar entry.
type CalendarEvent struct {
	ID        string
	Title     string
	Start     time.Time
	End       time.Time
	Attendees []string
	Type      string
	Category  *string
	Stage     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EventDTO is the JSON shape of a calendar event.
type EventDTO struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Attendees []string  `json:"attendees"`
	Type      string    `json:"type"`
	Category  *string   `json:"category,omitempty"`
	Stage     *string   `json:"stage,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToDTO converts CalendarEvent to EventDTO
func (e *CalendarEvent) ToDTO() *EventDTO {
	return &EventDTO{
		ID:        e.ID,
		Title:     e.Title,
		Start:     e.Start,
		End:       e.End,
		Attendees: e.Attendees,
		Type:      e.Type,
		Category:  e.Category,
		Stage:     e.Stage,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// Overlaps reports whether two events overlap in time over [start, end).
func (e *CalendarEvent) Overlaps(other *CalendarEvent) bool {
	return e.Start.Before(other.End) && other.Start.Before(e.End)
}
