package model

import "time"

// CreateEventRequest is the payload for creating an event
type CreateEventRequest struct {
	Title     string    `json:"title"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Attendees []string  `json:"attendees"`
	Type      string    `json:"type"`
	Category  *string   `json:"category,omitempty"`
	Stage     *string   `json:"stage,omitempty"`
}

// UpdateEventRequest is the payload for updating an event
type UpdateEventRequest struct {
	Title     *string    `json:"title,omitempty"`
	Start     *time.Time `json:"start,omitempty"`
	End       *time.Time `json:"end,omitempty"`
	Attendees []string   `json:"attendees,omitempty"`
	Type      *string    `json:"type,omitempty"`
	Category  *string    `json:"category,omitempty"`
	Stage     *string    `json:"stage,omitempty"`
}
