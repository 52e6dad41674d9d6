package model

import "errors"

var (
	// ErrEventNotFound is returned when an event is not found
	ErrEventNotFound = errors.New("event not found")

	// ErrTitleRequired is returned when the event title is empty
	ErrTitleRequired = errors.New("event title is required")

	// ErrInvalidTimeRange is returned when start is not before end
	ErrInvalidTimeRange = errors.New("event start must be before end")

	// ErrAttendeeConflict is returned when an attendee is double-booked
	ErrAttendeeConflict = errors.New("attendee has an overlapping event")
)

// ErrorCode represents error codes
type ErrorCode string

const (
	CodeEventNotFound    ErrorCode = "EVENT_NOT_FOUND"
	CodeTitleRequired    ErrorCode = "TITLE_REQUIRED"
	CodeInvalidTimeRange ErrorCode = "INVALID_TIME_RANGE"
	CodeAttendeeConflict ErrorCode = "ATTENDEE_CONFLICT"
	CodeInternalError    ErrorCode = "INTERNAL_ERROR"
)

// GetErrorCode maps errors to error codes
func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrEventNotFound):
		return CodeEventNotFound
	case errors.Is(err, ErrTitleRequired):
		return CodeTitleRequired
	case errors.Is(err, ErrInvalidTimeRange):
		return CodeInvalidTimeRange
	case errors.Is(err, ErrAttendeeConflict):
		return CodeAttendeeConflict
	default:
		return CodeInternalError
	}
}

// GetErrorMessage returns a user-friendly error message
func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrEventNotFound):
		return "Event not found"
	case errors.Is(err, ErrTitleRequired):
		return "Event title is required"
	case errors.Is(err, ErrInvalidTimeRange):
		return "Event start must be before end"
	case errors.Is(err, ErrAttendeeConflict):
		return "An attendee already has an overlapping event"
	default:
		return "Internal server error"
	}
}
