package model

import "errors"

var (
	// ErrSessionNotFound is returned when a session is not found
	ErrSessionNotFound = errors.New("feedback session not found")

	// ErrInsightNotFound is returned when an insight is not found
	ErrInsightNotFound = errors.New("insight not found")

	// ErrSessionNotActive is returned when replying to a finished session
	ErrSessionNotActive = errors.New("feedback session is not in progress")

	// ErrMeetingIDRequired is returned when the meeting id is missing
	ErrMeetingIDRequired = errors.New("meeting id is required")

	// ErrUserIDRequired is returned when the user id is missing
	ErrUserIDRequired = errors.New("user id is required")

	// ErrStartupNameRequired is returned when the startup name is missing
	ErrStartupNameRequired = errors.New("startup name is required")

	// ErrMessageRequired is returned when the reply text is empty
	ErrMessageRequired = errors.New("message is required")

	// ErrInvalidQA is returned when an insight edit has the wrong shape
	ErrInvalidQA = errors.New("structured_qa must contain exactly three answered questions")
)

// ErrorCode represents error codes
type ErrorCode string

const (
	CodeSessionNotFound     ErrorCode = "SESSION_NOT_FOUND"
	CodeInsightNotFound     ErrorCode = "INSIGHT_NOT_FOUND"
	CodeSessionNotActive    ErrorCode = "SESSION_NOT_ACTIVE"
	CodeMeetingIDRequired   ErrorCode = "MEETING_ID_REQUIRED"
	CodeUserIDRequired      ErrorCode = "USER_ID_REQUIRED"
	CodeStartupNameRequired ErrorCode = "STARTUP_NAME_REQUIRED"
	CodeMessageRequired     ErrorCode = "MESSAGE_REQUIRED"
	CodeInvalidQA           ErrorCode = "INVALID_STRUCTURED_QA"
	CodeInternalError       ErrorCode = "INTERNAL_ERROR"
)

// GetErrorCode maps errors to error codes
func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return CodeSessionNotFound
	case errors.Is(err, ErrInsightNotFound):
		return CodeInsightNotFound
	case errors.Is(err, ErrSessionNotActive):
		return CodeSessionNotActive
	case errors.Is(err, ErrMeetingIDRequired):
		return CodeMeetingIDRequired
	case errors.Is(err, ErrUserIDRequired):
		return CodeUserIDRequired
	case errors.Is(err, ErrStartupNameRequired):
		return CodeStartupNameRequired
	case errors.Is(err, ErrMessageRequired):
		return CodeMessageRequired
	case errors.Is(err, ErrInvalidQA):
		return CodeInvalidQA
	default:
		return CodeInternalError
	}
}

// GetErrorMessage returns a user-friendly error message
func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return "Feedback session not found"
	case errors.Is(err, ErrInsightNotFound):
		return "Insight not found"
	case errors.Is(err, ErrSessionNotActive):
		return "Feedback session is not in progress"
	case errors.Is(err, ErrMeetingIDRequired):
		return "Meeting id is required"
	case errors.Is(err, ErrUserIDRequired):
		return "User id is required"
	case errors.Is(err, ErrStartupNameRequired):
		return "Startup name is required"
	case errors.Is(err, ErrMessageRequired):
		return "Message is required"
	case errors.Is(err, ErrInvalidQA):
		return "structured_qa must contain exactly three answered questions"
	default:
		return "Internal server error"
	}
}
