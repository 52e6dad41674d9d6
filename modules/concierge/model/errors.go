package model

import "errors"

var (
	// ErrQuestionRequired is returned when the question is empty
	ErrQuestionRequired = errors.New("question is required")

	// ErrTopicRequired is returned when the post topic is empty
	ErrTopicRequired = errors.New("topic is required")

	// ErrServiceBusy is returned when the LLM gateway is rate limited or
	// its circuit is open
	ErrServiceBusy = errors.New("assistant is busy")

	// ErrUnavailable is returned when the LLM gateway is not configured
	ErrUnavailable = errors.New("assistant is unavailable")

	// ErrInternal is returned for unrecoverable orchestration failures
	ErrInternal = errors.New("assistant failed")
)

// ErrorCode represents error codes
type ErrorCode string

const (
	CodeQuestionRequired ErrorCode = "QUESTION_REQUIRED"
	CodeTopicRequired    ErrorCode = "TOPIC_REQUIRED"
	CodeServiceBusy      ErrorCode = "SERVICE_BUSY"
	CodeUnavailable      ErrorCode = "SERVICE_UNAVAILABLE"
	CodeInternalError    ErrorCode = "INTERNAL_ERROR"
)

// GetErrorCode maps errors to error codes
func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrQuestionRequired):
		return CodeQuestionRequired
	case errors.Is(err, ErrTopicRequired):
		return CodeTopicRequired
	case errors.Is(err, ErrServiceBusy):
		return CodeServiceBusy
	case errors.Is(err, ErrUnavailable):
		return CodeUnavailable
	default:
		return CodeInternalError
	}
}

// GetErrorMessage returns a user-friendly error message
func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrQuestionRequired):
		return "Question is required"
	case errors.Is(err, ErrTopicRequired):
		return "Topic is required"
	case errors.Is(err, ErrServiceBusy):
		return "The assistant is busy, please retry shortly"
	case errors.Is(err, ErrUnavailable):
		return "The assistant is not available"
	default:
		return "Internal server error"
	}
}
