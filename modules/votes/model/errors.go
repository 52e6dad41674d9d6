package model

import "errors"

var (
	// ErrUserIDRequired is returned when the user id is missing
	ErrUserIDRequired = errors.New("user id is required")

	// ErrStartupIDRequired is returned when the startup id is missing
	ErrStartupIDRequired = errors.New("startup id is required")

	// ErrInvalidScore is returned when a rating score is outside [1,5]
	ErrInvalidScore = errors.New("rating score must be between 1 and 5")

	// ErrDuplicateVote is returned when the same vote is replayed too fast
	ErrDuplicateVote = errors.New("duplicate vote")
)

// ErrorCode represents error codes
type ErrorCode string

const (
	CodeUserIDRequired    ErrorCode = "USER_ID_REQUIRED"
	CodeStartupIDRequired ErrorCode = "STARTUP_ID_REQUIRED"
	CodeInvalidScore      ErrorCode = "INVALID_SCORE"
	CodeDuplicateVote     ErrorCode = "DUPLICATE_VOTE"
	CodeInternalError     ErrorCode = "INTERNAL_ERROR"
)

// GetErrorCode maps errors to error codes
func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrUserIDRequired):
		return CodeUserIDRequired
	case errors.Is(err, ErrStartupIDRequired):
		return CodeStartupIDRequired
	case errors.Is(err, ErrInvalidScore):
		return CodeInvalidScore
	case errors.Is(err, ErrDuplicateVote):
		return CodeDuplicateVote
	default:
		return CodeInternalError
	}
}

// GetErrorMessage returns a user-friendly error message
func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrUserIDRequired):
		return "User id is required"
	case errors.Is(err, ErrStartupIDRequired):
		return "Startup id is required"
	case errors.Is(err, ErrInvalidScore):
		return "Rating score must be between 1 and 5"
	case errors.Is(err, ErrDuplicateVote):
		return "Vote already recorded"
	default:
		return "Internal server error"
	}
}
