package model

import "errors"

var (
	// ErrStartupNotFound is returned when a startup is not found
	ErrStartupNotFound = errors.New("startup not found")

	// ErrEnrichmentNotFound is returned when a startup has no enrichment data
	ErrEnrichmentNotFound = errors.New("enrichment data not found")

	// ErrEmptyCorpus is returned when the snapshot has no startups
	ErrEmptyCorpus = errors.New("corpus snapshot is empty")

	// ErrInvalidFilter is returned on unknown filter values
	ErrInvalidFilter = errors.New("invalid filter value")
)

// ErrorCode represents error codes
type ErrorCode string

const (
	CodeStartupNotFound    ErrorCode = "STARTUP_NOT_FOUND"
	CodeEnrichmentNotFound ErrorCode = "ENRICHMENT_NOT_FOUND"
	CodeEmptyCorpus        ErrorCode = "EMPTY_CORPUS"
	CodeInvalidFilter      ErrorCode = "INVALID_FILTER"
	CodeInternalError      ErrorCode = "INTERNAL_ERROR"
)

// GetErrorCode maps errors to error codes
func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrStartupNotFound):
		return CodeStartupNotFound
	case errors.Is(err, ErrEnrichmentNotFound):
		return CodeEnrichmentNotFound
	case errors.Is(err, ErrEmptyCorpus):
		return CodeEmptyCorpus
	case errors.Is(err, ErrInvalidFilter):
		return CodeInvalidFilter
	default:
		return CodeInternalError
	}
}

// GetErrorMessage returns a user-friendly error message
func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrStartupNotFound):
		return "Startup not found"
	case errors.Is(err, ErrEnrichmentNotFound):
		return "Enrichment data not found"
	case errors.Is(err, ErrEmptyCorpus):
		return "Startup corpus is empty"
	case errors.Is(err, ErrInvalidFilter):
		return "Invalid filter value"
	default:
		return "Internal server error"
	}
}
