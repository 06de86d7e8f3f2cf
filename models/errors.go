package models

import "fmt"

// Error codes used in API responses and internal error handling.
const (
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeTimeout          = "SCRAPE_TIMEOUT"
	ErrCodeNavigation       = "NAVIGATION_FAILED"
	ErrCodeExtraction       = "EXTRACTION_FAILED"
	ErrCodeBrowserLaunch    = "BROWSER_LAUNCH_FAILED"
	ErrCodeBrowserCrash     = "BROWSER_CRASH"
	ErrCodeCapacityExceeded = "CAPACITY_EXCEEDED"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// Fixed client-facing validation messages.
const (
	MsgMissingQuery      = "Missing query in request body."
	MsgInvalidBody       = "Invalid JSON body."
	MsgQueryTooLong      = "Query too long."
	MsgUnsupportedEngine = "Unsupported engine."
)

// SearchError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type SearchError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *SearchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// NewSearchError creates a new SearchError.
func NewSearchError(code, message string, err error) *SearchError {
	return &SearchError{Code: code, Message: message, Err: err}
}

// NewValidationError creates an INVALID_INPUT error with a fixed message.
func NewValidationError(message string) *SearchError {
	return &SearchError{Code: ErrCodeInvalidInput, Message: message}
}

// ToResponse converts an internal error to the API-facing body.
// Client errors carry only the message; everything else also carries
// the code so timeouts, launch and extraction failures are distinguishable.
func (e *SearchError) ToResponse() ErrorResponse {
	switch e.Code {
	case ErrCodeInvalidInput:
		return ErrorResponse{Error: e.Message}
	default:
		return ErrorResponse{Error: e.Message, Code: e.Code}
	}
}
