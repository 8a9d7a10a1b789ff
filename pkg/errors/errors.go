package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents transport-level failures
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeStatus represents a non-200 HTTP response
	ErrorTypeStatus ErrorType = "status"
	// ErrorTypeRender represents headless browser failures
	ErrorTypeRender ErrorType = "render"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeParsing represents document or payload parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeValidation represents invalid user input
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeStorage represents dataset read/write errors
	ErrorTypeStorage ErrorType = "storage"
)

// ScrapeError is the error type shared by every pipeline component
type ScrapeError struct {
	Type      ErrorType
	Component string
	URL       string
	Message   string
	Err       error
	Time      time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	where := e.Component
	if e.URL != "" {
		where = fmt.Sprintf("%s %s", e.Component, e.URL)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, where, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, where, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether a later run could succeed where this one failed.
// The pipeline itself never retries; this only feeds log output.
func (e *ScrapeError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNetwork, ErrorTypeRender:
		return true
	case ErrorTypeStatus, ErrorTypeRateLimit, ErrorTypeParsing:
		return false
	default:
		return false
	}
}

// New creates a new ScrapeError
func New(errType ErrorType, component, url, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:      errType,
		Component: component,
		URL:       url,
		Message:   message,
		Err:       err,
		Time:      time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(component, url, message string, err error) *ScrapeError {
	return New(ErrorTypeNetwork, component, url, message, err)
}

// NewStatus creates an error for an unexpected HTTP status code
func NewStatus(component, url string, code int) *ScrapeError {
	return New(ErrorTypeStatus, component, url, fmt.Sprintf("unexpected status code: %d", code), nil)
}

// NewRender creates a new headless browser error
func NewRender(component, url, message string, err error) *ScrapeError {
	return New(ErrorTypeRender, component, url, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(component, url string, duration time.Duration) *ScrapeError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, component, url, message, nil)
}

// NewParsing creates a new parsing error
func NewParsing(component, url, message string, err error) *ScrapeError {
	return New(ErrorTypeParsing, component, url, message, err)
}

// NewValidation creates a new validation error
func NewValidation(component, message string) *ScrapeError {
	return New(ErrorTypeValidation, component, "", message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "config", "", message, err)
}

// NewStorage creates a new dataset storage error
func NewStorage(path, message string, err error) *ScrapeError {
	return New(ErrorTypeStorage, "dataset", path, message, err)
}

// TypeOf returns the ErrorType of the first ScrapeError in err's chain, or ""
func TypeOf(err error) ErrorType {
	var se *ScrapeError
	if stderrors.As(err, &se) {
		return se.Type
	}
	return ""
}

// Is reports whether err carries a ScrapeError of the given type
func Is(err error, errType ErrorType) bool {
	return TypeOf(err) == errType
}
