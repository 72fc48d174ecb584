package commonsense

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid commonsense configuration")
	// ErrUnauthorized indicates the credentials were rejected
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = errors.New("not found")
	// ErrBadRequest indicates the API rejected the request parameters
	ErrBadRequest = errors.New("bad request")
	// ErrUnknownStatus indicates any other non-200 status
	ErrUnknownStatus = errors.New("unexpected status")
	// ErrParse indicates a 200 response whose body is not valid JSON
	ErrParse = errors.New("malformed response body")
	// ErrNetwork indicates the request failed before a status was obtained
	ErrNetwork = errors.New("network failure")
	// ErrUnsupported indicates an operation the platform does not offer
	ErrUnsupported = errors.New("operation not supported by platform")
)

// ErrorKind classifies a failed API call.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindUnauthorized
	KindNotFound
	KindBadRequest
	KindParse
	KindNetwork
)

// String returns the string representation of an ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case KindUnauthorized:
		return "Unauthorized"
	case KindNotFound:
		return "NotFound"
	case KindBadRequest:
		return "BadRequest"
	case KindParse:
		return "ParseError"
	case KindNetwork:
		return "NetworkError"
	default:
		return "Unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindUnauthorized:
		return ErrUnauthorized
	case KindNotFound:
		return ErrNotFound
	case KindBadRequest:
		return ErrBadRequest
	case KindParse:
		return ErrParse
	case KindNetwork:
		return ErrNetwork
	default:
		return ErrUnknownStatus
	}
}

// APIError is the failure half of an API result.
type APIError struct {
	Kind       ErrorKind
	StatusCode int // 0 when no status was obtained
	Message    string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("commonsense: %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("commonsense: %s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel error for this kind, so callers
// can write errors.Is(err, commonsense.ErrNotFound).
func (e *APIError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.Kind == KindNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIError) IsUnauthorized() bool {
	return e.Kind == KindUnauthorized
}

// statusError maps a non-200 status onto an APIError.
func statusError(statusCode int) *APIError {
	text := http.StatusText(statusCode)
	switch statusCode {
	case http.StatusUnauthorized:
		return &APIError{Kind: KindUnauthorized, StatusCode: statusCode, Message: text}
	case http.StatusNotFound:
		return &APIError{Kind: KindNotFound, StatusCode: statusCode, Message: text}
	case http.StatusBadRequest:
		return &APIError{Kind: KindBadRequest, StatusCode: statusCode, Message: text}
	default:
		return &APIError{
			Kind:       KindUnknown,
			StatusCode: statusCode,
			Message:    fmt.Sprintf("An error has occurred (error code: %d)", statusCode),
		}
	}
}

// KindOf extracts the ErrorKind from err, reporting false when err is not an
// *APIError.
func KindOf(err error) (ErrorKind, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return KindUnknown, false
}
