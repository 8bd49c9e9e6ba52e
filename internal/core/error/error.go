package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage is used when a key does not exist.
	RedisNotFoundMessage = "redis key not found"
	// CatalogErrorMessage describes catalog source failures.
	CatalogErrorMessage = "catalog unavailable"
	// EscalationErrorMessage describes failures of the external language model.
	EscalationErrorMessage = "escalation model unavailable"
	// ParseErrorMessage describes malformed model answers.
	ParseErrorMessage = "malformed model answer"
)

var (
	ErrCatalogUnavailable    = errors.New("catalog unavailable")
	ErrEscalationUnavailable = errors.New("escalation unavailable")
	ErrMalformedAnswer       = errors.New("malformed answer")
	ErrNotFound              = errors.New("not found")
)

// AppError wraps an underlying error with an HTTP-like status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// WrapCatalog marks err as a catalog load failure.
func WrapCatalog(err error) error {
	if err == nil {
		return nil
	}
	return New(errors.Join(ErrCatalogUnavailable, err), http.StatusServiceUnavailable, CatalogErrorMessage)
}

// WrapEscalation marks err as an escalation failure.
func WrapEscalation(err error) error {
	if err == nil {
		return nil
	}
	return New(errors.Join(ErrEscalationUnavailable, err), http.StatusBadGateway, EscalationErrorMessage)
}

// WrapParse marks err as an unusable model answer.
func WrapParse(err error) error {
	if err == nil {
		return nil
	}
	return New(errors.Join(ErrMalformedAnswer, err), http.StatusUnprocessableEntity, ParseErrorMessage)
}

// StatusOf returns the status carried by an AppError in err's chain, or 500.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}
