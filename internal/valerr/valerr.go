// Package valerr defines the error vocabulary for the analysis core.
//
// Only contract violations (malformed caller input) surface as errors.
// Data-quality degradations never do; they become terminal fit states or
// flags on an otherwise successful record.
package valerr

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	errbuilder "github.com/ZanzyTHEbar/errbuilder-go"
)

// Category distinguishes error classes for handling at the API edge.
type Category string

const (
	CategoryValidation Category = "validation"
	CategoryInternal   Category = "internal"
	CategoryRateLimit  Category = "rate_limit"
)

// Error wraps an errbuilder error with the category and HTTP status the
// API edge needs to render it.
type Error struct {
	*errbuilder.ErrBuilder
	Category   Category  `json:"category"`
	HTTPStatus int       `json:"http_status"`
	Timestamp  time.Time `json:"timestamp"`
}

func (e *Error) Error() string {
	codeStr := "UNKNOWN_ERROR"
	switch e.ErrBuilder.ErrCode() {
	case errbuilder.CodeInvalidArgument:
		codeStr = "VALIDATION_ERROR"
	case errbuilder.CodeResourceExhausted:
		codeStr = "RATE_LIMIT_EXCEEDED"
	case errbuilder.CodeInternal:
		codeStr = "INTERNAL_ERROR"
	}
	return fmt.Sprintf("[%s] %s", codeStr, e.ErrBuilder.Msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.ErrBuilder.Unwrap()
}

func newError(builder *errbuilder.ErrBuilder, category Category, httpStatus int) *Error {
	return &Error{
		ErrBuilder: builder,
		Category:   category,
		HTTPStatus: httpStatus,
		Timestamp:  time.Now(),
	}
}

// Validation reports a contract violation in caller-supplied input. These
// are caller bugs, not data-quality conditions, and fail fast at the
// boundary before any fitting is attempted.
func Validation(format string, args ...interface{}) *Error {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf(format, args...))

	return newError(builder, CategoryValidation, http.StatusBadRequest)
}

// Internal reports an unexpected fault inside the service.
func Internal(message string, cause error) *Error {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(message)

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	return newError(builder, CategoryInternal, http.StatusInternalServerError)
}

// RateLimited reports a rejected request with a retry hint.
func RateLimited(retryAfter string) *Error {
	errorMap := errbuilder.ErrorMap{}
	errorMap.Set("retry_after", errors.New(retryAfter))

	builder := errbuilder.New().
		WithCode(errbuilder.CodeResourceExhausted).
		WithMsg("Rate limit exceeded").
		WithDetails(errbuilder.NewErrDetails(errorMap))

	return newError(builder, CategoryRateLimit, http.StatusTooManyRequests)
}

// IsValidation reports whether err is a contract-violation error.
func IsValidation(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Category == CategoryValidation
	}
	return false
}

// HTTPStatus extracts the HTTP status for err, defaulting to 500.
func HTTPStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus
	}
	return http.StatusInternalServerError
}
