// Package errors defines the error payload returned by the ArtConnect API and
// the localised, user-facing messages attached to each error code.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Error represents the standardized error schema.
type Error struct {
	Message   string    `json:"error"`
	Code      string    `json:"code"`
	Detail    string    `json:"detail,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	TraceID   string    `json:"trace_id,omitempty"`
	Actor     *Actor    `json:"actor,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	cause error
}

// Actor contains authenticated subject metadata used in error payloads.
type Actor struct {
	Subject string   `json:"subject"`
	Roles   []string `json:"roles"`
}

// Option mutates an Error during construction.
type Option func(*Error)

// New constructs an Error with the provided code and message.
func New(code, message string, opts ...Option) *Error {
	err := &Error{
		Message:   message,
		Code:      code,
		Timestamp: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(err)
	}
	return err
}

// Error satisfies the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// WithDetail attaches a detail string.
func WithDetail(detail string) Option {
	return func(e *Error) {
		e.Detail = detail
	}
}

// WithRequestID attaches a request ID.
func WithRequestID(id string) Option {
	return func(e *Error) {
		e.RequestID = id
	}
}

// WithTraceID attaches a trace ID.
func WithTraceID(id string) Option {
	return func(e *Error) {
		e.TraceID = id
	}
}

// WithActor attaches actor metadata.
func WithActor(actor *Actor) Option {
	return func(e *Error) {
		e.Actor = actor
	}
}

// WithTimestamp overrides the default timestamp.
func WithTimestamp(ts time.Time) Option {
	return func(e *Error) {
		e.Timestamp = ts.UTC()
	}
}

// WithCause records the underlying error without exposing it in the payload.
func WithCause(cause error) Option {
	return func(e *Error) {
		e.cause = cause
	}
}

// Wrap builds an Error whose message is the localised text for code in the
// default language and whose cause is err.
func Wrap(code string, err error, opts ...Option) *Error {
	opts = append([]Option{WithCause(err)}, opts...)
	return New(code, Localize(code, DefaultLanguage), opts...)
}

// From attempts to coerce any error into an Error. Errors that are not
// already *Error are reported as INTERNAL.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var shared *Error
	if errors.As(err, &shared) {
		return shared
	}
	return New(CodeInternal, Localize(CodeInternal, DefaultLanguage), WithDetail(err.Error()), WithCause(err))
}

// CodeOf returns the code carried by err, or CodeInternal.
func CodeOf(err error) string {
	var shared *Error
	if errors.As(err, &shared) {
		return shared.Code
	}
	return CodeInternal
}

// Marshal converts an error into a JSON byte slice following the shared schema.
func Marshal(err error) ([]byte, error) {
	return json.Marshal(From(err))
}
