package services

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrorInvalid      ErrorCode = "invalid"
	ErrorNotFound     ErrorCode = "not_found"
	ErrorConflict     ErrorCode = "conflict"
	ErrorUnauthorized ErrorCode = "unauthorized"
	ErrorBadGateway   ErrorCode = "bad_gateway"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error  { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewNotFoundError(msg string) error { return &ServiceError{Code: ErrorNotFound, Message: msg} }
func NewConflictError(msg string) error { return &ServiceError{Code: ErrorConflict, Message: msg} }
func NewUnauthorizedError(msg string) error {
	return &ServiceError{Code: ErrorUnauthorized, Message: msg}
}
func NewBadGatewayError(msg string) error { return &ServiceError{Code: ErrorBadGateway, Message: msg} }

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// MissingFieldError reports a mandatory scores key absent from a submission's
// variables. This is a hard failure: the submission is rejected, unlike the
// silent skip applied to unrecognized answer fields.
type MissingFieldError struct {
	Key string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required score field %q", e.Key)
}

// SchemaMismatchError reports a stored row lacking a subdomain the schema
// declares. Aggregation and comparison abort rather than return a partial
// result.
type SchemaMismatchError struct {
	Subdomain string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("row missing subdomain %q declared in schema", e.Subdomain)
}

var (
	// ErrNoData signals an empty cohort: means are undefined, which is
	// distinct from a zero average. Callers must branch on it before
	// presenting insights.
	ErrNoData = errors.New("no data in cohort")
	// ErrMalformedAnswer marks a single answer entry that cannot be
	// classified; the normalizer skips it and keeps going.
	ErrMalformedAnswer = errors.New("malformed answer entry")
	// ErrRealtimeDisabled means the realtime flag file is absent, so webhook
	// deliveries are acknowledged but not written.
	ErrRealtimeDisabled = errors.New("real-time data not enabled")
)
