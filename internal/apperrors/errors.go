package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConfiguration indicates that tenant configuration (e.g. the account map) is incomplete.
var ErrConfiguration = errors.New("configuration error")

// ErrConcurrency indicates a transient contention failure. Callers may retry.
var ErrConcurrency = errors.New("concurrency error")

// ErrConflict indicates a state conflict that a retry will not resolve.
var ErrConflict = errors.New("conflict")

// ErrInternal indicates an unexpected infrastructure failure.
var ErrInternal = errors.New("internal error")

// ValidationReason classifies a ValidationError.
type ValidationReason string

const (
	ReasonUnbalanced   ValidationReason = "UNBALANCED"
	ReasonEmptyJournal ValidationReason = "EMPTY_JOURNAL"
	ReasonInvalidLine  ValidationReason = "INVALID_LINE"
	ReasonInvalidInput ValidationReason = "INVALID_INPUT"
)

// ValidationError is returned before any write when the caller's input is unusable.
type ValidationError struct {
	Reason  ValidationReason
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", strings.ToLower(string(e.Reason)), e.Message)
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError with a formatted message.
func NewValidationError(reason ValidationReason, format string, args ...any) *ValidationError {
	return &ValidationError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// IsValidationReason reports whether err is a ValidationError with the given reason.
func IsValidationReason(err error, reason ValidationReason) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.Reason == reason
}

// ConfigurationError reports account-map keys a tenant has not configured.
type ConfigurationError struct {
	TenantID    string
	MissingKeys []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing account map key(s) for tenant %s: %s", e.TenantID, strings.Join(e.MissingKeys, ", "))
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// NewMissingMapKeyError creates a ConfigurationError for one or more missing logical keys.
func NewMissingMapKeyError(tenantID string, keys ...string) *ConfigurationError {
	return &ConfigurationError{TenantID: tenantID, MissingKeys: keys}
}

// ConcurrencyKind distinguishes lock contention from a caller deadline.
type ConcurrencyKind string

const (
	ConcurrencyBusy    ConcurrencyKind = "BUSY"
	ConcurrencyTimeout ConcurrencyKind = "TIMEOUT"
)

// ConcurrencyError is returned when a document lock could not be acquired within the bounded wait.
type ConcurrencyError struct {
	Kind     ConcurrencyKind
	Resource string
	Err      error
}

func (e *ConcurrencyError) Error() string {
	msg := fmt.Sprintf("%s: could not lock %s", strings.ToLower(string(e.Kind)), e.Resource)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConcurrencyError) Is(target error) bool {
	return target == ErrConcurrency
}

func (e *ConcurrencyError) Unwrap() error {
	return e.Err
}

// NewBusyError creates a ConcurrencyError of kind Busy.
func NewBusyError(resource string, err error) *ConcurrencyError {
	return &ConcurrencyError{Kind: ConcurrencyBusy, Resource: resource, Err: err}
}

// NewTimeoutError creates a ConcurrencyError of kind Timeout.
func NewTimeoutError(resource string, err error) *ConcurrencyError {
	return &ConcurrencyError{Kind: ConcurrencyTimeout, Resource: resource, Err: err}
}

// AppError wraps infrastructure failures with an HTTP-ish status code.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError. A nil err is replaced with ErrInternal for 5xx codes.
func NewAppError(code int, message string, err error) *AppError {
	if err == nil && code >= 500 {
		err = ErrInternal
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an error matching ErrNotFound for the given resource.
func NewNotFoundError(resource, id string) error {
	return fmt.Errorf("%s %q: %w", resource, id, ErrNotFound)
}

// IsExpected reports whether err is one of the classified outcomes a caller can act on,
// as opposed to an infrastructure failure.
func IsExpected(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrConcurrency) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrConflict)
}
