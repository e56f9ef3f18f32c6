package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every *Error matches the sentinel of its Kind through errors.Is.
var (
	// ErrValidation is matched by missing or malformed required input.
	ErrValidation = errors.New("validation error")

	// ErrStoreUnavailable is matched when the record store could not be read or written.
	ErrStoreUnavailable = errors.New("record store unavailable")

	// ErrRecordNotFound is returned when a lookup by natural key finds no row.
	ErrRecordNotFound = errors.New("record not found")

	// ErrDateParse is matched when a date value could not be parsed.
	ErrDateParse = errors.New("date could not be parsed")

	// ErrMissingDate is returned when the maintenance date of an induction
	// check is absent or unparsable.
	ErrMissingDate = errors.New("missing maintenance date")
)

var errEmptyDate = errors.New("empty value")

// Kind categorizes an Error for reporting.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindStoreUnavailable
	KindNotFound
	KindDateParse
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindStoreUnavailable:
		return "StoreUnavailable"
	case KindNotFound:
		return "RecordNotFound"
	case KindDateParse:
		return "DateParseError"
	default:
		return "UnknownError"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindStoreUnavailable:
		return ErrStoreUnavailable
	case KindNotFound:
		return ErrRecordNotFound
	case KindDateParse:
		return ErrDateParse
	default:
		return nil
	}
}

// Error is a typed failure carrying the operation and, for input problems,
// the offending field.
type Error struct {
	Kind    Kind
	Op      string
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel that corresponds to the error's Kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// Validation reports missing or malformed input.
func Validation(op, field, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Field: field, Message: message}
}

// StoreUnavailable wraps a store read or write failure.
func StoreUnavailable(op string, err error) *Error {
	return &Error{Kind: KindStoreUnavailable, Op: op, Message: "record store unavailable", Err: err}
}

// NotFound reports a business-data absence.
func NotFound(op, message string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: message}
}

// DateParse reports a value of field that is not a valid date.
func DateParse(op, field, value string, err error) *Error {
	return &Error{
		Kind:    KindDateParse,
		Op:      op,
		Field:   field,
		Message: fmt.Sprintf("invalid date %q for %s", value, field),
		Err:     err,
	}
}

// KindOf extracts the Kind of err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf renders err for a caller: the Message of a typed error (with its
// cause for store failures), or the plain error text.
func MessageOf(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Kind == KindStoreUnavailable && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}
