package asyncdao

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for common operations.
var (
	// ErrTooManyRows is returned when a fetch-one query yields more than one row.
	ErrTooManyRows = errors.New("asyncdao: too many rows")

	// ErrUnsupported is returned when an operation cannot run for the table's
	// key shape or the client's dialect.
	ErrUnsupported = errors.New("asyncdao: unsupported operation")

	// ErrNoPrimaryKey is returned by id based operations on tables without a primary key.
	ErrNoPrimaryKey = errors.New("asyncdao: table has no primary key")

	// ErrNoClient is returned when a DAO runs an operation before a client was set.
	ErrNoClient = errors.New("asyncdao: no client configured")

	// ErrConstraint matches every ConstraintError.
	ErrConstraint = errors.New("asyncdao: constraint failed")
)

// Reasons reported by UnsupportedError for insert-returning.
const (
	ReasonCompositeKey   = "More than one PK column"
	ReasonNonIntegerKey  = "PK is not of type int or long"
	ReasonDialect        = "Only MySQL, Postgres and SQLite supported"
	ReasonKeyNotTuple    = "composite key does not implement KeyValues"
	ReasonNoGeneratedKey = "statement returned no generated key"
)

// TooManyRowsError is returned by fetch-one when the query yields more
// than a single row.
type TooManyRowsError struct {
	count int
}

// Error returns the error string.
func (e *TooManyRowsError) Error() string {
	return fmt.Sprintf("asyncdao: got more than one row: %d", e.count)
}

// Is reports whether the target error matches TooManyRowsError.
// This allows errors.Is(err, ErrTooManyRows) to return true.
func (e *TooManyRowsError) Is(err error) bool {
	return err == ErrTooManyRows
}

// Count returns the number of rows the query produced.
func (e *TooManyRowsError) Count() int {
	return e.count
}

// NewTooManyRowsError returns a new TooManyRowsError for the given row count.
func NewTooManyRowsError(count int) *TooManyRowsError {
	return &TooManyRowsError{count: count}
}

// IsTooManyRows returns true if the error is a TooManyRowsError.
func IsTooManyRows(err error) bool {
	if err == nil {
		return false
	}
	var e *TooManyRowsError
	return errors.As(err, &e) || errors.Is(err, ErrTooManyRows)
}

// UnsupportedError reports an operation the table or dialect cannot serve.
type UnsupportedError struct {
	Op     string // Operation (e.g., "insertReturningPrimary")
	Table  string // Table name, optional
	Reason string
}

// Error returns the error string.
func (e *UnsupportedError) Error() string {
	var b strings.Builder
	b.WriteString("asyncdao: ")
	b.WriteString(e.Op)
	if e.Table != "" {
		b.WriteString(" on ")
		b.WriteString(e.Table)
	}
	b.WriteString(" not supported")
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

// Is reports whether the target error matches UnsupportedError.
func (e *UnsupportedError) Is(err error) bool {
	return err == ErrUnsupported
}

// NewUnsupportedError returns a new UnsupportedError.
func NewUnsupportedError(op, table, reason string) *UnsupportedError {
	return &UnsupportedError{Op: op, Table: table, Reason: reason}
}

// IsUnsupported returns true if the error is an UnsupportedError.
func IsUnsupported(err error) bool {
	if err == nil {
		return false
	}
	var e *UnsupportedError
	return errors.As(err, &e) || errors.Is(err, ErrUnsupported)
}

// ConstraintError represents a database constraint violation error.
type ConstraintError struct {
	msg  string
	wrap error
}

// Error returns the error string.
func (e ConstraintError) Error() string {
	return fmt.Sprintf("asyncdao: constraint failed: %s", e.msg)
}

// Unwrap returns the underlying error.
func (e ConstraintError) Unwrap() error {
	return e.wrap
}

// Is reports whether the target error is ErrConstraint.
func (e ConstraintError) Is(err error) bool {
	return err == ErrConstraint
}

// NewConstraintError returns a new ConstraintError with the given message.
func NewConstraintError(msg string, wrap error) error {
	return ConstraintError{msg: msg, wrap: wrap}
}

// IsConstraintError returns true if the error is a ConstraintError.
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var e ConstraintError
	return errors.As(err, &e)
}

// QueryError wraps a driver error with the operation that produced it.
type QueryError struct {
	Table string // Table being accessed, optional
	Op    string // Operation (e.g., "fetch", "execute", "insertReturning")
	Err   error  // Underlying error
}

// Error returns the error string.
func (e *QueryError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("asyncdao: %s %s: %v", e.Op, e.Table, e.Err)
	}
	return fmt.Sprintf("asyncdao: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError returns a new QueryError.
func NewQueryError(table, op string, err error) *QueryError {
	return &QueryError{Table: table, Op: op, Err: err}
}

// IsQueryError returns true if the error is a QueryError.
func IsQueryError(err error) bool {
	if err == nil {
		return false
	}
	var e *QueryError
	return errors.As(err, &e)
}

// AggregateError represents multiple errors collected during an operation.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "asyncdao: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("asyncdao: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}
