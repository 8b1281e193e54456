// Package gen emits POJO, table and DAO sources from loaded table metadata.
package gen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/syssam/asyncdao/compiler/load"
)

var (
	// ErrInvalidSchema is shared with the loader so errors.Is matches
	// problems found by either.
	ErrInvalidSchema = load.ErrInvalidSchema
	// ErrMissingConfig is matched by every ConfigError.
	ErrMissingConfig = errors.New("asyncdao: missing configuration")
	// ErrGenerationFailed is matched by every GenerationError.
	ErrGenerationFailed = errors.New("asyncdao: code generation failed")
)

// describe joins the non-empty parts of an error message after head.
// Each entry of parts is a prefix and a value; empty values are dropped.
func describe(head string, parts ...string) string {
	var b strings.Builder
	b.WriteString(head)
	for i := 0; i+1 < len(parts); i += 2 {
		if parts[i+1] == "" {
			continue
		}
		b.WriteString(parts[i])
		b.WriteString(parts[i+1])
	}
	return b.String()
}

func causeText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// SchemaError reports a table or column the generator cannot turn into Go code,
// such as a reserved name or two columns mapping to the same field.
type SchemaError struct {
	Table   string
	Column  string
	Message string
	Cause   error
}

func (e *SchemaError) Error() string {
	return describe("asyncdao: schema error",
		" on table ", e.Table,
		" column ", e.Column,
		": ", e.Message,
		": ", causeText(e.Cause),
	)
}

func (e *SchemaError) Unwrap() error { return e.Cause }

func (e *SchemaError) Is(target error) bool { return target == ErrInvalidSchema }

// NewSchemaError returns a SchemaError. column may be empty for table-level problems.
func NewSchemaError(table, column, message string, cause error) *SchemaError {
	return &SchemaError{Table: table, Column: column, Message: message, Cause: cause}
}

// ConfigError reports an invalid generator option.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

func (e *ConfigError) Error() string {
	opt := fmt.Sprintf("%q", e.Option)
	if e.Value != nil {
		opt += fmt.Sprintf(" (value: %v)", e.Value)
	}
	return "asyncdao: config error for " + opt + ": " + e.Message
}

func (e *ConfigError) Is(target error) bool { return target == ErrMissingConfig }

// NewConfigError returns a ConfigError for option. value is shown when non-nil.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{Option: option, Value: value, Message: message}
}

// GenerationError reports a file that could not be rendered or written.
// Phase is "render" or "write".
type GenerationError struct {
	Phase   string
	File    string
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	var file string
	if e.File != "" {
		file = " (file: " + e.File + ")"
	}
	return describe("asyncdao: generation error",
		" in phase ", e.Phase,
		"", file,
		": ", e.Message,
		": ", causeText(e.Cause),
	)
}

func (e *GenerationError) Unwrap() error { return e.Cause }

func (e *GenerationError) Is(target error) bool { return target == ErrGenerationFailed }

// NewGenerationError returns a GenerationError.
func NewGenerationError(phase, file, message string, cause error) *GenerationError {
	return &GenerationError{Phase: phase, File: file, Message: message, Cause: cause}
}

// IsSchemaError reports whether err wraps a SchemaError.
func IsSchemaError(err error) bool {
	var target *SchemaError
	return errors.As(err, &target)
}

// IsConfigError reports whether err wraps a ConfigError.
func IsConfigError(err error) bool {
	var target *ConfigError
	return errors.As(err, &target)
}

// IsGenerationError reports whether err wraps a GenerationError.
func IsGenerationError(err error) bool {
	var target *GenerationError
	return errors.As(err, &target)
}
