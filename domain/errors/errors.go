// Package errors provides domain-specific error types for the SDK.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/reglet-dev/zendext-sdk/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

var (
	// ErrBuilderConsumed is returned when a builder is used after Build or Finish.
	ErrBuilderConsumed = stdErrors.New("builder already consumed")

	// ErrExceptionConsumed is returned when an exception is thrown a second time.
	ErrExceptionConsumed = stdErrors.New("exception already thrown")
)

// DetailedError is an interface for custom error types that can convert themselves
// to a structured ErrorDetail. New error types only need to implement this
// interface without modifying ToErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to our structured ErrorDetail.
// This function recognizes custom error types and categorizes them appropriately.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	// If the error is already a *ErrorDetail (entity), use it directly.
	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	// Generic error - categorize as internal
	return &entities.ErrorDetail{
		Message:     err.Error(),
		Type:        "internal",
		Recoverable: true,
	}
}

// AllocationError reports that the host allocator could not satisfy a request.
// It is raised as a panic value: the host never returns from exhausted memory.
type AllocationError struct {
	Operation string
	Size      uint32
	Align     uint32
	Reason    string
}

func (e *AllocationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("host %s of %d bytes (align %d) failed: %s", e.Operation, e.Size, e.Align, e.Reason)
	}
	return fmt.Sprintf("host %s of %d bytes (align %d) failed", e.Operation, e.Size, e.Align)
}

// ToErrorDetail implements DetailedError.
func (e *AllocationError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "allocation", Code: e.Operation}
}

// InvalidExceptionError reports an attempt to throw using a class that cannot be
// instantiated (an interface or an abstract class).
type InvalidExceptionError struct {
	Class string
	Flags entities.ClassFlags
}

func (e *InvalidExceptionError) Error() string {
	return fmt.Sprintf("cannot throw %s: class flags %s do not allow instantiation", e.Class, e.Flags)
}

// ToErrorDetail implements DetailedError.
func (e *InvalidExceptionError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "exception", Code: "invalid_target", Recoverable: true}
}

// StringConversionError reports a byte sequence that cannot become a host string,
// typically because it contains an embedded NUL.
type StringConversionError struct {
	Field    string
	Position int
}

func (e *StringConversionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("field %s: embedded NUL at byte %d", e.Field, e.Position)
	}
	return fmt.Sprintf("embedded NUL at byte %d", e.Position)
}

// ToErrorDetail implements DetailedError.
func (e *StringConversionError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "string_conversion", Code: e.Field, Recoverable: true}
}

// BuilderConstraintError reports a cross-field rule violated at finish time.
type BuilderConstraintError struct {
	Builder string
	Field   string
	Reason  string
}

func (e *BuilderConstraintError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s builder: %s: %s", e.Builder, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s builder: %s", e.Builder, e.Reason)
}

// ToErrorDetail implements DetailedError.
func (e *BuilderConstraintError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "builder", Code: e.Builder, Recoverable: true}
}

// ConfigError represents a manifest or configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "validation", Code: e.Field, Recoverable: true}
}

// SchemaError represents a schema generation or validation error.
type SchemaError struct {
	Err  error
	Type string
}

func (e *SchemaError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("schema error for type %s: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("schema error: %v", e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *SchemaError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "validation", Code: "schema", Recoverable: true}
}
