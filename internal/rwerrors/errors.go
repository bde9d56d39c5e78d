// Package rwerrors defines the uniform failure kinds raised by the rotating
// writer pipeline (spec.md §7).
package rwerrors

import "github.com/pkg/errors"

// BadPartition is raised when a record violates the partitioning rules: a
// configured partition column is missing, null, or not a string leaf.
type BadPartition struct {
	reason string
}

func NewBadPartition(reason string) *BadPartition {
	return &BadPartition{reason: reason}
}

func (e *BadPartition) Error() string {
	return "bad partition: " + e.reason
}

// SchemaResolution is raised when a schema resolver cannot produce a
// non-empty schema for a record shape.
type SchemaResolution struct {
	reason string
}

func NewSchemaResolution(reason string) *SchemaResolution {
	return &SchemaResolution{reason: reason}
}

func (e *SchemaResolution) Error() string {
	return "schema resolution failed: " + e.reason
}

// IoError wraps a failure from the underlying columnar writer: open, write,
// or close.
type IoError struct {
	cause error
}

func NewIoError(cause error) *IoError {
	return &IoError{cause: cause}
}

func (e *IoError) Error() string {
	return "io error: " + e.cause.Error()
}

func (e *IoError) Unwrap() error {
	return e.cause
}

// EncodeError is raised when the record encoder fails on one record.
type EncodeError struct {
	cause error
}

func NewEncodeError(cause error) *EncodeError {
	return &EncodeError{cause: cause}
}

func (e *EncodeError) Error() string {
	return "encode error: " + e.cause.Error()
}

func (e *EncodeError) Unwrap() error {
	return e.cause
}

// UserHandlerError wraps a failure raised by a caller-supplied post-write
// handler.
type UserHandlerError struct {
	cause error
}

func NewUserHandlerError(cause error) *UserHandlerError {
	return &UserHandlerError{cause: cause}
}

func (e *UserHandlerError) Error() string {
	return "post-write handler error: " + e.cause.Error()
}

func (e *UserHandlerError) Unwrap() error {
	return e.cause
}

// Wrap attaches a message to err using errors.WithMessage, matching the
// wrapping convention used throughout this module.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	return errors.WithMessage(err, message)
}

// Wrapf is the formatted variant of Wrap.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return errors.WithMessagef(err, format, args...)
}
