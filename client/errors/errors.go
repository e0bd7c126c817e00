package errors

import (
	"errors"
	"fmt"
)

type Status string

// The node could not be reached while fetching metadata, or the metadata is not usable
const MetadataFetchError Status = "MetadataFetchError"

// No pallet by the given name exists in the runtime
const UnknownPalletError Status = "UnknownPalletError"

// No extrinsic by the given name exists in the pallet
const UnknownExtrinsicError Status = "UnknownExtrinsicError"

// No storage entry by the given name exists in the pallet
const UnknownStorageError Status = "UnknownStorageError"

// A value for an argument could not be obtained from the operator
const ArgumentResolutionError Status = "ArgumentResolutionError"

// The number of resolved arguments does not match the declared arity
const ArgumentCountMismatchError Status = "ArgumentCountMismatchError"

// A resolved argument could not be encoded into the shape the metadata demands
const EncodingError Status = "EncodingError"

// Could not connect to the node
const ConnectionError Status = "ConnectionError"

// Signing or submitting the extrinsic failed
const SubmissionError Status = "SubmissionError"

// The operator canceled an interactive step
const Canceled Status = "Canceled"

// No outcome for this error known
const UnknownError Status = "UnknownError"

type Error struct {
	Status  Status
	Message string
	// underlying cause, if any
	Cause error
}

var _ error = &Error{}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Status, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func Errorf(status Status, format string, args ...interface{}) error {
	return &Error{
		Status:  status,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap attaches a status to an underlying cause.
func Wrap(status Status, cause error, format string, args ...interface{}) error {
	return &Error{
		Status:  status,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

func MetadataFetchf(cause error, format string, args ...interface{}) error {
	return Wrap(MetadataFetchError, cause, format, args...)
}

func UnknownPalletf(format string, args ...interface{}) error {
	return Errorf(UnknownPalletError, format, args...)
}

func UnknownExtrinsicf(format string, args ...interface{}) error {
	return Errorf(UnknownExtrinsicError, format, args...)
}

func UnknownStoragef(format string, args ...interface{}) error {
	return Errorf(UnknownStorageError, format, args...)
}

func ArgumentCountMismatchf(format string, args ...interface{}) error {
	return Errorf(ArgumentCountMismatchError, format, args...)
}

func Encodingf(cause error, format string, args ...interface{}) error {
	return Wrap(EncodingError, cause, format, args...)
}

func Connectionf(cause error, format string, args ...interface{}) error {
	return Wrap(ConnectionError, cause, format, args...)
}

func Submissionf(cause error, format string, args ...interface{}) error {
	return Wrap(SubmissionError, cause, format, args...)
}

// Used when the operator interrupts a prompt (ctrl+c, EOF)
func Canceledf(format string, args ...interface{}) error {
	return Errorf(Canceled, format, args...)
}

func Unknownf(format string, args ...interface{}) error {
	return Errorf(UnknownError, format, args...)
}

// StatusOf returns the status of the first *Error in the chain, or UnknownError.
func StatusOf(err error) Status {
	var xcErr *Error
	if errors.As(err, &xcErr) {
		return xcErr.Status
	}
	return UnknownError
}

// Is reports whether any error in err's chain carries the given status.
func Is(err error, status Status) bool {
	for err != nil {
		if xcErr, ok := err.(*Error); ok && xcErr.Status == status {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}
