// Package errors defines the coded errors lpm reports.
//
// Engine packages never return bare strings for failures a user can act on:
// they return an [*Error] whose [Code] names the failure class, so the CLI
// can print a short message and a hint without parsing text.
//
//	if errors.Is(err, errors.ErrCodeNotAProject) {
//	    fmt.Println(errors.Hint(err))
//	}
//
// Absence is not a failure. A missing manifest field or an unclassifiable
// directory is reported through return values, not through this package.
package errors

import (
	"errors"
	"fmt"
)

// Code classifies a failure.
type Code string

const (
	// The caller passed something unusable.
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidPackage  Code = "INVALID_PACKAGE"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidPath     Code = "INVALID_PATH"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"

	// The project lacks what the operation needs.
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeNotAProject  Code = "NOT_A_PROJECT"
	ErrCodeNoDeployment Code = "NO_DEPLOYMENT"

	// Dependency walk guards.
	ErrCodeCyclicDependency  Code = "CYCLIC_DEPENDENCY"
	ErrCodeDependencyTooDeep Code = "DEPENDENCY_TOO_DEEP"

	// npm or git exited non-zero.
	ErrCodeOperationFailed Code = "OPERATION_FAILED"

	// Registry lookups.
	ErrCodeNetwork      Code = "NETWORK_ERROR"
	ErrCodeUnauthorized Code = "UNAUTHORIZED"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// hints are next steps printed after the message of a failure.
var hints = map[Code]string{
	ErrCodeInvalidPackage:    "package names are @loupeteam/<name>[@<major>.<minor>.<patch>]",
	ErrCodeNotAProject:       "run lpm from the root of an Automation Studio project",
	ErrCodeNoDeployment:      "choose deployment configurations with lpm configure",
	ErrCodeCyclicDependency:  "break the cycle in the dependencies of the packages listed",
	ErrCodeDependencyTooDeep: "raise max_depth in the lpm configuration if the tree is really that deep",
	ErrCodeOperationFailed:   "rerun with --verbose to see the tool output",
	ErrCodeUnauthorized:      "check the registry token",
}

// Error is a failure with a code. Message is meant for users; Cause keeps
// the underlying error for logs and errors.Is.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap returns an Error with a formatted message and cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// OperationFailed wraps the failure of an external process.
func OperationFailed(cause error, format string, args ...any) *Error {
	return Wrap(ErrCodeOperationFailed, cause, format, args...)
}

// GetCode returns the code of the outermost Error in err's chain, or "".
func GetCode(err error) Code {
	if e, ok := asError(err); ok {
		return e.Code
	}
	return ""
}

// Is reports whether the outermost Error in err's chain has code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// UserMessage returns the message of the outermost Error in err's chain, or
// err's text for other errors.
func UserMessage(err error) string {
	if e, ok := asError(err); ok {
		return e.Message
	}
	return err.Error()
}

// Hint returns the suggested next step for err, or "".
func Hint(err error) string {
	return hints[GetCode(err)]
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
