// Package releaseerrors defines the error kinds surfaced by release-scholar
// operations so callers can branch on the failure class with errors.Is.
package releaseerrors

import (
	"errors"
	"fmt"
)

const (
	errorWithOperationTemplateConstant = "%s: %s: %v"
	errorWithoutOperationTemplate      = "%s: %v"
	errorKindOnlyTemplateConstant      = "%s"
)

// Kind enumerates the failure classes shared by the audit and build workflows.
type Kind string

// Supported error kinds.
const (
	KindRepository Kind = "RepositoryError"
	KindParse      Kind = "ParseError"
	KindConfig     Kind = "ConfigError"
	KindIO         Kind = "IoError"
)

// Sentinels usable as errors.Is targets.
var (
	ErrRepository = &Error{Kind: KindRepository}
	ErrParse      = &Error{Kind: KindParse}
	ErrConfig     = &Error{Kind: KindConfig}
	ErrIO         = &Error{Kind: KindIO}
)

// Error carries a Kind, the operation that failed, and the underlying cause.
type Error struct {
	Kind      Kind
	Operation string
	Cause     error
}

// New wraps cause with the supplied kind and operation label.
func New(kind Kind, operation string, cause error) error {
	return &Error{Kind: kind, Operation: operation, Cause: cause}
}

// Newf builds an error of the given kind from a formatted message.
func Newf(kind Kind, operation string, format string, arguments ...any) error {
	return &Error{Kind: kind, Operation: operation, Cause: fmt.Errorf(format, arguments...)}
}

// Error renders the kind, operation, and cause.
func (releaseError *Error) Error() string {
	if releaseError.Cause == nil {
		return fmt.Sprintf(errorKindOnlyTemplateConstant, releaseError.Kind)
	}
	if len(releaseError.Operation) == 0 {
		return fmt.Sprintf(errorWithoutOperationTemplate, releaseError.Kind, releaseError.Cause)
	}
	return fmt.Sprintf(errorWithOperationTemplateConstant, releaseError.Kind, releaseError.Operation, releaseError.Cause)
}

// Unwrap exposes the underlying cause.
func (releaseError *Error) Unwrap() error {
	return releaseError.Cause
}

// Is matches any *Error sharing the same Kind.
func (releaseError *Error) Is(target error) bool {
	targetError, isReleaseError := target.(*Error)
	if !isReleaseError {
		return false
	}
	return targetError.Kind == releaseError.Kind
}

// KindOf reports the Kind of the first *Error found in the chain.
func KindOf(err error) (Kind, bool) {
	var releaseError *Error
	if errors.As(err, &releaseError) {
		return releaseError.Kind, true
	}
	return "", false
}
