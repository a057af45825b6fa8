// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package yangcheck

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed run, its value is the process exit code
//
// There is no kind for -3, the gap is intentional
type ErrorKind int

const (
	// KindUsageOrLoad is a wrong invocation or a schema that could not be loaded
	KindUsageOrLoad ErrorKind = -1
	// KindDataRead is a data file that could not be read or did not validate
	KindDataRead ErrorKind = -2
	// KindExamine is a failure while rendering a validated tree
	KindExamine ErrorKind = -4
)

// String implements fmt.Stringer
func (k ErrorKind) String() string {
	switch k {
	case KindUsageOrLoad:
		return "usage or load"
	case KindDataRead:
		return "data read"
	case KindExamine:
		return "examine"
	default:
		return fmt.Sprintf("unknown (%d)", int(k))
	}
}

// Error is a failure of one stage of a check
type Error struct {
	Kind ErrorKind
	Err  error

	// Reported is set when the failure was already logged where it happened
	Reported bool
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain
func KindOf(err error) (ErrorKind, bool) {
	var kErr *Error
	if errors.As(err, &kErr) {
		return kErr.Kind, true
	}
	return 0, false
}

// IsReported reports whether err was already logged where it happened
func IsReported(err error) bool {
	var kErr *Error
	return errors.As(err, &kErr) && kErr.Reported
}

func reported(kind ErrorKind, err error) error {
	return &Error{Kind: kind, Err: err, Reported: true}
}

// UsageError is a wrong invocation
func UsageError(err error) error {
	return &Error{Kind: KindUsageOrLoad, Err: err}
}
