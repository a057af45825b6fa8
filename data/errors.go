// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package data

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// ErrNoData is returned when a document does not contain any data node
var ErrNoData = errors.New("no data nodes found")

// Violation is a single problem found in instance data
type Violation struct {
	Path    string
	Message string
}

// Error implements the error interface
func (v Violation) Error() string {
	if v.Path == "" {
		return v.Message
	}
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// ValidationError aggregates every violation found while reading a document
type ValidationError struct {
	merr *multierror.Error
}

// Error implements the error interface, rendering every violation on a single line
func (e *ValidationError) Error() string {
	if e.merr == nil {
		return "no violations"
	}
	return e.merr.Error()
}

// Unwrap returns the individual violations
func (e *ValidationError) Unwrap() []error {
	if e.merr == nil {
		return nil
	}
	return e.merr.WrappedErrors()
}

// Violations returns the individual violations in the order they were found
func (e *ValidationError) Violations() []Violation {
	errs := e.Unwrap()
	out := make([]Violation, 0, len(errs))
	for _, err := range errs {
		var v Violation
		if errors.As(err, &v) {
			out = append(out, v)
		}
	}
	return out
}

func (e *ValidationError) append(path, format string, args ...any) {
	e.merr = multierror.Append(e.merr, Violation{Path: path, Message: fmt.Sprintf(format, args...)})
	e.merr.ErrorFormat = violationFormat
}

func (e *ValidationError) len() int {
	if e.merr == nil {
		return 0
	}
	return e.merr.Len()
}

func (e *ValidationError) errorOrNil() error {
	if e.merr.ErrorOrNil() == nil {
		return nil
	}
	return e
}

func violationFormat(errs []error) string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d violations: %s", len(errs), strings.Join(msgs, "; "))
}
