// Package errors combines stdlib errors with pkg/errors so call sites get
// stack traces from a single import.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

func New(text string) error {
	return pkgerrors.New(text)
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// AsType is a generic version of As that returns the typed error and a boolean.
func AsType[T error](err error) (T, bool) {
	var target T
	ok := stderrors.As(err, &target)

	return target, ok
}

func Wrap(err error, message string) error {
	return pkgerrors.Wrap(err, message)
}

func Wrapf(err error, format string, args ...any) error {
	return pkgerrors.Wrapf(err, format, args...)
}

func WithStack(err error) error {
	return pkgerrors.WithStack(err)
}

func Errorf(format string, args ...any) error {
	return pkgerrors.Errorf(format, args...)
}

// StackLines renders the %+v form of err as trimmed, non-empty lines, keeping
// at most limit of them. A limit <= 0 keeps everything.
func StackLines(err error, limit int) []string {
	if err == nil {
		return nil
	}

	var lines []string
	for _, line := range strings.Split(fmt.Sprintf("%+v", err), "\n") {
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		lines = append(lines, line)
		if limit > 0 && len(lines) == limit {
			break
		}
	}

	return lines
}
