package lex

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// CompilerError is the fatal error reported by the lexer (spec §7):
// a message plus the row/column where lexing failed.
type CompilerError struct {
	Message string
	Row     int
	Column  int
	cause   error
}

func (e *CompilerError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Row, e.Column, e.Message)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *CompilerError) Unwrap() error {
	return e.cause
}

func newError(row, col int, format string, args ...interface{}) *CompilerError {
	return &CompilerError{
		Message: fmt.Sprintf(format, args...),
		Row:     row,
		Column:  col,
	}
}

func wrapError(row, col int, cause error, message string) *CompilerError {
	return &CompilerError{
		Message: message,
		Row:     row,
		Column:  col,
		cause:   errors.Wrap(cause, message),
	}
}

// errUnterminated reports an unterminated quoted literal (char list or
// byte list), per spec §4.2 "Termination".
func errUnterminated(row, col int, quote string) *CompilerError {
	return newError(row, col, "Unterminated token: unterminated %s literal", quote)
}

// appendError folds a CompilerError into a running *multierror.Error;
// a nil next leaves existing unchanged. The Lexer itself stops at its
// first fatal condition and does not accumulate errors.
func appendError(existing error, next error) error {
	if next == nil {
		return existing
	}
	return multierror.Append(existing, next)
}
