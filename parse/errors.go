package parse

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/cbarrick/exl/lex"
)

// ParsingError reports a single malformed construct: an operator with
// no left operand, an unmatched group closer, and similar structural
// failures (spec §4.3 "Errors").
type ParsingError struct {
	Message string
	Token   lex.Token
	cause   error
}

func (e *ParsingError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Token.Row, e.Token.Column, e.Message)
}

func (e *ParsingError) Unwrap() error {
	return e.cause
}

func newParsingError(tok lex.Token, format string, args ...interface{}) *ParsingError {
	return &ParsingError{Message: fmt.Sprintf(format, args...), Token: tok}
}

func wrapParsingError(tok lex.Token, cause error, format string, args ...interface{}) *ParsingError {
	return &ParsingError{
		Message: fmt.Sprintf(format, args...),
		Token:   tok,
		cause:   errors.Wrap(cause, fmt.Sprintf(format, args...)),
	}
}

// appendParsingError accumulates errors into one *multierror.Error, so
// the parser can keep going past a recoverable mistake and report
// everything found in one pass.
func appendParsingError(existing error, next error) error {
	return multierror.Append(existing, next)
}
