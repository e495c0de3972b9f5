package linecsv

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidByteSequence is returned when a physical line is not valid text in the source encoding.
	ErrInvalidByteSequence = errors.New("linecsv: invalid byte sequence")
	// ErrStrayQuote is returned when a quote is neither a doubled escape nor a field boundary.
	ErrStrayQuote = errors.New("linecsv: missing or stray quote")
	// ErrUnclosedQuote is returned when the source ends inside a quoted field.
	ErrUnclosedQuote = errors.New("linecsv: unclosed quoted field")
	// ErrFieldSizeExceeded is returned when a quoted field grows past Options.FieldSizeLimit.
	ErrFieldSizeExceeded = errors.New("linecsv: field size exceeded")
	// ErrIllegalQuoting is returned when an unquoted field contains the quote character.
	ErrIllegalQuoting = errors.New("linecsv: illegal quoting")
	// ErrUnquotedNewline is returned when an unquoted field contains a bare \r or \n.
	ErrUnquotedNewline = errors.New(`linecsv: unquoted fields do not allow \r or \n`)
)

// ParseError reports malformed input together with the 1-based line it was found on.
type ParseError struct {
	Line int
	Err  error
}

// Error formats the parse error message with the stored Line and Err values.
func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("linecsv: parse error on line %d: %v", e.Line, e.Err)
}

// Unwrap returns the underlying Err so ParseError participates in errors.Is.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ConfigError is returned by constructors when Options cannot be resolved.
type ConfigError struct {
	Option string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("linecsv: invalid option %s: %s: %v", e.Option, e.Reason, e.Err)
	}
	return fmt.Sprintf("linecsv: invalid option %s: %s", e.Option, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
