package readers

import (
	"errors"
	"fmt"
)

// Parse failure categories, match with errors.Is
var (
	ErrStructure = errors.New("malformed msh input")
	ErrValue     = errors.New("invalid msh value")
	ErrReference = errors.New("dangling msh reference")
	ErrDuplicate = errors.New("duplicate msh tag")
)

// ParseError is returned for every msh parsing failure. Wrapping errors carry the
// context of the enclosing section and leave Kind nil, the innermost error names the
// failure category.
type ParseError struct {
	Section string // e.g. "$Nodes"
	Kind    error
	Line    int // Input line at which the failure was detected, 0 when not tied to a line
	Msg     string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return e.Msg + "\n" + e.Err.Error()
	}
	return e.Msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return e.Kind != nil && e.Kind == target
}

// newParseError reports a failure at the current line. A read error of the input is
// attached as the cause, it is what ended the input early.
func newParseError(lr *lineReader, section string, kind error, format string, args ...interface{}) *ParseError {
	return &ParseError{
		Section: section,
		Kind:    kind,
		Line:    lr.Line(),
		Msg:     fmt.Sprintf(format, args...),
		Err:     lr.Err(),
	}
}

// wrapParseError adds a line of context in front of a failure from a nested parser
func wrapParseError(section, msg string, err error) *ParseError {
	pe := &ParseError{Section: section, Msg: msg, Err: err}
	var inner *ParseError
	if errors.As(err, &inner) {
		pe.Line = inner.Line
	}
	return pe
}
