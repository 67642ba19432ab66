package readers

import (
	"bufio"
	"io"
	"strings"
)

// Entity records can list many bounding surfaces on one line
const maxLineLength = 16 * 1024 * 1024

// lineReader hands out trimmed input lines and tracks the line number for error reports.
// Trimming removes the carriage return of Windows line endings.
type lineReader struct {
	scanner *bufio.Scanner
	line    int
}

func newLineReader(r io.Reader) *lineReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	return &lineReader{scanner: scanner}
}

// Next returns the next line, ok is false at the end of input or on a read error
func (lr *lineReader) Next() (line string, ok bool) {
	if !lr.scanner.Scan() {
		return "", false
	}
	lr.line++
	return strings.TrimSpace(lr.scanner.Text()), true
}

// NextNonBlank skips empty lines
func (lr *lineReader) NextNonBlank() (line string, ok bool) {
	for {
		if line, ok = lr.Next(); !ok || line != "" {
			return
		}
	}
}

// Line is the number of the last line returned, starting at 1
func (lr *lineReader) Line() int {
	return lr.line
}

func (lr *lineReader) Err() error {
	return lr.scanner.Err()
}

// cutField splits the first whitespace separated field from s
func cutField(s string) (field, rest string) {
	s = strings.TrimLeft(s, " \t")
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeft(s[i:], " \t")
}

// skipSection consumes lines up to and including the closing tag of a section that
// is not interpreted
func skipSection(lr *lineReader, section string) error {
	endTag := "$End" + strings.TrimPrefix(section, "$")
	for {
		line, ok := lr.Next()
		if !ok {
			return newParseError(lr, section, ErrStructure,
				"unexpected end of file, expected %s", endTag)
		}
		if line == endTag {
			return nil
		}
	}
}
