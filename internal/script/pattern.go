// Package script reads AniMath scripts and renders their display directives.
//
// A script is UTF-8 text read line by line; \r\n, \r and the Unicode line
// separators all end a line. The only statement is the display directive:
//
//	显示“<text>”。
//
// The text is delimited by the curly quotation marks U+201C and U+201D and
// the directive ends with the ideographic full stop U+3002. Plain ASCII
// quotes do not open a directive. The directive may appear anywhere on its
// line and the capture is greedy, so on a line such as
//
//	显示“a”。显示“b”。
//
// the text is `a”。显示“b`. There is no escaping: backslashes and inner
// quotation marks are passed to LaTeX untouched. Every other line is ignored.
package script

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"unicode/utf8"
)

// DirectivePattern matches a display directive and captures its text.
var DirectivePattern = regexp.MustCompile(`显示\x{201C}(.*)\x{201D}\x{3002}`)

// Directive is one display statement found in a script.
type Directive struct {
	Line int // 1-based line number
	Text string
}

// ErrInvalidEncoding marks a script that is not valid UTF-8.
var ErrInvalidEncoding = errors.New("invalid UTF-8")

// EncodingError reports the first script line that is not valid UTF-8.
type EncodingError struct {
	Line int
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, ErrInvalidEncoding)
}

func (e *EncodingError) Unwrap() error { return ErrInvalidEncoding }

// Extract returns the text of the display directive on line, if any.
func Extract(line string) (string, bool) {
	m := DirectivePattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Scan reads r to the end and returns its directives in file order. The
// first line that is not valid UTF-8 fails the scan with an *EncodingError.
func Scan(r io.Reader) ([]Directive, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var directives []Directive
	for i, line := range splitLines(string(data)) {
		if !utf8.ValidString(line) {
			return nil, &EncodingError{Line: i + 1}
		}
		if text, ok := Extract(line); ok {
			directives = append(directives, Directive{Line: i + 1, Text: text})
		}
	}
	return directives, nil
}

// isLineBreak reports the runes that end a line, the universal newline set.
func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// splitLines splits s into lines without their terminators. "\r\n" is one
// break and a trailing break does not start an empty line.
func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !isLineBreak(r) {
			i += size
			continue
		}
		lines = append(lines, s[start:i])
		i += size
		if r == '\r' && i < len(s) && s[i] == '\n' {
			i++
		}
		start = i
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
