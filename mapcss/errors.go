package mapcss

import (
	"fmt"
	"strings"

	parse "github.com/tdewolff/parse/v2"
)

// SyntaxError is returned by Parse for malformed MapCSS.
type SyntaxError struct {
	Message string
	// Offset is the byte offset into the source, Line and Column are 1-based.
	Offset  int
	Line    int
	Column  int
	Context string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("mapcss: %s (line %d, column %d)", e.Message, e.Line, e.Column)
}

func newSyntaxError(text string, offset int, format string, args ...interface{}) *SyntaxError {
	if offset > len(text) {
		offset = len(text)
	}
	line, col, context := parse.Position(strings.NewReader(text), offset)
	return &SyntaxError{
		Message: fmt.Sprintf(format, args...),
		Offset:  offset,
		Line:    line,
		Column:  col,
		Context: strings.TrimRight(context, "\n"),
	}
}
