package lexer

import (
	"errors"
	"sort"

	"golang.org/x/text/unicode/norm"
)

// ErrEndOfInput is returned by Stream when the cursor runs past either end of
// the source. The lexer turns it into an EOF token at token boundaries.
var ErrEndOfInput = errors.New("end of input")

// Stream wraps source text with a zero-based cursor over its characters.
type Stream struct {
	source     []rune
	pos        int
	lineStarts []int // offsets of the first character of each line
}

// NewStream creates a stream positioned at the first character.
// The source is NFC-normalised so composed operators such as ≤ and accented
// letters always arrive as a single character.
func NewStream(source string) *Stream {
	runes := []rune(norm.NFC.String(source))
	starts := []int{0}
	for i, r := range runes {
		if r == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Stream{source: runes, lineStarts: starts}
}

// Next returns the character at the cursor and advances.
func (s *Stream) Next() (rune, error) {
	if s.pos >= len(s.source) {
		return 0, ErrEndOfInput
	}
	s.pos++
	return s.source[s.pos-1], nil
}

// Prev moves the cursor back one position and returns the character there.
func (s *Stream) Prev() (rune, error) {
	if s.pos <= 0 {
		return 0, ErrEndOfInput
	}
	s.pos--
	return s.source[s.pos], nil
}

// Unget moves the cursor back one position. It panics at position 0.
func (s *Stream) Unget() {
	if s.pos <= 0 {
		panic("lexer: unget at start of stream")
	}
	s.pos--
}

// Pos returns the cursor offset in characters.
func (s *Stream) Pos() int {
	return s.pos
}

// Position converts a character offset to a 1-based line and column.
func (s *Stream) Position(offset int) (line, column int) {
	i := sort.Search(len(s.lineStarts), func(i int) bool {
		return s.lineStarts[i] > offset
	}) - 1
	if i < 0 {
		i = 0
	}
	return i + 1, offset - s.lineStarts[i] + 1
}
