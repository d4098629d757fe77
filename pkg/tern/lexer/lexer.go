// Package lexer turns Tern source text into tokens.
package lexer

import (
	"errors"
	"unicode"

	perrors "github.com/sambeau/tern/pkg/tern/errors"
)

// Lexer produces one token at a time with a single token of lookahead.
type Lexer struct {
	stream *Stream
	save   *Token // peeked token, cleared by Advance
	last   *Token // most recent token produced by NextToken
}

// New creates a new lexer instance
func New(input string) *Lexer {
	return &Lexer{stream: NewStream(input)}
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() (Token, error) {
	if l.save != nil {
		return *l.save, nil
	}
	tok, err := l.NextToken()
	if err != nil {
		return Token{}, err
	}
	l.save = &tok
	return tok, nil
}

// Advance consumes the peeked token. It panics if nothing was peeked.
func (l *Lexer) Advance() {
	if l.save == nil {
		panic("lexer: advance without peek")
	}
	l.save = nil
}

// Match consumes the next token if it equals expected, else fails with a
// parse error naming both tokens.
func (l *Lexer) Match(expected Token) error {
	tok, err := l.Peek()
	if err != nil {
		return err
	}
	if !tok.Equal(expected) {
		return perrors.NewWithPosition("PARSE-0001", tok.Line, tok.Column, map[string]any{
			"Expected": expected.String(),
			"Got":      tok.String(),
		})
	}
	l.Advance()
	return nil
}

// NextToken scans the input and returns the next token, bypassing the peek cache.
func (l *Lexer) NextToken() (Token, error) {
	for {
		start := l.stream.Pos()
		c, err := l.stream.Next()
		if errors.Is(err, ErrEndOfInput) {
			return l.emit(EOF, "", start), nil
		}

		switch {
		case unicode.IsSpace(c):
			continue
		case c == '-' && l.negativeAllowed() && l.digitFollows():
			return l.emit(INT, "-"+l.readDigits(), start), nil
		case symbolicOperators[c]:
			return l.emit(OPERATOR, string(c), start), nil
		case c == '"':
			s, ok := l.readString()
			if !ok {
				line, col := l.stream.Position(start)
				return Token{}, perrors.NewWithPosition("LEX-0001", line, col, nil)
			}
			return l.emit(STRING, s, start), nil
		case isDigit(c):
			l.stream.Unget()
			return l.emit(INT, l.readDigits(), start), nil
		case unicode.IsLetter(c):
			l.stream.Unget()
			word := l.readWord()
			return l.emit(LookupWord(word), word, start), nil
		default:
			line, col := l.stream.Position(start)
			return Token{}, perrors.NewWithPosition("LEX-0002", line, col, map[string]any{"Char": string(c)})
		}
	}
}

func (l *Lexer) emit(tt TokenType, literal string, start int) Token {
	line, col := l.stream.Position(start)
	tok := Token{Type: tt, Literal: literal, Line: line, Column: col}
	l.last = &tok
	return tok
}

// negativeAllowed reports whether a '-' here starts a literal rather than a
// subtraction: only when the previous token cannot end an operand.
func (l *Lexer) negativeAllowed() bool {
	if l.last == nil {
		return true
	}
	switch l.last.Type {
	case INT, FLOAT, BOOL, IDENT, STRING:
		return false
	case OPERATOR:
		return l.last.Literal != ")" && l.last.Literal != "]"
	case KEYWORD:
		return l.last.Literal != "end" && l.last.Literal != "done"
	}
	return true
}

func (l *Lexer) digitFollows() bool {
	c, err := l.stream.Next()
	if err != nil {
		return false
	}
	l.stream.Unget()
	return isDigit(c)
}

// readDigits greedily consumes a run of digits.
func (l *Lexer) readDigits() string {
	var out []rune
	for {
		c, err := l.stream.Next()
		if err != nil {
			return string(out)
		}
		if !isDigit(c) {
			l.stream.Unget()
			return string(out)
		}
		out = append(out, c)
	}
}

// readWord greedily consumes a run of letters.
func (l *Lexer) readWord() string {
	var out []rune
	for {
		c, err := l.stream.Next()
		if err != nil {
			return string(out)
		}
		if !unicode.IsLetter(c) {
			l.stream.Unget()
			return string(out)
		}
		out = append(out, c)
	}
}

// readString reads up to the closing quote; the opening quote is already consumed.
func (l *Lexer) readString() (string, bool) {
	var out []rune
	for {
		c, err := l.stream.Next()
		if err != nil {
			return "", false
		}
		if c == '"' {
			return string(out), true
		}
		out = append(out, c)
	}
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}
