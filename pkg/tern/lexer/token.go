package lexer

import (
	"fmt"
	"sort"
)

// TokenType represents the kind of token.
type TokenType int

const (
	EOF      TokenType = iota // end of tokens sentinel, not an error
	INT                       // 42, -7
	FLOAT                     // reserved: no float syntax is recognised
	BOOL                      // True, False
	KEYWORD                   // let, while, ...
	IDENT                     // counter
	OPERATOR                  // + ; ( and quot ...
	STRING                    // "text"
)

// String returns a string representation of the token type
func (tt TokenType) String() string {
	switch tt {
	case EOF:
		return "EOF"
	case INT:
		return "INT"
	case FLOAT:
		return "FLOAT"
	case BOOL:
		return "BOOL"
	case KEYWORD:
		return "KEYWORD"
	case IDENT:
		return "IDENT"
	case OPERATOR:
		return "OPERATOR"
	case STRING:
		return "STRING"
	default:
		return "UNKNOWN"
	}
}

// Token represents a single token. Line and Column locate its first character.
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

// Equal compares kind and payload, ignoring position.
func (t Token) Equal(other Token) bool {
	return t.Type == other.Type && t.Literal == other.Literal
}

// String returns a representation used in error messages.
func (t Token) String() string {
	switch t.Type {
	case EOF:
		return "end of input"
	case KEYWORD:
		return fmt.Sprintf("keyword '%s'", t.Literal)
	case OPERATOR:
		return fmt.Sprintf("'%s'", t.Literal)
	case STRING:
		return fmt.Sprintf("string %q", t.Literal)
	case IDENT:
		return fmt.Sprintf("identifier '%s'", t.Literal)
	default:
		return t.Literal
	}
}

// Keyword builds a keyword token for matching.
func Keyword(word string) Token { return Token{Type: KEYWORD, Literal: word} }

// Operator builds an operator token for matching.
func Operator(op string) Token { return Token{Type: OPERATOR, Literal: op} }

var keywords = map[string]bool{}

func init() {
	for _, kw := range []string{
		"if", "then", "else", "end", "len", "while", "index", "isEmpty", "lenSen",
		"do", "done", "let", "is", "in", "letMut", "letAnd", "strlength",
		"reversestr", "vowelnumb", "stringidx", "of", "popval", "seq", "anth",
		"put", "get", "printing", "for", "ubool", "func", "funCall", "assign",
		"slice", "lst", "listappend", "start", "stop", "concat",
	} {
		keywords[kw] = true
	}
}

// symbolic operators are single characters
var symbolicOperators = map[rune]bool{
	'+': true, '-': true, '*': true, '&': true, '/': true, '<': true, '>': true,
	'=': true, '≤': true, '≥': true, '≠': true, ';': true, ',': true, '%': true,
	'(': true, ')': true, '[': true, ']': true,
}

var wordOperators = map[string]bool{
	"and": true, "or": true, "not": true, "quot": true, "rem": true,
}

// LookupWord classifies an alphabetic run as keyword, word operator, boolean
// literal or identifier.
func LookupWord(word string) TokenType {
	switch {
	case keywords[word]:
		return KEYWORD
	case wordOperators[word]:
		return OPERATOR
	case word == "True" || word == "False":
		return BOOL
	default:
		return IDENT
	}
}

// Keywords returns the reserved words, sorted.
func Keywords() []string {
	words := make([]string, 0, len(keywords))
	for kw := range keywords {
		words = append(words, kw)
	}
	sort.Strings(words)
	return words
}
