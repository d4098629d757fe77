// Package parser builds Tern syntax trees with a recursive-descent parser.
//
// Expressions follow a fixed precedence cascade, lowest to highest:
//
//	and → or → not → comparison → & → + - → * / % quot rem → atom
//
// Comparison and & are non-associative. Keyword forms (if, let, seq, ...) are
// looked up in a single registry and may appear anywhere an atom may.
package parser

import (
	"strconv"

	"github.com/sambeau/tern/pkg/tern/ast"
	perrors "github.com/sambeau/tern/pkg/tern/errors"
	"github.com/sambeau/tern/pkg/tern/lexer"
)

type formParseFn func(tok lexer.Token) (ast.Expression, error)

// Parser consumes tokens from a Lexer. Parsing stops at the first error.
type Parser struct {
	l *lexer.Lexer

	forms map[string]formParseFn
}

var (
	comparisonOps     = map[string]bool{"<": true, ">": true, "=": true, "≤": true, "≥": true, "≠": true}
	additiveOps       = map[string]bool{"+": true, "-": true}
	multiplicativeOps = map[string]bool{"*": true, "/": true, "%": true, "quot": true, "rem": true}
)

// New creates a new parser instance
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.forms = make(map[string]formParseFn)
	p.registerForm("if", p.parseIfElse)
	p.registerForm("while", p.parseWhile)
	p.registerForm("for", p.parseFor)
	p.registerForm("let", p.parseLet)
	p.registerForm("letMut", p.parseLet)
	p.registerForm("letAnd", p.parseLetAnd)
	p.registerForm("seq", p.parseSeq)
	p.registerForm("put", p.parsePut)
	p.registerForm("get", p.parseGet)
	p.registerForm("assign", p.parseAssign)
	p.registerForm("printing", p.parsePrint)
	p.registerForm("ubool", p.parseUBool)
	p.registerForm("func", p.parseLetFun)
	p.registerForm("funCall", p.parseFunCall)
	p.registerForm("slice", p.parseSlice)
	p.registerForm("listappend", p.parseCons)
	p.registerForm("lst", p.parseListLiteral)
	p.registerForm("strlength", p.parseStrLength)
	p.registerForm("popval", p.parsePopLast)
	p.registerForm("vowelnumb", p.parseVowelCount)
	p.registerForm("stringidx", p.parseStringIndex)
	p.registerForm("len", p.parseLen)
	p.registerForm("index", p.parseIndex)
	p.registerForm("isEmpty", p.parseIsEmpty)
	p.registerForm("lenSen", p.parseWordCount)
	p.registerForm("reversestr", p.parseReverse)
	p.registerForm("concat", p.parseConcat)

	return p
}

// Parse lexes and parses a complete program.
func Parse(source string) (ast.Expression, error) {
	return New(lexer.New(source)).ParseProgram()
}

func (p *Parser) registerForm(keyword string, fn formParseFn) {
	p.forms[keyword] = fn
}

// ParseProgram parses one expression and requires it to consume all input.
func (p *Parser) ParseProgram() (ast.Expression, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	tok, err := p.l.Peek()
	if err != nil {
		return nil, err
	}
	if tok.Type != lexer.EOF {
		return nil, perrors.NewWithPosition("PARSE-0002", tok.Line, tok.Column, map[string]any{"Token": tok.String()})
	}
	return expr, nil
}

// next returns and consumes the next token.
func (p *Parser) next() (lexer.Token, error) {
	tok, err := p.l.Peek()
	if err != nil {
		return tok, err
	}
	p.l.Advance()
	return tok, nil
}

// peekOperator reports whether the next token is an operator in ops.
func (p *Parser) peekOperator(ops map[string]bool) (lexer.Token, bool, error) {
	tok, err := p.l.Peek()
	if err != nil {
		return tok, false, err
	}
	return tok, tok.Type == lexer.OPERATOR && ops[tok.Literal], nil
}

func (p *Parser) keyword(word string) error { return p.l.Match(lexer.Keyword(word)) }
func (p *Parser) operator(op string) error  { return p.l.Match(lexer.Operator(op)) }

// identifier consumes a name slot.
func (p *Parser) identifier(after string) (*ast.Variable, error) {
	tok, err := p.l.Peek()
	if err != nil {
		return nil, err
	}
	if tok.Type != lexer.IDENT {
		return nil, perrors.NewWithPosition("PARSE-0004", tok.Line, tok.Column, map[string]any{
			"After": after,
			"Got":   tok.String(),
		})
	}
	p.l.Advance()
	v := &ast.Variable{Name: tok.Literal}
	v.Token = tok
	return v, nil
}

// ---------------------------------------------------------------------------
// Precedence cascade

func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseAnd()
}

// leftAssoc parses operand (op operand)* for operators in ops.
func (p *Parser) leftAssoc(ops map[string]bool, operand func() (ast.Expression, error)) (ast.Expression, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok, err := p.peekOperator(ops)
		if err != nil {
			return nil, err
		}
		if !ok {
			return left, nil
		}
		p.l.Advance()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = newBinOp(tok, left, right)
	}
}

// nonAssoc parses operand [op operand] for operators in ops.
func (p *Parser) nonAssoc(ops map[string]bool, operand func() (ast.Expression, error)) (ast.Expression, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	tok, ok, err := p.peekOperator(ops)
	if err != nil || !ok {
		return left, err
	}
	p.l.Advance()
	right, err := operand()
	if err != nil {
		return nil, err
	}
	return newBinOp(tok, left, right), nil
}

func (p *Parser) parseAnd() (ast.Expression, error) {
	return p.leftAssoc(map[string]bool{"and": true}, p.parseOr)
}

func (p *Parser) parseOr() (ast.Expression, error) {
	return p.leftAssoc(map[string]bool{"or": true}, p.parseNot)
}

func (p *Parser) parseNot() (ast.Expression, error) {
	tok, ok, err := p.peekOperator(map[string]bool{"not": true})
	if err != nil {
		return nil, err
	}
	if !ok {
		return p.parseComparison()
	}
	p.l.Advance()
	operand, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	u := &ast.UnOp{Operator: tok.Literal, Operand: operand}
	u.Token = tok
	return u, nil
}

func (p *Parser) parseComparison() (ast.Expression, error) {
	return p.nonAssoc(comparisonOps, p.parseBitAnd)
}

func (p *Parser) parseBitAnd() (ast.Expression, error) {
	return p.nonAssoc(map[string]bool{"&": true}, p.parseAdditive)
}

func (p *Parser) parseAdditive() (ast.Expression, error) {
	return p.leftAssoc(additiveOps, p.parseMultiplicative)
}

func (p *Parser) parseMultiplicative() (ast.Expression, error) {
	return p.leftAssoc(multiplicativeOps, p.parseAtom)
}

func newBinOp(tok lexer.Token, left, right ast.Expression) *ast.BinOp {
	b := &ast.BinOp{Operator: tok.Literal, Left: left, Right: right}
	b.Token = tok
	return b
}

func (p *Parser) parseAtom() (ast.Expression, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}

	switch tok.Type {
	case lexer.INT:
		value, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return nil, perrors.NewWithPosition("PARSE-0003", tok.Line, tok.Column, map[string]any{"Literal": tok.Literal})
		}
		lit := &ast.IntegerLiteral{Value: value}
		lit.Token = tok
		return lit, nil
	case lexer.BOOL:
		lit := &ast.BooleanLiteral{Value: tok.Literal == "True"}
		lit.Token = tok
		return lit, nil
	case lexer.STRING:
		lit := &ast.StringLiteral{Value: tok.Literal}
		lit.Token = tok
		return lit, nil
	case lexer.IDENT:
		v := &ast.Variable{Name: tok.Literal}
		v.Token = tok
		return v, nil
	case lexer.OPERATOR:
		if tok.Literal == "(" {
			// re-enters at the comparison level, not the full cascade
			inner, err := p.parseComparison()
			if err != nil {
				return nil, err
			}
			if err := p.operator(")"); err != nil {
				return nil, err
			}
			return inner, nil
		}
	case lexer.KEYWORD:
		if form, ok := p.forms[tok.Literal]; ok {
			return form(tok)
		}
	}

	return nil, perrors.NewWithPosition("PARSE-0001", tok.Line, tok.Column, map[string]any{
		"Expected": "an expression",
		"Got":      tok.String(),
	})
}

// ---------------------------------------------------------------------------
// Keyword forms. Each receives its already-consumed keyword token.

func (p *Parser) parseIfElse(tok lexer.Token) (ast.Expression, error) {
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.keyword("then"); err != nil {
		return nil, err
	}
	then, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.keyword("else"); err != nil {
		return nil, err
	}
	alt, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.keyword("end"); err != nil {
		return nil, err
	}
	n := &ast.IfElse{Condition: cond, Then: then, Else: alt}
	n.Token = tok
	return n, nil
}

func (p *Parser) parseWhile(tok lexer.Token) (ast.Expression, error) {
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.keyword("do"); err != nil {
		return nil, err
	}
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.keyword("done"); err != nil {
		return nil, err
	}
	n := &ast.While{Condition: cond, Body: body}
	n.Token = tok
	return n, nil
}

func (p *Parser) parseFor(tok lexer.Token) (ast.Expression, error) {
	v, err := p.identifier("for")
	if err != nil {
		return nil, err
	}
	if err := p.keyword("is"); err != nil {
		return nil, err
	}
	// init ; cond ; update ; body end
	parts := make([]ast.Expression, 4)
	for i := range parts {
		if parts[i], err = p.parseExpression(); err != nil {
			return nil, err
		}
		if i < len(parts)-1 {
			err = p.operator(";")
		} else {
			err = p.keyword("end")
		}
		if err != nil {
			return nil, err
		}
	}
	n := &ast.For{Var: v, Init: parts[0], Condition: parts[1], Update: parts[2], Body: parts[3]}
	n.Token = tok
	return n, nil
}

// binding parses `V is E`.
func (p *Parser) binding(after string) (*ast.Variable, ast.Expression, error) {
	v, err := p.identifier(after)
	if err != nil {
		return nil, nil, err
	}
	if err := p.keyword("is"); err != nil {
		return nil, nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, nil, err
	}
	return v, value, nil
}

// inBody parses `in B end`.
func (p *Parser) inBody() (ast.Expression, error) {
	if err := p.keyword("in"); err != nil {
		return nil, err
	}
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.keyword("end"); err != nil {
		return nil, err
	}
	return body, nil
}

func (p *Parser) parseLet(tok lexer.Token) (ast.Expression, error) {
	v, value, err := p.binding(tok.Literal)
	if err != nil {
		return nil, err
	}
	body, err := p.inBody()
	if err != nil {
		return nil, err
	}
	n := &ast.Let{Name: v, Value: value, Body: body, Mutable: tok.Literal == "letMut"}
	n.Token = tok
	return n, nil
}

func (p *Parser) parseLetAnd(tok lexer.Token) (ast.Expression, error) {
	first, firstValue, err := p.binding("letAnd")
	if err != nil {
		return nil, err
	}
	if err := p.operator(";"); err != nil {
		return nil, err
	}
	second, secondValue, err := p.binding(";")
	if err != nil {
		return nil, err
	}
	body, err := p.inBody()
	if err != nil {
		return nil, err
	}
	n := &ast.LetAnd{First: first, FirstValue: firstValue, Second: second, SecondValue: secondValue, Body: body}
	n.Token = tok
	return n, nil
}

func (p *Parser) parseSeq(tok lexer.Token) (ast.Expression, error) {
	n := &ast.Seq{}
	n.Token = tok

	next, err := p.l.Peek()
	if err != nil {
		return nil, err
	}
	if next.Equal(lexer.Keyword("end")) {
		p.l.Advance()
		return n, nil
	}

	for {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		n.Body = append(n.Body, expr)

		_, more, err := p.peekOperator(map[string]bool{";": true})
		if err != nil {
			return nil, err
		}
		if !more {
			if err := p.keyword("end"); err != nil {
				return nil, err
			}
			return n, nil
		}
		p.l.Advance()
	}
}

func (p *Parser) parsePut(tok lexer.Token) (ast.Expression, error) {
	v, value, err := p.binding("put")
	if err != nil {
		return nil, err
	}
	if err := p.keyword("end"); err != nil {
		return nil, err
	}
	n := &ast.Put{Name: v, Value: value}
	n.Token = tok
	return n, nil
}

func (p *Parser) parseGet(tok lexer.Token) (ast.Expression, error) {
	v, err := p.identifier("get")
	if err != nil {
		return nil, err
	}
	n := &ast.Get{Name: v}
	n.Token = tok
	return n, nil
}

func (p *Parser) parseAssign(tok lexer.Token) (ast.Expression, error) {
	v, value, err := p.binding("assign")
	if err != nil {
		return nil, err
	}
	n := &ast.Assign{Name: v, Value: value}
	n.Token = tok
	return n, nil
}

// terminated parses `E end`.
func (p *Parser) terminated() (ast.Expression, error) {
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.keyword("end"); err != nil {
		return nil, err
	}
	return value, nil
}

func (p *Parser) parsePrint(tok lexer.Token) (ast.Expression, error) {
	value, err := p.terminated()
	if err != nil {
		return nil, err
	}
	n := &ast.Print{Value: value}
	n.Token = tok
	return n, nil
}

func (p *Parser) parseUBool(tok lexer.Token) (ast.Expression, error) {
	value, err := p.terminated()
	if err != nil {
		return nil, err
	}
	n := &ast.UBoolOp{Operand: value}
	n.Token = tok
	return n, nil
}

// list parses `open item (, item)* close`, allowing an empty list.
func (p *Parser) list(open, close string, item func() error) error {
	if err := p.operator(open); err != nil {
		return err
	}
	tok, err := p.l.Peek()
	if err != nil {
		return err
	}
	if tok.Equal(lexer.Operator(close)) {
		p.l.Advance()
		return nil
	}
	for {
		if err := item(); err != nil {
			return err
		}
		_, more, err := p.peekOperator(map[string]bool{",": true})
		if err != nil {
			return err
		}
		if !more {
			return p.operator(close)
		}
		p.l.Advance()
	}
}

func (p *Parser) parseLetFun(tok lexer.Token) (ast.Expression, error) {
	name, err := p.identifier("func")
	if err != nil {
		return nil, err
	}
	n := &ast.LetFun{Name: name}
	n.Token = tok

	err = p.list("(", ")", func() error {
		param, err := p.identifier("(")
		if err == nil {
			n.Params = append(n.Params, param)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if n.Body, err = p.parseExpression(); err != nil {
		return nil, err
	}
	if err := p.operator(","); err != nil {
		return nil, err
	}
	if n.Rest, err = p.parseExpression(); err != nil {
		return nil, err
	}
	return n, nil
}

func (p *Parser) parseFunCall(tok lexer.Token) (ast.Expression, error) {
	name, err := p.identifier("funCall")
	if err != nil {
		return nil, err
	}
	n := &ast.FunCall{Name: name}
	n.Token = tok

	err = p.list("(", ")", func() error {
		arg, err := p.parseExpression()
		if err == nil {
			n.Args = append(n.Args, arg)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (p *Parser) parseSlice(tok lexer.Token) (ast.Expression, error) {
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.keyword("start"); err != nil {
		return nil, err
	}
	start, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.keyword("stop"); err != nil {
		return nil, err
	}
	stop, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	n := &ast.Slice{Value: value, Start: start, Stop: stop}
	n.Token = tok
	return n, nil
}

func (p *Parser) parseCons(tok lexer.Token) (ast.Expression, error) {
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.keyword("in"); err != nil {
		return nil, err
	}
	name, err := p.identifier("in")
	if err != nil {
		return nil, err
	}
	n := &ast.Cons{Name: name, Value: value}
	n.Token = tok
	return n, nil
}

func (p *Parser) parseListLiteral(tok lexer.Token) (ast.Expression, error) {
	n := &ast.ListLiteral{}
	n.Token = tok
	err := p.list("[", "]", func() error {
		elem, err := p.parseExpression()
		if err == nil {
			n.Elements = append(n.Elements, elem)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

// parenthesized parses `( E )`.
func (p *Parser) parenthesized() (ast.Expression, error) {
	if err := p.operator("("); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.operator(")"); err != nil {
		return nil, err
	}
	return value, nil
}

func (p *Parser) parseStrLength(tok lexer.Token) (ast.Expression, error) {
	value, err := p.parenthesized()
	if err != nil {
		return nil, err
	}
	n := &ast.StrLength{Value: value}
	n.Token = tok
	return n, nil
}

func (p *Parser) parseVowelCount(tok lexer.Token) (ast.Expression, error) {
	value, err := p.parenthesized()
	if err != nil {
		return nil, err
	}
	n := &ast.VowelCount{Value: value}
	n.Token = tok
	return n, nil
}

func (p *Parser) parseReverse(tok lexer.Token) (ast.Expression, error) {
	value, err := p.parenthesized()
	if err != nil {
		return nil, err
	}
	n := &ast.Reverse{Value: value}
	n.Token = tok
	return n, nil
}

func (p *Parser) parsePopLast(tok lexer.Token) (ast.Expression, error) {
	if err := p.operator("("); err != nil {
		return nil, err
	}
	name, err := p.identifier("(")
	if err != nil {
		return nil, err
	}
	if err := p.operator(")"); err != nil {
		return nil, err
	}
	n := &ast.PopLast{Name: name}
	n.Token = tok
	return n, nil
}

func (p *Parser) parseStringIndex(tok lexer.Token) (ast.Expression, error) {
	if err := p.operator("("); err != nil {
		return nil, err
	}
	name, err := p.identifier("(")
	if err != nil {
		return nil, err
	}
	if err := p.operator(","); err != nil {
		return nil, err
	}
	idx, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.operator(")"); err != nil {
		return nil, err
	}
	n := &ast.StringIndex{Name: name, Index: idx}
	n.Token = tok
	return n, nil
}

func (p *Parser) parseConcat(tok lexer.Token) (ast.Expression, error) {
	if err := p.operator("("); err != nil {
		return nil, err
	}
	left, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.operator(","); err != nil {
		return nil, err
	}
	right, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.operator(")"); err != nil {
		return nil, err
	}
	n := &ast.Concat{Left: left, Right: right}
	n.Token = tok
	return n, nil
}

func (p *Parser) parseIndex(tok lexer.Token) (ast.Expression, error) {
	name, err := p.identifier("index")
	if err != nil {
		return nil, err
	}
	if err := p.operator("["); err != nil {
		return nil, err
	}
	idx, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.operator("]"); err != nil {
		return nil, err
	}
	n := &ast.Index{Name: name, Index: idx}
	n.Token = tok
	return n, nil
}

func (p *Parser) parseLen(tok lexer.Token) (ast.Expression, error) {
	name, err := p.identifier("len")
	if err != nil {
		return nil, err
	}
	n := &ast.Len{Name: name}
	n.Token = tok
	return n, nil
}

func (p *Parser) parseIsEmpty(tok lexer.Token) (ast.Expression, error) {
	name, err := p.identifier("isEmpty")
	if err != nil {
		return nil, err
	}
	n := &ast.IsEmpty{Name: name}
	n.Token = tok
	return n, nil
}

func (p *Parser) parseWordCount(tok lexer.Token) (ast.Expression, error) {
	name, err := p.identifier("lenSen")
	if err != nil {
		return nil, err
	}
	n := &ast.WordCount{Name: name}
	n.Token = tok
	return n, nil
}
