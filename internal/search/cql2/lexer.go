// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package cql2

import (
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokLParen
	tokRParen
	tokComma
	tokCompare
)

type token struct {
	kind   tokenKind
	text   string  // ident (original case), operator, or string contents
	num    float64 // valid when kind == tokNumber
	pos    int
	quoted bool // double-quoted identifier, never a keyword
}

// SyntaxError reports where a filter expression stopped making sense.
type SyntaxError struct {
	Pos     int
	Message string
}

func (e *SyntaxError) Error() string {
	return "cql2 syntax error at position " + strconv.Itoa(e.Pos) + ": " + e.Message
}

func syntaxErr(pos int, msg string) *SyntaxError {
	return &SyntaxError{Pos: pos, Message: msg}
}

type lexer struct {
	input string
	pos   int
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.input) && isSpace(l.input[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	c := l.input[l.pos]
	switch {
	case c == '(':
		l.pos++
		return token{kind: tokLParen, text: "(", pos: start}, nil
	case c == ')':
		l.pos++
		return token{kind: tokRParen, text: ")", pos: start}, nil
	case c == ',':
		l.pos++
		return token{kind: tokComma, text: ",", pos: start}, nil
	case c == '=':
		l.pos++
		return token{kind: tokCompare, text: "=", pos: start}, nil
	case c == '<':
		l.pos++
		if l.pos < len(l.input) {
			switch l.input[l.pos] {
			case '>':
				l.pos++
				return token{kind: tokCompare, text: "<>", pos: start}, nil
			case '=':
				l.pos++
				return token{kind: tokCompare, text: "<=", pos: start}, nil
			}
		}
		return token{kind: tokCompare, text: "<", pos: start}, nil
	case c == '>':
		l.pos++
		if l.pos < len(l.input) && l.input[l.pos] == '=' {
			l.pos++
			return token{kind: tokCompare, text: ">=", pos: start}, nil
		}
		return token{kind: tokCompare, text: ">", pos: start}, nil
	case c == '\'':
		return l.lexString()
	case c == '"':
		return l.lexQuotedIdent()
	case c == '-' || c == '+' || c == '.' || isDigit(c):
		return l.lexNumber()
	case isIdentStart(c):
		return l.lexIdent()
	default:
		return token{}, syntaxErr(start, "unexpected character "+strconv.QuoteRune(rune(c)))
	}
}

// lexString scans a single-quoted string where '' escapes a quote.
func (l *lexer) lexString() (token, error) {
	start := l.pos
	l.pos++ // opening quote
	var b strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == '\'' {
			if l.pos+1 < len(l.input) && l.input[l.pos+1] == '\'' {
				b.WriteByte('\'')
				l.pos += 2
				continue
			}
			l.pos++
			return token{kind: tokString, text: b.String(), pos: start}, nil
		}
		b.WriteByte(c)
		l.pos++
	}
	return token{}, syntaxErr(start, "unterminated string literal")
}

// lexQuotedIdent scans a double-quoted property name.
func (l *lexer) lexQuotedIdent() (token, error) {
	start := l.pos
	l.pos++
	end := strings.IndexByte(l.input[l.pos:], '"')
	if end < 0 {
		return token{}, syntaxErr(start, "unterminated quoted identifier")
	}
	name := l.input[l.pos : l.pos+end]
	l.pos += end + 1
	return token{kind: tokIdent, text: name, pos: start, quoted: true}, nil
}

func (l *lexer) lexNumber() (token, error) {
	start := l.pos
	if l.input[l.pos] == '-' || l.input[l.pos] == '+' {
		l.pos++
	}
	for l.pos < len(l.input) && (isDigit(l.input[l.pos]) || l.input[l.pos] == '.') {
		l.pos++
	}
	// exponent
	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		l.pos++
		if l.pos < len(l.input) && (l.input[l.pos] == '-' || l.input[l.pos] == '+') {
			l.pos++
		}
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	text := l.input[start:l.pos]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, syntaxErr(start, "invalid number "+strconv.Quote(text))
	}
	return token{kind: tokNumber, text: text, num: v, pos: start}, nil
}

func (l *lexer) lexIdent() (token, error) {
	start := l.pos
	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.pos++
	}
	return token{kind: tokIdent, text: l.input[start:l.pos], pos: start}, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || unicode.IsLetter(rune(c))
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '.' || c == ':'
}
