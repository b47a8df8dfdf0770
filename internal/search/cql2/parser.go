// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package cql2

import "strings"

// binaryPredicates are the function-style spatial and temporal predicates,
// all taking exactly two operands.
var binaryPredicates = map[string]string{
	"S_INTERSECTS":   "s_intersects",
	"S_CONTAINS":     "s_contains",
	"S_WITHIN":       "s_within",
	"S_DISJOINT":     "s_disjoint",
	"T_AFTER":        "t_after",
	"T_BEFORE":       "t_before",
	"T_CONTAINS":     "t_contains",
	"T_DISJOINT":     "t_disjoint",
	"T_DURING":       "t_during",
	"T_EQUALS":       "t_equals",
	"T_FINISHEDBY":   "t_finishedby",
	"T_FINISHES":     "t_finishes",
	"T_INTERSECTS":   "t_intersects",
	"T_MEETS":        "t_meets",
	"T_METBY":        "t_metby",
	"T_OVERLAPPEDBY": "t_overlappedby",
	"T_OVERLAPS":     "t_overlaps",
	"T_STARTEDBY":    "t_startedby",
	"T_STARTS":       "t_starts",
}

var wktTypes = map[string]string{
	"POINT":              "Point",
	"LINESTRING":         "LineString",
	"POLYGON":            "Polygon",
	"MULTIPOINT":         "MultiPoint",
	"MULTILINESTRING":    "MultiLineString",
	"MULTIPOLYGON":       "MultiPolygon",
	"GEOMETRYCOLLECTION": "GeometryCollection",
}

type parser struct {
	lex *lexer
	tok token
}

// Parse parses a CQL2 text expression into an AST.
func Parse(input string) (Node, error) {
	if strings.TrimSpace(input) == "" {
		return nil, syntaxErr(0, "empty filter expression")
	}
	p := &parser{lex: &lexer{input: input}}
	if err := p.advance(); err != nil {
		return nil, err
	}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, syntaxErr(p.tok.pos, "unexpected input after expression")
	}
	return node, nil
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

// isKeyword matches a bare identifier case-insensitively. Double-quoted
// identifiers are always property names.
func (p *parser) isKeyword(kw string) bool {
	return p.tok.kind == tokIdent && !p.tok.quoted && strings.EqualFold(p.tok.text, kw)
}

func (p *parser) expectKeyword(kw string) error {
	if !p.isKeyword(kw) {
		return syntaxErr(p.tok.pos, "expected "+kw)
	}
	return p.advance()
}

func (p *parser) expect(kind tokenKind, what string) error {
	if p.tok.kind != kind {
		return syntaxErr(p.tok.pos, "expected "+what)
	}
	return p.advance()
}

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	args := []Node{left}
	for p.isKeyword("OR") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		args = append(args, right)
	}
	if len(args) == 1 {
		return left, nil
	}
	return Op{Name: "or", Args: args}, nil
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	args := []Node{left}
	for p.isKeyword("AND") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		args = append(args, right)
	}
	if len(args) == 1 {
		return left, nil
	}
	return Op{Name: "and", Args: args}, nil
}

func (p *parser) parseNot() (Node, error) {
	if p.isKeyword("NOT") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return Op{Name: "not", Args: []Node{inner}}, nil
	}
	return p.parsePredicate()
}

func (p *parser) parsePredicate() (Node, error) {
	if p.tok.kind == tokLParen {
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen, ")"); err != nil {
			return nil, err
		}
		return inner, nil
	}
	if p.tok.kind == tokIdent && !p.tok.quoted {
		if name, ok := binaryPredicates[strings.ToUpper(p.tok.text)]; ok {
			return p.parseBinaryPredicate(name)
		}
	}
	return p.parseComparison()
}

func (p *parser) parseBinaryPredicate(name string) (Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(tokLParen, "("); err != nil {
		return nil, err
	}
	first, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokComma, ","); err != nil {
		return nil, err
	}
	second, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokRParen, ")"); err != nil {
		return nil, err
	}
	return Op{Name: name, Args: []Node{first, second}}, nil
}

func (p *parser) parseComparison() (Node, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	if p.isKeyword("IS") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		negated := false
		if p.isKeyword("NOT") {
			negated = true
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if err := p.expectKeyword("NULL"); err != nil {
			return nil, err
		}
		node := Node(Op{Name: "isNull", Args: []Node{left}})
		if negated {
			node = Op{Name: "not", Args: []Node{node}}
		}
		return node, nil
	}

	negated := false
	if p.isKeyword("NOT") {
		negated = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	var node Node
	switch {
	case p.isKeyword("IN"):
		if node, err = p.parseIn(left); err != nil {
			return nil, err
		}
	case p.isKeyword("BETWEEN"):
		if node, err = p.parseBetween(left); err != nil {
			return nil, err
		}
	case p.isKeyword("LIKE"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		pattern, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		node = Op{Name: "like", Args: []Node{left, pattern}}
	default:
		if negated {
			return nil, syntaxErr(p.tok.pos, "expected IN, BETWEEN or LIKE after NOT")
		}
		if p.tok.kind != tokCompare {
			return nil, syntaxErr(p.tok.pos, "expected a comparison operator")
		}
		op := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		node = Op{Name: op, Args: []Node{left, right}}
	}

	if negated {
		node = Op{Name: "not", Args: []Node{node}}
	}
	return node, nil
}

func (p *parser) parseIn(item Node) (Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(tokLParen, "("); err != nil {
		return nil, err
	}
	var items []Node
	for {
		v, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
		if p.tok.kind != tokComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(tokRParen, ")"); err != nil {
		return nil, err
	}
	return Op{Name: "in", Args: []Node{item, List{Items: items}}}, nil
}

func (p *parser) parseBetween(item Node) (Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	lo, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("AND"); err != nil {
		return nil, err
	}
	hi, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return Op{Name: "between", Args: []Node{item, lo, hi}}, nil
}

func (p *parser) parseOperand() (Node, error) {
	switch p.tok.kind {
	case tokString:
		node := Literal{Value: p.tok.text}
		return node, p.advance()
	case tokNumber:
		node := Literal{Value: p.tok.num}
		return node, p.advance()
	case tokIdent:
		if p.tok.quoted {
			node := Property{Name: p.tok.text}
			return node, p.advance()
		}
		upper := strings.ToUpper(p.tok.text)
		switch upper {
		case "TRUE":
			return Literal{Value: true}, p.advance()
		case "FALSE":
			return Literal{Value: false}, p.advance()
		case "TIMESTAMP":
			return p.parseTimeLiteral("timestamp")
		case "DATE":
			return p.parseTimeLiteral("date")
		case "INTERVAL":
			return p.parseInterval()
		case "CASEI", "ACCENTI":
			return p.parseStringFunc(strings.ToLower(upper))
		case "BBOX":
			return p.parseBBoxLiteral()
		}
		if _, ok := wktTypes[upper]; ok {
			return p.parseWKT(upper)
		}
		node := Property{Name: p.tok.text}
		return node, p.advance()
	default:
		return nil, syntaxErr(p.tok.pos, "expected a literal or property")
	}
}

// parseTimeLiteral handles TIMESTAMP('...') and DATE('...'). The quoted
// value is carried verbatim; temporal validation happens in the database.
func (p *parser) parseTimeLiteral(kind string) (Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(tokLParen, "("); err != nil {
		return nil, err
	}
	if p.tok.kind != tokString {
		return nil, syntaxErr(p.tok.pos, "expected a quoted "+kind)
	}
	value := p.tok.text
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(tokRParen, ")"); err != nil {
		return nil, err
	}
	if kind == "date" {
		return Date{Value: value}, nil
	}
	return Timestamp{Value: value}, nil
}

func (p *parser) parseInterval() (Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(tokLParen, "("); err != nil {
		return nil, err
	}
	if p.tok.kind != tokString {
		return nil, syntaxErr(p.tok.pos, "expected a quoted interval start")
	}
	start := p.tok.text
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(tokComma, ","); err != nil {
		return nil, err
	}
	if p.tok.kind != tokString {
		return nil, syntaxErr(p.tok.pos, "expected a quoted interval end")
	}
	end := p.tok.text
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(tokRParen, ")"); err != nil {
		return nil, err
	}
	return Interval{Start: start, End: end}, nil
}

func (p *parser) parseStringFunc(name string) (Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(tokLParen, "("); err != nil {
		return nil, err
	}
	arg, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokRParen, ")"); err != nil {
		return nil, err
	}
	return Op{Name: name, Args: []Node{arg}}, nil
}

func (p *parser) parseBBoxLiteral() (Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(tokLParen, "("); err != nil {
		return nil, err
	}
	var coords []float64
	for {
		if p.tok.kind != tokNumber {
			return nil, syntaxErr(p.tok.pos, "expected a bbox coordinate")
		}
		coords = append(coords, p.tok.num)
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.kind != tokComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(tokRParen, ")"); err != nil {
		return nil, err
	}
	if len(coords) != 4 && len(coords) != 6 {
		return nil, syntaxErr(p.tok.pos, "bbox requires 4 or 6 coordinates")
	}
	return Geometry{Value: map[string]interface{}{"bbox": coords}}, nil
}
