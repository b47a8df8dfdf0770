// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

// Package cql2 translates CQL2 text filters into their CQL2 JSON encoding
// and validates CQL2 JSON structure. Evaluation is not implemented here;
// the encoded filter is handed to PgSTAC, which compiles it to SQL.
//
// Supported surface: binary comparisons, AND/OR/NOT, IN, BETWEEN, LIKE,
// IS NULL, CASEI/ACCENTI, TIMESTAMP/DATE/INTERVAL literals, WKT geometry
// and BBOX literals, the spatial predicates S_INTERSECTS, S_CONTAINS,
// S_WITHIN and S_DISJOINT, and the T_* temporal predicates.
package cql2

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Node is one vertex of a parsed filter expression.
type Node interface {
	encode() interface{}
}

// Op is an operator application: comparisons, logical connectives, spatial
// predicates and functions such as casei all share this shape in CQL2
// JSON.
type Op struct {
	Name string
	Args []Node
}

func (o Op) encode() interface{} {
	args := make([]interface{}, len(o.Args))
	for i, a := range o.Args {
		args[i] = a.encode()
	}
	return map[string]interface{}{"op": o.Name, "args": args}
}

// Property references a queryable by name.
type Property struct {
	Name string
}

func (p Property) encode() interface{} {
	return map[string]interface{}{"property": p.Name}
}

// Literal is a plain scalar: string, number or boolean.
type Literal struct {
	Value interface{}
}

func (l Literal) encode() interface{} { return l.Value }

// List is an argument that encodes as a JSON array, used by IN.
type List struct {
	Items []Node
}

func (l List) encode() interface{} {
	items := make([]interface{}, len(l.Items))
	for i, n := range l.Items {
		items[i] = n.encode()
	}
	return items
}

// Timestamp is a TIMESTAMP('...') literal.
type Timestamp struct {
	Value string
}

func (t Timestamp) encode() interface{} {
	return map[string]interface{}{"timestamp": t.Value}
}

// Date is a DATE('...') literal.
type Date struct {
	Value string
}

func (d Date) encode() interface{} {
	return map[string]interface{}{"date": d.Value}
}

// Interval is an INTERVAL('start', 'end') literal. Open ends carry "..".
type Interval struct {
	Start string
	End   string
}

func (iv Interval) encode() interface{} {
	return map[string]interface{}{"interval": []string{iv.Start, iv.End}}
}

// Geometry is a spatial literal, already in its JSON form: a GeoJSON
// geometry from WKT, or {"bbox": [...]} from BBOX().
type Geometry struct {
	Value map[string]interface{}
}

func (g Geometry) encode() interface{} { return g.Value }

// Encode renders a parsed expression as CQL2 JSON.
func Encode(n Node) (json.RawMessage, error) {
	out, err := json.Marshal(n.encode())
	if err != nil {
		return nil, fmt.Errorf("encode cql2-json: %w", err)
	}
	return out, nil
}

// TextToJSON parses a CQL2 text expression and returns its CQL2 JSON
// encoding.
func TextToJSON(input string) (json.RawMessage, error) {
	node, err := Parse(input)
	if err != nil {
		return nil, err
	}
	return Encode(node)
}
