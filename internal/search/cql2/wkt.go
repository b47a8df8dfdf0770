// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package cql2

import "strings"

// parseWKT converts a WKT geometry literal into its GeoJSON form. The
// current token is the geometry keyword.
func (p *parser) parseWKT(keyword string) (Node, error) {
	geoType := wktTypes[keyword]
	if err := p.advance(); err != nil {
		return nil, err
	}

	var coords interface{}
	var err error
	switch keyword {
	case "POINT":
		coords, err = p.parseParenPosition()
	case "LINESTRING":
		coords, err = p.parsePositionList()
	case "POLYGON":
		coords, err = p.parseRingList()
	case "MULTIPOINT":
		coords, err = p.parseMultiPoint()
	case "MULTILINESTRING":
		coords, err = p.parseRingList()
	case "MULTIPOLYGON":
		coords, err = p.parsePolygonList()
	case "GEOMETRYCOLLECTION":
		return p.parseGeometryCollection()
	}
	if err != nil {
		return nil, err
	}
	return Geometry{Value: map[string]interface{}{
		"type":        geoType,
		"coordinates": coords,
	}}, nil
}

// parsePosition reads two or three whitespace-separated numbers.
func (p *parser) parsePosition() ([]float64, error) {
	if p.tok.kind != tokNumber {
		return nil, syntaxErr(p.tok.pos, "expected a coordinate")
	}
	pos := []float64{p.tok.num}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.kind != tokNumber {
		return nil, syntaxErr(p.tok.pos, "expected a coordinate pair")
	}
	pos = append(pos, p.tok.num)
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.kind == tokNumber {
		pos = append(pos, p.tok.num)
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return pos, nil
}

// parseParenPosition reads ( x y ).
func (p *parser) parseParenPosition() ([]float64, error) {
	if err := p.expect(tokLParen, "("); err != nil {
		return nil, err
	}
	pos, err := p.parsePosition()
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokRParen, ")"); err != nil {
		return nil, err
	}
	return pos, nil
}

// parsePositionList reads ( x y, x y, ... ).
func (p *parser) parsePositionList() ([][]float64, error) {
	if err := p.expect(tokLParen, "("); err != nil {
		return nil, err
	}
	var list [][]float64
	for {
		pos, err := p.parsePosition()
		if err != nil {
			return nil, err
		}
		list = append(list, pos)
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
	return list, nil
}

// parseRingList reads ( ( x y, ... ), ( x y, ... ) ).
func (p *parser) parseRingList() ([][][]float64, error) {
	if err := p.expect(tokLParen, "("); err != nil {
		return nil, err
	}
	var rings [][][]float64
	for {
		ring, err := p.parsePositionList()
		if err != nil {
			return nil, err
		}
		rings = append(rings, ring)
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
	return rings, nil
}

// parsePolygonList reads the MULTIPOLYGON body.
func (p *parser) parsePolygonList() ([][][][]float64, error) {
	if err := p.expect(tokLParen, "("); err != nil {
		return nil, err
	}
	var polys [][][][]float64
	for {
		poly, err := p.parseRingList()
		if err != nil {
			return nil, err
		}
		polys = append(polys, poly)
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
	return polys, nil
}

// parseMultiPoint accepts both MULTIPOINT(1 2, 3 4) and the parenthesized
// MULTIPOINT((1 2), (3 4)) form.
func (p *parser) parseMultiPoint() ([][]float64, error) {
	if err := p.expect(tokLParen, "("); err != nil {
		return nil, err
	}
	var list [][]float64
	for {
		var pos []float64
		var err error
		if p.tok.kind == tokLParen {
			pos, err = p.parseParenPosition()
		} else {
			pos, err = p.parsePosition()
		}
		if err != nil {
			return nil, err
		}
		list = append(list, pos)
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
	return list, nil
}

func (p *parser) parseGeometryCollection() (Node, error) {
	if err := p.expect(tokLParen, "("); err != nil {
		return nil, err
	}
	var geoms []interface{}
	for {
		if p.tok.kind != tokIdent || p.tok.quoted {
			return nil, syntaxErr(p.tok.pos, "expected a geometry")
		}
		keyword := strings.ToUpper(p.tok.text)
		if _, ok := wktTypes[keyword]; !ok || keyword == "GEOMETRYCOLLECTION" {
			return nil, syntaxErr(p.tok.pos, "expected a geometry")
		}
		node, err := p.parseWKT(keyword)
		if err != nil {
			return nil, err
		}
		geoms = append(geoms, node.(Geometry).Value)
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
	return Geometry{Value: map[string]interface{}{
		"type":       "GeometryCollection",
		"geometries": geoms,
	}}, nil
}
