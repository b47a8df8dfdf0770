// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package cql2

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"pgregory.net/rapid"
)

func assertJSON(t *testing.T, got json.RawMessage, want string) {
	t.Helper()
	var g, w interface{}
	if err := json.Unmarshal(got, &g); err != nil {
		t.Fatalf("got is not valid JSON: %v (%s)", err, got)
	}
	if err := json.Unmarshal([]byte(want), &w); err != nil {
		t.Fatalf("want is not valid JSON: %v (%s)", err, want)
	}
	if !reflect.DeepEqual(g, w) {
		t.Errorf("encoding mismatch\ngot:  %s\nwant: %s", got, want)
	}
}

func TestTextToJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "string equality",
			input: "collection = 'landsat'",
			want:  `{"op":"=","args":[{"property":"collection"},"landsat"]}`,
		},
		{
			name:  "namespaced property",
			input: "eo:cloud_cover <= 10",
			want:  `{"op":"<=","args":[{"property":"eo:cloud_cover"},10]}`,
		},
		{
			name:  "not equal",
			input: "platform <> 'landsat-8'",
			want:  `{"op":"<>","args":[{"property":"platform"},"landsat-8"]}`,
		},
		{
			name:  "and binds tighter than or",
			input: "a = 1 AND b = 2 OR c = 3",
			want: `{"op":"or","args":[
				{"op":"and","args":[
					{"op":"=","args":[{"property":"a"},1]},
					{"op":"=","args":[{"property":"b"},2]}]},
				{"op":"=","args":[{"property":"c"},3]}]}`,
		},
		{
			name:  "parentheses override precedence",
			input: "a = 1 AND (b = 2 OR c = 3)",
			want: `{"op":"and","args":[
				{"op":"=","args":[{"property":"a"},1]},
				{"op":"or","args":[
					{"op":"=","args":[{"property":"b"},2]},
					{"op":"=","args":[{"property":"c"},3]}]}]}`,
		},
		{
			name:  "chained and is n-ary",
			input: "a = 1 AND b = 2 AND c = 3",
			want: `{"op":"and","args":[
				{"op":"=","args":[{"property":"a"},1]},
				{"op":"=","args":[{"property":"b"},2]},
				{"op":"=","args":[{"property":"c"},3]}]}`,
		},
		{
			name:  "not",
			input: "NOT gsd > 30",
			want:  `{"op":"not","args":[{"op":">","args":[{"property":"gsd"},30]}]}`,
		},
		{
			name:  "in list",
			input: "id IN ('a', 'b', 'c')",
			want:  `{"op":"in","args":[{"property":"id"},["a","b","c"]]}`,
		},
		{
			name:  "not in wraps negation",
			input: "id NOT IN (1, 2)",
			want:  `{"op":"not","args":[{"op":"in","args":[{"property":"id"},[1,2]]}]}`,
		},
		{
			name:  "between",
			input: "eo:cloud_cover BETWEEN 0 AND 50",
			want:  `{"op":"between","args":[{"property":"eo:cloud_cover"},0,50]}`,
		},
		{
			name:  "like",
			input: "mission LIKE 'sentinel%'",
			want:  `{"op":"like","args":[{"property":"mission"},"sentinel%"]}`,
		},
		{
			name:  "is null",
			input: "description IS NULL",
			want:  `{"op":"isNull","args":[{"property":"description"}]}`,
		},
		{
			name:  "is not null",
			input: "description IS NOT NULL",
			want:  `{"op":"not","args":[{"op":"isNull","args":[{"property":"description"}]}]}`,
		},
		{
			name:  "escaped quote in string",
			input: "title = 'it''s fine'",
			want:  `{"op":"=","args":[{"property":"title"},"it's fine"]}`,
		},
		{
			name:  "quoted property name",
			input: `"strange name" = 4`,
			want:  `{"op":"=","args":[{"property":"strange name"},4]}`,
		},
		{
			name:  "quoted keyword is a property",
			input: `"and" = 'yes'`,
			want:  `{"op":"=","args":[{"property":"and"},"yes"]}`,
		},
		{
			name:  "boolean literal",
			input: "active = TRUE",
			want:  `{"op":"=","args":[{"property":"active"},true]}`,
		},
		{
			name:  "timestamp literal",
			input: "datetime >= TIMESTAMP('2024-01-01T00:00:00Z')",
			want:  `{"op":">=","args":[{"property":"datetime"},{"timestamp":"2024-01-01T00:00:00Z"}]}`,
		},
		{
			name:  "date literal",
			input: "created = DATE('2024-06-05')",
			want:  `{"op":"=","args":[{"property":"created"},{"date":"2024-06-05"}]}`,
		},
		{
			name:  "temporal predicate with interval",
			input: "T_INTERSECTS(datetime, INTERVAL('2024-01-01T00:00:00Z', '..'))",
			want: `{"op":"t_intersects","args":[
				{"property":"datetime"},
				{"interval":["2024-01-01T00:00:00Z",".."]}]}`,
		},
		{
			name:  "casei both sides",
			input: "CASEI(provider) = CASEI('USGS')",
			want: `{"op":"=","args":[
				{"op":"casei","args":[{"property":"provider"}]},
				{"op":"casei","args":["USGS"]}]}`,
		},
		{
			name:  "spatial point",
			input: "S_INTERSECTS(geometry, POINT(-77.08 38.87))",
			want: `{"op":"s_intersects","args":[
				{"property":"geometry"},
				{"type":"Point","coordinates":[-77.08,38.87]}]}`,
		},
		{
			name:  "spatial polygon",
			input: "S_WITHIN(geometry, POLYGON((0 0, 10 0, 10 10, 0 10, 0 0)))",
			want: `{"op":"s_within","args":[
				{"property":"geometry"},
				{"type":"Polygon","coordinates":[[[0,0],[10,0],[10,10],[0,10],[0,0]]]}]}`,
		},
		{
			name:  "spatial bbox",
			input: "S_INTERSECTS(geometry, BBOX(-10.5, -10, 10, 10))",
			want: `{"op":"s_intersects","args":[
				{"property":"geometry"},
				{"bbox":[-10.5,-10,10,10]}]}`,
		},
		{
			name:  "multipoint bare positions",
			input: "S_DISJOINT(geometry, MULTIPOINT(1 2, 3 4))",
			want: `{"op":"s_disjoint","args":[
				{"property":"geometry"},
				{"type":"MultiPoint","coordinates":[[1,2],[3,4]]}]}`,
		},
		{
			name:  "multipoint parenthesized positions",
			input: "S_DISJOINT(geometry, MULTIPOINT((1 2), (3 4)))",
			want: `{"op":"s_disjoint","args":[
				{"property":"geometry"},
				{"type":"MultiPoint","coordinates":[[1,2],[3,4]]}]}`,
		},
		{
			name:  "multipolygon",
			input: "S_CONTAINS(geometry, MULTIPOLYGON(((0 0, 1 0, 1 1, 0 0)), ((5 5, 6 5, 6 6, 5 5))))",
			want: `{"op":"s_contains","args":[
				{"property":"geometry"},
				{"type":"MultiPolygon","coordinates":[
					[[[0,0],[1,0],[1,1],[0,0]]],
					[[[5,5],[6,5],[6,6],[5,5]]]]}]}`,
		},
		{
			name:  "geometry collection",
			input: "S_INTERSECTS(geometry, GEOMETRYCOLLECTION(POINT(1 2), LINESTRING(0 0, 1 1)))",
			want: `{"op":"s_intersects","args":[
				{"property":"geometry"},
				{"type":"GeometryCollection","geometries":[
					{"type":"Point","coordinates":[1,2]},
					{"type":"LineString","coordinates":[[0,0],[1,1]]}]}]}`,
		},
		{
			name:  "lowercase keywords",
			input: "a = 1 and not b = 2",
			want: `{"op":"and","args":[
				{"op":"=","args":[{"property":"a"},1]},
				{"op":"not","args":[{"op":"=","args":[{"property":"b"},2]}]}]}`,
		},
		{
			name:  "negative and exponent numbers",
			input: "off_nadir > -1.5e2",
			want:  `{"op":">","args":[{"property":"off_nadir"},-150]}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := TextToJSON(tc.input)
			if err != nil {
				t.Fatalf("TextToJSON(%q): %v", tc.input, err)
			}
			assertJSON(t, got, tc.want)
		})
	}
}

func TestTextToJSONErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"unterminated string", "a = 'oops"},
		{"unterminated quoted identifier", `"oops = 1`},
		{"trailing input", "a = 1 b = 2"},
		{"missing operator", "a 'b'"},
		{"missing operand", "a ="},
		{"unbalanced paren", "(a = 1"},
		{"not without predicate", "a NOT 5"},
		{"bbox with five coordinates", "S_INTERSECTS(geometry, BBOX(1, 2, 3, 4, 5))"},
		{"bad wkt", "S_INTERSECTS(geometry, POINT(1))"},
		{"interval missing end", "T_DURING(datetime, INTERVAL('2024-01-01T00:00:00Z'))"},
		{"stray character", "a = 1 ; drop"},
		{"nested geometrycollection", "S_INTERSECTS(geometry, GEOMETRYCOLLECTION(GEOMETRYCOLLECTION(POINT(1 2))))"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := TextToJSON(tc.input); err == nil {
				t.Errorf("TextToJSON(%q) succeeded, want error", tc.input)
			}
		})
	}
}

func TestParseReportsPosition(t *testing.T) {
	t.Parallel()

	_, err := Parse("a = 'good' AND b = @")
	if err == nil {
		t.Fatal("expected a syntax error")
	}
	var se *SyntaxError
	if !errorsAs(err, &se) {
		t.Fatalf("expected *SyntaxError, got %T", err)
	}
	if se.Pos != strings.IndexByte("a = 'good' AND b = @", '@') {
		t.Errorf("error position = %d, want %d", se.Pos, strings.IndexByte("a = 'good' AND b = @", '@'))
	}
	if !strings.Contains(err.Error(), "position") {
		t.Errorf("error message %q should name the position", err.Error())
	}
}

// errorsAs avoids importing errors just for one assertion.
func errorsAs(err error, target **SyntaxError) bool {
	se, ok := err.(*SyntaxError)
	if ok {
		*target = se
	}
	return ok
}

func TestValidateJSON(t *testing.T) {
	t.Parallel()

	valid := []string{
		`{"op":"=","args":[{"property":"id"},"x"]}`,
		`{"op":"and","args":[{"op":"isNull","args":[{"property":"a"}]},{"op":"<","args":[{"property":"b"},5]}]}`,
		`{"op":"in","args":[{"property":"id"},["a","b"]]}`,
		`{"op":"s_intersects","args":[{"property":"geometry"},{"type":"Point","coordinates":[0,1]}]}`,
		`{"op":"t_during","args":[{"property":"datetime"},{"interval":["..","2025-01-01T00:00:00Z"]}]}`,
	}
	for _, v := range valid {
		if err := ValidateJSON(json.RawMessage(v)); err != nil {
			t.Errorf("ValidateJSON(%s): %v", v, err)
		}
	}

	invalid := []string{
		`[]`,
		`"just a string"`,
		`{"args":[1]}`,
		`{"op":"="}`,
		`{"op":"=","args":"nope"}`,
		`{"op":"=","args":[]}`,
		`{"op":"=","args":[{"mystery":1},2]}`,
		`{"op":"and","args":[{"op":"=","args":[{"property":"a"}]},{"op":""}]}`,
	}
	for _, v := range invalid {
		if err := ValidateJSON(json.RawMessage(v)); err == nil {
			t.Errorf("ValidateJSON(%s) succeeded, want error", v)
		}
	}
}

func TestParseOutputValidates(t *testing.T) {
	t.Parallel()

	// Everything the parser emits must satisfy the structural validator.
	inputs := []string{
		"a = 1",
		"NOT (a = 1 OR b IN ('x', 'y')) AND c BETWEEN 0 AND 9",
		"S_INTERSECTS(geometry, POLYGON((0 0, 1 0, 1 1, 0 0))) AND datetime >= TIMESTAMP('2020-01-01T00:00:00Z')",
		"CASEI(name) LIKE casei('a%') OR description IS NOT NULL",
	}
	for _, input := range inputs {
		encoded, err := TextToJSON(input)
		if err != nil {
			t.Fatalf("TextToJSON(%q): %v", input, err)
		}
		if err := ValidateJSON(encoded); err != nil {
			t.Errorf("ValidateJSON rejected parser output for %q: %v\n%s", input, err, encoded)
		}
	}
}

func TestStringLiteralRoundTrip(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		value := rapid.StringMatching(`[a-z0-9' .%_-]{0,24}`).Draw(t, "value")
		input := fmt.Sprintf("title = '%s'", strings.ReplaceAll(value, "'", "''"))

		node, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q): %v", input, err)
		}
		op, ok := node.(Op)
		if !ok || op.Name != "=" || len(op.Args) != 2 {
			t.Fatalf("Parse(%q) = %#v, want equality op", input, node)
		}
		lit, ok := op.Args[1].(Literal)
		if !ok {
			t.Fatalf("second arg is %#v, want literal", op.Args[1])
		}
		if lit.Value != value {
			t.Fatalf("literal = %q, want %q", lit.Value, value)
		}
	})
}

func TestBBoxLiteralRoundTrip(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		west := rapid.Float64Range(-180, 180).Draw(t, "west")
		south := rapid.Float64Range(-90, 90).Draw(t, "south")
		east := rapid.Float64Range(-180, 180).Draw(t, "east")
		north := rapid.Float64Range(-90, 90).Draw(t, "north")

		input := fmt.Sprintf("S_INTERSECTS(geometry, BBOX(%v, %v, %v, %v))", west, south, east, north)
		encoded, err := TextToJSON(input)
		if err != nil {
			t.Fatalf("TextToJSON(%q): %v", input, err)
		}

		var decoded struct {
			Args []json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(encoded, &decoded); err != nil {
			t.Fatalf("unmarshal encoding: %v", err)
		}
		var box struct {
			BBox []float64 `json:"bbox"`
		}
		if err := json.Unmarshal(decoded.Args[1], &box); err != nil {
			t.Fatalf("unmarshal bbox arg: %v", err)
		}
		want := []float64{west, south, east, north}
		if !reflect.DeepEqual(box.BBox, want) {
			t.Fatalf("bbox = %v, want %v", box.BBox, want)
		}
	})
}
