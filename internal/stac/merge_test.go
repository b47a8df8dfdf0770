// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package stac

import (
	"reflect"
	"testing"
)

func TestMergePatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target string
		patch  string
		want   string
	}{
		{
			name:   "replace scalar",
			target: `{"a":"b"}`,
			patch:  `{"a":"c"}`,
			want:   `{"a":"c"}`,
		},
		{
			name:   "add member",
			target: `{"a":"b"}`,
			patch:  `{"b":"c"}`,
			want:   `{"a":"b","b":"c"}`,
		},
		{
			name:   "null deletes",
			target: `{"a":"b","b":"c"}`,
			patch:  `{"a":null}`,
			want:   `{"b":"c"}`,
		},
		{
			name:   "null delete of absent member",
			target: `{"a":"b"}`,
			patch:  `{"c":null}`,
			want:   `{"a":"b"}`,
		},
		{
			name:   "array replaces wholesale",
			target: `{"a":["b","c"]}`,
			patch:  `{"a":["d"]}`,
			want:   `{"a":["d"]}`,
		},
		{
			name:   "object replaces array",
			target: `{"a":[1,2]}`,
			patch:  `{"a":{"b":1}}`,
			want:   `{"a":{"b":1}}`,
		},
		{
			name:   "nested merge",
			target: `{"a":{"b":"c","d":"e"}}`,
			patch:  `{"a":{"b":"z"}}`,
			want:   `{"a":{"b":"z","d":"e"}}`,
		},
		{
			name:   "nested null deletes",
			target: `{"a":{"b":"c","d":"e"}}`,
			patch:  `{"a":{"b":null}}`,
			want:   `{"a":{"d":"e"}}`,
		},
		{
			name:   "patch object onto scalar",
			target: `{"a":"b"}`,
			patch:  `{"a":{"c":"d"}}`,
			want:   `{"a":{"c":"d"}}`,
		},
		{
			name: "item properties patch",
			target: `{
				"id": "item-1",
				"properties": {"datetime": "2024-06-01T12:00:00Z", "platform": "s2a", "gsd": 10}
			}`,
			patch: `{"properties": {"gsd": null, "eo:cloud_cover": 12}}`,
			want: `{
				"id": "item-1",
				"properties": {"datetime": "2024-06-01T12:00:00Z", "platform": "s2a", "eo:cloud_cover": 12}
			}`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			target, err := DecodeDocument([]byte(tt.target))
			if err != nil {
				t.Fatal(err)
			}
			patch, err := DecodeDocument([]byte(tt.patch))
			if err != nil {
				t.Fatal(err)
			}
			want, err := DecodeDocument([]byte(tt.want))
			if err != nil {
				t.Fatal(err)
			}

			got := MergePatch(target, patch)
			if !reflect.DeepEqual(map[string]interface{}(got), map[string]interface{}(want)) {
				t.Errorf("MergePatch = %#v, want %#v", got, want)
			}
		})
	}
}

func TestMergePatchEmptyPatchKeepsTarget(t *testing.T) {
	t.Parallel()

	target, err := DecodeDocument([]byte(`{"id":"c1","description":"d"}`))
	if err != nil {
		t.Fatal(err)
	}
	got := MergePatch(target, Document{})
	if got.ID() != "c1" {
		t.Errorf("ID = %q, want c1", got.ID())
	}
	if len(got) != 2 {
		t.Errorf("member count = %d, want 2", len(got))
	}
}
