// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package api

import (
	"errors"
	"net/http"
	"testing"
)

func TestUpdateQueryables(t *testing.T) {
	t.Parallel()
	fake := newFakeCatalog()
	h := newTestHandler(fake)
	routes := testRoutes(h)

	rec := do(routes, http.MethodPatch, "http://api.test/queryables", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	doc := decodeMap(t, rec)
	if doc["detail"] != "Updated queryables" {
		t.Errorf("detail = %v", doc["detail"])
	}

	rec = do(routes, http.MethodPatch, "http://api.test/queryables?minimal=true", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("minimal status = %d", rec.Code)
	}
	doc = decodeMap(t, rec)
	if doc["detail"] != "Updated minimal queryables" {
		t.Errorf("minimal detail = %v", doc["detail"])
	}

	want := []bool{false, true}
	if len(fake.queryablesMinimal) != 2 ||
		fake.queryablesMinimal[0] != want[0] || fake.queryablesMinimal[1] != want[1] {
		t.Errorf("recorded refreshes = %v, want %v", fake.queryablesMinimal, want)
	}
}

func TestUpdateQueryablesBadMinimal(t *testing.T) {
	t.Parallel()
	h := newTestHandler(newFakeCatalog())

	rec := do(testRoutes(h), http.MethodPatch, "http://api.test/queryables?minimal=maybe", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUpdateQueryablesFailure(t *testing.T) {
	t.Parallel()
	fake := newFakeCatalog()
	fake.refreshErr = errors.New("deadlock detected")
	h := newTestHandler(fake)

	rec := do(testRoutes(h), http.MethodPatch, "http://api.test/queryables", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	doc := decodeMap(t, rec)
	detail, _ := doc["detail"].(string)
	if detail != "Unable to update queryables: deadlock detected" {
		t.Errorf("detail = %q", detail)
	}
}

func TestUpdateSummaries(t *testing.T) {
	t.Parallel()
	fake := newFakeCatalog()
	h := newTestHandler(fake)

	rec := do(testRoutes(h), http.MethodPatch, "http://api.test/summaries", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	doc := decodeMap(t, rec)
	if doc["detail"] != "Updated summaries" {
		t.Errorf("detail = %v", doc["detail"])
	}
	if fake.summariesRefreshs != 1 {
		t.Errorf("refresh calls = %d, want 1", fake.summariesRefreshs)
	}
}

func TestUpdateSummariesFailure(t *testing.T) {
	t.Parallel()
	fake := newFakeCatalog()
	fake.refreshErr = errors.New("out of memory")
	h := newTestHandler(fake)

	rec := do(testRoutes(h), http.MethodPatch, "http://api.test/summaries", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	doc := decodeMap(t, rec)
	if doc["detail"] != "Unable to update summaries: out of memory" {
		t.Errorf("detail = %v", doc["detail"])
	}
}
