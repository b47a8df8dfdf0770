// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package metrics

import (
	"database/sql"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/search", "200"))
	RecordAPIRequest("GET", "/search", "200", 15*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/search", "200"))
	if after != before+1 {
		t.Errorf("counter = %v, want %v", after, before+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	base := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != base+2 {
		t.Errorf("active = %v, want %v", got, base+2)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != base+1 {
		t.Errorf("active = %v, want %v", got, base+1)
	}
	TrackActiveRequest(false)
}

func TestRecordQuery(t *testing.T) {
	errBefore := testutil.ToFloat64(PgstacQueryErrors.WithLabelValues("search", ErrTypeTimeout))

	RecordQuery("search", 20*time.Millisecond, ErrTypeNone)
	RecordQuery("search", 5*time.Second, ErrTypeTimeout)

	if got := testutil.ToFloat64(PgstacQueryErrors.WithLabelValues("search", ErrTypeTimeout)); got != errBefore+1 {
		t.Errorf("error counter = %v, want %v", got, errBefore+1)
	}

	// The histogram must have observed both calls.
	var m dto.Metric
	h, err := PgstacQueryDuration.GetMetricWithLabelValues("search")
	if err != nil {
		t.Fatal(err)
	}
	if err := h.(prometheus.Metric).Write(&m); err != nil {
		t.Fatal(err)
	}
	if m.GetHistogram().GetSampleCount() < 2 {
		t.Errorf("histogram sample count = %d, want at least 2", m.GetHistogram().GetSampleCount())
	}
}

func TestSetBreakerState(t *testing.T) {
	tests := []struct {
		state string
		want  float64
	}{
		{"closed", 0},
		{"half-open", 1},
		{"open", 2},
		{"anything else", 0},
	}
	for _, tc := range tests {
		SetBreakerState("pgstac-read", tc.state)
		if got := testutil.ToFloat64(PgstacBreakerState.WithLabelValues("pgstac-read")); got != tc.want {
			t.Errorf("state %q = %v, want %v", tc.state, got, tc.want)
		}
	}
}

func TestSetPoolStats(t *testing.T) {
	SetPoolStats("read", sql.DBStats{OpenConnections: 7, InUse: 3, Idle: 4})

	if got := testutil.ToFloat64(PgstacPoolConnections.WithLabelValues("read", "open")); got != 7 {
		t.Errorf("open = %v, want 7", got)
	}
	if got := testutil.ToFloat64(PgstacPoolConnections.WithLabelValues("read", "in_use")); got != 3 {
		t.Errorf("in_use = %v, want 3", got)
	}
	if got := testutil.ToFloat64(PgstacPoolConnections.WithLabelValues("read", "idle")); got != 4 {
		t.Errorf("idle = %v, want 4", got)
	}
}

func TestOutcomeHelpers(t *testing.T) {
	okBefore := testutil.ToFloat64(TransactionsTotal.WithLabelValues("create_item", "success"))
	failBefore := testutil.ToFloat64(TransactionsTotal.WithLabelValues("create_item", "failure"))

	RecordTransaction("create_item", nil)
	RecordTransaction("create_item", sql.ErrConnDone)

	if got := testutil.ToFloat64(TransactionsTotal.WithLabelValues("create_item", "success")); got != okBefore+1 {
		t.Errorf("success = %v, want %v", got, okBefore+1)
	}
	if got := testutil.ToFloat64(TransactionsTotal.WithLabelValues("create_item", "failure")); got != failBefore+1 {
		t.Errorf("failure = %v, want %v", got, failBefore+1)
	}
}

func TestSetReady(t *testing.T) {
	SetReady(true)
	if got := testutil.ToFloat64(PgstacReady); got != 1 {
		t.Errorf("ready = %v, want 1", got)
	}
	SetReady(false)
	if got := testutil.ToFloat64(PgstacReady); got != 0 {
		t.Errorf("ready = %v, want 0", got)
	}
}
