// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/mlavoie-cs/terrastac/internal/config"
)

// fakeBootstrapper records WaitReady and ApplyFunctionScripts calls.
type fakeBootstrapper struct {
	waitErr error

	waitCalls      int
	waitRetries    int
	waitDelay      time.Duration
	scriptsApplied bool
	scriptsDir     string
	skipQueryables bool
	skipSummaries  bool
}

func (f *fakeBootstrapper) WaitReady(ctx context.Context, retries int, delay time.Duration) error {
	f.waitCalls++
	f.waitRetries = retries
	f.waitDelay = delay
	if f.waitErr != nil {
		return f.waitErr
	}
	return ctx.Err()
}

func (f *fakeBootstrapper) ApplyFunctionScripts(ctx context.Context, dir string, skipQueryables, skipSummaries bool) {
	f.scriptsApplied = true
	f.scriptsDir = dir
	f.skipQueryables = skipQueryables
	f.skipSummaries = skipSummaries
}

func bootstrapConfig() config.BootstrapConfig {
	return config.BootstrapConfig{
		ConnectRetries:    5,
		RetryDelay:        time.Millisecond,
		ScriptsDir:        "scripts",
		DefaultQueryables: false,
		DefaultSummaries:  true,
	}
}

func TestBootstrapServiceSuccess(t *testing.T) {
	t.Parallel()

	db := &fakeBootstrapper{}
	svc := NewBootstrapService(db, bootstrapConfig())

	err := svc.Serve(context.Background())
	if !errors.Is(err, suture.ErrDoNotRestart) {
		t.Fatalf("expected ErrDoNotRestart, got %v", err)
	}

	if db.waitCalls != 1 {
		t.Errorf("expected 1 WaitReady call, got %d", db.waitCalls)
	}
	if db.waitRetries != 5 || db.waitDelay != time.Millisecond {
		t.Errorf("retry budget not forwarded: retries=%d delay=%v", db.waitRetries, db.waitDelay)
	}
	if !db.scriptsApplied {
		t.Fatal("function scripts were not applied")
	}
	if db.scriptsDir != "scripts" {
		t.Errorf("expected scripts dir 'scripts', got %q", db.scriptsDir)
	}
	if db.skipQueryables || !db.skipSummaries {
		t.Errorf("skip flags not forwarded: queryables=%v summaries=%v", db.skipQueryables, db.skipSummaries)
	}
}

func TestBootstrapServeDegradedOnExhaustedRetries(t *testing.T) {
	t.Parallel()

	db := &fakeBootstrapper{waitErr: errors.New("unable to connect to database after 5 retries: dial refused")}
	svc := NewBootstrapService(db, bootstrapConfig())

	err := svc.Serve(context.Background())
	if !errors.Is(err, suture.ErrDoNotRestart) {
		t.Fatalf("expected ErrDoNotRestart on exhausted retries, got %v", err)
	}
	if db.scriptsApplied {
		t.Error("scripts must not run when the database never became ready")
	}
}

func TestBootstrapServiceCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	db := &fakeBootstrapper{waitErr: context.Canceled}
	svc := NewBootstrapService(db, bootstrapConfig())

	err := svc.Serve(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if db.scriptsApplied {
		t.Error("scripts must not run after cancellation")
	}
}

func TestBootstrapServiceString(t *testing.T) {
	t.Parallel()

	svc := NewBootstrapService(&fakeBootstrapper{}, bootstrapConfig())
	if svc.String() != "bootstrap" {
		t.Errorf("expected 'bootstrap', got %q", svc.String())
	}
}
