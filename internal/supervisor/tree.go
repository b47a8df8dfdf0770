// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// TreeConfig tunes restart behavior for every supervisor in the tree.
type TreeConfig struct {
	// FailureThreshold is the failure score at which a supervisor stops
	// restarting immediately and enters backoff.
	FailureThreshold float64

	// FailureDecay halves the failure score every this many seconds.
	FailureDecay float64

	// FailureBackoff is how long a supervisor sleeps once the threshold
	// is exceeded.
	FailureBackoff time.Duration

	// ShutdownTimeout bounds how long a service may take to honor
	// context cancellation before it is reported as unstopped.
	ShutdownTimeout time.Duration
}

// DefaultTreeConfig returns suture's own defaults, which have served this
// deployment fine.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// Tree is the supervision hierarchy: a root supervisor with data, api and
// messaging children.
type Tree struct {
	root      *suture.Supervisor
	data      *suture.Supervisor
	api       *suture.Supervisor
	messaging *suture.Supervisor
	config    TreeConfig
}

// NewTree builds the tree. Lifecycle events are reported through the given
// slog logger via sutureslog; pass the logging package's slog bridge so
// they land in the same stream as everything else.
func NewTree(logger *slog.Logger, config TreeConfig) *Tree {
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 5.0
	}
	if config.FailureDecay == 0 {
		config.FailureDecay = 30.0
	}
	if config.FailureBackoff == 0 {
		config.FailureBackoff = 15 * time.Second
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 10 * time.Second
	}

	// sutureslog's hook constructor lives on the Handler value.
	hook := (&sutureslog.Handler{Logger: logger}).MustHook()

	rootSpec := suture.Spec{
		EventHook:        hook,
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}
	childSpec := suture.Spec{
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}

	t := &Tree{
		root:      suture.New("terrastac", rootSpec),
		data:      suture.New("data-layer", childSpec),
		api:       suture.New("api-layer", childSpec),
		messaging: suture.New("messaging-layer", childSpec),
		config:    config,
	}
	t.root.Add(t.data)
	t.root.Add(t.api)
	t.root.Add(t.messaging)
	return t
}

// AddDataService supervises a database-side service: the bootstrap
// sequence or the pool monitor.
func (t *Tree) AddDataService(svc suture.Service) suture.ServiceToken {
	return t.data.Add(svc)
}

// AddAPIService supervises the HTTP server.
func (t *Tree) AddAPIService(svc suture.Service) suture.ServiceToken {
	return t.api.Add(svc)
}

// AddMessagingService supervises the transaction event publisher.
func (t *Tree) AddMessagingService(svc suture.Service) suture.ServiceToken {
	return t.messaging.Add(svc)
}

// Serve runs the tree until ctx is canceled.
func (t *Tree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// ServeBackground runs the tree in its own goroutine; the returned channel
// yields the terminal error.
func (t *Tree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport names services that ignored cancellation past the
// shutdown timeout, for the shutdown log.
func (t *Tree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
