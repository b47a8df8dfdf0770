// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package services

import (
	"context"
	"time"
)

// PoolMonitor is the monitoring surface of the pgstac client.
type PoolMonitor interface {
	MonitorPools(ctx context.Context, interval time.Duration) error
}

// DBMonitorService keeps the connection pool gauges and the readiness
// state current for the life of the process.
type DBMonitorService struct {
	db       PoolMonitor
	interval time.Duration
}

// NewDBMonitorService wraps the pool monitor for supervision.
func NewDBMonitorService(db PoolMonitor, interval time.Duration) *DBMonitorService {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &DBMonitorService{db: db, interval: interval}
}

// Serve implements suture.Service. MonitorPools only returns on context
// cancellation, which suture treats as normal termination.
func (s *DBMonitorService) Serve(ctx context.Context) error {
	return s.db.MonitorPools(ctx, s.interval)
}

func (s *DBMonitorService) String() string { return "db-monitor" }
