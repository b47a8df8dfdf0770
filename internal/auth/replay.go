// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

// Package auth guards the administrative refresh endpoints. Two
// credentials are supported, a static bearer token verified against a
// bcrypt hash and HS256 JWTs whose jti claim is accepted exactly once.
// With neither configured the endpoints stay open.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// ErrTokenReplayed indicates a jti that was already accepted once.
var ErrTokenReplayed = errors.New("token already used")

// ReplayStore remembers accepted jti values until their token expires.
type ReplayStore interface {
	// CheckAndStore atomically records a jti, or returns ErrTokenReplayed
	// if it was recorded before and has not yet expired.
	CheckAndStore(ctx context.Context, jti string, ttl time.Duration) error

	Close() error
}

// MemoryReplayStore keeps jti values in memory. Restarts forget them, so
// it is only suitable for tests.
type MemoryReplayStore struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

// NewMemoryReplayStore creates an in-memory replay store.
func NewMemoryReplayStore() *MemoryReplayStore {
	return &MemoryReplayStore{seen: make(map[string]time.Time)}
}

// CheckAndStore records a jti unless it is still live.
func (s *MemoryReplayStore) CheckAndStore(_ context.Context, jti string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if expiry, ok := s.seen[jti]; ok && now.Before(expiry) {
		return ErrTokenReplayed
	}
	for id, expiry := range s.seen {
		if now.After(expiry) {
			delete(s.seen, id)
		}
	}
	s.seen[jti] = now.Add(ttl)
	return nil
}

func (s *MemoryReplayStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = nil
	return nil
}

const replayKeyPrefix = "jti:"

// BadgerReplayStore persists jti values in BadgerDB so replay protection
// survives restarts. Entry TTLs piggyback on Badger's native expiry.
type BadgerReplayStore struct {
	db    *badger.DB
	owned bool
}

// OpenBadgerReplayStore opens (or creates) a Badger database at dir and
// wraps it as a replay store. Close releases the database.
func OpenBadgerReplayStore(dir string) (*BadgerReplayStore, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open replay store: %w", err)
	}
	return &BadgerReplayStore{db: db, owned: true}, nil
}

// NewBadgerReplayStore wraps an existing Badger database. The caller
// keeps ownership of db.
func NewBadgerReplayStore(db *badger.DB) *BadgerReplayStore {
	return &BadgerReplayStore{db: db}
}

// CheckAndStore records a jti in one transaction.
func (s *BadgerReplayStore) CheckAndStore(_ context.Context, jti string, ttl time.Duration) error {
	key := append([]byte(replayKeyPrefix), jti...)
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrTokenReplayed
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		entry := badger.NewEntry(key, []byte(time.Now().UTC().Format(time.RFC3339))).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
}

func (s *BadgerReplayStore) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}
