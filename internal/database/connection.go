// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package database

import (
	"context"
	"fmt"
	"hash/maphash"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/pixelgate/internal/metrics"
)

// maxConflictRetries bounds upsert attempts; backoff is 1ms, 2ms, 4ms.
const maxConflictRetries = 3

func (db *DB) configureConnectionPool() {
	db.conn.SetMaxOpenConns(runtime.NumCPU())
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// isTransactionConflict checks if an error is a DuckDB transaction conflict.
func isTransactionConflict(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Transaction conflict") ||
		strings.Contains(errStr, "Conflict on update") ||
		strings.Contains(errStr, "cannot update a table that has been altered")
}

// isInternalError checks if an error is a DuckDB INTERNAL error.
func isInternalError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "INTERNAL Error")
}

// withConflictRetry runs fn, retrying transaction conflicts with
// exponential backoff. Any other error is returned immediately.
func withConflictRetry(ctx context.Context, table string, fn func(context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return fmt.Errorf("operation timed out or canceled: %w", ctx.Err())
		}
		if isInternalError(err) {
			return fmt.Errorf("duckdb internal error: %w", err)
		}
		if !isTransactionConflict(err) {
			return err
		}

		if attempt < maxConflictRetries-1 {
			metrics.DBConflictRetries.WithLabelValues(table).Inc()
			backoff := time.Millisecond * time.Duration(1<<uint(attempt))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// keyLocks is a fixed set of mutexes striped by key hash. Unlike a map of
// per-key mutexes it does not grow with the number of sessions.
type keyLocks struct {
	once  sync.Once
	seed  maphash.Seed
	locks [64]sync.Mutex
}

// lock acquires the stripe for key and returns its unlock func.
func (k *keyLocks) lock(key string) func() {
	k.once.Do(func() { k.seed = maphash.MakeSeed() })
	mu := &k.locks[maphash.String(k.seed, key)%uint64(len(k.locks))]
	mu.Lock()
	return mu.Unlock
}
