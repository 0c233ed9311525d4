// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"testing"
)

// newTestSession opens a private in-memory SQLite session for the test and
// closes it on cleanup.
func newTestSession(t *testing.T, seed bool) *Session {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	s, err := Open(context.Background(), Options{Type: "sqlite", DSN: dsn, Seed: seed})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// withSQLOpen replaces sqlOpenFunc for the duration of the test.
func withSQLOpen(t *testing.T, fn func(driverName, dsn string) (*sql.DB, error)) {
	t.Helper()
	orig := sqlOpenFunc
	sqlOpenFunc = fn
	t.Cleanup(func() { sqlOpenFunc = orig })
}

func countRows(t *testing.T, s *Session, query string, args ...any) int64 {
	t.Helper()
	rs, err := s.Query(context.Background(), query, args...)
	if err != nil {
		t.Fatalf("Query %q failed: %v", query, err)
	}
	n, err := rs.Int64(0, 0)
	if err != nil {
		t.Fatalf("reading count: %v", err)
	}
	return n
}
