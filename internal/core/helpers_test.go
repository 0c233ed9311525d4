// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"testing"
	"time"

	"github.com/toeirei/chatdb/internal/db"
	"github.com/toeirei/chatdb/internal/testutil"
)

type fixture struct {
	session *db.Session
	audit   *testutil.FakeAuditWriter
	clock   *testutil.FixedClock
	creds   *CredentialStore
	ledger  *Ledger
}

// newFixture opens a private in-memory SQLite store with real triggers and
// pins the message clock.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	s, err := db.Open(context.Background(), db.Options{Type: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("db.Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	clock := &testutil.FixedClock{T: time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)}
	SetClock(clock)
	t.Cleanup(ResetClock)

	audit := &testutil.FakeAuditWriter{}
	return &fixture{
		session: s,
		audit:   audit,
		clock:   clock,
		creds:   NewCredentialStore(s, audit),
		ledger:  NewLedger(s, audit),
	}
}

func (f *fixture) register(t *testing.T, first, last, email string) {
	t.Helper()
	if err := f.creds.Register(context.Background(), first, last, email); err != nil {
		t.Fatalf("Register(%s) failed: %v", first, err)
	}
}

func (f *fixture) count(t *testing.T, query string, args ...any) int64 {
	t.Helper()
	rs, err := f.session.Query(context.Background(), query, args...)
	if err != nil {
		t.Fatalf("Query %q failed: %v", query, err)
	}
	n, err := rs.Int64(0, 0)
	if err != nil {
		t.Fatalf("reading count: %v", err)
	}
	return n
}
