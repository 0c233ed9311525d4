// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"errors"
	"testing"

	"github.com/toeirei/chatdb/internal/db"
)

func TestResolveUserID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "Ada", "Lovelace", "ada@example.com")

	id, err := ResolveUserID(ctx, f.session, "Ada")
	if err != nil {
		t.Fatalf("ResolveUserID failed: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected a valid id, got %d", id)
	}

	byEmail, err := ResolveUserIDByEmail(ctx, f.session, " ada@example.com ")
	if err != nil || byEmail != id {
		t.Fatalf("ResolveUserIDByEmail = %d, %v; want %d", byEmail, err, id)
	}
}

func TestResolveUserID_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := ResolveUserID(ctx, f.session, "Nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := ResolveUserIDByEmail(ctx, f.session, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound by email, got %v", err)
	}
}

func TestResolveUserID_SharedFirstNameUsesLowestID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "Sam", "First", "sam1@example.com")
	f.register(t, "Sam", "Second", "sam2@example.com")

	first, _ := ResolveUserIDByEmail(ctx, f.session, "sam1@example.com")
	second, _ := ResolveUserIDByEmail(ctx, f.session, "sam2@example.com")
	got, err := ResolveUserID(ctx, f.session, "Sam")
	if err != nil {
		t.Fatalf("ResolveUserID failed: %v", err)
	}
	if got != first || got == second {
		t.Fatalf("expected the first registered Sam (%d), got %d", first, got)
	}
}

type failingQuerier struct{ err error }

func (q failingQuerier) Query(context.Context, string, ...any) (*db.RowSet, error) {
	return nil, q.err
}

func TestResolveUserID_PropagatesQueryError(t *testing.T) {
	boom := &db.QueryError{Op: db.OpExecute, Err: errors.New("boom")}
	_, err := ResolveUserID(context.Background(), failingQuerier{err: boom}, "Ada")
	if !db.IsQueryOp(err, db.OpExecute) || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected the query error unchanged, got %v", err)
	}
}
