// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultPasswordHash is the credential the insert trigger assigns to every
// new user.
const DefaultPasswordHash = "pass"

// sampleData is inserted after the schema is first created when
// Options.Seed is set. Message rows look their participants up by email so
// they do not depend on generated ids.
var sampleData = []string{
	`INSERT INTO users (first_name, last_name, email) VALUES ('User1', 'User1 Last', 'user1@example.com')`,
	`INSERT INTO users (first_name, last_name, email) VALUES ('User2', 'User2 Last', 'user2@example.com')`,
	`INSERT INTO users (first_name, last_name, email) VALUES ('User3', 'User3 Last', 'user3@example.com')`,
	sampleMessage("user1@example.com", "user2@example.com", "Hello all", 1),
	sampleMessage("user2@example.com", "user1@example.com", "Hi", 1),
	sampleMessage("user3@example.com", "user1@example.com", "How are you?", 0),
}

func sampleMessage(from, to, text string, status int) string {
	return fmt.Sprintf(`INSERT INTO messages (sender_id, receiver_id, message_text, send_date, delivery_status)
		SELECT s.user_id, r.user_id, '%s', CURRENT_TIMESTAMP, %d
		FROM users s, users r WHERE s.email = '%s' AND r.email = '%s'`, text, status, from, to)
}

// tableExists reports whether the named table is visible in the current schema.
func tableExists(ctx context.Context, sqlDB *sql.DB, d dialect, table string) (bool, error) {
	var found string
	err := sqlDB.QueryRowContext(ctx, d.tableExistsQuery(), table).Scan(&found)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// provision creates the tables and cascade triggers when the users table is
// missing. Statements go straight to database/sql because trigger bodies
// contain characters Bun would treat as placeholders.
func provision(ctx context.Context, s *Session, seed bool) error {
	exists, err := tableExists(ctx, s.sqlDB, s.dialect, "users")
	if err != nil {
		return fmt.Errorf("failed to check schema: %w", err)
	}
	if exists {
		dbLogf("db: schema of %q already provisioned", s.name)
		return nil
	}

	start := time.Now()
	for _, stmt := range s.dialect.schema() {
		if _, err := s.sqlDB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema object: %w, sql: %s", err, firstLine(stmt))
		}
	}
	dbLogf("db: provisioned schema of %q in %s", s.name, time.Since(start))

	if !seed {
		return nil
	}
	return seedSampleData(ctx, s.sqlDB)
}

func seedSampleData(ctx context.Context, sqlDB *sql.DB) error {
	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range sampleData {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to seed sample data: %w, sql: %s", err, firstLine(stmt))
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sample data: %w", err)
	}
	dbLogf("db: seeded %d sample rows", len(sampleData))
	return nil
}

func firstLine(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	if i := strings.IndexByte(stmt, '\n'); i >= 0 {
		return stmt[:i]
	}
	return stmt
}
