// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DefaultSQLiteDSN is used when no DSN is configured.
const DefaultSQLiteDSN = "./chatdb.db"

type sqliteDialect struct{}

func (sqliteDialect) name() string       { return "sqlite" }
func (sqliteDialect) driverName() string { return "sqlite" }

// normalizeDSN enables foreign keys and a busy timeout on every connection.
func (sqliteDialect) normalizeDSN(dsn string) string {
	if dsn == "" {
		dsn = DefaultSQLiteDSN
	}
	for _, pragma := range []string{"foreign_keys(1)", "busy_timeout(5000)"} {
		if strings.Contains(dsn, pragma) {
			continue
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=" + pragma
	}
	return dsn
}

func (sqliteDialect) databaseName(dsn string) (string, error) {
	return sqlitePath(dsn), nil
}

// sqlitePath strips the "file:" scheme and query options from dsn.
func sqlitePath(dsn string) string {
	p := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	return p
}

func isSQLiteMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// bootstrap creates the directory holding the database file. The driver
// creates the file itself on first connect.
func (sqliteDialect) bootstrap(_ context.Context, dsn string) error {
	if isSQLiteMemory(dsn) {
		return nil
	}
	dir := filepath.Dir(sqlitePath(dsn))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &ConnectError{Kind: SchemaBootstrapFailed, Err: fmt.Errorf("create directory %s: %w", dir, err)}
	}
	dbLogf("db: ensured sqlite directory %s", dir)
	return nil
}

func (sqliteDialect) tableExistsQuery() string {
	return "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?"
}

func (sqliteDialect) schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id INTEGER PRIMARY KEY AUTOINCREMENT,
			first_name VARCHAR(50) NOT NULL,
			last_name VARCHAR(50) NOT NULL,
			email VARCHAR(100) UNIQUE NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS passwords (
			user_id INTEGER PRIMARY KEY REFERENCES users(user_id),
			password_hash VARCHAR(32) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			message_id INTEGER PRIMARY KEY AUTOINCREMENT,
			sender_id INTEGER NOT NULL REFERENCES users(user_id),
			receiver_id INTEGER NOT NULL REFERENCES users(user_id),
			message_text TEXT NOT NULL,
			send_date TIMESTAMP NOT NULL,
			delivery_status INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TRIGGER IF NOT EXISTS register_user_trigger
		AFTER INSERT ON users
		FOR EACH ROW
		BEGIN
			INSERT INTO passwords (user_id, password_hash) VALUES (NEW.user_id, '` + DefaultPasswordHash + `');
		END`,
		`CREATE TRIGGER IF NOT EXISTS delete_user_trigger
		BEFORE DELETE ON users
		FOR EACH ROW
		BEGIN
			DELETE FROM messages WHERE sender_id = OLD.user_id OR receiver_id = OLD.user_id;
			DELETE FROM passwords WHERE user_id = OLD.user_id;
		END`,
	}
}
