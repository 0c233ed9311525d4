// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql" // MySQL driver
)

type mysqlDialect struct{}

func (mysqlDialect) name() string       { return "mysql" }
func (mysqlDialect) driverName() string { return "mysql" }

// normalizeDSN turns on parseTime so DATETIME/TIMESTAMP columns scan into
// time.Time, and clientFoundRows so an UPDATE reports matched rather than
// changed rows. DSNs the driver cannot parse are returned unchanged and
// rejected later.
func (mysqlDialect) normalizeDSN(dsn string) string {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return dsn
	}
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	return cfg.FormatDSN()
}

func (mysqlDialect) databaseName(dsn string) (string, error) {
	_, name, err := mysqlServerDSN(dsn)
	return name, err
}

// mysqlServerDSN returns the DSN without a selected schema, plus the schema
// name it had.
func mysqlServerDSN(dsn string) (string, string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	name := cfg.DBName
	if name == "" {
		return "", "", fmt.Errorf("mysql dsn does not name a database")
	}
	cfg.DBName = ""
	return cfg.FormatDSN(), name, nil
}

func (d mysqlDialect) bootstrap(ctx context.Context, dsn string) error {
	serverDSN, name, err := mysqlServerDSN(dsn)
	if err != nil {
		return &ConnectError{Kind: SchemaBootstrapFailed, Err: err}
	}
	return ensureDatabase(ctx, d.driverName(), serverDSN, name,
		"SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?",
		"CREATE DATABASE "+quoteMySQLIdent(name))
}

func quoteMySQLIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (mysqlDialect) tableExistsQuery() string {
	return "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?"
}

// MySQL does not understand CREATE TRIGGER IF NOT EXISTS on every supported
// server version, so triggers are dropped first.
func (mysqlDialect) schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id INTEGER PRIMARY KEY AUTO_INCREMENT,
			first_name VARCHAR(50) NOT NULL,
			last_name VARCHAR(50) NOT NULL,
			email VARCHAR(100) UNIQUE NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS passwords (
			user_id INTEGER PRIMARY KEY,
			password_hash VARCHAR(32) NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			message_id INTEGER PRIMARY KEY AUTO_INCREMENT,
			sender_id INTEGER NOT NULL,
			receiver_id INTEGER NOT NULL,
			message_text TEXT NOT NULL,
			send_date TIMESTAMP NOT NULL,
			delivery_status INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (sender_id) REFERENCES users(user_id),
			FOREIGN KEY (receiver_id) REFERENCES users(user_id)
		)`,
		`DROP TRIGGER IF EXISTS register_user_trigger`,
		`CREATE TRIGGER register_user_trigger
		AFTER INSERT ON users
		FOR EACH ROW
		BEGIN
			INSERT INTO passwords (user_id, password_hash) VALUES (NEW.user_id, '` + DefaultPasswordHash + `');
		END`,
		`DROP TRIGGER IF EXISTS delete_user_trigger`,
		`CREATE TRIGGER delete_user_trigger
		BEFORE DELETE ON users
		FOR EACH ROW
		BEGIN
			DELETE FROM messages WHERE sender_id = OLD.user_id OR receiver_id = OLD.user_id;
			DELETE FROM passwords WHERE user_id = OLD.user_id;
		END`,
	}
}
