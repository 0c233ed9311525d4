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
)

// dialect captures what differs between the supported backends: driver
// registration, DSN handling, the server-level bootstrap and the DDL.
type dialect interface {
	name() string
	driverName() string
	// normalizeDSN adds driver options chatdb relies on.
	normalizeDSN(dsn string) string
	// databaseName extracts the target schema from the DSN.
	databaseName(dsn string) (string, error)
	// bootstrap makes sure the target schema exists on the server. It must
	// be a no-op when the schema is already there.
	bootstrap(ctx context.Context, dsn string) error
	// tableExistsQuery takes the table name as its only parameter.
	tableExistsQuery() string
	// schema returns the DDL creating tables and cascade triggers, in order.
	schema() []string
}

func dialectFor(dbType string) (dialect, error) {
	switch strings.ToLower(strings.TrimSpace(dbType)) {
	case "mysql", "mariadb":
		return mysqlDialect{}, nil
	case "postgres", "postgresql", "pgx":
		return postgresDialect{}, nil
	case "sqlite", "sqlite3", "":
		return sqliteDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported database type: '%s'", dbType)
	}
}

// ensureDatabase connects to the server without selecting a schema, looks
// the schema up by name and creates it when absent.
func ensureDatabase(ctx context.Context, driverName, serverDSN, name, existsQuery, createStmt string) error {
	srv, err := connect(ctx, driverName, serverDSN)
	if err != nil {
		return &ConnectError{Kind: connectKind(err), Err: fmt.Errorf("connect to server: %w", err)}
	}
	defer func() { _ = srv.Close() }()

	var found string
	err = srv.QueryRowContext(ctx, existsQuery, name).Scan(&found)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := srv.ExecContext(ctx, createStmt); err != nil {
			return &ConnectError{Kind: SchemaBootstrapFailed, Err: fmt.Errorf("create database %s: %w", name, err)}
		}
		dbLogf("db: created database %q", name)
	case err != nil:
		return &ConnectError{Kind: SchemaBootstrapFailed, Err: fmt.Errorf("check database %s: %w", name, err)}
	default:
		dbLogf("db: database %q already exists", name)
	}
	return nil
}
