// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// sqlOpenFunc allows tests to override database opening behavior.
var sqlOpenFunc = sql.Open

// Options describe how to reach the backing store.
type Options struct {
	// Type is "mysql", "postgres" or "sqlite".
	Type string
	// DSN is the driver data source, including the target schema.
	DSN string
	// Seed inserts the sample users and messages after the schema is first
	// created.
	Seed bool
}

// Session is one logical connection to the backing store. A Session is owned
// by whoever opened it and passed to collaborators; it is safe for concurrent
// use.
type Session struct {
	id      string
	dialect dialect
	name    string

	mu     sync.RWMutex
	sqlDB  *sql.DB
	bun    *bun.DB
	idb    bun.IDB
	inTx   bool
	closed bool
}

// Open connects to the store described by opts. When the first attempt fails
// it falls back to bootstrapping: connecting to the server without a schema,
// creating the schema if it is absent, and connecting again. Once connected
// the tables and cascade triggers are provisioned if they do not exist yet.
func Open(ctx context.Context, opts Options) (*Session, error) {
	d, err := dialectFor(opts.Type)
	if err != nil {
		return nil, &ConnectError{Kind: DriverUnavailable, Err: err}
	}
	if !slices.Contains(sql.Drivers(), d.driverName()) {
		return nil, &ConnectError{Kind: DriverUnavailable, Err: fmt.Errorf("driver %q is not registered", d.driverName())}
	}
	dsn := d.normalizeDSN(opts.DSN)
	name, err := d.databaseName(dsn)
	if err != nil {
		return nil, &ConnectError{Kind: SchemaBootstrapFailed, Err: err}
	}

	start := time.Now()
	sqlDB, err := connect(ctx, d.driverName(), dsn)
	if err != nil {
		switch kind := connectKind(err); kind {
		case DriverUnavailable, AuthRejected:
			return nil, &ConnectError{Kind: kind, Err: err}
		}
		dbLogf("db: connect to %s %q failed, bootstrapping: %v", d.name(), name, err)
		if berr := d.bootstrap(ctx, dsn); berr != nil {
			return nil, berr
		}
		sqlDB, err = connect(ctx, d.driverName(), dsn)
		if err != nil {
			return nil, &ConnectError{Kind: connectKind(err), Err: fmt.Errorf("reconnect after bootstrap: %w", err)}
		}
	}
	configurePool(sqlDB, d)

	s := &Session{
		id:      uuid.NewString(),
		dialect: d,
		name:    name,
		sqlDB:   sqlDB,
		bun:     createBunDB(sqlDB, d.name()),
	}
	s.idb = s.bun
	dbLogf("db: session %s opened %s %q in %s", s.id, d.name(), name, time.Since(start))

	if err := provision(ctx, s, opts.Seed); err != nil {
		_ = s.Close()
		return nil, &ConnectError{Kind: SchemaBootstrapFailed, Err: err}
	}
	return s, nil
}

// connect opens and pings a pool. The pool is closed again when the ping fails.
func connect(ctx context.Context, driverName, dsn string) (*sql.DB, error) {
	sqlDB, err := sqlOpenFunc(driverName, dsn)
	if err != nil {
		return nil, &ConnectError{Kind: DriverUnavailable, Err: err}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return sqlDB, nil
}

// configurePool applies pool limits. Values can be overridden via
// environment variables for CI or production tuning.
func configurePool(sqlDB *sql.DB, d dialect) {
	const (
		defaultMaxOpenConns    = 25
		defaultMaxIdleConns    = 25
		defaultConnMaxLifetime = 5 * time.Minute
	)

	maxOpen := envInt("CHATDB_DB_MAX_OPEN_CONNS", defaultMaxOpenConns)
	maxIdle := envInt("CHATDB_DB_MAX_IDLE_CONNS", defaultMaxIdleConns)
	connMax := defaultConnMaxLifetime
	if n := envInt("CHATDB_DB_CONN_MAX_LIFETIME_SECONDS", -1); n >= 0 {
		connMax = time.Duration(n) * time.Second
	}

	// SQLite has a single writer, and in-memory databases are private to the
	// connection that created them.
	if d.name() == "sqlite" {
		maxOpen = 1
		maxIdle = 1
	}

	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(connMax)
	dbLogf("db: pool %s max open=%d idle=%d lifetime=%s", d.name(), maxOpen, maxIdle, connMax)
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

// createBunDB constructs a *bun.DB for the provided *sql.DB and dialect name.
func createBunDB(sqlDB *sql.DB, dbType string) *bun.DB {
	switch dbType {
	case "postgres":
		return bun.NewDB(sqlDB, pgdialect.New())
	case "mysql":
		return bun.NewDB(sqlDB, mysqldialect.New())
	default:
		return bun.NewDB(sqlDB, sqlitedialect.New())
	}
}

// ID identifies the session in diagnostic logs.
func (s *Session) ID() string { return s.id }

// Dialect returns "mysql", "postgres" or "sqlite".
func (s *Session) Dialect() string { return s.dialect.name() }

// Name returns the target schema (or SQLite file) the session is bound to.
func (s *Session) Name() string { return s.name }

// InTx reports whether the session is scoped to a transaction.
func (s *Session) InTx() bool { return s.inTx }

// DB returns the Bun handle for the session: the pool, or the transaction
// for a tx-scoped session.
func (s *Session) DB() (bun.IDB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed || s.idb == nil {
		return nil, ErrSessionClosed
	}
	return s.idb, nil
}

// Exec runs a statement that returns no rows. Placeholders are written as
// "?" for every dialect.
func (s *Session) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	idb, err := s.DB()
	if err != nil {
		return nil, err
	}
	res, err := idb.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, newQueryError(statementOp(err), query, err)
	}
	return res, nil
}

// Query runs a statement and materializes every row. The driver rows are
// released before Query returns, on success and on failure.
func (s *Session) Query(ctx context.Context, query string, args ...any) (*RowSet, error) {
	idb, err := s.DB()
	if err != nil {
		return nil, err
	}
	rows, err := idb.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, newQueryError(statementOp(err), query, err)
	}
	defer func() { _ = rows.Close() }()

	rs, err := collectRows(rows)
	if err != nil {
		return nil, newQueryError(OpFetch, query, err)
	}
	return rs, nil
}

// Scan runs a raw query and scans the rows into dest (a struct, a slice of
// structs or scalars) with Bun. sql.ErrNoRows is returned unwrapped.
func (s *Session) Scan(ctx context.Context, dest any, query string, args ...any) error {
	idb, err := s.DB()
	if err != nil {
		return err
	}
	if err := QueryRawInto(ctx, idb, dest, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return newQueryError(statementOp(err), query, err)
	}
	return nil
}

// RunInTx runs fn against a session scoped to a new transaction. The
// transaction is committed when fn returns nil and rolled back otherwise.
// Calling RunInTx on a tx-scoped session reuses the current transaction.
func (s *Session) RunInTx(ctx context.Context, fn func(ctx context.Context, tx *Session) error) error {
	if s.inTx {
		return fn(ctx, s)
	}
	s.mu.RLock()
	bdb, closed := s.bun, s.closed
	s.mu.RUnlock()
	if closed || bdb == nil {
		return ErrSessionClosed
	}
	return bdb.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		child := &Session{
			id:      s.id,
			dialect: s.dialect,
			name:    s.name,
			idb:     tx,
			inTx:    true,
		}
		return fn(ctx, child)
	})
}

// Close releases the connection pool. It is safe to call more than once, on
// a nil Session, or on a tx-scoped session (where it does nothing).
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.inTx {
		return nil
	}
	s.closed = true
	s.idb = nil
	var err error
	if s.bun != nil {
		// Closing the Bun DB closes the underlying *sql.DB.
		err = s.bun.Close()
		s.bun = nil
		s.sqlDB = nil
	} else if s.sqlDB != nil {
		err = s.sqlDB.Close()
		s.sqlDB = nil
	}
	dbLogf("db: session %s closed", s.id)
	return err
}
