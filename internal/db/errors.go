// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicate is returned when attempting to insert a record that already exists.
var ErrDuplicate = errors.New("duplicate record")

// ErrForeignKey is returned when a write references a row that does not exist.
var ErrForeignKey = errors.New("foreign key violation")

// ErrSessionClosed is returned by operations on a closed Session.
var ErrSessionClosed = errors.New("session is closed")

// ConnectKind classifies why a Session could not be opened.
type ConnectKind int

const (
	// DriverUnavailable means the database type is unknown or its driver is
	// not registered.
	DriverUnavailable ConnectKind = iota + 1
	// AuthRejected means the server refused the configured credentials.
	AuthRejected
	// SchemaBootstrapFailed means the target schema could not be created or
	// provisioned.
	SchemaBootstrapFailed
	// Unreachable means neither the target nor the server could be reached.
	Unreachable
)

func (k ConnectKind) String() string {
	switch k {
	case DriverUnavailable:
		return "driver unavailable"
	case AuthRejected:
		return "authentication rejected"
	case SchemaBootstrapFailed:
		return "schema bootstrap failed"
	case Unreachable:
		return "server unreachable"
	default:
		return fmt.Sprintf("connect kind %d", int(k))
	}
}

// ConnectError is returned by Open.
type ConnectError struct {
	Kind ConnectKind
	Err  error
}

func (e *ConnectError) Error() string {
	if e.Err == nil {
		return "connect: " + e.Kind.String()
	}
	return fmt.Sprintf("connect: %s: %v", e.Kind, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// IsConnectKind reports whether err is a ConnectError of the given kind.
func IsConnectKind(err error, kind ConnectKind) bool {
	var ce *ConnectError
	return errors.As(err, &ce) && ce.Kind == kind
}

// QueryOp names the stage of a statement that failed.
type QueryOp string

const (
	OpPrepare QueryOp = "prepare"
	OpExecute QueryOp = "execute"
	OpFetch   QueryOp = "fetch"
)

// QueryError is returned by Session.Exec, Session.Query and Session.Scan.
// Constraint violations remain detectable with errors.Is(err, ErrDuplicate)
// or errors.Is(err, ErrForeignKey).
type QueryError struct {
	Op    QueryOp
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s query failed: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

func newQueryError(op QueryOp, query string, err error) *QueryError {
	return &QueryError{Op: op, Query: query, Err: MapDBError(err)}
}

// WrapError classifies a failure of a statement built outside Session, such
// as a Bun query builder, the way Exec does. sql.ErrNoRows passes through.
func WrapError(query string, err error) error {
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return err
	}
	var qe *QueryError
	if errors.As(err, &qe) {
		return err
	}
	return newQueryError(statementOp(err), query, err)
}

// IsQueryOp reports whether err is a QueryError raised at the given stage.
func IsQueryOp(err error, op QueryOp) bool {
	var qe *QueryError
	return errors.As(err, &qe) && qe.Op == op
}

// MapDBError inspects low-level driver errors and tags common constraint
// violations with ErrDuplicate or ErrForeignKey. The driver error stays in
// the chain so callers can still inspect it.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, ErrForeignKey) {
		return err
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062:
			return fmt.Errorf("%w: %w", ErrDuplicate, err)
		case 1451, 1452:
			return fmt.Errorf("%w: %w", ErrForeignKey, err)
		}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %w", ErrDuplicate, err)
		case "23503":
			return fmt.Errorf("%w: %w", ErrForeignKey, err)
		}
	}
	// SQLite reports constraints only as text; the checks above cover the
	// structured errors of the other drivers.
	le := strings.ToLower(err.Error())
	switch {
	case strings.Contains(le, "foreign key constraint"):
		return fmt.Errorf("%w: %w", ErrForeignKey, err)
	case strings.Contains(le, "duplicate") || strings.Contains(le, "unique constraint") || strings.Contains(le, "23505") || strings.Contains(le, "1062"):
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	}
	return err
}

// statementOp decides whether a failed statement was rejected before it ran
// (syntax, unknown objects) or while running.
func statementOp(err error) QueryOp {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1054, 1064, 1146, 1149:
			return OpPrepare
		}
		return OpExecute
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 42: syntax error or access rule violation.
		if strings.HasPrefix(pgErr.Code, "42") {
			return OpPrepare
		}
		return OpExecute
	}
	le := strings.ToLower(err.Error())
	if strings.Contains(le, "syntax error") || strings.Contains(le, "no such table") || strings.Contains(le, "no such column") {
		return OpPrepare
	}
	return OpExecute
}

// connectKind classifies a failed connection attempt.
func connectKind(err error) ConnectKind {
	var ce *ConnectError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1044, 1045, 1698:
			return AuthRejected
		}
		return SchemaBootstrapFailed
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "28000", "28P01":
			return AuthRejected
		}
		return SchemaBootstrapFailed
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Unreachable
	}
	le := strings.ToLower(err.Error())
	switch {
	case strings.Contains(le, "access denied") || strings.Contains(le, "password authentication failed"):
		return AuthRejected
	case strings.Contains(le, "connection refused") || strings.Contains(le, "no such host") || strings.Contains(le, "i/o timeout"):
		return Unreachable
	case strings.Contains(le, "unknown driver"):
		return DriverUnavailable
	}
	return SchemaBootstrapFailed
}
