// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

// Package db owns the connection to the backing store.
//
// It abstracts the underlying database (MySQL, PostgreSQL, SQLite) behind a
// Session value. Open connects to the configured target and, when that
// fails, falls back to connecting to the server alone, creating the target
// schema and connecting again. On every successful open the tables and
// cascade triggers are provisioned if the users table is missing.
//
// Sessions
//   - A Session is owned by whoever opened it and passed explicitly to the
//     components that need it. There are no package-level handles.
//   - Exec, Query and Scan run one statement each. Query materializes every
//     row into a RowSet and releases the driver rows before returning.
//   - RunInTx hands a tx-scoped Session to its callback. Returning an error
//     rolls the transaction back.
//
// Errors
//   - Open returns *ConnectError with a ConnectKind.
//   - Statement failures are *QueryError with a QueryOp. Unique and foreign
//     key violations are also tagged with ErrDuplicate and ErrForeignKey.
//
// Testing notes
//   - Prefer Open with Type "sqlite" and a DSN of the form
//     "file:<name>?mode=memory&cache=shared" in tests that need real triggers.
//   - sqlOpenFunc can be replaced to hand Open a go-sqlmock connection.
package db // import "github.com/toeirei/chatdb/internal/db"
