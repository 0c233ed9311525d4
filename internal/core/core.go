// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

// Package core implements the chat domain on top of a db.Session: resolving
// users by name, registering and authenticating them, and recording and
// replaying messages. Components hold the Session they were given and never
// print; outcomes are mirrored to an injected AuditWriter.
package core

import (
	"context"

	"github.com/toeirei/chatdb/internal/db"
)

// AuditWriter records significant outcomes. Failures are ignored by callers.
type AuditWriter interface {
	LogAction(action, details string) error
}

// Querier runs a read statement and returns its materialized rows.
// *db.Session satisfies it.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) (*db.RowSet, error)
}

type discardAudit struct{}

func (discardAudit) LogAction(string, string) error { return nil }

func auditOrDiscard(w AuditWriter) AuditWriter {
	if w == nil {
		return discardAudit{}
	}
	return w
}

// Audit actions.
const (
	ActionRegister       = "REGISTER"
	ActionRegisterFailed = "REGISTER_FAILED"
	ActionLogin          = "LOGIN"
	ActionLoginFailed    = "LOGIN_FAILED"
	ActionSetPassword    = "SET_PASSWORD"
	ActionDeleteUser     = "DELETE_USER"
	ActionDeleteFailed   = "DELETE_USER_FAILED"
	ActionSendMessage    = "SEND_MESSAGE"
	ActionSendFailed     = "SEND_MESSAGE_FAILED"
)
