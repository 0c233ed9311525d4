// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"

	"github.com/toeirei/chatdb/internal/core"
	"github.com/toeirei/chatdb/internal/db"
	"github.com/toeirei/chatdb/internal/i18n"
)

// actionConnectFailed is audited when the store cannot be opened.
const actionConnectFailed = "DB_CONNECT_FAILED"

// userError carries the localized text shown to the user while keeping the
// underlying error inspectable.
type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.err }

// localizeError turns a domain error into a message for the user.
// Unrecognized errors are shown as they are.
func localizeError(err error) error {
	if err == nil {
		return nil
	}
	var (
		de  *core.DeleteError
		ce  *db.ConnectError
		msg string
	)
	switch {
	case errors.Is(err, core.ErrDuplicateEmail):
		msg = i18n.T("error.duplicate_email")
	case errors.Is(err, core.ErrInvalidCredentials):
		msg = i18n.T("error.invalid_credentials")
	case errors.Is(err, core.ErrUnknownSender):
		msg = i18n.T("error.unknown_sender")
	case errors.Is(err, core.ErrUnknownReceiver):
		msg = i18n.T("error.unknown_receiver")
	case errors.As(err, &de):
		msg = i18n.T("error.delete_step", de.User, de.Step)
	case errors.Is(err, core.ErrNotFound):
		msg = i18n.T("error.not_found")
	case errors.Is(err, core.ErrInvalidInput):
		msg = i18n.T("error.invalid_input", err)
	case errors.As(err, &ce):
		msg = i18n.T("error.db_unavailable", err)
	default:
		msg = i18n.T("error.generic", err)
	}
	return &userError{msg: msg, err: err}
}
