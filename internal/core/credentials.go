// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/toeirei/chatdb/internal/db"
	"github.com/toeirei/chatdb/internal/model"
)

var (
	// ErrDuplicateEmail is returned by Register when the email is taken. It
	// also matches db.ErrDuplicate.
	ErrDuplicateEmail = fmt.Errorf("email already registered: %w", db.ErrDuplicate)
	// ErrInvalidCredentials is returned by Login for an unknown user and for
	// a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Steps of DeleteUser, in execution order.
const (
	DeleteStepResolve    = "resolve"
	DeleteStepMessages   = "messages"
	DeleteStepCredential = "credential"
	DeleteStepUser       = "user"
)

// DeleteError reports the step at which DeleteUser failed. Nothing was
// removed when it is returned.
type DeleteError struct {
	User string
	Step string
	Err  error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("delete user %q failed at %s step: %v", e.User, e.Step, e.Err)
}

func (e *DeleteError) Unwrap() error { return e.Err }

// CredentialStore registers, authenticates and removes users.
type CredentialStore struct {
	session *db.Session
	audit   AuditWriter
}

// NewCredentialStore returns a store bound to s. A nil audit discards entries.
func NewCredentialStore(s *db.Session, audit AuditWriter) *CredentialStore {
	return &CredentialStore{session: s, audit: auditOrDiscard(audit)}
}

// Register inserts a user. The credential row is created by the store's
// insert trigger with db.DefaultPasswordHash.
func (c *CredentialStore) Register(ctx context.Context, firstName, lastName, email string) error {
	id, err := insertUser(ctx, c.session, firstName, lastName, email)
	if err != nil {
		_ = c.audit.LogAction(ActionRegisterFailed, fmt.Sprintf("email: %s, reason: %v", email, err))
		return err
	}
	_ = c.audit.LogAction(ActionRegister, fmt.Sprintf("user: %s, id: %d", strings.TrimSpace(firstName), id))
	return nil
}

// RegisterWithPassword registers a user and replaces the default credential
// with hash in one transaction.
func (c *CredentialStore) RegisterWithPassword(ctx context.Context, firstName, lastName, email, hash string) error {
	if err := ValidatePasswordHash(hash); err != nil {
		return err
	}
	var id int64
	err := c.session.RunInTx(ctx, func(ctx context.Context, tx *db.Session) error {
		var err error
		if id, err = insertUser(ctx, tx, firstName, lastName, email); err != nil {
			return err
		}
		return updatePassword(ctx, tx, id, hash)
	})
	if err != nil {
		_ = c.audit.LogAction(ActionRegisterFailed, fmt.Sprintf("email: %s, reason: %v", email, err))
		return err
	}
	_ = c.audit.LogAction(ActionRegister, fmt.Sprintf("user: %s, id: %d", strings.TrimSpace(firstName), id))
	return nil
}

func insertUser(ctx context.Context, s *db.Session, firstName, lastName, email string) (int64, error) {
	if err := ValidateRegistration(firstName, lastName, email); err != nil {
		return 0, err
	}
	idb, err := s.DB()
	if err != nil {
		return 0, err
	}
	u := &UserModel{
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Email:     strings.TrimSpace(email),
	}
	if _, err := idb.NewInsert().Model(u).Column("first_name", "last_name", "email").Returning("user_id").Exec(ctx); err != nil {
		err = db.WrapError("INSERT INTO users", err)
		if errors.Is(err, db.ErrDuplicate) {
			return 0, fmt.Errorf("%w: %w", ErrDuplicateEmail, err)
		}
		return 0, err
	}
	return u.ID, nil
}

func updatePassword(ctx context.Context, s *db.Session, userID int64, hash string) error {
	idb, err := s.DB()
	if err != nil {
		return err
	}
	res, err := idb.NewUpdate().Model((*PasswordModel)(nil)).
		Set("password_hash = ?", hash).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return db.WrapError("UPDATE passwords", err)
	}
	// A user without a credential breaks the one-to-one invariant.
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("no credential for user %d", userID)
	}
	return nil
}

// Login returns the id of the user with firstName whose credential matches
// hash. Unknown users and wrong hashes both yield ErrInvalidCredentials, as
// does a first name shared by several users with the same hash.
func (c *CredentialStore) Login(ctx context.Context, firstName, hash string) (int64, error) {
	rs, err := c.session.Query(ctx, `SELECT u.user_id FROM users u
		INNER JOIN passwords p ON u.user_id = p.user_id
		WHERE u.first_name = ? AND p.password_hash = ?`, firstName, hash)
	if err != nil {
		return 0, err
	}
	if rs.Len() != 1 {
		_ = c.audit.LogAction(ActionLoginFailed, fmt.Sprintf("user: %s", firstName))
		return 0, ErrInvalidCredentials
	}
	id, err := rs.Int64(0, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to read user id: %w", err)
	}
	_ = c.audit.LogAction(ActionLogin, fmt.Sprintf("user: %s, id: %d", firstName, id))
	return id, nil
}

// SetPassword replaces the credential of the user with firstName.
func (c *CredentialStore) SetPassword(ctx context.Context, firstName, hash string) error {
	if err := ValidatePasswordHash(hash); err != nil {
		return err
	}
	err := c.session.RunInTx(ctx, func(ctx context.Context, tx *db.Session) error {
		id, err := ResolveUserID(ctx, tx, firstName)
		if err != nil {
			return err
		}
		return updatePassword(ctx, tx, id, hash)
	})
	if err != nil {
		return err
	}
	_ = c.audit.LogAction(ActionSetPassword, fmt.Sprintf("user: %s", firstName))
	return nil
}

// DeleteUser removes the user with firstName, every message it sent or
// received and its credential, in one transaction. The store's delete
// trigger would do the same; issuing the deletes here keeps the cascade
// intact on stores where the trigger is missing.
func (c *CredentialStore) DeleteUser(ctx context.Context, firstName string) error {
	err := c.session.RunInTx(ctx, func(ctx context.Context, tx *db.Session) error {
		id, err := ResolveUserID(ctx, tx, firstName)
		if errors.Is(err, ErrNotFound) {
			return err
		}
		if err != nil {
			return &DeleteError{User: firstName, Step: DeleteStepResolve, Err: err}
		}
		steps := []struct {
			step  string
			query string
			args  []any
		}{
			{DeleteStepMessages, "DELETE FROM messages WHERE sender_id = ? OR receiver_id = ?", []any{id, id}},
			{DeleteStepCredential, "DELETE FROM passwords WHERE user_id = ?", []any{id}},
			{DeleteStepUser, "DELETE FROM users WHERE user_id = ?", []any{id}},
		}
		for _, s := range steps {
			if _, err := tx.Exec(ctx, s.query, s.args...); err != nil {
				return &DeleteError{User: firstName, Step: s.step, Err: err}
			}
		}
		return nil
	})
	if err != nil {
		_ = c.audit.LogAction(ActionDeleteFailed, fmt.Sprintf("user: %s, reason: %v", firstName, err))
		return err
	}
	_ = c.audit.LogAction(ActionDeleteUser, fmt.Sprintf("user: %s", firstName))
	return nil
}

// ListUsers returns every user ordered by id.
func (c *CredentialStore) ListUsers(ctx context.Context) ([]model.User, error) {
	idb, err := c.session.DB()
	if err != nil {
		return nil, err
	}
	var rows []UserModel
	if err := idb.NewSelect().Model(&rows).OrderExpr("user_id ASC").Scan(ctx); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, db.WrapError("SELECT users", err)
	}
	out := make([]model.User, 0, len(rows))
	for _, u := range rows {
		out = append(out, userToModel(u))
	}
	return out, nil
}
