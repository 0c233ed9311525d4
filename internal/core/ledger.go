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
	ErrUnknownSender   = errors.New("unknown sender")
	ErrUnknownReceiver = errors.New("unknown receiver")
	ErrEmptyMessage    = fmt.Errorf("%w: message text cannot be empty", ErrInvalidInput)
)

const historyQuery = `SELECT u.first_name AS sender, m.message_text AS text, m.send_date AS sent_at
	FROM messages m
	INNER JOIN users u ON m.sender_id = u.user_id
	WHERE u.first_name = ?
	ORDER BY m.send_date, m.message_id`

const inboxQuery = `SELECT s.first_name AS sender, m.message_text AS text, m.send_date AS sent_at
	FROM messages m
	INNER JOIN users s ON m.sender_id = s.user_id
	INNER JOIN users r ON m.receiver_id = r.user_id
	WHERE r.first_name = ?
	ORDER BY m.send_date, m.message_id`

// Ledger records messages between users and replays them.
type Ledger struct {
	session *db.Session
	audit   AuditWriter
}

// NewLedger returns a ledger bound to s. A nil audit discards entries.
func NewLedger(s *db.Session, audit AuditWriter) *Ledger {
	return &Ledger{session: s, audit: auditOrDiscard(audit)}
}

// Send stores a message from sender to receiver, both given by first name,
// stamped with the current time and the undelivered status. Resolution and
// insert share one transaction.
func (l *Ledger) Send(ctx context.Context, sender, receiver, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}
	var msg *MessageModel
	err := l.session.RunInTx(ctx, func(ctx context.Context, tx *db.Session) error {
		senderID, err := ResolveUserID(ctx, tx, sender)
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: %q", ErrUnknownSender, sender)
		}
		if err != nil {
			return err
		}
		receiverID, err := ResolveUserID(ctx, tx, receiver)
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: %q", ErrUnknownReceiver, receiver)
		}
		if err != nil {
			return err
		}

		idb, err := tx.DB()
		if err != nil {
			return err
		}
		msg = &MessageModel{
			SenderID:       senderID,
			ReceiverID:     receiverID,
			Text:           text,
			SentAt:         sendTime(),
			DeliveryStatus: model.DeliveryUndelivered,
		}
		if _, err := idb.NewInsert().Model(msg).
			Column("sender_id", "receiver_id", "message_text", "send_date", "delivery_status").
			Returning("message_id").
			Exec(ctx); err != nil {
			return db.WrapError("INSERT INTO messages", err)
		}
		return nil
	})
	if err != nil {
		_ = l.audit.LogAction(ActionSendFailed, fmt.Sprintf("from: %s, to: %s, reason: %v", sender, receiver, err))
		return err
	}
	_ = l.audit.LogAction(ActionSendMessage, fmt.Sprintf("from: %s, to: %s, id: %d", sender, receiver, msg.ID))
	return nil
}

// History returns the messages sent by participant, oldest first. Messages
// the participant only received are not part of it; see Inbox.
func (l *Ledger) History(ctx context.Context, participant string) ([]model.MessageView, error) {
	return l.replay(ctx, historyQuery, participant)
}

// Inbox returns the messages received by participant, oldest first.
func (l *Ledger) Inbox(ctx context.Context, participant string) ([]model.MessageView, error) {
	return l.replay(ctx, inboxQuery, participant)
}

func (l *Ledger) replay(ctx context.Context, query, participant string) ([]model.MessageView, error) {
	var rows []messageRow
	if err := l.session.Scan(ctx, &rows, query, participant); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return messageRowsToViews(rows), nil
}
