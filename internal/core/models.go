// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"time"

	"github.com/toeirei/chatdb/internal/model"
	"github.com/uptrace/bun"
)

// UserModel maps the users table.
type UserModel struct {
	bun.BaseModel `bun:"table:users"`
	ID            int64  `bun:"user_id,pk,autoincrement"`
	FirstName     string `bun:"first_name,notnull"`
	LastName      string `bun:"last_name,notnull"`
	Email         string `bun:"email,notnull,unique"`
}

// PasswordModel maps the passwords table.
type PasswordModel struct {
	bun.BaseModel `bun:"table:passwords"`
	UserID        int64  `bun:"user_id,pk"`
	PasswordHash  string `bun:"password_hash,notnull"`
}

// MessageModel maps the messages table.
type MessageModel struct {
	bun.BaseModel  `bun:"table:messages"`
	ID             int64     `bun:"message_id,pk,autoincrement"`
	SenderID       int64     `bun:"sender_id,notnull"`
	ReceiverID     int64     `bun:"receiver_id,notnull"`
	Text           string    `bun:"message_text,notnull"`
	SentAt         time.Time `bun:"send_date,notnull"`
	DeliveryStatus int       `bun:"delivery_status"`
}

// messageRow is one row of a history or inbox query.
type messageRow struct {
	Sender string    `bun:"sender"`
	Text   string    `bun:"text"`
	SentAt time.Time `bun:"sent_at"`
}

func userToModel(u UserModel) model.User {
	return model.User{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}

func messageRowsToViews(rows []messageRow) []model.MessageView {
	out := make([]model.MessageView, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.MessageView{Sender: r.Sender, Text: r.Text, SentAt: r.SentAt})
	}
	return out
}
