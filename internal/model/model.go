// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

// Package model defines the core data structures shared by the chatdb layers.
package model // import "github.com/toeirei/chatdb/internal/model"

import (
	"fmt"
	"time"
)

// DeliveryUndelivered is the delivery_status every message is created with.
const DeliveryUndelivered = 0

// User is a registered chat participant.
type User struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
}

// String returns "First Last <email>".
func (u User) String() string {
	return fmt.Sprintf("%s %s <%s>", u.FirstName, u.LastName, u.Email)
}

// MessageView is one entry of a participant's chat history.
type MessageView struct {
	Sender string
	Text   string
	SentAt time.Time
}

// String renders the entry as "timestamp sender: text".
func (v MessageView) String() string {
	return fmt.Sprintf("%s %s: %s", v.SentAt.Format("2006-01-02 15:04:05"), v.Sender, v.Text)
}
