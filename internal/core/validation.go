// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrInvalidInput is wrapped by every validation failure.
var ErrInvalidInput = errors.New("invalid input")

// Column limits of the users and passwords tables.
const (
	maxNameLen  = 50
	maxEmailLen = 100
	maxHashLen  = 32
)

// ValidateRegistration checks the fields of a new user against the schema
// limits. It performs pure, deterministic validation.
func ValidateRegistration(firstName, lastName, email string) error {
	f := strings.TrimSpace(firstName)
	l := strings.TrimSpace(lastName)
	e := strings.TrimSpace(email)

	if f == "" || l == "" || e == "" {
		return fmt.Errorf("%w: names and email cannot be empty", ErrInvalidInput)
	}
	if utf8.RuneCountInString(f) > maxNameLen || utf8.RuneCountInString(l) > maxNameLen {
		return fmt.Errorf("%w: names are limited to %d characters", ErrInvalidInput, maxNameLen)
	}
	if utf8.RuneCountInString(e) > maxEmailLen {
		return fmt.Errorf("%w: email is limited to %d characters", ErrInvalidInput, maxEmailLen)
	}
	if at := strings.IndexByte(e, '@'); at <= 0 || at == len(e)-1 {
		return fmt.Errorf("%w: %q is not an email address", ErrInvalidInput, e)
	}
	return nil
}

// ValidatePasswordHash checks that hash fits the password_hash column.
func ValidatePasswordHash(hash string) error {
	if hash == "" {
		return fmt.Errorf("%w: password hash cannot be empty", ErrInvalidInput)
	}
	if len(hash) > maxHashLen {
		return fmt.Errorf("%w: password hash is limited to %d bytes", ErrInvalidInput, maxHashLen)
	}
	return nil
}
