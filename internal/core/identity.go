// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when no user matches the lookup key.
var ErrNotFound = errors.New("user not found")

// ResolveUserID returns the id of the user with the given first name. First
// names are not unique; when several users share one, the lowest id wins.
// Prefer ResolveUserIDByEmail where the caller knows the email.
func ResolveUserID(ctx context.Context, q Querier, firstName string) (int64, error) {
	return resolveOne(ctx, q, "SELECT user_id FROM users WHERE first_name = ? ORDER BY user_id", firstName)
}

// ResolveUserIDByEmail returns the id of the user registered with email.
// Emails are unique, so at most one row can match.
func ResolveUserIDByEmail(ctx context.Context, q Querier, email string) (int64, error) {
	return resolveOne(ctx, q, "SELECT user_id FROM users WHERE email = ?", strings.TrimSpace(email))
}

func resolveOne(ctx context.Context, q Querier, query, key string) (int64, error) {
	rs, err := q.Query(ctx, query, key)
	if err != nil {
		return 0, err
	}
	if rs.Empty() {
		return 0, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	id, err := rs.Int64(0, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to read user id: %w", err)
	}
	return id, nil
}
