// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"encoding/hex"

	"github.com/toeirei/chatdb/internal/security"
	"golang.org/x/crypto/blake2b"
)

// hashSize yields 32 hex characters, the width of password_hash.
const hashSize = 16

// HashPassword derives the stored hash from a password. The result is
// deterministic so Login can compare it in the query.
func HashPassword(password security.Secret) string {
	h, err := blake2b.New(hashSize, nil)
	if err != nil {
		// Only possible for an invalid size or key.
		panic(err)
	}
	_ = password.Use(func(b []byte) error {
		_, _ = h.Write(b)
		return nil
	})
	return hex.EncodeToString(h.Sum(nil))
}
