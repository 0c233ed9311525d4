// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

// Command chatdb is the console front end of the chat store.
package main

import (
	"fmt"
	"os"

	"github.com/toeirei/chatdb/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
