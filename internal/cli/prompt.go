// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toeirei/chatdb/internal/core"
	"github.com/toeirei/chatdb/internal/i18n"
	"github.com/toeirei/chatdb/internal/security"
	"golang.org/x/term"
)

// readPassword prompts for a password. On a terminal the input is not
// echoed; otherwise one line is read from the command's input. Tests
// replace it.
var readPassword = func(a *app, cmd *cobra.Command, prompt string) (security.Secret, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return nil, err
		}
		return security.Secret(b), nil
	}
	if a.in == nil {
		a.in = bufio.NewReader(cmd.InOrStdin())
	}
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return nil, err
	}
	return security.FromString(strings.TrimRight(line, "\r\n")), nil
}

// promptNewPassword asks for a password twice and returns its hash.
func promptNewPassword(a *app, cmd *cobra.Command) (string, error) {
	first, err := readPassword(a, cmd, i18n.T("prompt.password"))
	if err != nil {
		return "", err
	}
	defer first.Zero()
	second, err := readPassword(a, cmd, i18n.T("prompt.password_repeat"))
	if err != nil {
		return "", err
	}
	defer second.Zero()
	if !first.Equal(second) {
		return "", errors.New(i18n.T("passwd.mismatch"))
	}
	return core.HashPassword(first), nil
}
