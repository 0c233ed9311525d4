// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toeirei/chatdb/internal/audit"
	"github.com/toeirei/chatdb/internal/i18n"
	"github.com/toeirei/chatdb/internal/model"
)

func newSendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "send <sender> <receiver> <text>...",
		Short: i18n.T("send.short"),
		Args:  cobra.MinimumNArgs(3),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args[2:], " ")
			if err := a.ledger.Send(cmd.Context(), args[0], args[1], text); err != nil {
				return localizeError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("send.success"))
			return nil
		}),
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history <first-name>",
		Short: i18n.T("history.short"),
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			return a.printMessages(cmd, args[0], a.ledger.History, "history.empty")
		}),
	}
}

func newInboxCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inbox <first-name>",
		Short: i18n.T("inbox.short"),
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			return a.printMessages(cmd, args[0], a.ledger.Inbox, "inbox.empty")
		}),
	}
}

type replayFunc func(ctx context.Context, participant string) ([]model.MessageView, error)

func (a *app) printMessages(cmd *cobra.Command, participant string, replay replayFunc, emptyID string) error {
	views, err := replay(cmd.Context(), participant)
	if err != nil {
		return localizeError(err)
	}
	out := cmd.OutOrStdout()
	if len(views) == 0 {
		fmt.Fprintln(out, i18n.T(emptyID, participant))
		return nil
	}
	writeMessages(out, views)
	return nil
}

// writeMessages renders one line per message: timestamp, sender, text.
func writeMessages(w io.Writer, views []model.MessageView) {
	st := newStyles(w)
	for _, v := range views {
		fmt.Fprintf(w, "%s %s %s\n",
			st.time.Render(v.SentAt.Format(audit.TimestampLayout)),
			st.name.Render(v.Sender+":"),
			v.Text)
	}
}
