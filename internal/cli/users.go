// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/toeirei/chatdb/internal/core"
	"github.com/toeirei/chatdb/internal/i18n"
)

func newRegisterCmd(a *app) *cobra.Command {
	var withPassword bool
	cmd := &cobra.Command{
		Use:   "register <first-name> <last-name> <email>",
		Short: i18n.T("register.short"),
		Args:  cobra.ExactArgs(3),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			first, last, email := args[0], args[1], args[2]
			if !withPassword {
				if err := a.creds.Register(cmd.Context(), first, last, email); err != nil {
					return localizeError(err)
				}
			} else {
				// Validate before prompting so bad input fails fast.
				if err := core.ValidateRegistration(first, last, email); err != nil {
					return localizeError(err)
				}
				hash, err := promptNewPassword(a, cmd)
				if err != nil {
					return err
				}
				if err := a.creds.RegisterWithPassword(cmd.Context(), first, last, email, hash); err != nil {
					return localizeError(err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("register.success", first))
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&withPassword, "password", "p", false, "Prompt for a password instead of using the default credential")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var hash string
	cmd := &cobra.Command{
		Use:   "login <first-name>",
		Short: i18n.T("login.short"),
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("hash") {
				pw, err := readPassword(a, cmd, i18n.T("prompt.password"))
				if err != nil {
					return err
				}
				hash = core.HashPassword(pw)
				pw.Zero()
			}
			id, err := a.creds.Login(cmd.Context(), args[0], hash)
			if err != nil {
				return localizeError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("login.success", args[0], id))
			return nil
		}),
	}
	cmd.Flags().StringVar(&hash, "hash", "", "Compare this stored password hash instead of prompting")
	return cmd
}

func newPasswdCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "passwd <first-name>",
		Short: i18n.T("passwd.short"),
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			hash, err := promptNewPassword(a, cmd)
			if err != nil {
				return err
			}
			if err := a.creds.SetPassword(cmd.Context(), args[0], hash); err != nil {
				return localizeError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("passwd.success", args[0]))
			return nil
		}),
	}
}

func newDeleteUserCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-user <first-name>",
		Short: i18n.T("delete_user.short"),
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			if err := a.creds.DeleteUser(cmd.Context(), args[0]); err != nil {
				return localizeError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("delete_user.success", args[0]))
			return nil
		}),
	}
}

func newUsersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: i18n.T("users.short"),
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			users, err := a.creds.ListUsers(cmd.Context())
			if err != nil {
				return localizeError(err)
			}
			if len(users) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("users.empty"))
				return nil
			}
			st := newStyles(cmd.OutOrStdout())
			for _, u := range users {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", st.id.Render(fmt.Sprintf("%4d", u.ID)), st.name.Render(u.String()))
			}
			return nil
		}),
	}
}
