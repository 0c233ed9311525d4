// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"github.com/toeirei/chatdb/buildvars"
	"github.com/toeirei/chatdb/internal/config"
	"github.com/toeirei/chatdb/internal/i18n"
)

func newLogCmd(a *app) *cobra.Command {
	var tail int
	cmd := &cobra.Command{
		Use:         "log",
		Short:       i18n.T("log.short"),
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationServices: servicesAuditOnly},
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			var (
				content string
				err     error
			)
			if tail > 0 {
				content, err = a.audit.ReadTail(tail)
			} else {
				content, err = a.audit.ReadAll()
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), content)
			return err
		}),
	}
	cmd.Flags().IntVarP(&tail, "tail", "n", 0, "Print only the last N entries")
	return cmd
}

func newInitConfigCmd(a *app) *cobra.Command {
	var (
		system bool
		force  bool
		output string
	)
	cmd := &cobra.Command{
		Use:         "init-config",
		Short:       i18n.T("init_config.short"),
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationServices: servicesConfigOnly},
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			path := output
			if path == "" {
				var err error
				if path, err = config.GetConfigPath(system); err != nil {
					return err
				}
			}
			if _, err := os.Stat(path); err == nil && !force {
				return errors.New(i18n.T("config.exists", path))
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if err := config.WriteConfigFileTo(&a.cfg, path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("config.written", path))
			return nil
		}),
	}
	cmd.Flags().BoolVar(&system, "system", false, "Write the system-wide file instead of the user file")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this path")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: i18n.T("version.short"),
		Args:  cobra.NoArgs,
		// No config is needed to print the version.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			info := buildvars.Resolve(nil)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "version: %s\n", info.Version)
			fmt.Fprintf(out, "commit: %s\n", info.Commit)
			if info.Date != "" {
				fmt.Fprintf(out, "built: %s\n", info.Date)
			}
		},
	}
}
