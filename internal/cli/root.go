// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

// Package cli builds the chatdb command tree with Cobra. The root command
// loads configuration, opens the audit trail and the database session, and
// hands them to the subcommands; everything is released again after the
// subcommand returns.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/toeirei/chatdb/buildvars"
	"github.com/toeirei/chatdb/internal/audit"
	"github.com/toeirei/chatdb/internal/config"
	"github.com/toeirei/chatdb/internal/core"
	"github.com/toeirei/chatdb/internal/db"
	"github.com/toeirei/chatdb/internal/i18n"
	"github.com/toeirei/chatdb/internal/logging"
)

// annotationServices limits what setup opens for a command. Commands
// without it get the audit trail and a database session.
const annotationServices = "chatdb/services"

const (
	servicesConfigOnly = "config"
	servicesAuditOnly  = "audit"
)

// app carries the services of a single command invocation.
type app struct {
	cfg     config.Config
	audit   *audit.Logger
	session *db.Session
	creds   *core.CredentialStore
	ledger  *core.Ledger
	in      *bufio.Reader
}

// Execute runs the CLI entrypoint. The cmd/chatdb main package should call
// this function and handle process exit.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd creates a fresh root command with all subcommands attached.
// Each call returns an independent tree, so tests can build as many as they
// need.
func NewRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "chatdb",
		Short:         i18n.T("root.short"),
		Long:          i18n.T("root.long"),
		Version:       buildvars.Resolve(nil).String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	defaults := config.Defaults()
	pf := cmd.PersistentFlags()
	pf.String("config", "", "config file")
	pf.String("database.type", defaults["database.type"].(string), `Database type ("sqlite", "mysql", "postgres")`)
	pf.String("database.dsn", defaults["database.dsn"].(string), "Database connection string (DSN)")
	pf.Bool("database.seed", false, "Insert sample users and messages when the schema is created")
	pf.String("audit.path", defaults["audit.path"].(string), "Audit log file")
	pf.String("language", defaults["language"].(string), `Output language ("en", "de")`)
	pf.BoolP("debug", "v", false, "Enable debug logging")

	cmd.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newPasswdCmd(a),
		newDeleteUserCmd(a),
		newUsersCmd(a),
		newSendCmd(a),
		newHistoryCmd(a),
		newInboxCmd(a),
		newLogCmd(a),
		newInitConfigCmd(a),
		newVersionCmd(),
	)
	return cmd
}

// setup loads the configuration and opens the services the command needs.
func (a *app) setup(cmd *cobra.Command) error {
	path, err := configPathFromFlag(cmd)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig[config.Config](cmd, config.Defaults(), path)
	var notFound viper.ConfigFileNotFoundError
	switch {
	case errors.As(err, &notFound):
		logging.Debugf("%s", i18n.T("config.not_found_hint"))
	case err != nil:
		return errors.New(i18n.T("config.error_load", err))
	}
	a.cfg = cfg

	i18n.Init(cfg.Language)
	logging.SetDebug(cfg.Debug)
	db.SetDebug(cfg.Debug)

	if err := cfg.Validate(); err != nil {
		return errors.New(i18n.T("config.error_invalid", err))
	}
	services := cmd.Annotations[annotationServices]
	if services == servicesConfigOnly {
		return nil
	}

	a.audit, err = audit.Open(cfg.Audit.Path)
	if err != nil {
		return errors.New(i18n.T("config.error_open_audit", err))
	}
	if services == servicesAuditOnly {
		return nil
	}

	a.session, err = db.Open(cmd.Context(), db.Options{
		Type: cfg.Database.Type,
		DSN:  cfg.Database.Dsn,
		Seed: cfg.Database.Seed,
	})
	if err != nil {
		_ = a.audit.LogAction(actionConnectFailed, err.Error())
		_ = a.teardown()
		return localizeError(err)
	}
	a.creds = core.NewCredentialStore(a.session, a.audit)
	a.ledger = core.NewLedger(a.session, a.audit)
	return nil
}

// run wraps a command body so the services opened by setup are released
// whether or not the body succeeds.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() { err = errors.Join(err, a.teardown()) }()
		return fn(cmd, args)
	}
}

// teardown releases the session and the audit trail. It is safe to call
// when setup stopped half way.
func (a *app) teardown() error {
	var errs []error
	if a.session != nil {
		errs = append(errs, a.session.Close())
		a.session = nil
	}
	if a.audit != nil {
		errs = append(errs, a.audit.Close())
		a.audit = nil
	}
	return errors.Join(errs...)
}

// configPathFromFlag returns the --config value, or nil when it is unset.
// An explicit file must exist.
func configPathFromFlag(cmd *cobra.Command) (*string, error) {
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return &path, nil
}
