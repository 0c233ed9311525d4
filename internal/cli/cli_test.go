// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/toeirei/chatdb/internal/i18n"
)

// testEnv points a command tree at a private SQLite file and audit log.
type testEnv struct {
	dir   string
	dsn   string
	audit string
	lang  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Chdir(dir)
	i18n.Init("en")
	t.Cleanup(func() { i18n.Init("en") })
	return &testEnv{
		dir:   dir,
		dsn:   filepath.Join(dir, "chat.db"),
		audit: filepath.Join(dir, "audit.log"),
		lang:  "en",
	}
}

// run executes one command line with stdin and returns stdout.
func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	full := append([]string{
		"--database.type", "sqlite",
		"--database.dsn", e.dsn,
		"--audit.path", e.audit,
		"--language", e.lang,
	}, args...)
	cmd.SetArgs(full)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) mustRun(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, err := e.run(t, stdin, args...)
	if err != nil {
		t.Fatalf("%v failed: %v", args, err)
	}
	return out
}

func TestRegisterAndListUsers(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun(t, "", "register", "Ada", "Lovelace", "ada@example.com")
	if !strings.Contains(out, "Registered Ada.") {
		t.Fatalf("unexpected output: %q", out)
	}
	env.mustRun(t, "", "register", "Alan", "Turing", "alan@example.com")

	out = env.mustRun(t, "", "users")
	if !strings.Contains(out, "Ada Lovelace <ada@example.com>") || !strings.Contains(out, "Alan Turing <alan@example.com>") {
		t.Fatalf("users output missing entries: %q", out)
	}
	if strings.Index(out, "Ada") > strings.Index(out, "Alan") {
		t.Fatalf("users should be listed by id: %q", out)
	}

	_, err := env.run(t, "", "register", "Other", "Ada", "ada@example.com")
	if err == nil || err.Error() != "A user with this email address already exists." {
		t.Fatalf("expected localized duplicate error, got %v", err)
	}
}

func TestUsers_EmptyStore(t *testing.T) {
	env := newTestEnv(t)
	if out := env.mustRun(t, "", "users"); !strings.Contains(out, "No users registered.") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestRegisterWithPassword_ThenLogin(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "s3cret\ns3cret\n", "register", "--password", "Ada", "Lovelace", "ada@example.com")

	out := env.mustRun(t, "s3cret\n", "login", "Ada")
	if !strings.Contains(out, "Welcome, Ada (id 1).") {
		t.Fatalf("unexpected login output: %q", out)
	}

	_, err := env.run(t, "wrong\n", "login", "Ada")
	if err == nil || err.Error() != "Invalid name or password." {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	_, err = env.run(t, "s3cret\n", "login", "Nobody")
	if err == nil || err.Error() != "Invalid name or password." {
		t.Fatalf("unknown user must look like a wrong password, got %v", err)
	}
}

func TestRegisterWithPassword_Mismatch(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "one\ntwo\n", "register", "-p", "Ada", "Lovelace", "ada@example.com")
	if err == nil || err.Error() != "Passwords do not match." {
		t.Fatalf("expected mismatch error, got %v", err)
	}
	if out := env.mustRun(t, "", "users"); !strings.Contains(out, "No users registered.") {
		t.Fatalf("nothing should be stored after a mismatch: %q", out)
	}
}

func TestLogin_DefaultCredentialByHash(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "", "register", "Ada", "Lovelace", "ada@example.com")
	if out := env.mustRun(t, "", "login", "Ada", "--hash", "pass"); !strings.Contains(out, "Welcome, Ada") {
		t.Fatalf("default credential should match: %q", out)
	}
}

func TestPasswd(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "", "register", "Ada", "Lovelace", "ada@example.com")
	if out := env.mustRun(t, "new\nnew\n", "passwd", "Ada"); !strings.Contains(out, "Password changed for Ada.") {
		t.Fatalf("unexpected output: %q", out)
	}
	env.mustRun(t, "new\n", "login", "Ada")
	if _, err := env.run(t, "", "login", "Ada", "--hash", "pass"); err == nil {
		t.Fatalf("default credential should no longer match")
	}

	_, err := env.run(t, "x\nx\n", "passwd", "Nobody")
	if err == nil || err.Error() != "User not found." {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSendHistoryInbox(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "", "register", "Ada", "Lovelace", "ada@example.com")
	env.mustRun(t, "", "register", "Alan", "Turing", "alan@example.com")

	if out := env.mustRun(t, "", "send", "Ada", "Alan", "Hello", "there"); !strings.Contains(out, "Message sent.") {
		t.Fatalf("unexpected output: %q", out)
	}

	out := env.mustRun(t, "", "history", "Ada")
	if !strings.Contains(out, "Ada:") || !strings.Contains(out, "Hello there") {
		t.Fatalf("history should list the sent message: %q", out)
	}
	if out := env.mustRun(t, "", "history", "Alan"); !strings.Contains(out, "No messages sent by Alan.") {
		t.Fatalf("receiver history should be empty: %q", out)
	}
	if out := env.mustRun(t, "", "inbox", "Alan"); !strings.Contains(out, "Hello there") {
		t.Fatalf("inbox should list the received message: %q", out)
	}

	_, err := env.run(t, "", "send", "Ada", "Nobody", "hi")
	if err == nil || err.Error() != "Failed to retrieve receiver ID." {
		t.Fatalf("expected unknown receiver, got %v", err)
	}
	_, err = env.run(t, "", "send", "Nobody", "Ada", "hi")
	if err == nil || err.Error() != "Failed to retrieve sender ID." {
		t.Fatalf("expected unknown sender, got %v", err)
	}
}

func TestDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "", "register", "Ada", "Lovelace", "ada@example.com")
	env.mustRun(t, "", "register", "Alan", "Turing", "alan@example.com")
	env.mustRun(t, "", "send", "Ada", "Alan", "bye")

	if out := env.mustRun(t, "", "delete-user", "Ada"); !strings.Contains(out, "Deleted Ada.") {
		t.Fatalf("unexpected output: %q", out)
	}
	if out := env.mustRun(t, "", "inbox", "Alan"); !strings.Contains(out, "No messages for Alan.") {
		t.Fatalf("messages of a deleted user should be gone: %q", out)
	}
	_, err := env.run(t, "", "delete-user", "Ada")
	if err == nil || err.Error() != "User not found." {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLog_RecordsActions(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "", "register", "Ada", "Lovelace", "ada@example.com")
	env.mustRun(t, "", "register", "Alan", "Turing", "alan@example.com")
	env.mustRun(t, "", "send", "Ada", "Alan", "hi")

	all := env.mustRun(t, "", "log")
	for _, want := range []string{"REGISTER: user: Ada", "REGISTER: user: Alan", "SEND_MESSAGE"} {
		if !strings.Contains(all, want) {
			t.Fatalf("audit log missing %q: %q", want, all)
		}
	}
	tail := env.mustRun(t, "", "log", "--tail", "1")
	if strings.Count(tail, "\n") != 1 || !strings.Contains(tail, "SEND_MESSAGE") {
		t.Fatalf("unexpected tail: %q", tail)
	}
}

func TestLog_DoesNotOpenDatabase(t *testing.T) {
	env := newTestEnv(t)
	env.dsn = filepath.Join(env.dir, "never", "chat.db")
	if _, err := env.run(t, "", "log"); err != nil {
		t.Fatalf("log failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.dir, "never")); !os.IsNotExist(err) {
		t.Fatalf("log should not touch the database, stat err=%v", err)
	}
}

func TestInitConfig(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(env.dir, "conf", "chatdb.yaml")
	out := env.mustRun(t, "", "init-config", "--output", path)
	if !strings.Contains(out, path) {
		t.Fatalf("unexpected output: %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if !strings.Contains(string(data), env.dsn) || !strings.Contains(string(data), env.audit) {
		t.Fatalf("config should carry the effective settings: %s", data)
	}

	if _, err := env.run(t, "", "init-config", "--output", path); err == nil {
		t.Fatalf("expected refusal to overwrite without --force")
	}
	env.mustRun(t, "", "init-config", "--output", path, "--force")

	// The written file is usable through --config.
	cmd := NewRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--config", path, "users"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("running with written config failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No users registered.") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestConfigFlag_MissingFile(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "", "--config", filepath.Join(env.dir, "missing.yaml"), "users")
	if err == nil || !strings.Contains(err.Error(), "--config") {
		t.Fatalf("expected missing config error, got %v", err)
	}
}

func TestInvalidDatabaseType(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "", "--database.type", "oracle", "users")
	if err == nil || !strings.HasPrefix(err.Error(), "Invalid configuration") {
		t.Fatalf("expected invalid configuration, got %v", err)
	}
}

func TestGermanOutput(t *testing.T) {
	env := newTestEnv(t)
	env.lang = "de"
	env.mustRun(t, "", "register", "Ada", "Lovelace", "ada@example.com")
	env.mustRun(t, "", "register", "Alan", "Turing", "alan@example.com")
	if out := env.mustRun(t, "", "send", "Ada", "Alan", "hallo"); !strings.Contains(out, "Nachricht gesendet.") {
		t.Fatalf("expected German output, got %q", out)
	}
}

func TestVersion(t *testing.T) {
	cmd := NewRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "version: ") || !strings.Contains(buf.String(), "commit: ") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestLocalizeError_KeepsCause(t *testing.T) {
	i18n.Init("en")
	cause := errors.New("boom")
	err := localizeError(cause)
	if err.Error() != "boom" || !errors.Is(err, cause) {
		t.Fatalf("unexpected wrapping: %v", err)
	}
	if localizeError(nil) != nil {
		t.Fatalf("nil should stay nil")
	}
}
