// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

// Package audit implements the append-only audit trail of chatdb. Each entry
// is a single line of the form "[YYYY-MM-DD HH:MM:SS] <message>" in a plain
// text file that external tail tooling can follow.
//
// One Logger is created at startup and injected into the components that
// record outcomes. Writers are serialized against each other and against
// readers; concurrent readers share the lock. The file is never rotated or
// truncated by this package.
package audit

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/toeirei/chatdb/internal/logging"
)

// TimestampLayout is the second-resolution layout used for every entry.
const TimestampLayout = "2006-01-02 15:04:05"

// tailChunk is how many bytes ReadTail pulls per backwards step.
const tailChunk = 4096

// ErrClosed is returned by operations on a Logger after Close.
var ErrClosed = errors.New("audit log is closed")

// Option configures a Logger.
type Option func(*Logger)

// WithClock replaces time.Now as the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		if now != nil {
			l.now = now
		}
	}
}

// Logger is a thread-safe, append-only line sink backed by a file.
type Logger struct {
	mu   sync.RWMutex
	path string
	file *os.File
	now  func() time.Time
}

// Open opens (or creates) the audit file at path in append mode. Missing
// parent directories are created.
func Open(path string, opts ...Option) (*Logger, error) {
	if path == "" {
		return nil, fmt.Errorf("audit log path is empty")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("could not create audit log directory %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	l := &Logger{path: path, file: f, now: time.Now}
	for _, o := range opts {
		o(l)
	}
	return l, nil
}

// Path returns the file the logger appends to.
func (l *Logger) Path() string { return l.path }

// Write appends one timestamped line. Embedded newlines are flattened so a
// call always produces exactly one line.
func (l *Logger) Write(line string) error {
	entry := l.format(line)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return ErrClosed
	}
	// A single write call keeps the line whole under O_APPEND.
	if _, err := l.file.Write(entry); err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

// LogAction records an action with details as "ACTION: details". Failures are
// reported to the diagnostic log as well as returned, since callers treat
// auditing as best-effort.
func (l *Logger) LogAction(action, details string) error {
	err := l.Write(fmt.Sprintf("%s: %s", action, details))
	if err != nil {
		logging.Warnf("audit: %s not recorded: %v", action, err)
	}
	return err
}

func (l *Logger) format(line string) []byte {
	line = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(line)
	var b bytes.Buffer
	b.Grow(len(line) + len(TimestampLayout) + 4)
	b.WriteByte('[')
	b.WriteString(l.now().Format(TimestampLayout))
	b.WriteString("] ")
	b.WriteString(line)
	b.WriteByte('\n')
	return b.Bytes()
}

// ReadAll returns the complete visible content of the log. Each call starts
// from the beginning of the file, so repeated calls observe new entries.
func (l *Logger) ReadAll() (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.file == nil {
		return "", ErrClosed
	}
	st, err := l.file.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat audit log: %w", err)
	}
	buf := make([]byte, st.Size())
	n, err := l.file.ReadAt(buf, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read audit log: %w", err)
	}
	return string(buf[:n]), nil
}

// ReadTail returns at most the last n lines, in file order, each terminated
// by a newline. It scans backwards from the end of the file and never reads
// more than the file size.
func (l *Logger) ReadTail(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.file == nil {
		return "", ErrClosed
	}
	st, err := l.file.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat audit log: %w", err)
	}
	size := st.Size()
	if size == 0 {
		return "", nil
	}

	// n line breaks precede the wanted lines, plus the terminator of the last one.
	want := n + 1
	last := make([]byte, 1)
	if _, err := l.file.ReadAt(last, size-1); err != nil {
		return "", fmt.Errorf("failed to read audit log: %w", err)
	}
	if last[0] != '\n' {
		want = n
	}

	var tail []byte
	end := size
	for end > 0 {
		start := max(end-tailChunk, 0)
		chunk := make([]byte, end-start)
		if _, err := l.file.ReadAt(chunk, start); err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read audit log: %w", err)
		}
		tail = append(chunk, tail...)
		end = start
		if bytes.Count(tail, []byte{'\n'}) >= want {
			break
		}
	}

	// When the scan stopped early the first element is a partial line.
	lines := strings.Split(strings.TrimSuffix(string(tail), "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n") + "\n", nil
}

// Close releases the file. It is safe to call more than once.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
