// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

// Package testutil holds fakes shared by the package tests.
package testutil

import (
	"errors"
	"sync"
	"time"
)

// FakeAuditWriter records LogAction calls as [action, details] pairs.
type FakeAuditWriter struct {
	mu    sync.Mutex
	Calls [][2]string
	// Err, when set, is returned from every call after recording it.
	Err error
}

func (f *FakeAuditWriter) LogAction(action, details string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, [2]string{action, details})
	return f.Err
}

// Actions returns the recorded action names in call order.
func (f *FakeAuditWriter) Actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		out = append(out, c[0])
	}
	return out
}

// Last returns the most recent call, or zero values when there was none.
func (f *FakeAuditWriter) Last() (action, details string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Calls) == 0 {
		return "", ""
	}
	c := f.Calls[len(f.Calls)-1]
	return c[0], c[1]
}

// ErrAuditDown is a ready-made failure for FakeAuditWriter.Err.
var ErrAuditDown = errors.New("audit sink unavailable")

// FixedClock always reports T. Tick advances it.
type FixedClock struct {
	mu sync.Mutex
	T  time.Time
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.T
}

// Tick moves the clock forward by d.
func (c *FixedClock) Tick(d time.Duration) {
	c.mu.Lock()
	c.T = c.T.Add(d)
	c.mu.Unlock()
}
