// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

package buildvars

import (
	"runtime/debug"
	"testing"
)

func withVars(t *testing.T, version, commit, date string) {
	t.Helper()
	ov, oc, od := Version, Commit, BuildDate
	Version, Commit, BuildDate = version, commit, date
	t.Cleanup(func() { Version, Commit, BuildDate = ov, oc, od })
}

func TestVersionOrDefault(t *testing.T) {
	withVars(t, "", "", "")
	if got := VersionOrDefault("dev"); got != "dev" {
		t.Fatalf("expected default, got %q", got)
	}
	Version = "v1.0.0"
	if got := VersionOrDefault("dev"); got != "v1.0.0" {
		t.Fatalf("expected v1.0.0, got %q", got)
	}
}

func TestResolve_MainVersion(t *testing.T) {
	withVars(t, "", "", "")
	info := &debug.BuildInfo{Main: debug.Module{Path: ModulePath, Version: "v1.2.3"}}
	got := Resolve(info)
	if got.Version != "v1.2.3" || got.Commit != "dev" || got.Date != "" {
		t.Fatalf("unexpected info: %+v", got)
	}
}

func TestResolve_DependencyFallback(t *testing.T) {
	withVars(t, "", "", "")
	info := &debug.BuildInfo{
		Main: debug.Module{Path: ModulePath, Version: "(devel)"},
		Deps: []*debug.Module{{Path: ModulePath, Version: "v0.3.1-0.20250101000000-abcdef012345"}},
	}
	if got := Resolve(info); got.Version != "v0.3.1-0.20250101000000-abcdef012345" {
		t.Fatalf("expected dependency version, got %q", got.Version)
	}
}

func TestResolve_VCSSettingsAndCommitFallback(t *testing.T) {
	withVars(t, "", "", "")
	info := &debug.BuildInfo{
		Main: debug.Module{Path: ModulePath, Version: "(devel)"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "deadbeef"},
			{Key: "vcs.time", Value: "2025-01-02T03:04:05Z"},
		},
	}
	got := Resolve(info)
	if got.Version != "deadbeef" || got.Commit != "deadbeef" || got.Date != "2025-01-02T03:04:05Z" {
		t.Fatalf("unexpected info: %+v", got)
	}
	if got.String() != "deadbeef (deadbeef) built: 2025-01-02T03:04:05Z" {
		t.Fatalf("unexpected rendering: %q", got.String())
	}
}

func TestResolve_LinkerValuesWin(t *testing.T) {
	withVars(t, "v9.9.9", "cafe", "today")
	info := &debug.BuildInfo{
		Main:     debug.Module{Path: ModulePath, Version: "v1.0.0"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "other"}},
	}
	got := Resolve(info)
	if got != (Info{Version: "v9.9.9", Commit: "cafe", Date: "today"}) {
		t.Fatalf("unexpected info: %+v", got)
	}
}
