// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

// Package buildvars contains variables injected at build time.
package buildvars

import "runtime/debug"

// ModulePath is the import path of the chatdb module.
const ModulePath = "github.com/toeirei/chatdb"

// Set at link time via `-ldflags -X github.com/toeirei/chatdb/buildvars.Version=...`.
// They are empty for local or development builds.
var (
	Version   string
	Commit    string
	BuildDate string
)

// VersionOrDefault returns `Version` if set, otherwise returns the provided default.
func VersionOrDefault(def string) string {
	if len(Version) > 0 {
		return Version
	}
	return def
}

// Info is the resolved identity of the running binary.
type Info struct {
	Version string
	Commit  string
	Date    string
}

// String renders "version (commit) built: date", omitting unknown parts.
func (i Info) String() string {
	s := i.Version
	if i.Commit != "" && i.Commit != "dev" {
		s += " (" + i.Commit + ")"
	}
	if i.Date != "" {
		s += " built: " + i.Date
	}
	return s
}

// Resolve combines the link-time variables with the module and VCS data of
// info. A nil info is read from the runtime.
func Resolve(info *debug.BuildInfo) Info {
	out := Info{Version: VersionOrDefault("dev"), Commit: Commit, Date: BuildDate}
	if out.Commit == "" {
		out.Commit = "dev"
	}
	if info == nil {
		if bi, ok := debug.ReadBuildInfo(); ok {
			info = bi
		}
	}
	if info != nil && Version == "" {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			out.Version = info.Main.Version
		}
		// Some build paths only record the module as a dependency.
		if out.Version == "dev" {
			for _, dep := range info.Deps {
				if dep.Path == ModulePath && dep.Version != "" {
					out.Version = dep.Version
					break
				}
			}
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" && Commit == "" {
					out.Commit = s.Value
				}
			case "vcs.time":
				if s.Value != "" && BuildDate == "" {
					out.Date = s.Value
				}
			}
		}
	}
	if out.Version == "dev" && out.Commit != "dev" {
		out.Version = out.Commit
	}
	return out
}
