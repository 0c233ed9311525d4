// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-linter checks the translation files against the source tree. It
// reports keys passed to i18n.T that the primary locale lacks, keys other
// locales lack, translations whose format verbs differ from the primary
// text, and primary keys nothing references.
package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	localesDir    = "internal/i18n/locales"
	primaryLocale = "en.yaml"
	projectRoot   = "."
)

var (
	// i18n.T("key") or any literal that looks like a key, e.g. one picked
	// by a variable.
	keyRe    = regexp.MustCompile(`i18n\.T\("([^"]+)"|"([a-z_]+\.[a-z_.]+)"`)
	verbRe   = regexp.MustCompile(`%[-+# 0]*[0-9]*(?:\.[0-9]+)?[a-zA-Z%]`)
	skipDirs = map[string]bool{"tools": true, "_examples": true, ".git": true}
)

// Report lists the problems found, each slice sorted.
type Report struct {
	Undefined []string // used with i18n.T but absent from the primary locale
	Missing   []string // "file: key" absent from a secondary locale
	Verbs     []string // "file: key" with format verbs unlike the primary
	Orphaned  []string // in the primary locale but never referenced
}

// Failed reports whether the report contains errors. Orphans are warnings.
func (r Report) Failed() bool {
	return len(r.Undefined) > 0 || len(r.Missing) > 0 || len(r.Verbs) > 0
}

func main() {
	rep, err := lint(projectRoot, localesDir, primaryLocale)
	if err != nil {
		fmt.Fprintf(os.Stderr, "i18n-linter: %v\n", err)
		os.Exit(1)
	}
	write(os.Stdout, rep)
	if rep.Failed() {
		os.Exit(1)
	}
}

func lint(root, dir, primary string) (Report, error) {
	var rep Report
	called, referenced, err := findUsedKeys(root)
	if err != nil {
		return rep, fmt.Errorf("scan sources: %w", err)
	}
	base, err := loadLocale(filepath.Join(dir, primary))
	if err != nil {
		return rep, fmt.Errorf("load primary locale %s: %w", primary, err)
	}

	for key := range called {
		if _, ok := base[key]; !ok {
			rep.Undefined = append(rep.Undefined, key)
		}
	}
	for key := range base {
		if _, ok := referenced[key]; !ok {
			rep.Orphaned = append(rep.Orphaned, key)
		}
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return rep, err
	}
	for _, file := range files {
		name := filepath.Base(file)
		if name == primary {
			continue
		}
		other, err := loadLocale(file)
		if err != nil {
			return rep, fmt.Errorf("load %s: %w", name, err)
		}
		for key, text := range base {
			tr, ok := other[key]
			if !ok {
				rep.Missing = append(rep.Missing, name+": "+key)
				continue
			}
			if !sameVerbs(text, tr) {
				rep.Verbs = append(rep.Verbs, name+": "+key)
			}
		}
	}

	for _, s := range [][]string{rep.Undefined, rep.Missing, rep.Verbs, rep.Orphaned} {
		sort.Strings(s)
	}
	return rep, nil
}

// findUsedKeys returns the keys passed to i18n.T directly and every
// key-like literal in non-test Go files below root.
func findUsedKeys(root string) (called, referenced map[string]struct{}, err error) {
	called = make(map[string]struct{})
	referenced = make(map[string]struct{})
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		for _, m := range keyRe.FindAllStringSubmatch(string(content), -1) {
			if m[1] != "" {
				called[m[1]] = struct{}{}
				referenced[m[1]] = struct{}{}
			} else if m[2] != "" {
				referenced[m[2]] = struct{}{}
			}
		}
		return nil
	})
	return called, referenced, err
}

// loadLocale reads a YAML locale into a flat key to text map. Nested maps
// are joined with dots.
func loadLocale(path string) (map[string]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, err
	}
	out := make(map[string]string)
	flatten("", data, out)
	return out, nil
}

func flatten(prefix string, node any, out map[string]string) {
	switch v := node.(type) {
	case map[string]any:
		for k, val := range v {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flatten(key, val, out)
		}
	case string:
		out[prefix] = v
	default:
		if prefix != "" {
			out[prefix] = fmt.Sprint(v)
		}
	}
}

func sameVerbs(a, b string) bool {
	va, vb := verbRe.FindAllString(a, -1), verbRe.FindAllString(b, -1)
	if len(va) != len(vb) {
		return false
	}
	for i := range va {
		if va[i] != vb[i] {
			return false
		}
	}
	return true
}

func write(w io.Writer, rep Report) {
	section := func(title string, items []string) {
		fmt.Fprintf(w, "--- %s ---\n", title)
		if len(items) == 0 {
			fmt.Fprintln(w, "  none")
		}
		for _, it := range items {
			fmt.Fprintf(w, "  - %s\n", it)
		}
	}
	section("Undefined keys", rep.Undefined)
	section("Missing translations", rep.Missing)
	section("Format verb mismatches", rep.Verbs)
	section("Orphaned keys", rep.Orphaned)
	switch {
	case rep.Failed():
		fmt.Fprintln(w, "Found issues that need to be addressed.")
	case len(rep.Orphaned) > 0:
		fmt.Fprintln(w, "Found orphaned keys. Please consider removing them.")
	default:
		fmt.Fprintln(w, "All translation files are consistent.")
	}
}
