// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

package i18n

import (
	"path"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestInitAndAvailableLocales(t *testing.T) {
	Init("en")
	if GetLang() != "en" {
		t.Fatalf("expected lang 'en', got %q", GetLang())
	}
	av := GetAvailableLocales()
	for _, k := range []string{"en", "de"} {
		if _, ok := av[k]; !ok {
			t.Fatalf("expected available locale %q to be present", k)
		}
	}
	if av["de"] != "Deutsch" {
		t.Fatalf("unexpected display name for de: %q", av["de"])
	}
}

func TestT_BasicAndFormatting(t *testing.T) {
	Init("en")
	if got := T("send.success"); got != "Message sent." {
		t.Fatalf("expected 'Message sent.', got %q", got)
	}
	if got := T("login.success", "Ada", 7); got != "Welcome, Ada (id 7)." {
		t.Fatalf("unexpected formatted translation: %q", got)
	}

	SetLang("de")
	if GetLang() != "de" {
		t.Fatalf("expected lang 'de', got %q", GetLang())
	}
	if got := T("send.success"); got != "Nachricht gesendet." {
		t.Fatalf("expected German translation, got %q", got)
	}
	Init("en")
}

func TestT_Fallbacks(t *testing.T) {
	Init("xx")
	if got := T("send.success"); got != "Message sent." {
		t.Fatalf("unknown language should fall back to English, got %q", got)
	}
	if got := T("no.such.id"); got != "no.such.id" {
		t.Fatalf("unknown id should be returned as is, got %q", got)
	}
	Init("en")
}

// Every locale must define the same message ids as English.
func TestLocalesAreComplete(t *testing.T) {
	load := func(name string) map[string]string {
		data, err := localeFS.ReadFile(path.Join("locales", name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		var m map[string]string
		if err := yaml.Unmarshal(data, &m); err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		return m
	}
	en := load("en.yaml")
	files, _ := localeFS.ReadDir("locales")
	for _, f := range files {
		if f.Name() == "en.yaml" {
			continue
		}
		other := load(f.Name())
		for id, text := range en {
			tr, ok := other[id]
			if !ok {
				t.Fatalf("%s is missing %q", f.Name(), id)
			}
			if strings.Count(tr, "%") != strings.Count(text, "%") {
				t.Fatalf("%s: %q has different format verbs", f.Name(), id)
			}
		}
	}
}
