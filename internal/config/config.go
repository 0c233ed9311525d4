// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads chatdb settings from defaults, a chatdb.yaml file,
// CHATDB_* environment variables and command-line flags, in increasing order
// of precedence. It uses Viper for parsing and goccy/go-yaml for writing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	appName        = "chatdb"
	legacyFileName = ".chatdb.yaml"
)

// Config is the full set of chatdb settings.
type Config struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Audit    AuditConfig    `mapstructure:"audit" yaml:"audit"`
	Language string         `mapstructure:"language" yaml:"language"`
	Debug    bool           `mapstructure:"debug" yaml:"debug"`
}

// DatabaseConfig selects the backing store.
type DatabaseConfig struct {
	// Type is "sqlite", "mysql" or "postgres".
	Type string `mapstructure:"type" yaml:"type"`
	Dsn  string `mapstructure:"dsn" yaml:"dsn"`
	// Seed inserts sample users and messages when the schema is created.
	Seed bool `mapstructure:"seed" yaml:"seed"`
}

// AuditConfig locates the audit trail.
type AuditConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// Defaults returns the value of every key when nothing else sets it.
func Defaults() map[string]any {
	return map[string]any{
		"database.type": "sqlite",
		"database.dsn":  "./chatdb.db",
		"database.seed": false,
		"audit.path":    "./chatdb.log",
		"language":      "en",
		"debug":         false,
	}
}

// GetConfigPath returns the full path for the configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), appName)
		default:
			configDir = filepath.Join("/etc", appName)
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, appName)
	}

	return filepath.Join(configDir, appName+".yaml"), nil
}

// LoadConfig builds a T from defaults, the first chatdb.yaml found (or the
// explicit file at path), the environment and the flags of cmd. When no
// config file exists the returned T is still fully populated and the error
// is a viper.ConfigFileNotFoundError, so callers can offer to write one.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, path *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName(appName)
	v.SetConfigType("yaml")
	if path != nil && *path != "" {
		v.SetConfigFile(*path)
	}
	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	var notFound error
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return c, err
		}
		notFound = err
	}

	mergeLegacyConfig(v)

	v.SetEnvPrefix(appName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, notFound
}

// mergeLegacyConfig merges a `.chatdb.yaml` in the current directory when
// present. A malformed legacy file is ignored.
func mergeLegacyConfig(v *viper.Viper) {
	if _, err := os.Stat(legacyFileName); err != nil {
		return
	}
	v.SetConfigFile(legacyFileName)
	_ = v.MergeInConfig()
	v.SetConfigFile("")
}

// WriteConfigFile stores c at the user (or system) config path.
func WriteConfigFile[T any](c *T, system bool) (string, error) {
	path, err := GetConfigPath(system)
	if err != nil {
		return "", err
	}
	return path, WriteConfigFileTo(c, path)
}

// WriteConfigFileTo stores c as YAML at path, creating parent directories.
func WriteConfigFileTo[T any](c *T, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	// 0600: the DSN may carry database credentials.
	return os.WriteFile(path, data, 0o600)
}

// Validate rejects settings chatdb cannot start with.
func (c Config) Validate() error {
	switch strings.ToLower(c.Database.Type) {
	case "sqlite", "sqlite3", "mysql", "mariadb", "postgres", "postgresql", "pgx":
	default:
		return fmt.Errorf("unsupported database type %q", c.Database.Type)
	}
	if c.Audit.Path == "" {
		return fmt.Errorf("audit.path cannot be empty")
	}
	return nil
}
