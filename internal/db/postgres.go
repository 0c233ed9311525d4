// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

// maintenanceDB is the database every PostgreSQL server carries; bootstrap
// connects to it to create the target.
const maintenanceDB = "postgres"

type postgresDialect struct{}

func (postgresDialect) name() string       { return "postgres" }
func (postgresDialect) driverName() string { return "pgx" }

func (postgresDialect) normalizeDSN(dsn string) string { return dsn }

func (postgresDialect) databaseName(dsn string) (string, error) {
	_, name, err := postgresServerConfig(dsn)
	return name, err
}

// postgresServerConfig returns a config pointing at the maintenance database,
// plus the target database name from dsn.
func postgresServerConfig(dsn string) (*pgx.ConnConfig, string, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, "", fmt.Errorf("invalid postgres dsn: %w", err)
	}
	name := cfg.Database
	if name == "" {
		return nil, "", fmt.Errorf("postgres dsn does not name a database")
	}
	cfg.Database = maintenanceDB
	return cfg, name, nil
}

func (d postgresDialect) bootstrap(ctx context.Context, dsn string) error {
	cfg, name, err := postgresServerConfig(dsn)
	if err != nil {
		return &ConnectError{Kind: SchemaBootstrapFailed, Err: err}
	}
	if name == maintenanceDB {
		// Nothing to create; the first connection failure stands.
		return &ConnectError{Kind: Unreachable, Err: fmt.Errorf("cannot bootstrap the %q database", name)}
	}
	connStr := stdlib.RegisterConnConfig(cfg)
	defer stdlib.UnregisterConnConfig(connStr)
	return ensureDatabase(ctx, d.driverName(), connStr, name,
		"SELECT datname FROM pg_database WHERE datname = $1",
		"CREATE DATABASE "+pgx.Identifier{name}.Sanitize())
}

func (postgresDialect) tableExistsQuery() string {
	return "SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1"
}

func (postgresDialect) schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id SERIAL PRIMARY KEY,
			first_name VARCHAR(50) NOT NULL,
			last_name VARCHAR(50) NOT NULL,
			email VARCHAR(100) UNIQUE NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS passwords (
			user_id INTEGER PRIMARY KEY REFERENCES users(user_id),
			password_hash VARCHAR(32) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			message_id SERIAL PRIMARY KEY,
			sender_id INTEGER NOT NULL REFERENCES users(user_id),
			receiver_id INTEGER NOT NULL REFERENCES users(user_id),
			message_text TEXT NOT NULL,
			send_date TIMESTAMP NOT NULL,
			delivery_status INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE OR REPLACE FUNCTION register_user_trigger() RETURNS trigger AS $$
		BEGIN
			INSERT INTO passwords (user_id, password_hash) VALUES (NEW.user_id, '` + DefaultPasswordHash + `');
			RETURN NEW;
		END;
		$$ LANGUAGE plpgsql`,
		`DROP TRIGGER IF EXISTS register_user_trigger ON users`,
		`CREATE TRIGGER register_user_trigger
		AFTER INSERT ON users
		FOR EACH ROW EXECUTE FUNCTION register_user_trigger()`,
		`CREATE OR REPLACE FUNCTION delete_user_trigger() RETURNS trigger AS $$
		BEGIN
			DELETE FROM messages WHERE sender_id = OLD.user_id OR receiver_id = OLD.user_id;
			DELETE FROM passwords WHERE user_id = OLD.user_id;
			RETURN OLD;
		END;
		$$ LANGUAGE plpgsql`,
		`DROP TRIGGER IF EXISTS delete_user_trigger ON users`,
		`CREATE TRIGGER delete_user_trigger
		BEFORE DELETE ON users
		FOR EACH ROW EXECUTE FUNCTION delete_user_trigger()`,
	}
}
