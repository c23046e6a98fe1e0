// Package sqlstore is the durable relational backend for the role, policy,
// and audit Store ports. It is backed by modernc.org/sqlite, a pure-Go
// driver, so the binary stays cgo-free.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS roles (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS role_inheritance (
	parent_id INTEGER NOT NULL REFERENCES roles(id),
	child_id  INTEGER NOT NULL REFERENCES roles(id),
	PRIMARY KEY (parent_id, child_id)
);

CREATE TABLE IF NOT EXISTS policies (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	version    INTEGER NOT NULL,
	content    TEXT NOT NULL,
	is_active  INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (name, version)
);

CREATE INDEX IF NOT EXISTS idx_policies_active ON policies(is_active);

CREATE TABLE IF NOT EXISTS audit_logs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	subject     TEXT NOT NULL,
	action      TEXT NOT NULL,
	resource    TEXT NOT NULL,
	decision    INTEGER NOT NULL,
	explanation TEXT NOT NULL,
	timestamp   DATETIME NOT NULL
);
`

// DB wraps a database/sql handle opened against the schema above. Role,
// Policy, and Audit stores all share one handle so they participate in the
// same connection pool and pragmas.
type DB struct {
	conn   *sql.DB
	logger *slog.Logger
}

// Open connects to dsn (a modernc.org/sqlite data source name, e.g.
// "file:authz-gate.db?_pragma=foreign_keys(1)" or ":memory:") and ensures
// the schema exists. The returned DB is safe for concurrent use.
func Open(dsn string, logger *slog.Logger) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite allows only one writer at a time; a single connection avoids
	// "database is locked" errors under concurrent activation/audit writes.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, logger: logger}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// migrate creates the schema if it does not already exist and logs the
// resulting table counts, matching the original service's startup log.
func (db *DB) migrate() error {
	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	for _, table := range []string{"roles", "policies", "audit_logs"} {
		var count int
		row := db.conn.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table))
		if err := row.Scan(&count); err != nil {
			return fmt.Errorf("count %s: %w", table, err)
		}
		db.logger.Info("table ready", "table", table, "rows", count)
	}
	return nil
}

// Ping verifies the database connection is alive, for use by a transport
// health-check handler.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close releases the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
