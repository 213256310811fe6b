package catalogdb

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var ErrUnknownDriver = errors.New("unknown catalog database driver")

// Dialect is what the catalog needs from a backend: how to connect, the
// quest tables in its column types, and how it numbers bind parameters.
// Statements in this package are written with ? and go through Rebind.
type Dialect interface {
	Driver() string
	Connect(cfg Config) (*sql.DB, error)
	Schema() []string
	Rebind(query string) string
}

// DialectFor returns the dialect for a database.driver setting
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case DriverSQLite:
		return sqliteDialect{}, nil
	case DriverPostgres:
		return postgresDialect{}, nil
	}
	return nil, fmt.Errorf("%q: %w", driver, ErrUnknownDriver)
}

// questSchema is the catalog layout shared by both backends. Objectives are
// keyed by their position so a quest reloads with the same indexes that
// progress reports use.
func questSchema(flagType string) []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS quests (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			giver_npc TEXT NOT NULL DEFAULT '',
			repeatable ` + flagType + ` NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS quest_objectives (
			quest_id TEXT NOT NULL REFERENCES quests(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL,
			target_id TEXT NOT NULL DEFAULT '',
			required INTEGER NOT NULL,
			PRIMARY KEY (quest_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_quests_giver_npc ON quests(giver_npc)`,
		`CREATE INDEX IF NOT EXISTS idx_quest_objectives_target ON quest_objectives(type, target_id)`,
	}
}

// sqliteDialect stores the catalog in a local modernc.org/sqlite file.
type sqliteDialect struct{}

func (sqliteDialect) Driver() string { return DriverSQLite }

// Connect opens the catalog file, creating its directory. Pragmas ride on
// the DSN so every pooled connection enforces foreign keys.
func (sqliteDialect) Connect(cfg Config) (*sql.DB, error) {
	if cfg.SQLitePath == "" {
		return nil, errors.New("sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	params := url.Values{}
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", "busy_timeout(5000)")
	params.Add("_pragma", "journal_mode(WAL)")

	db, err := sql.Open(DriverSQLite, "file:"+cfg.SQLitePath+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.SQLitePath, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open %s: %w", cfg.SQLitePath, err)
	}
	return db, nil
}

// Schema stores flags as 0/1 integers
func (sqliteDialect) Schema() []string { return questSchema("INTEGER") }

func (sqliteDialect) Rebind(query string) string { return query }

// postgresDialect serves a shared catalog through lib/pq.
type postgresDialect struct{}

func (postgresDialect) Driver() string { return DriverPostgres }

func (postgresDialect) Connect(cfg Config) (*sql.DB, error) {
	pg := cfg.Postgres
	db, err := sql.Open(DriverPostgres, pg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if pg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pg.MaxOpenConns)
	}
	if pg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pg.MaxIdleConns)
	}
	if pg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(pg.ConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres %s@%s:%d/%s: %w",
			pg.User, pg.Host, pg.Port, pg.Database, err)
	}
	return db, nil
}

func (postgresDialect) Schema() []string { return questSchema("BOOLEAN") }

// Rebind numbers each ? in order: "a = ? AND b = ?" becomes "a = $1 AND b = $2".
// Catalog statements never carry a literal question mark.
func (postgresDialect) Rebind(query string) string {
	parts := strings.Split(query, "?")
	var b strings.Builder
	b.Grow(len(query) + 2*len(parts))
	for i, part := range parts {
		if i > 0 {
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(i))
		}
		b.WriteString(part)
	}
	return b.String()
}
