// Package catalogdb stores quest definitions in SQLite or PostgreSQL so the
// catalog can be served from a content database instead of YAML files.
package catalogdb

import (
	"database/sql"
	"fmt"

	"github.com/lawnchairsociety/questkeeper/internal/logger"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Database wraps the catalog connection and the dialect it speaks.
type Database struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to the database described by cfg and creates the quest
// tables if they are missing.
func Open(cfg Config) (*Database, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := dialect.Connect(cfg)
	if err != nil {
		return nil, err
	}

	d := &Database{db: db, dialect: dialect}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Catalog database ready", "driver", dialect.Driver())
	return d, nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// DB returns the underlying sql.DB for advanced operations.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Dialect returns the SQL dialect in use.
func (d *Database) Dialect() Dialect {
	return d.dialect
}

func (d *Database) migrate() error {
	for _, stmt := range d.dialect.Schema() {
		if _, err := d.db.Exec(stmt); err != nil {
			return fmt.Errorf("%w\nSQL: %s", err, stmt)
		}
	}
	return nil
}

// bind adapts a ?-placeholder statement to the dialect
func (d *Database) bind(query string) string {
	return d.dialect.Rebind(query)
}
