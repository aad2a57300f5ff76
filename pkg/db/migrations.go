// Package db manages the SQLite schema through embedded, versioned
// migrations. The card store refuses to operate on a database whose
// schema is behind the embedded set.
package db

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/notefern/cardindex/pkg/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var logger = log.ForComponent("db")

// Migration is one versioned schema change. Versions come from the
// NNN_name.sql filename convention.
type Migration struct {
	Version   int
	Name      string
	SQL       string
	AppliedAt *time.Time
}

// Manager applies migrations to a database. By default it uses the embedded
// set; tests can point it at a directory instead.
type Manager struct {
	db     *sql.DB
	source fs.FS
}

// NewManager returns a Manager over the embedded migration set.
func NewManager(db *sql.DB) *Manager {
	sub, _ := fs.Sub(migrationsFS, "migrations")
	return &Manager{db: db, source: sub}
}

// NewManagerFromDir returns a Manager that loads migrations from a
// directory. Used by tests to exercise custom schema scenarios.
func NewManagerFromDir(db *sql.DB, dir string) *Manager {
	return &Manager{db: db, source: os.DirFS(dir)}
}

// Migrate applies every pending migration in version order.
func Migrate(db *sql.DB) error {
	return NewManager(db).Apply()
}

// Apply creates the bookkeeping table if needed and applies all pending
// migrations, each in its own transaction.
func (m *Manager) Apply() error {
	if err := m.ensureTable(); err != nil {
		return fmt.Errorf("ensuring migrations table: %w", err)
	}

	pending, err := m.Pending()
	if err != nil {
		return err
	}
	for _, mig := range pending {
		logger.Infof("applying migration %d (%s)", mig.Version, mig.Name)
		if err := m.applyOne(mig); err != nil {
			return fmt.Errorf("applying migration %d (%s): %w", mig.Version, mig.Name, err)
		}
	}
	if len(pending) > 0 {
		logger.Infof("applied %d migrations", len(pending))
	}
	return nil
}

// Pending returns the available migrations not yet recorded as applied.
func (m *Manager) Pending() ([]Migration, error) {
	applied, err := m.applied()
	if err != nil {
		return nil, err
	}
	available, err := m.Available()
	if err != nil {
		return nil, err
	}

	var pending []Migration
	for _, mig := range available {
		if _, ok := applied[mig.Version]; !ok {
			pending = append(pending, mig)
		}
	}
	return pending, nil
}

// Available parses every NNN_name.sql file in the migration source, sorted
// by version. Files that do not follow the convention are skipped.
func (m *Manager) Available() ([]Migration, error) {
	entries, err := fs.ReadDir(m.source, ".")
	if err != nil {
		return nil, fmt.Errorf("reading migrations: %w", err)
	}

	var migrations []Migration
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}
		prefix, rest, ok := strings.Cut(name, "_")
		if !ok {
			continue
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			continue
		}
		content, err := fs.ReadFile(m.source, name)
		if err != nil {
			return nil, fmt.Errorf("reading migration %s: %w", name, err)
		}
		migrations = append(migrations, Migration{
			Version: version,
			Name:    strings.TrimSuffix(rest, ".sql"),
			SQL:     string(content),
		})
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// Status reports applied and pending migrations.
func (m *Manager) Status() (applied, pending []Migration, err error) {
	if err := m.ensureTable(); err != nil {
		return nil, nil, fmt.Errorf("ensuring migrations table: %w", err)
	}
	appliedAt, err := m.applied()
	if err != nil {
		return nil, nil, err
	}
	available, err := m.Available()
	if err != nil {
		return nil, nil, err
	}
	for _, mig := range available {
		if at, ok := appliedAt[mig.Version]; ok {
			at := at
			mig.AppliedAt = &at
			applied = append(applied, mig)
		} else {
			pending = append(pending, mig)
		}
	}
	return applied, pending, nil
}

func (m *Manager) ensureTable() error {
	_, err := m.db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func (m *Manager) applied() (map[int]time.Time, error) {
	rows, err := m.db.Query("SELECT version, applied_at FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("querying applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var version int
		var at time.Time
		if err := rows.Scan(&version, &at); err != nil {
			return nil, fmt.Errorf("scanning migration row: %w", err)
		}
		applied[version] = at
	}
	return applied, rows.Err()
}

func (m *Manager) applyOne(mig Migration) error {
	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil {
				logger.Warnf("rolling back migration %d: %v", mig.Version, err)
			}
		}
	}()

	if _, err := tx.Exec(mig.SQL); err != nil {
		return fmt.Errorf("executing: %w", err)
	}
	if _, err := tx.Exec("INSERT INTO migrations (version) VALUES (?)", mig.Version); err != nil {
		return fmt.Errorf("recording: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	committed = true
	return nil
}
