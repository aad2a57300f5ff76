// Package storage owns the SQLite database: the card mirror, the derived
// text rows, and the FTS index. All writes that touch both a base table and
// the FTS table happen in one transaction.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/notefern/cardindex/pkg/core"
	"github.com/notefern/cardindex/pkg/db"
	"github.com/notefern/cardindex/pkg/log"
)

var logger = log.ForComponent("storage")

// Store is a handle to one card database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path, applies performance
// pragmas, and brings the schema up to date.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 30000",
		"PRAGMA cache_size = -64000", // 64MB cache
		"PRAGMA temp_store = memory",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}

	if err := db.Migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &Store{db: conn, path: path}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for migrations tooling and tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// UpsertCard writes the base card row. The upsert keeps the rowid stable
// on update, since the FTS entry is keyed by it. Derived text and the FTS
// index are not touched here; the index writer recomputes them separately.
func (s *Store) UpsertCard(card *core.Card) error {
	_, err := s.db.Exec(`
		INSERT INTO cards
			(id, card_type, sub_type, name, text, description, mark_text, space_id, deleted, create_time, update_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			card_type = excluded.card_type,
			sub_type = excluded.sub_type,
			name = excluded.name,
			text = excluded.text,
			description = excluded.description,
			mark_text = excluded.mark_text,
			space_id = excluded.space_id,
			deleted = excluded.deleted,
			create_time = excluded.create_time,
			update_time = excluded.update_time
	`,
		card.ID,
		string(card.CardType),
		card.SubType,
		card.Name,
		card.Text,
		card.Description,
		card.MarkText,
		card.SpaceID,
		card.Deleted,
		card.CreateTime,
		card.UpdateTime,
	)
	if err != nil {
		return fmt.Errorf("upserting card %s: %w", card.ID, err)
	}
	return nil
}

// GetCard fetches a card by id. Returns sql.ErrNoRows when absent.
func (s *Store) GetCard(id string) (*core.Card, error) {
	row := s.db.QueryRow(`
		SELECT id, card_type, sub_type, name, text, description, mark_text, space_id, deleted, create_time, update_time
		FROM cards WHERE id = ?
	`, id)

	var card core.Card
	var cardType string
	if err := row.Scan(
		&card.ID, &cardType, &card.SubType, &card.Name, &card.Text,
		&card.Description, &card.MarkText, &card.SpaceID, &card.Deleted,
		&card.CreateTime, &card.UpdateTime,
	); err != nil {
		return nil, err
	}
	card.CardType = core.CardType(cardType)
	return &card, nil
}

// DeleteCard removes a card together with its derived text, FTS entry, and
// indexer bookkeeping, in one transaction.
func (s *Store) DeleteCard(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil {
				logger.Warnf("rolling back delete of card %s: %v", id, err)
			}
		}
	}()

	if _, err := tx.Exec(`
		DELETE FROM card_fts WHERE rowid = (SELECT rowid FROM cards WHERE id = ?)
	`, id); err != nil {
		return fmt.Errorf("deleting FTS entry for card %s: %w", id, err)
	}
	if _, err := tx.Exec("DELETE FROM card_derived_text WHERE card_id = ?", id); err != nil {
		return fmt.Errorf("deleting derived text for card %s: %w", id, err)
	}
	if _, err := tx.Exec("DELETE FROM indexed_files WHERE card_id = ?", id); err != nil {
		return fmt.Errorf("deleting file records for card %s: %w", id, err)
	}
	if _, err := tx.Exec("DELETE FROM cards WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting card %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete of card %s: %w", id, err)
	}
	committed = true
	return nil
}

// CardCount counts non-deleted cards.
func (s *Store) CardCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM cards WHERE deleted = 0").Scan(&count)
	return count, err
}

// SetMeta stores an indexer bookkeeping value.
func (s *Store) SetMeta(key, value string) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO scan_metadata (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
	`, key, value)
	return err
}

// GetMeta fetches an indexer bookkeeping value; missing keys yield "".
func (s *Store) GetMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM scan_metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// IndexedFile is the indexer's fingerprint of a file it has turned into an
// attachment card.
type IndexedFile struct {
	Path    string
	CardID  string
	Size    int64
	ModTime time.Time
}

// RecordIndexedFile stores or refreshes a file fingerprint.
func (s *Store) RecordIndexedFile(f IndexedFile) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO indexed_files (path, card_id, size, mod_time, indexed_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, f.Path, f.CardID, f.Size, f.ModTime)
	return err
}

// LookupIndexedFile returns the stored fingerprint for path, or ok=false.
func (s *Store) LookupIndexedFile(path string) (IndexedFile, bool, error) {
	var f IndexedFile
	err := s.db.QueryRow(`
		SELECT path, card_id, size, mod_time FROM indexed_files WHERE path = ?
	`, path).Scan(&f.Path, &f.CardID, &f.Size, &f.ModTime)
	if err == sql.ErrNoRows {
		return IndexedFile{}, false, nil
	}
	if err != nil {
		return IndexedFile{}, false, err
	}
	return f, true, nil
}

// DeleteIndexedFile forgets the fingerprint for path.
func (s *Store) DeleteIndexedFile(path string) error {
	_, err := s.db.Exec("DELETE FROM indexed_files WHERE path = ?", path)
	return err
}

// Optimize runs the SQLite query-planner optimization pass.
func (s *Store) Optimize() error {
	_, err := s.db.Exec("PRAGMA optimize")
	return err
}

// Analyze refreshes table statistics.
func (s *Store) Analyze() error {
	_, err := s.db.Exec("ANALYZE")
	return err
}

// WALCheckpoint folds the write-ahead log back into the main file.
func (s *Store) WALCheckpoint() error {
	_, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return err
}

// Vacuum rewrites the database file, reclaiming free pages.
func (s *Store) Vacuum() error {
	_, err := s.db.Exec("VACUUM")
	return err
}

// Stats reports row counts for the main tables.
func (s *Store) Stats() (map[string]int, error) {
	stats := make(map[string]int)
	for _, table := range []string{"cards", "card_derived_text", "indexed_files"} {
		var count int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			return nil, fmt.Errorf("counting %s: %w", table, err)
		}
		stats[table] = count
	}
	return stats, nil
}
