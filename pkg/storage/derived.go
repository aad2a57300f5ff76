package storage

import (
	"database/sql"
	"fmt"

	"github.com/notefern/cardindex/pkg/core"
)

// FTS column ordinals. snippet() and highlight extraction address columns
// by position, so this order mirrors the card_fts declaration exactly.
const (
	ColName = iota
	ColText
	ColDescription
	ColMarkText
	ColMindMapContent
	ColFileContent
	ColDrawboardContent
	ColRichText
)

// FTSColumns carries the segmented text destined for each indexed column.
// Exactly one of the four content columns is non-empty for any card, chosen
// by its type.
type FTSColumns struct {
	Name             string
	Text             string
	Description      string
	MarkText         string
	MindMapContent   string
	FileContent      string
	DrawboardContent string
	RichText         string
}

// UpsertDerivedText replaces a card's derived-text row and its FTS entry in
// one transaction. The FTS rowid is the card's rowid in the cards table, so
// the base card must already be stored.
func (s *Store) UpsertDerivedText(d *core.DerivedText, cols FTSColumns) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil {
				logger.Warnf("rolling back derived text for card %s: %v", d.CardID, err)
			}
		}
	}()

	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO card_derived_text
			(card_id, card_type, name, space_id, text, origin_text, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		d.CardID, string(d.CardType), d.Name, d.SpaceID, d.Text, d.OriginText, d.UpdatedAt,
	); err != nil {
		return fmt.Errorf("upserting derived text for card %s: %w", d.CardID, err)
	}

	var rowid int64
	if err := tx.QueryRow("SELECT rowid FROM cards WHERE id = ?", d.CardID).Scan(&rowid); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("card %s not stored before derived text", d.CardID)
		}
		return fmt.Errorf("resolving rowid for card %s: %w", d.CardID, err)
	}

	if _, err := tx.Exec("DELETE FROM card_fts WHERE rowid = ?", rowid); err != nil {
		return fmt.Errorf("clearing FTS entry for card %s: %w", d.CardID, err)
	}
	if _, err := tx.Exec(`
		INSERT INTO card_fts
			(rowid, name, text, description, mark_text, mind_map_content, file_content, drawboard_content, rich_text)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rowid,
		cols.Name, cols.Text, cols.Description, cols.MarkText,
		cols.MindMapContent, cols.FileContent, cols.DrawboardContent, cols.RichText,
	); err != nil {
		return fmt.Errorf("inserting FTS entry for card %s: %w", d.CardID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing derived text for card %s: %w", d.CardID, err)
	}
	committed = true
	return nil
}

// DeleteDerivedText removes a card's derived-text row and FTS entry while
// keeping the base card. Used when a card is soft-deleted.
func (s *Store) DeleteDerivedText(cardID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil {
				logger.Warnf("rolling back derived delete for card %s: %v", cardID, err)
			}
		}
	}()

	if _, err := tx.Exec(`
		DELETE FROM card_fts WHERE rowid = (SELECT rowid FROM cards WHERE id = ?)
	`, cardID); err != nil {
		return fmt.Errorf("clearing FTS entry for card %s: %w", cardID, err)
	}
	if _, err := tx.Exec("DELETE FROM card_derived_text WHERE card_id = ?", cardID); err != nil {
		return fmt.Errorf("deleting derived text for card %s: %w", cardID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing derived delete for card %s: %w", cardID, err)
	}
	committed = true
	return nil
}

// WalkDerivedText streams every derived-text row to fn in card-id order.
// Iteration stops at the first error fn returns.
func (s *Store) WalkDerivedText(fn func(*core.DerivedText) error) error {
	rows, err := s.db.Query(`
		SELECT card_id, card_type, name, space_id, text, origin_text, updated_at
		FROM card_derived_text ORDER BY card_id
	`)
	if err != nil {
		return fmt.Errorf("querying derived text: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d core.DerivedText
		var cardType string
		if err := rows.Scan(&d.CardID, &cardType, &d.Name, &d.SpaceID, &d.Text, &d.OriginText, &d.UpdatedAt); err != nil {
			return fmt.Errorf("scanning derived text: %w", err)
		}
		d.CardType = core.CardType(cardType)
		if err := fn(&d); err != nil {
			return err
		}
	}
	return rows.Err()
}

// GetDerivedText fetches a card's derived-text row. Returns sql.ErrNoRows
// when the card has never been indexed.
func (s *Store) GetDerivedText(cardID string) (*core.DerivedText, error) {
	row := s.db.QueryRow(`
		SELECT card_id, card_type, name, space_id, text, origin_text, updated_at
		FROM card_derived_text WHERE card_id = ?
	`, cardID)

	var d core.DerivedText
	var cardType string
	if err := row.Scan(&d.CardID, &cardType, &d.Name, &d.SpaceID, &d.Text, &d.OriginText, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.CardType = core.CardType(cardType)
	return &d, nil
}
