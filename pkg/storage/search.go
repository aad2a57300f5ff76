package storage

import (
	"fmt"
	"strings"

	"github.com/notefern/cardindex/pkg/core"
)

// maxSnippetTokens is the FTS5 ceiling for the snippet() token argument.
const maxSnippetTokens = 64

// Query is a fully resolved full-text query against the card index. Match
// must already be a valid FTS5 MATCH expression built from quoted tokens.
type Query struct {
	Match          string
	SpaceID        string
	CardTypes      []string
	Limit          int
	Offset         int
	HighlightStart string
	HighlightEnd   string
	SnippetTokens  int
}

func (q Query) snippetTokens() int {
	switch {
	case q.SnippetTokens <= 0:
		return 16
	case q.SnippetTokens > maxSnippetTokens:
		return maxSnippetTokens
	default:
		return q.SnippetTokens
	}
}

// snippetCols are the FTS columns surfaced as highlight fragments, in
// result order. mark_text is indexed for matching but not snippeted.
var snippetCols = []int{
	ColName, ColText, ColDescription,
	ColMindMapContent, ColFileContent, ColDrawboardContent, ColRichText,
}

// Search runs the query and returns ranked results with per-column
// highlight fragments. Results order by bm25 relevance, ties broken by
// most recently updated.
func (s *Store) Search(q Query) ([]core.SearchResult, error) {
	if strings.TrimSpace(q.Match) == "" {
		return nil, nil
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}

	var sel strings.Builder
	sel.WriteString(`
		SELECT c.id, c.name, c.text, c.description, c.card_type, c.sub_type,
			c.create_time, c.update_time`)
	args := []any{}
	for _, col := range snippetCols {
		sel.WriteString(fmt.Sprintf(",\n\t\t\tsnippet(card_fts, %d, ?, ?, '…', %d)", col, q.snippetTokens()))
		args = append(args, q.HighlightStart, q.HighlightEnd)
	}
	sel.WriteString(`
		FROM cards c
		JOIN card_fts ON c.rowid = card_fts.rowid
		WHERE card_fts MATCH ? AND c.deleted = 0`)
	args = append(args, q.Match)

	where, whereArgs := q.filterClause()
	sel.WriteString(where)
	args = append(args, whereArgs...)

	sel.WriteString(`
		ORDER BY bm25(card_fts), c.update_time DESC
		LIMIT ? OFFSET ?`)
	args = append(args, limit, q.Offset)

	rows, err := s.db.Query(sel.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("searching cards: %w", err)
	}
	defer rows.Close()

	var results []core.SearchResult
	for rows.Next() {
		var r core.SearchResult
		var cardType string
		snippets := make([]string, len(snippetCols))
		dest := []any{
			&r.ID, &r.Name, &r.Text, &r.Description, &cardType, &r.SubType,
			&r.CreateTime, &r.UpdateTime,
		}
		for i := range snippets {
			dest = append(dest, &snippets[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		r.CardType = core.CardType(cardType)
		r.Highlight = buildHighlight(snippets, q.HighlightStart)
		results = append(results, r)
	}
	return results, rows.Err()
}

// Count returns the number of cards matching the query, ignoring paging.
func (s *Store) Count(q Query) (int, error) {
	if strings.TrimSpace(q.Match) == "" {
		return 0, nil
	}
	sql := `
		SELECT COUNT(*)
		FROM cards c
		JOIN card_fts ON c.rowid = card_fts.rowid
		WHERE card_fts MATCH ? AND c.deleted = 0`
	args := []any{q.Match}

	where, whereArgs := q.filterClause()
	sql += where
	args = append(args, whereArgs...)

	var count int
	if err := s.db.QueryRow(sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting matches: %w", err)
	}
	return count, nil
}

// Suggest returns distinct card names matching the query, best match
// first. Grouping by name with the minimum rank per group stands in for
// DISTINCT, which FTS5 does not allow alongside ORDER BY bm25. The rank
// is computed in a MATERIALIZED CTE because SQLite rejects bm25() as a
// direct argument to an aggregate function, and the query flattener
// would otherwise merge a plain subquery back into the aggregate.
func (s *Store) Suggest(match string, limit int) ([]string, error) {
	if strings.TrimSpace(match) == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(`
		WITH ranked AS MATERIALIZED (
			SELECT c.name AS name, bm25(card_fts) AS rank
			FROM cards c
			JOIN card_fts ON c.rowid = card_fts.rowid
			WHERE card_fts MATCH ? AND c.deleted = 0 AND c.name != ''
		)
		SELECT name FROM ranked
		GROUP BY name
		ORDER BY MIN(rank)
		LIMIT ?
	`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("suggesting names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning suggestion: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (q Query) filterClause() (string, []any) {
	var sb strings.Builder
	var args []any
	if q.SpaceID != "" {
		sb.WriteString(" AND c.space_id = ?")
		args = append(args, q.SpaceID)
	}
	if len(q.CardTypes) > 0 {
		sb.WriteString(" AND c.card_type IN (")
		sb.WriteString(strings.TrimSuffix(strings.Repeat("?, ", len(q.CardTypes)), ", "))
		sb.WriteString(")")
		for _, t := range q.CardTypes {
			args = append(args, t)
		}
	}
	return sb.String(), args
}

// buildHighlight converts snippet fragments into a Highlight, keeping only
// columns where a match was actually marked. Returns nil when nothing
// matched in a snippeted column.
func buildHighlight(snippets []string, startTag string) *core.Highlight {
	if startTag == "" {
		return nil
	}
	h := &core.Highlight{}
	found := false
	set := func(dst *string, s string) {
		if strings.Contains(s, startTag) {
			*dst = s
			found = true
		}
	}
	set(&h.Name, snippets[0])
	set(&h.Text, snippets[1])
	set(&h.Description, snippets[2])
	set(&h.MindMapContent, snippets[3])
	set(&h.FileContent, snippets[4])
	set(&h.DrawboardContent, snippets[5])
	set(&h.RichText, snippets[6])
	if !found {
		return nil
	}
	return h
}
