// Package search answers full-text queries over the card index. User query
// strings are segmented with the same dictionary used at index time, so
// query terms line up with stored tokens.
package search

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/notefern/cardindex/pkg/core"
	"github.com/notefern/cardindex/pkg/log"
	"github.com/notefern/cardindex/pkg/segment"
	"github.com/notefern/cardindex/pkg/storage"
)

var logger = log.ForComponent("search")

const (
	defaultLimit         = 20
	maxLimit             = 200
	defaultSnippetLength = 48

	// HighlightStart and HighlightEnd wrap matched terms in snippets.
	HighlightStart = "<mark>"
	HighlightEnd   = "</mark>"
)

// Params is one search request.
type Params struct {
	Query         string
	SpaceID       string
	CardTypes     []string
	Limit         int
	Offset        int
	Highlight     bool
	SnippetLength int // characters, converted to a token budget internally
}

// ParseParams reads search parameters from a URL query string, applying
// defaults and clamping out-of-range values.
func ParseParams(values url.Values) Params {
	p := Params{
		Query:         values.Get("q"),
		SpaceID:       values.Get("space"),
		CardTypes:     values["type"],
		Limit:         defaultLimit,
		Highlight:     true,
		SnippetLength: defaultSnippetLength,
	}
	if raw := values.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.Limit = min(n, maxLimit)
		}
	}
	if raw := values.Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			p.Offset = n
		}
	}
	if raw := values.Get("highlight"); raw != "" {
		p.Highlight = raw != "false" && raw != "0"
	}
	if raw := values.Get("snippet"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.SnippetLength = n
		}
	}
	return p
}

// Service executes queries against a store.
type Service struct {
	store *storage.Store
	seg   *segment.Segmenter
}

func NewService(store *storage.Store) *Service {
	return &Service{store: store, seg: segment.New()}
}

// NewServiceWith builds a service with an explicit segmenter, for callers
// that overlay a user dictionary.
func NewServiceWith(store *storage.Store, seg *segment.Segmenter) *Service {
	return &Service{store: store, seg: seg}
}

// Search returns ranked results for the query. An empty or
// punctuation-only query yields no results, not an error.
func (s *Service) Search(p Params) ([]core.SearchResult, error) {
	match := s.buildMatch(p.Query)
	if match == "" {
		return nil, nil
	}

	q := storage.Query{
		Match:         match,
		SpaceID:       p.SpaceID,
		CardTypes:     p.CardTypes,
		Limit:         p.Limit,
		Offset:        p.Offset,
		SnippetTokens: snippetTokens(p.SnippetLength),
	}
	if p.Highlight {
		q.HighlightStart = HighlightStart
		q.HighlightEnd = HighlightEnd
	}

	results, err := s.store.Search(q)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", p.Query, err)
	}
	logger.Debugf("query %q matched %d results", p.Query, len(results))
	return results, nil
}

// Count returns the total match count for the query, ignoring paging.
func (s *Service) Count(p Params) (int, error) {
	match := s.buildMatch(p.Query)
	if match == "" {
		return 0, nil
	}
	return s.store.Count(storage.Query{
		Match:     match,
		SpaceID:   p.SpaceID,
		CardTypes: p.CardTypes,
	})
}

// Suggest returns up to limit distinct card names matching the query,
// best match first.
func (s *Service) Suggest(query string, limit int) ([]string, error) {
	match := s.buildMatch(query)
	if match == "" {
		return nil, nil
	}
	return s.store.Suggest(match, limit)
}

// buildMatch segments the user query and quotes each token into an FTS5
// MATCH expression. Tokens are ANDed: every term must appear somewhere in
// the card.
func (s *Service) buildMatch(query string) string {
	tokens := s.seg.QueryTokens(query)
	if len(tokens) == 0 {
		return ""
	}
	quoted := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		quoted = append(quoted, `"`+strings.ReplaceAll(tok, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " ")
}

// snippetTokens converts a character budget into an FTS5 token budget.
// Tokens average roughly two characters (CJK words and short ASCII words),
// and FTS5 caps the argument at 64.
func snippetTokens(chars int) int {
	if chars <= 0 {
		chars = defaultSnippetLength
	}
	tokens := chars / 2
	if tokens < 4 {
		tokens = 4
	}
	if tokens > 64 {
		tokens = 64
	}
	return tokens
}
