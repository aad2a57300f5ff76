// Package index turns cards into searchable derived text. The writer
// recomputes a card's entire index entry on every notification; there is no
// incremental patching, which keeps the derived row trivially consistent
// with the card.
package index

import (
	"fmt"
	"strings"
	"time"

	"github.com/notefern/cardindex/pkg/content"
	"github.com/notefern/cardindex/pkg/core"
	"github.com/notefern/cardindex/pkg/log"
	"github.com/notefern/cardindex/pkg/segment"
	"github.com/notefern/cardindex/pkg/storage"
)

var logger = log.ForComponent("index")

// Writer recomputes derived text and the FTS entry for cards.
type Writer struct {
	store     *storage.Store
	seg       *segment.Segmenter
	extractor *content.Extractor
}

// NewWriter builds a writer over the store using the default dictionary
// and filter policy.
func NewWriter(store *storage.Store) *Writer {
	return &Writer{
		store:     store,
		seg:       segment.New(),
		extractor: content.NewExtractor(content.DefaultFilterPolicy()),
	}
}

// NewWriterWith builds a writer with explicit collaborators.
func NewWriterWith(store *storage.Store, seg *segment.Segmenter, extractor *content.Extractor) *Writer {
	return &Writer{store: store, seg: seg, extractor: extractor}
}

// IndexCard stores the card and rebuilds its derived text from the card
// fields plus the content record. A soft-deleted card keeps its base row
// but loses its index entry.
func (w *Writer) IndexCard(card *core.Card, ct *core.Content) error {
	if err := w.store.UpsertCard(card); err != nil {
		return err
	}
	if card.Deleted {
		return w.store.DeleteDerivedText(card.ID)
	}

	plain := w.plainContent(card, ct)
	segmented := w.seg.Keywords(plain)

	cols := storage.FTSColumns{
		Name:        w.seg.Keywords(card.Name),
		Text:        w.seg.Keywords(card.Text),
		Description: w.seg.Keywords(card.Description),
		MarkText:    w.seg.Keywords(card.MarkText),
	}
	w.routeContent(card.CardType, segmented, &cols)

	origin := joinNonEmpty("\n", card.Name, card.Text, card.Description, card.MarkText, plain)
	text := joinNonEmpty(" ", cols.Name, cols.Text, cols.Description, cols.MarkText, segmented)

	derived := &core.DerivedText{
		CardID:     card.ID,
		CardType:   card.CardType,
		Name:       card.Name,
		SpaceID:    card.SpaceID,
		Text:       text,
		OriginText: origin,
		UpdatedAt:  time.Now().UTC(),
	}
	if err := w.store.UpsertDerivedText(derived, cols); err != nil {
		return fmt.Errorf("indexing card %s: %w", card.ID, err)
	}
	return nil
}

// RemoveCard drops the card and everything derived from it.
func (w *Writer) RemoveCard(cardID string) error {
	return w.store.DeleteCard(cardID)
}

// plainContent extracts the indexable text of a card's content record.
func (w *Writer) plainContent(card *core.Card, ct *core.Content) string {
	if ct == nil || ct.Raw == "" {
		return ""
	}
	switch ct.Kind {
	case core.ContentMultiTable:
		return w.extractor.ExtractMultiTableText(ct.Raw, ct.Attrs, ct.Views)
	case core.ContentFile:
		return ct.Raw
	default:
		return w.extractor.ExtractPlainText(ct.Raw)
	}
}

// routeContent places segmented content text into the FTS column owned by
// the card's type. One content column per card is ever populated.
func (w *Writer) routeContent(t core.CardType, segmented string, cols *storage.FTSColumns) {
	switch t {
	case core.TypeMindMap:
		cols.MindMapContent = segmented
	case core.TypeDrawBoard:
		cols.DrawboardContent = segmented
	case core.TypeAttachment:
		cols.FileContent = segmented
	default:
		cols.RichText = segmented
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
