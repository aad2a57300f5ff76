package index

import (
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/notefern/cardindex/pkg/core"
	"github.com/notefern/cardindex/pkg/storage"
)

func testStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "cards.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testCard(id string, cardType core.CardType, name string) *core.Card {
	now := time.Now().UTC().Truncate(time.Second)
	return &core.Card{
		ID:         id,
		CardType:   cardType,
		Name:       name,
		SpaceID:    "space-1",
		CreateTime: now,
		UpdateTime: now,
	}
}

func search(t *testing.T, store *storage.Store, match string) []core.SearchResult {
	t.Helper()
	hits, err := store.Search(storage.Query{
		Match:          match,
		HighlightStart: "<mark>",
		HighlightEnd:   "</mark>",
	})
	if err != nil {
		t.Fatalf("searching %q: %v", match, err)
	}
	return hits
}

func TestIndexCardEndToEnd(t *testing.T) {
	store := testStore(t)
	w := NewWriter(store)

	card := testCard("c1", core.TypeCard, "会议记录")
	ct := &core.Content{
		Kind: core.ContentRichText,
		Raw:  `{"type":"doc","content":[{"type":"paragraph","text":"讨论了搜索引擎的分词方案"}]}`,
	}
	if err := w.IndexCard(card, ct); err != nil {
		t.Fatalf("indexing: %v", err)
	}

	hits := search(t, store, `"分词"`)
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].Name != "会议记录" {
		t.Errorf("wrong card: %+v", hits[0])
	}
	if hits[0].Highlight == nil || !strings.Contains(hits[0].Highlight.RichText, "<mark>分词</mark>") {
		t.Errorf("content match not highlighted: %+v", hits[0].Highlight)
	}

	// The compound name is searchable through its sub-words too.
	if hits := search(t, store, `"记录"`); len(hits) != 1 {
		t.Errorf("sub-word of name should match, got %d hits", len(hits))
	}

	derived, err := store.GetDerivedText("c1")
	if err != nil {
		t.Fatalf("getting derived text: %v", err)
	}
	if !strings.Contains(derived.OriginText, "讨论了搜索引擎的分词方案") {
		t.Errorf("origin text missing content: %q", derived.OriginText)
	}
	if !strings.Contains(derived.Text, "分词") {
		t.Errorf("segmented text missing content token: %q", derived.Text)
	}
}

func TestReindexReplacesOldTokens(t *testing.T) {
	store := testStore(t)
	w := NewWriter(store)

	card := testCard("c1", core.TypeCard, "草稿")
	first := &core.Content{Kind: core.ContentRichText, Raw: `{"text":"初版 提纲"}`}
	if err := w.IndexCard(card, first); err != nil {
		t.Fatal(err)
	}
	second := &core.Content{Kind: core.ContentRichText, Raw: `{"text":"终版 正文"}`}
	if err := w.IndexCard(card, second); err != nil {
		t.Fatal(err)
	}

	if hits := search(t, store, `"初版"`); len(hits) != 0 {
		t.Errorf("stale token still matches: %d hits", len(hits))
	}
	if hits := search(t, store, `"终版"`); len(hits) != 1 {
		t.Errorf("fresh token should match: %d hits", len(hits))
	}
}

func TestSoftDeleteDropsIndexEntryKeepsCard(t *testing.T) {
	store := testStore(t)
	w := NewWriter(store)

	card := testCard("c1", core.TypeCard, "待归档")
	ct := &core.Content{Kind: core.ContentRichText, Raw: `{"text":"归档 正文"}`}
	if err := w.IndexCard(card, ct); err != nil {
		t.Fatal(err)
	}

	card.Deleted = true
	if err := w.IndexCard(card, ct); err != nil {
		t.Fatal(err)
	}

	if hits := search(t, store, `"归档"`); len(hits) != 0 {
		t.Errorf("soft-deleted card still searchable: %d hits", len(hits))
	}
	got, err := store.GetCard("c1")
	if err != nil {
		t.Fatalf("base card should survive soft delete: %v", err)
	}
	if !got.Deleted {
		t.Error("deleted flag not persisted")
	}
	if _, err := store.GetDerivedText("c1"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("derived text should be gone: %v", err)
	}
}

func TestContentColumnRouting(t *testing.T) {
	store := testStore(t)
	w := NewWriter(store)

	tests := []struct {
		name     string
		cardType core.CardType
		content  *core.Content
		match    string
		inspect  func(h *core.Highlight) string
	}{
		{
			name:     "mind map",
			cardType: core.TypeMindMap,
			content: &core.Content{
				Kind: core.ContentMindMap,
				Raw:  `{"data":{"text":"年度规划"},"children":[]}`,
			},
			match:   `"规划"`,
			inspect: func(h *core.Highlight) string { return h.MindMapContent },
		},
		{
			name:     "attachment",
			cardType: core.TypeAttachment,
			content: &core.Content{
				Kind: core.ContentFile,
				Raw:  "合同 条款 正文",
			},
			match:   `"条款"`,
			inspect: func(h *core.Highlight) string { return h.FileContent },
		},
		{
			name:     "drawboard",
			cardType: core.TypeDrawBoard,
			content: &core.Content{
				Kind: core.ContentDrawboard,
				Raw:  `{"elements":[{"type":"text","text":"架构草图"}]}`,
			},
			match:   `"草图"`,
			inspect: func(h *core.Highlight) string { return h.DrawboardContent },
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := testCard(string(rune('a'+i))+"-card", tt.cardType, "")
			if err := w.IndexCard(card, tt.content); err != nil {
				t.Fatalf("indexing: %v", err)
			}
			hits := search(t, store, tt.match)
			if len(hits) != 1 {
				t.Fatalf("expected 1 hit, got %d", len(hits))
			}
			h := hits[0].Highlight
			if h == nil {
				t.Fatal("expected highlight")
			}
			if !strings.Contains(tt.inspect(h), "<mark>") {
				t.Errorf("match not in the type's own column: %+v", h)
			}
			if h.RichText != "" && tt.cardType != core.TypeCard {
				t.Errorf("content leaked into rich_text: %q", h.RichText)
			}
		})
	}
}

func TestMultiTableContent(t *testing.T) {
	store := testStore(t)
	w := NewWriter(store)

	card := testCard("c1", core.TypeMultiTable, "支出表")
	ct := &core.Content{
		Kind:  core.ContentMultiTable,
		Raw:   `{"rows":[{"a1":"办公设备采购"}]}`,
		Attrs: `[{"id":"a1","name":"事项"}]`,
		Views: `[{"name":"默认视图"}]`,
	}
	if err := w.IndexCard(card, ct); err != nil {
		t.Fatal(err)
	}

	if hits := search(t, store, `"采购"`); len(hits) != 1 {
		t.Errorf("cell value should be searchable: %d hits", len(hits))
	}
}

func TestRemoveCard(t *testing.T) {
	store := testStore(t)
	w := NewWriter(store)

	card := testCard("c1", core.TypeCard, "临时笔记")
	if err := w.IndexCard(card, &core.Content{Kind: core.ContentRichText, Raw: `{"text":"临时 内容"}`}); err != nil {
		t.Fatal(err)
	}
	if err := w.RemoveCard("c1"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetCard("c1"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("card should be gone: %v", err)
	}
}
