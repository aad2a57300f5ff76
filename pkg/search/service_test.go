package search

import (
	"net/url"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/notefern/cardindex/pkg/core"
	"github.com/notefern/cardindex/pkg/index"
	"github.com/notefern/cardindex/pkg/storage"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected Params
	}{
		{
			name:  "basic query",
			query: "q=test&limit=50&offset=10",
			expected: Params{
				Query: "test", Limit: 50, Offset: 10,
				Highlight: true, SnippetLength: defaultSnippetLength,
			},
		},
		{
			name:  "type and space filters",
			query: "q=plan&type=card&type=mind-map&space=s1",
			expected: Params{
				Query: "plan", SpaceID: "s1",
				CardTypes: []string{"card", "mind-map"},
				Limit:     defaultLimit, Highlight: true, SnippetLength: defaultSnippetLength,
			},
		},
		{
			name:  "highlight off and snippet override",
			query: "q=x&highlight=false&snippet=100",
			expected: Params{
				Query: "x", Limit: defaultLimit,
				Highlight: false, SnippetLength: 100,
			},
		},
		{
			name:  "invalid numbers fall back to defaults",
			query: "q=x&limit=bogus&offset=-3",
			expected: Params{
				Query: "x", Limit: defaultLimit,
				Highlight: true, SnippetLength: defaultSnippetLength,
			},
		},
		{
			name:  "limit clamped",
			query: "q=x&limit=9999",
			expected: Params{
				Query: "x", Limit: maxLimit,
				Highlight: true, SnippetLength: defaultSnippetLength,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatal(err)
			}
			got := ParseParams(values)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("got %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func testService(t *testing.T) (*Service, *index.Writer) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "cards.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewService(store), index.NewWriter(store)
}

func seed(t *testing.T, w *index.Writer, id, name, text string) {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	card := &core.Card{
		ID: id, CardType: core.TypeCard, Name: name,
		SpaceID: "space-1", CreateTime: now, UpdateTime: now,
	}
	ct := &core.Content{Kind: core.ContentRichText, Raw: `{"text":"` + text + `"}`}
	if err := w.IndexCard(card, ct); err != nil {
		t.Fatalf("seeding %s: %v", id, err)
	}
}

func TestSearchSegmentsCompoundQuery(t *testing.T) {
	svc, w := testService(t)
	seed(t, w, "c1", "会议记录", "讨论了搜索引擎的分词方案")
	seed(t, w, "c2", "购物清单", "牛奶和面包")

	hits, err := svc.Search(Params{Query: "会议记录", Limit: 10, Highlight: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != "c1" {
		t.Fatalf("compound query should match the meeting card: %+v", hits)
	}

	// A sub-word of the compound matches the same card.
	hits, err = svc.Search(Params{Query: "记录", Limit: 10, Highlight: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != "c1" {
		t.Fatalf("sub-word query should match: %+v", hits)
	}
}

func TestSearchHighlightsMatch(t *testing.T) {
	svc, w := testService(t)
	seed(t, w, "c1", "学习笔记", "计算机科学与技术课程安排")

	hits, err := svc.Search(Params{Query: "计算机", Limit: 10, Highlight: true, SnippetLength: 48})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	h := hits[0].Highlight
	if h == nil {
		t.Fatal("expected highlight")
	}
	if !strings.Contains(h.RichText, "<mark>计算机</mark>") {
		t.Errorf("match not marked: %q", h.RichText)
	}
}

func TestSearchWithoutHighlight(t *testing.T) {
	svc, w := testService(t)
	seed(t, w, "c1", "学习笔记", "计算机科学与技术")

	hits, err := svc.Search(Params{Query: "计算机", Limit: 10, Highlight: false})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].Highlight != nil {
		t.Errorf("highlight should be absent: %+v", hits[0].Highlight)
	}
}

func TestSearchIgnoresPunctuationInQuery(t *testing.T) {
	svc, w := testService(t)
	seed(t, w, "c1", "架构评审", "搜索引擎架构设计")

	hits, err := svc.Search(Params{Query: "搜索引擎！", Limit: 10, Highlight: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Errorf("punctuation should not affect matching: %d hits", len(hits))
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	svc, _ := testService(t)

	hits, err := svc.Search(Params{Query: "  ，。！  ", Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if hits != nil {
		t.Errorf("blank query should yield nil: %+v", hits)
	}
	count, err := svc.Count(Params{Query: ""})
	if err != nil || count != 0 {
		t.Errorf("blank count should be 0: %d %v", count, err)
	}
}

func TestCountMatchesSearch(t *testing.T) {
	svc, w := testService(t)
	for _, id := range []string{"c1", "c2", "c3"} {
		seed(t, w, id, "读书笔记", "阅读整理与记录")
	}

	count, err := svc.Count(Params{Query: "整理"})
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("expected 3 matches, got %d", count)
	}

	hits, err := svc.Search(Params{Query: "整理", Limit: 2, Highlight: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Errorf("limit not applied: %d hits", len(hits))
	}
}

func TestSuggestNames(t *testing.T) {
	svc, w := testService(t)
	seed(t, w, "c1", "读书笔记", "第一篇读后感")
	seed(t, w, "c2", "读书笔记", "第二篇读后感")
	seed(t, w, "c3", "笔记模板", "通用模板说明")

	names, err := svc.Suggest("笔记", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 distinct names, got %v", names)
	}
}

func TestBuildMatchQuotesEveryToken(t *testing.T) {
	svc, _ := testService(t)

	match := svc.buildMatch(`中文 NEAR AND engine`)
	if match == "" {
		t.Fatal("expected a match expression")
	}
	for _, part := range strings.Fields(match) {
		if !strings.HasPrefix(part, `"`) || !strings.HasSuffix(part, `"`) {
			// Unquoted tokens would be interpreted as FTS5 operators.
			t.Errorf("token not quoted: %q", part)
		}
	}
}
