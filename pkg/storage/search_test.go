package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/notefern/cardindex/pkg/core"
)

// seedCard stores a card plus its segmented index entry in one step.
func seedCard(t *testing.T, store *Store, card *core.Card, cols FTSColumns) {
	t.Helper()
	if err := store.UpsertCard(card); err != nil {
		t.Fatalf("seeding card %s: %v", card.ID, err)
	}
	d := &core.DerivedText{
		CardID:    card.ID,
		CardType:  card.CardType,
		Name:      card.Name,
		SpaceID:   card.SpaceID,
		Text:      cols.Text,
		UpdatedAt: card.UpdateTime,
	}
	if err := store.UpsertDerivedText(d, cols); err != nil {
		t.Fatalf("seeding derived text for %s: %v", card.ID, err)
	}
}

func TestSearchMarksMatchedTerm(t *testing.T) {
	store := testStore(t)

	card := testCard("c1", "计算机科学笔记")
	seedCard(t, store, card, FTSColumns{
		Name:     "计算机科学 计算机 科学 笔记",
		RichText: "计算机 体系结构 与 操作系统 原理",
	})

	hits := mustSearch(t, store, `"计算机"`)
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	hit := hits[0]
	if hit.ID != "c1" || hit.Name != "计算机科学笔记" {
		t.Errorf("wrong hit: %+v", hit)
	}
	if hit.Highlight == nil {
		t.Fatal("expected highlight")
	}
	if !strings.Contains(hit.Highlight.RichText, "<mark>计算机</mark>") {
		t.Errorf("rich text not marked: %q", hit.Highlight.RichText)
	}
	if !strings.Contains(hit.Highlight.Name, "<mark>计算机</mark>") {
		t.Errorf("name not marked: %q", hit.Highlight.Name)
	}
}

func TestHighlightOnlyInMatchedColumns(t *testing.T) {
	store := testStore(t)

	card := testCard("c1", "旅行计划")
	seedCard(t, store, card, FTSColumns{
		Name:     "旅行 计划",
		RichText: "东京 行程 安排",
	})

	hits := mustSearch(t, store, `"东京"`)
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	h := hits[0].Highlight
	if h == nil {
		t.Fatal("expected highlight")
	}
	if h.Name != "" {
		t.Errorf("name should not be highlighted: %q", h.Name)
	}
	if !strings.Contains(h.RichText, "<mark>东京</mark>") {
		t.Errorf("rich text should be highlighted: %q", h.RichText)
	}
	if h.MindMapContent != "" || h.FileContent != "" || h.DrawboardContent != "" {
		t.Errorf("unmatched columns should stay empty: %+v", h)
	}
}

func TestSearchMultiTokenQuery(t *testing.T) {
	store := testStore(t)

	a := testCard("c1", "会议记录")
	seedCard(t, store, a, FTSColumns{
		Name:     "会议记录 会议 记录",
		RichText: "季度 会议 记录 整理",
	})
	b := testCard("c2", "购物清单")
	seedCard(t, store, b, FTSColumns{
		Name:     "购物 清单",
		RichText: "牛奶 面包",
	})

	hits := mustSearch(t, store, `"会议" "记录"`)
	if len(hits) != 1 || hits[0].ID != "c1" {
		t.Fatalf("expected only the meeting card, got %+v", hits)
	}
}

func TestSearchFilters(t *testing.T) {
	store := testStore(t)

	a := testCard("c1", "设计稿")
	a.CardType = core.TypeDrawBoard
	seedCard(t, store, a, FTSColumns{Name: "设计 稿", DrawboardContent: "首页 布局 设计"})

	b := testCard("c2", "设计文档")
	b.SpaceID = "space-2"
	seedCard(t, store, b, FTSColumns{Name: "设计 文档", RichText: "接口 设计 说明"})

	byType, err := store.Search(Query{
		Match:          `"设计"`,
		CardTypes:      []string{string(core.TypeDrawBoard)},
		HighlightStart: "<mark>",
		HighlightEnd:   "</mark>",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(byType) != 1 || byType[0].ID != "c1" {
		t.Errorf("type filter failed: %+v", byType)
	}

	bySpace, err := store.Search(Query{
		Match:          `"设计"`,
		SpaceID:        "space-2",
		HighlightStart: "<mark>",
		HighlightEnd:   "</mark>",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(bySpace) != 1 || bySpace[0].ID != "c2" {
		t.Errorf("space filter failed: %+v", bySpace)
	}
}

func TestSearchSkipsDeletedCards(t *testing.T) {
	store := testStore(t)

	card := testCard("c1", "归档笔记")
	card.Deleted = true
	seedCard(t, store, card, FTSColumns{Name: "归档 笔记", RichText: "归档 内容"})

	if hits := mustSearch(t, store, `"归档"`); len(hits) != 0 {
		t.Errorf("deleted card surfaced: %+v", hits)
	}
}

func TestCountIgnoresPaging(t *testing.T) {
	store := testStore(t)

	for i, id := range []string{"c1", "c2", "c3"} {
		card := testCard(id, "笔记")
		card.UpdateTime = card.UpdateTime.Add(time.Duration(i) * time.Minute)
		seedCard(t, store, card, FTSColumns{Name: "笔记", RichText: "共享 词条"})
	}

	count, err := store.Count(Query{Match: `"词条"`})
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("expected 3, got %d", count)
	}

	page, err := store.Search(Query{
		Match: `"词条"`, Limit: 2, Offset: 2,
		HighlightStart: "<mark>", HighlightEnd: "</mark>",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 1 {
		t.Errorf("expected 1 result on last page, got %d", len(page))
	}
}

func TestSuggestDistinctNames(t *testing.T) {
	store := testStore(t)

	for _, id := range []string{"c1", "c2"} {
		card := testCard(id, "读书笔记")
		seedCard(t, store, card, FTSColumns{Name: "读书 笔记", RichText: "读后感"})
	}
	other := testCard("c3", "笔记模板")
	seedCard(t, store, other, FTSColumns{Name: "笔记 模板", RichText: "模板 说明"})

	names, err := store.Suggest(`"笔记"`, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 distinct names, got %v", names)
	}
	seen := map[string]bool{}
	for _, n := range names {
		if seen[n] {
			t.Errorf("duplicate suggestion %q", n)
		}
		seen[n] = true
	}
}

func TestEmptyQueryYieldsNothing(t *testing.T) {
	store := testStore(t)

	if hits := mustSearch(t, store, "  "); hits != nil {
		t.Errorf("blank match should yield nil, got %+v", hits)
	}
	if count, err := store.Count(Query{Match: ""}); err != nil || count != 0 {
		t.Errorf("blank count should be 0: %d %v", count, err)
	}
	if names, err := store.Suggest("", 5); err != nil || names != nil {
		t.Errorf("blank suggest should be nil: %v %v", names, err)
	}
}
