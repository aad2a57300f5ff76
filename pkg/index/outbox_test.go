package index

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/notefern/cardindex/pkg/core"
)

func TestOutboxAppliesNotifications(t *testing.T) {
	store := testStore(t)
	outbox := NewOutbox(NewWriter(store), 16)
	defer outbox.Close()

	card := testCard("c1", core.TypeCard, "异步笔记")
	outbox.NotifyUpsert(card, &core.Content{Kind: core.ContentRichText, Raw: `{"text":"后台 索引 内容"}`})
	outbox.Flush()

	if hits := search(t, store, `"索引"`); len(hits) != 1 {
		t.Fatalf("expected queued card to be indexed, got %d hits", len(hits))
	}
}

func TestOutboxOrdering(t *testing.T) {
	store := testStore(t)
	outbox := NewOutbox(NewWriter(store), 16)
	defer outbox.Close()

	card := testCard("c1", core.TypeCard, "先建后删")
	outbox.NotifyUpsert(card, &core.Content{Kind: core.ContentRichText, Raw: `{"text":"短命 内容"}`})
	outbox.NotifyDelete("c1")
	outbox.Flush()

	if _, err := store.GetCard("c1"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("delete queued after upsert should win: %v", err)
	}
}

func TestOutboxSwallowsIndexingErrors(t *testing.T) {
	store := testStore(t)
	writer := NewWriter(store)
	// Force every write to fail.
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	outbox := NewOutbox(writer, 4)
	defer outbox.Close()

	card := testCard("c1", core.TypeCard, "注定失败")
	outbox.NotifyUpsert(card, nil)
	outbox.NotifyDelete("c1")
	outbox.Flush()
	// Reaching this point is the assertion: failures were logged, not raised.
}

func TestOutboxManyNotifications(t *testing.T) {
	store := testStore(t)
	outbox := NewOutbox(NewWriter(store), 8)
	defer outbox.Close()

	for i := 0; i < 50; i++ {
		card := testCard(fmt.Sprintf("c%d", i), core.TypeCard, "批量")
		outbox.NotifyUpsert(card, &core.Content{Kind: core.ContentRichText, Raw: `{"text":"批量 写入"}`})
	}
	outbox.Flush()

	count, err := store.CardCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 50 {
		t.Errorf("expected 50 cards, got %d", count)
	}
}