package index

import (
	"sync"

	"github.com/notefern/cardindex/pkg/core"
)

type opKind int

const (
	opUpsert opKind = iota
	opDelete
	opFlush
)

type op struct {
	kind    opKind
	card    *core.Card
	content *core.Content
	cardID  string
	done    chan struct{}
}

// Outbox decouples card mutations from index maintenance. Notifications are
// queued and applied by a single background worker; indexing failures are
// logged and never surface to the notifying caller, so a broken document
// cannot block a card save.
type Outbox struct {
	writer *Writer
	ops    chan op

	closeOnce sync.Once
	stopped   chan struct{}
}

// NewOutbox starts the background worker. buffer bounds how many pending
// notifications the caller can queue before Notify blocks.
func NewOutbox(writer *Writer, buffer int) *Outbox {
	if buffer <= 0 {
		buffer = 256
	}
	o := &Outbox{
		writer:  writer,
		ops:     make(chan op, buffer),
		stopped: make(chan struct{}),
	}
	go o.run()
	return o
}

// NotifyUpsert queues a card (and its content record) for reindexing.
func (o *Outbox) NotifyUpsert(card *core.Card, content *core.Content) {
	o.ops <- op{kind: opUpsert, card: card, content: content}
}

// NotifyDelete queues removal of a card from the index.
func (o *Outbox) NotifyDelete(cardID string) {
	o.ops <- op{kind: opDelete, cardID: cardID}
}

// Flush blocks until every notification queued before the call has been
// applied.
func (o *Outbox) Flush() {
	done := make(chan struct{})
	select {
	case o.ops <- op{kind: opFlush, done: done}:
		<-done
	case <-o.stopped:
	}
}

// Close drains the queue and stops the worker. No notifications may be
// queued after Close.
func (o *Outbox) Close() {
	o.closeOnce.Do(func() {
		close(o.ops)
		<-o.stopped
	})
}

func (o *Outbox) run() {
	defer close(o.stopped)
	for op := range o.ops {
		switch op.kind {
		case opUpsert:
			if err := o.writer.IndexCard(op.card, op.content); err != nil {
				logger.Errorf("indexing card %s: %v", op.card.ID, err)
			}
		case opDelete:
			if err := o.writer.RemoveCard(op.cardID); err != nil {
				logger.Errorf("removing card %s: %v", op.cardID, err)
			}
		case opFlush:
			close(op.done)
		}
	}
}
