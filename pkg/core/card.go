package core

import "time"

// CardType identifies which content sub-record a card owns. Each card has
// exactly one content record keyed by the card id.
type CardType string

const (
	TypeCard       CardType = "card"
	TypeDiary      CardType = "diary"
	TypeMark       CardType = "mark"
	TypeAttachment CardType = "attachment"
	TypeDrawBoard  CardType = "draw-board"
	TypeMindMap    CardType = "mind-map"
	TypeMultiTable CardType = "multi-table"
	TypeMermaid    CardType = "mermaid"
	TypeCardDate   CardType = "card-date"
)

// Card is the base record consumed from the card persistence layer. The
// indexing subsystem never mutates base fields; it only reads them when
// recomputing derived text.
type Card struct {
	ID          string
	CardType    CardType
	SubType     string
	Name        string
	Text        string
	Description string
	MarkText    string
	SpaceID     string
	Deleted     bool
	CreateTime  time.Time
	UpdateTime  time.Time
}

// ContentKind tags the shape of a card's content blob.
type ContentKind string

const (
	ContentRichText   ContentKind = "rich-text"
	ContentDrawboard  ContentKind = "drawboard"
	ContentMindMap    ContentKind = "mind-map"
	ContentMultiTable ContentKind = "multi-table"
	ContentMermaid    ContentKind = "mermaid"
	ContentFile       ContentKind = "file"
)

// Content is the tagged variant holding a card's type-specific content.
// Raw carries the serialized JSON blob for structured kinds, or plain text
// for file content. MultiTable kinds additionally carry the attribute and
// view definitions needed to resolve cell values.
type Content struct {
	Kind  ContentKind
	Raw   string
	Attrs string
	Views string
}

// ContentKindFor maps a card type to the content variant it owns.
func ContentKindFor(t CardType) ContentKind {
	switch t {
	case TypeDrawBoard:
		return ContentDrawboard
	case TypeMindMap:
		return ContentMindMap
	case TypeMultiTable:
		return ContentMultiTable
	case TypeMermaid:
		return ContentMermaid
	case TypeAttachment:
		return ContentFile
	default:
		return ContentRichText
	}
}

// DerivedText is the one-row-per-card search record produced by the index
// writer. Text holds the segmented keyword stream, OriginText the plain
// unsegmented text. Replace semantics: every content write overwrites the
// whole row.
type DerivedText struct {
	CardID     string
	CardType   CardType
	Name       string
	SpaceID    string
	Text       string
	OriginText string
	UpdatedAt  time.Time
}
