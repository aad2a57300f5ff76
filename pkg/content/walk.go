// Package content extracts human-meaningful text from the JSON-like
// structured content carried by cards: rich text, drawboard elements,
// mind-map node trees, and multi-table cells. One generic depth-first walk
// is parameterized by a leaf-acceptance predicate and reused across every
// variant instead of maintaining bespoke per-format extractors.
package content

import (
	"encoding/json"
	"sort"
	"strings"
)

// Extractor walks structured content and collects accepted string leaves.
type Extractor struct {
	policy FilterPolicy

	// skipKeys are object keys whose values are styling or geometry
	// metadata and never carry user text.
	skipKeys map[string]bool
}

// NewExtractor builds an extractor with the given filter policy.
func NewExtractor(policy FilterPolicy) *Extractor {
	return &Extractor{
		policy: policy,
		skipKeys: wordSet(
			"id", "key", "type", "version", "versionNonce", "mode", "theme",
			"color", "background", "backgroundColor", "fontFamily", "font",
			"fontSize", "fontWeight", "style", "className", "align",
			"textAlign", "width", "height", "x", "y", "left", "top", "right",
			"bottom", "angle", "scale", "zoom", "points", "strokeColor",
			"strokeWidth", "strokeStyle", "fill", "fillStyle", "opacity",
			"seed", "icon", "image", "src", "url", "link", "format",
			"updated", "created", "createTime", "updateTime", "groupIds",
			"boundElements", "frameId", "roundness", "lineHeight",
		),
	}
}

// ExtractPlainText parses serialized JSON content and returns the
// space-joined accepted string leaves in depth-first order. Content that is
// not valid JSON is treated as already-plain text and returned whole.
func (e *Extractor) ExtractPlainText(serialized string) string {
	serialized = strings.TrimSpace(serialized)
	if serialized == "" {
		return ""
	}
	var v any
	if err := json.Unmarshal([]byte(serialized), &v); err != nil {
		return serialized
	}
	var sb strings.Builder
	e.walk(v, &sb)
	return strings.TrimSpace(sb.String())
}

// ExtractMultiTableText extracts text from a multi-table card: attribute
// (column) names from attrs, view names from views, and cell values from
// data, all through the same walk.
func (e *Extractor) ExtractMultiTableText(data, attrs, views string) string {
	parts := make([]string, 0, 3)
	for _, blob := range []string{attrs, views, data} {
		if text := e.ExtractPlainText(blob); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// walk performs the depth-first traversal. Map keys are visited in sorted
// order so extraction is deterministic for identical content.
func (e *Extractor) walk(v any, sb *strings.Builder) {
	switch val := v.(type) {
	case string:
		if e.policy.Plausible(val) {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strings.TrimSpace(val))
		}
	case []any:
		for _, item := range val {
			e.walk(item, sb)
		}
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			if e.skipKeys[k] {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)
		// Text-bearing keys first so titles precede children.
		sort.SliceStable(keys, func(i, j int) bool {
			return textKeyRank(keys[i]) < textKeyRank(keys[j])
		})
		for _, k := range keys {
			e.walk(val[k], sb)
		}
	}
	// Numbers and booleans are never text.
}

func textKeyRank(k string) int {
	switch k {
	case "name", "title", "label", "text", "content", "value":
		return 0
	case "children", "rows", "cells", "data":
		return 2
	}
	return 1
}
