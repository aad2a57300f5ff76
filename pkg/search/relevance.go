package search

import "strings"

// Score ranks already-fetched text against a term, independent of the FTS
// engine. Occurrences weigh 10 each; density rewards short texts with
// proportionally more hits; an early first occurrence adds up to 100.
func Score(text, term string) float64 {
	if text == "" || term == "" {
		return 0
	}
	lowerText := strings.ToLower(text)
	lowerTerm := strings.ToLower(term)

	count := strings.Count(lowerText, lowerTerm)
	if count == 0 {
		return 0
	}

	textLen := float64(len([]rune(text)))
	density := float64(count) * float64(len([]rune(term))) / textLen

	first := strings.Index(lowerText, lowerTerm)
	firstRunes := float64(len([]rune(lowerText[:first])))
	positionWeight := 1 - firstRunes/textLen

	return float64(count)*10 + density*1000 + positionWeight*100
}

// Excerpt returns a window of at most maxLength runes centered on the first
// case-insensitive occurrence of term, with ellipsis at truncated edges.
// Without a match the head of the text is returned instead.
func Excerpt(text, term string, maxLength int) string {
	if maxLength <= 0 || text == "" {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}

	center := 0
	if term != "" {
		if idx := strings.Index(strings.ToLower(text), strings.ToLower(term)); idx >= 0 {
			center = len([]rune(text[:idx])) + len([]rune(term))/2
		}
	}

	start := center - maxLength/2
	if start < 0 {
		start = 0
	}
	end := start + maxLength
	if end > len(runes) {
		end = len(runes)
		start = end - maxLength
	}

	out := string(runes[start:end])
	if start > 0 {
		out = "…" + out
	}
	if end < len(runes) {
		out += "…"
	}
	return out
}
