// Package segment splits mixed Chinese/Latin text into a search keyword
// stream. CJK runs are segmented by forward maximum match against a
// frequency dictionary; in search mode, matched compounds are additionally
// exploded into their dictionary sub-words so both the compound and its
// parts are indexed. ASCII runs pass through as single tokens.
package segment

import (
	"strings"
	"unicode"
)

// maxMatchRunes bounds the forward probe of the maximum matcher.
const maxMatchRunes = 8

// Sub-word explosion window in search mode.
const (
	minSubWordRunes = 2
	maxSubWordRunes = 4
)

// Segmenter tokenizes text against a dictionary.
type Segmenter struct {
	dict *Dictionary
}

// New returns a segmenter backed by the embedded default dictionary.
func New() *Segmenter {
	return &Segmenter{dict: DefaultDictionary()}
}

// NewWithDictionary returns a segmenter over a caller-supplied dictionary.
func NewWithDictionary(d *Dictionary) *Segmenter {
	return &Segmenter{dict: d}
}

// Keywords tokenizes text in search mode and joins the tokens with single
// spaces, producing the string stored in search index columns.
func (s *Segmenter) Keywords(text string) string {
	return strings.Join(s.Tokens(text, true), " ")
}

// QueryTokens tokenizes a user query without sub-word explosion and with
// punctuation dropped, suitable for building an index match expression.
func (s *Segmenter) QueryTokens(query string) []string {
	var out []string
	for _, tok := range s.Tokens(query, false) {
		if isPunctToken(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Tokens scans text left to right, classifying each rune as an ASCII word
// character, whitespace, CJK, or punctuation. searchMode enables sub-word
// explosion for dictionary compounds longer than two runes.
func (s *Segmenter) Tokens(text string, searchMode bool) []string {
	runes := []rune(text)
	var tokens []string

	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case isASCIIWord(r):
			j := i
			for j < len(runes) && isASCIIWord(runes[j]) {
				j++
			}
			tokens = append(tokens, string(runes[i:j]))
			i = j
		case isCJK(r):
			j := i
			for j < len(runes) && isCJK(runes[j]) {
				j++
			}
			tokens = append(tokens, s.segmentRun(runes[i:j], searchMode)...)
			i = j
		default:
			tokens = append(tokens, string(r))
			i++
		}
	}

	filtered := tokens[:0]
	for _, tok := range tokens {
		if strings.TrimSpace(tok) == "" {
			continue
		}
		filtered = append(filtered, tok)
	}
	return filtered
}

// segmentRun applies forward maximum match to a pure CJK run. Runes with no
// dictionary coverage are emitted as single-character tokens so every
// character remains findable.
func (s *Segmenter) segmentRun(run []rune, searchMode bool) []string {
	var tokens []string
	i := 0
	for i < len(run) {
		matched := 0
		limit := maxMatchRunes
		if rest := len(run) - i; rest < limit {
			limit = rest
		}
		if s.dict.MaxWordLength() < limit {
			limit = s.dict.MaxWordLength()
		}
		for l := limit; l >= minSubWordRunes; l-- {
			if s.dict.Contains(string(run[i : i+l])) {
				matched = l
				break
			}
		}
		if matched == 0 {
			tokens = append(tokens, string(run[i]))
			i++
			continue
		}

		word := run[i : i+matched]
		tokens = append(tokens, string(word))
		if searchMode && matched > minSubWordRunes {
			tokens = append(tokens, s.subWords(word)...)
		}
		i += matched
	}
	return tokens
}

// subWords enumerates every dictionary entry of length 2..4 contained in
// word, deduplicated, excluding word itself. This trades index size for
// substring recall: searching 计算 finds documents indexed under 计算机.
func (s *Segmenter) subWords(word []rune) []string {
	var out []string
	seen := map[string]bool{string(word): true}
	for start := 0; start < len(word); start++ {
		for l := minSubWordRunes; l <= maxSubWordRunes && start+l <= len(word); l++ {
			sub := string(word[start : start+l])
			if seen[sub] || !s.dict.Contains(sub) {
				continue
			}
			seen[sub] = true
			out = append(out, sub)
		}
	}
	return out
}

func isASCIIWord(r rune) bool {
	return r < 128 && (r == '_' ||
		(r >= '0' && r <= '9') ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z'))
}

// isCJK covers Han ideographs plus kana and hangul; all are segmented by
// the dictionary matcher (kana/hangul fall through to single characters).
func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
}

func isPunctToken(tok string) bool {
	for _, r := range tok {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return tok != ""
}
