package content

import (
	"regexp"
	"strings"
	"unicode"
)

// FilterPolicy decides whether a string leaf pulled out of slide XML or
// structured card content is human-meaningful text or styling noise. The
// thresholds are heuristic and tuned for mixed Chinese/English content, so
// they are policy, not constants: callers build one from configuration.
type FilterPolicy struct {
	// MinLength and MaxLength bound the rune length of acceptable text.
	MinLength int
	MaxLength int

	// MaxDigitRatio rejects strings dominated by digits (coordinates,
	// dimension tables).
	MaxDigitRatio float64

	// MaxSpecialRatio rejects strings dominated by punctuation/symbols.
	MaxSpecialRatio float64

	// StopWords are English words too generic to prove a string is prose.
	StopWords map[string]bool

	// FontNames are tokens that mark font declarations rather than text.
	FontNames map[string]bool

	// StyleWords are style keyword enumerations (bold, solid, ...) that
	// appear as attribute values in drawing formats.
	StyleWords map[string]bool
}

// DefaultFilterPolicy returns the tuning used when no configuration
// overrides are present.
func DefaultFilterPolicy() FilterPolicy {
	return FilterPolicy{
		MinLength:       2,
		MaxLength:       200,
		MaxDigitRatio:   0.3,
		MaxSpecialRatio: 0.4,
		StopWords:       wordSet("the", "and", "for", "with", "from", "this", "that", "are", "was", "not", "you", "all", "can", "has", "have", "but", "his", "her", "its", "they", "will", "one", "two"),
		FontNames:       wordSet("arial", "calibri", "helvetica", "verdana", "tahoma", "georgia", "roboto", "times", "courier", "consolas", "menlo", "monaco", "simsun", "simhei", "kaiti", "fangsong", "dengxian", "宋体", "黑体", "楷体", "仿宋", "微软雅黑", "苹方", "yahei", "pingfang", "noto", "lato", "montserrat"),
		StyleWords:      wordSet("bold", "italic", "underline", "solid", "dashed", "dotted", "none", "auto", "left", "right", "center", "justify", "top", "bottom", "middle", "normal", "hidden", "visible", "inherit", "transparent"),
	}
}

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

var (
	hexCodeRe    = regexp.MustCompile(`^#?[0-9A-Fa-f]{6}([0-9A-Fa-f]{2})?$`)
	guidRe       = regexp.MustCompile(`^\{?[0-9A-Fa-f]{8}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{12}\}?$`)
	coordPairRe  = regexp.MustCompile(`^[-\d][\d\s.,:x×*-]*$`)
	langTagRe    = regexp.MustCompile(`^[a-z]{2,3}(-[A-Za-z]{2,4})?$`)
	schemaURLRe  = regexp.MustCompile(`^(https?://schemas\.|urn:)`)
	pathLikeRe   = regexp.MustCompile(`^([A-Za-z]:)?[\\/][^ ]*$|^[\w.-]+\.(xml|rels|png|jpe?g|gif|emf|wmf|bin|thmx)$`)
	camelStyleRe = regexp.MustCompile(`^[a-z]+(?:[A-Z][a-z0-9]*)+$`)
	englishRe    = regexp.MustCompile(`[A-Za-z]{2,}`)
)

// Plausible reports whether s looks like human-meaningful text. A string
// with two or more CJK characters is always accepted; everything else has
// to survive the metadata-shape rejections and the density thresholds, and
// then prove itself with at least one non-stop-word English word.
func (p FilterPolicy) Plausible(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}

	if countCJK(s) >= 2 {
		return true
	}

	runes := []rune(s)
	if len(runes) < p.MinLength || len(runes) > p.MaxLength {
		return false
	}

	if hexCodeRe.MatchString(s) || guidRe.MatchString(s) ||
		coordPairRe.MatchString(s) || schemaURLRe.MatchString(s) ||
		pathLikeRe.MatchString(s) || camelStyleRe.MatchString(s) ||
		langTagRe.MatchString(s) {
		return false
	}

	digits, specials := 0, 0
	for _, r := range runes {
		switch {
		case unicode.IsDigit(r):
			digits++
		case !unicode.IsLetter(r) && !unicode.IsSpace(r):
			specials++
		}
	}
	if float64(digits)/float64(len(runes)) > p.MaxDigitRatio {
		return false
	}
	if float64(specials)/float64(len(runes)) > p.MaxSpecialRatio {
		return false
	}

	fields := strings.Fields(strings.ToLower(s))
	if len(fields) > 0 && p.allIn(fields, p.FontNames) {
		return false
	}
	if len(fields) > 1 && p.allIn(fields, p.StyleWords) {
		return false
	}

	if countCJK(s) > 0 {
		return true
	}
	return englishWordOutsideStopList(s, p.StopWords)
}

func (p FilterPolicy) allIn(fields []string, set map[string]bool) bool {
	for _, f := range fields {
		if !set[strings.Trim(f, ",;")] {
			return false
		}
	}
	return true
}

// IsFontToken reports whether the lowercased token names a font.
func (p FilterPolicy) IsFontToken(tok string) bool {
	return p.FontNames[strings.ToLower(strings.Trim(tok, ",;"))]
}

func englishWordOutsideStopList(s string, stop map[string]bool) bool {
	for _, w := range englishRe.FindAllString(s, -1) {
		if !stop[strings.ToLower(w)] {
			return true
		}
	}
	return false
}

func countCJK(s string) int {
	n := 0
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			n++
		}
	}
	return n
}
