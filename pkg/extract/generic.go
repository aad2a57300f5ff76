package extract

import (
	"os"
	"regexp"
	"strings"

	"github.com/notefern/cardindex/pkg/content"
	"github.com/notefern/cardindex/pkg/core"
)

var schemaURLInlineRe = regexp.MustCompile(`https?://schemas\.[^\s"'<>]+`)

// extractGeneric reads the file as raw text, scrubs formatting debris, and
// paginates the survivors. It is the fallback for office documents whose
// structured parse failed.
func (s *Service) extractGeneric(path, pageType string) (*core.Document, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapf(err, "read %s", path)
	}
	res := s.detector.Detect(buf)
	text := CleanDocumentText(res.Content, s.policy)
	pages := paragraphsToPages(splitParagraphs(text), pageType)
	return documentFromPages(pages, res.Encoding), nil
}

// CleanDocumentText scrubs formatting debris from text recovered out of
// office documents: schema URLs, runs of repeated font names, and lines
// dominated by font tokens.
func CleanDocumentText(text string, policy content.FilterPolicy) string {
	text = schemaURLInlineRe.ReplaceAllString(text, " ")

	var out []string
	for _, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		words = foldRepeats(words)
		if fontTokenRatio(words, policy) > 0.5 {
			continue
		}
		out = append(out, strings.Join(words, " "))
	}
	return collapseWhitespace(strings.Join(out, "\n"))
}

// foldRepeats collapses consecutive identical words into one. Word exports
// repeat font names once per character run.
func foldRepeats(words []string) []string {
	out := words[:0]
	var prev string
	for _, w := range words {
		if w == prev {
			continue
		}
		out = append(out, w)
		prev = w
	}
	return out
}

func fontTokenRatio(words []string, policy content.FilterPolicy) float64 {
	if len(words) == 0 {
		return 0
	}
	fonts := 0
	for _, w := range words {
		if policy.IsFontToken(w) {
			fonts++
		}
	}
	return float64(fonts) / float64(len(words))
}
