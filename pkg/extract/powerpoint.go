package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/notefern/cardindex/pkg/core"
)

var (
	slideNameRe    = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
	quotedStringRe = regexp.MustCompile(`"([^"<>\\]{2,200})"`)
)

// extractPowerPoint extracts one page per slide, in slide order. Text runs
// that fail the plausibility filter are dropped; a slide whose XML parse
// yields nothing is re-scraped for quoted string literals before being left
// empty. Files that are not valid archives go through the generic cleaner.
func (s *Service) extractPowerPoint(path string) (*core.Document, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		logger.Debugf("powerpoint %s is not an archive, using generic extraction: %v", path, err)
		return s.extractGeneric(path, "slide")
	}
	defer archive.Close()

	slides := slideFiles(&archive.Reader)
	if len(slides) == 0 {
		return s.extractGeneric(path, "slide")
	}

	pages := make([]core.Page, 0, len(slides))
	for i, slide := range slides {
		text, err := s.slideText(slide)
		if err != nil {
			logger.Debugf("slide %d of %s unreadable: %v", i+1, path, err)
			text = ""
		}
		pages = append(pages, core.Page{
			PageNumber: i + 1,
			Content:    text,
			PageType:   "slide",
		})
	}
	return documentFromPages(pages, "utf-8"), nil
}

// slideFiles returns the slide parts of the archive ordered by slide number.
func slideFiles(archive *zip.Reader) []*zip.File {
	type numbered struct {
		n    int
		file *zip.File
	}
	var slides []numbered
	for _, f := range archive.File {
		m := slideNameRe.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slides = append(slides, numbered{n: n, file: f})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].n < slides[j].n })
	out := make([]*zip.File, len(slides))
	for i, s := range slides {
		out[i] = s.file
	}
	return out
}

func (s *Service) slideText(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	raw, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return "", err
	}

	leaves, err := slideTextLeaves(bytes.NewReader(raw))
	if err != nil || len(leaves) == 0 {
		leaves = scrapeQuotedLiterals(raw)
	}

	var kept []string
	for _, leaf := range leaves {
		if s.policy.Plausible(leaf) {
			kept = append(kept, leaf)
		}
	}
	return strings.Join(kept, "\n"), nil
}

// slideTextLeaves collects the text-run leaves of a slide's XML tree.
func slideTextLeaves(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	var leaves []string
	inText := false
	var current strings.Builder

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return leaves, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
				current.Reset()
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
				if text := strings.TrimSpace(current.String()); text != "" {
					leaves = append(leaves, text)
				}
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return leaves, nil
}

// scrapeQuotedLiterals pulls double-quoted string literals straight out of
// raw slide bytes. Last resort for slides whose XML will not parse.
func scrapeQuotedLiterals(raw []byte) []string {
	var out []string
	for _, m := range quotedStringRe.FindAllSubmatch(raw, -1) {
		out = append(out, string(m[1]))
	}
	return out
}
