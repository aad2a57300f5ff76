package extract

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"strings"

	"github.com/notefern/cardindex/pkg/core"
)

// extractWord reads paragraphs from the main document part of a .docx
// archive and groups them into synthetic pages. Files that are not valid
// archives (legacy .doc, mislabeled exports) go through the generic
// cleaner instead.
func (s *Service) extractWord(path string) (*core.Document, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		logger.Debugf("word %s is not an archive, using generic extraction: %v", path, err)
		return s.extractGeneric(path, "word")
	}
	defer archive.Close()

	part := findArchiveFile(&archive.Reader, "word/document.xml")
	if part == nil {
		return s.extractGeneric(path, "word")
	}

	rc, err := part.Open()
	if err != nil {
		return nil, wrapf(err, "open document part of %s", path)
	}
	defer rc.Close()

	paragraphs, err := wordParagraphs(rc)
	if err != nil {
		return nil, wrapf(err, "parse document part of %s", path)
	}

	pages := paragraphsToPages(paragraphs, "word")
	return documentFromPages(pages, "utf-8"), nil
}

// wordParagraphs streams the document XML, collecting the text runs of each
// paragraph. Empty paragraphs are dropped.
func wordParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	var paragraphs []string
	var current strings.Builder
	inText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				current.WriteString("\t")
			case "br":
				current.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if text := strings.TrimSpace(current.String()); text != "" {
					paragraphs = append(paragraphs, text)
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	if text := strings.TrimSpace(current.String()); text != "" {
		paragraphs = append(paragraphs, text)
	}
	return paragraphs, nil
}

func findArchiveFile(archive *zip.Reader, name string) *zip.File {
	for _, f := range archive.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}
