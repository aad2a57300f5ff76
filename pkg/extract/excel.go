package extract

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/notefern/cardindex/pkg/core"
)

// extractExcel flattens each worksheet of an .xlsx archive into lines of
// tab-separated cell values, one page per sheet. Shared strings are resolved
// through the workbook's string table.
func (s *Service) extractExcel(path string) (*core.Document, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		logger.Debugf("excel %s is not an archive, using generic extraction: %v", path, err)
		return s.extractGeneric(path, "sheet")
	}
	defer archive.Close()

	shared, err := sharedStrings(&archive.Reader)
	if err != nil {
		return nil, wrapf(err, "parse shared strings of %s", path)
	}

	sheets := sheetFiles(&archive.Reader)
	if len(sheets) == 0 {
		return s.extractGeneric(path, "sheet")
	}

	pages := make([]core.Page, 0, len(sheets))
	for i, sheet := range sheets {
		text, err := sheetText(sheet, shared)
		if err != nil {
			logger.Debugf("sheet %s of %s unreadable: %v", sheet.Name, path, err)
			text = ""
		}
		pages = append(pages, core.Page{
			PageNumber: i + 1,
			Content:    text,
			PageType:   "sheet",
		})
	}
	return documentFromPages(pages, "utf-8"), nil
}

// sharedStrings parses xl/sharedStrings.xml into an index-addressable table.
// A workbook with no shared strings is valid.
func sharedStrings(archive *zip.Reader) ([]string, error) {
	part := findArchiveFile(archive, "xl/sharedStrings.xml")
	if part == nil {
		return nil, nil
	}
	rc, err := part.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var table []string
	var current strings.Builder
	depth := 0
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
			case "si":
				depth = 1
				current.Reset()
			case "t":
				inText = depth == 1
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "si":
				depth = 0
				table = append(table, current.String())
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return table, nil
}

func sheetFiles(archive *zip.Reader) []*zip.File {
	var sheets []*zip.File
	for _, f := range archive.File {
		if strings.HasPrefix(f.Name, "xl/worksheets/sheet") && strings.HasSuffix(f.Name, ".xml") {
			sheets = append(sheets, f)
		}
	}
	sort.Slice(sheets, func(i, j int) bool { return sheets[i].Name < sheets[j].Name })
	return sheets
}

// sheetText streams a worksheet's XML, emitting one line per row with cells
// joined by tabs. Rows with no textual content are dropped.
func sheetText(f *zip.File, shared []string) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var lines []string
	var row []string
	var current strings.Builder
	cellType := ""
	inValue := false

	flushCell := func() {
		value := current.String()
		current.Reset()
		if cellType == "s" {
			idx, err := strconv.Atoi(strings.TrimSpace(value))
			if err == nil && idx >= 0 && idx < len(shared) {
				value = shared[idx]
			} else {
				value = ""
			}
		}
		row = append(row, strings.TrimSpace(value))
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "row":
				row = row[:0]
			case "c":
				cellType = ""
				current.Reset()
				for _, attr := range t.Attr {
					if attr.Name.Local == "t" {
						cellType = attr.Value
					}
				}
			case "v":
				inValue = true
			case "t":
				// inline strings carry text directly
				if cellType == "inlineStr" {
					inValue = true
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "c":
				flushCell()
			case "v", "t":
				inValue = false
			case "row":
				line := strings.TrimRight(strings.Join(row, "\t"), "\t")
				if strings.TrimSpace(line) != "" {
					lines = append(lines, line)
				}
			}
		case xml.CharData:
			if inValue {
				current.Write(t)
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}
