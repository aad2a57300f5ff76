package scout

import (
	"path/filepath"
	"strings"

	"github.com/notefern/cardindex/pkg/core"
)

// kindByExtension maps file extensions to document kinds. Extensions not
// listed here are not indexed.
var kindByExtension = map[string]core.DocumentKind{
	".pdf": core.KindPDF,

	".doc":  core.KindWord,
	".docx": core.KindWord,
	".rtf":  core.KindWord,

	".ppt":  core.KindPowerPoint,
	".pptx": core.KindPowerPoint,

	".xls":  core.KindExcel,
	".xlsx": core.KindExcel,
	".csv":  core.KindExcel,

	".jpg":  core.KindImage,
	".jpeg": core.KindImage,
	".png":  core.KindImage,
	".gif":  core.KindImage,
	".webp": core.KindImage,
	".bmp":  core.KindImage,

	".txt":      core.KindText,
	".md":       core.KindText,
	".markdown": core.KindText,
	".org":      core.KindText,
	".log":      core.KindText,
	".json":     core.KindText,
	".yaml":     core.KindText,
	".yml":      core.KindText,
	".toml":     core.KindText,
	".xml":      core.KindText,
	".html":     core.KindText,
	".htm":      core.KindText,
	".epub":     core.KindText,
}

// Classify returns the document kind for a path and whether the file is
// worth indexing at all.
func Classify(path string) (core.DocumentKind, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	kind, ok := kindByExtension[ext]
	return kind, ok
}
