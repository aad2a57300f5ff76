package scout

import (
	"path/filepath"
	"strings"
)

// builtinExcludedDirs are directory names skipped on every platform:
// version control, build caches, and dependency trees.
var builtinExcludedDirs = map[string]bool{
	".git":          true,
	".svn":          true,
	".hg":           true,
	"node_modules":  true,
	"bower_components": true,
	"__pycache__":   true,
	".venv":         true,
	"venv":          true,
	".tox":          true,
	"target":        true,
	"build":         true,
	"dist":          true,
	"out":           true,
	".gradle":       true,
	".idea":         true,
	".vscode":       true,
	".cache":        true,
	".npm":          true,
	".cargo":        true,
	".rustup":       true,
	".m2":           true,
	"vendor":        true,
	".Trash":        true,
	"$RECYCLE.BIN":  true,
	"System Volume Information": true,
	"lost+found":    true,
	"proc":          true,
	"sys":           true,
	"dev":           true,
}

// excludedPathFragments are platform system locations skipped when a walk
// wanders into them.
var excludedPathFragments = []string{
	"/Library/Caches",
	"/Library/Application Support",
	"/AppData/Local/Temp",
	"/AppData/Local/Packages",
	"/Windows/",
	"/Program Files",
	"/.local/share/Trash",
}

// Excluder decides which directories and files a walk skips.
type Excluder struct {
	patterns []string
}

// NewExcluder builds an excluder with extra user glob patterns on top of
// the built-in list. Patterns match against the base name.
func NewExcluder(patterns []string) *Excluder {
	return &Excluder{patterns: patterns}
}

// SkipDir reports whether an entire directory should be pruned.
func (e *Excluder) SkipDir(path string) bool {
	name := filepath.Base(path)
	if builtinExcludedDirs[name] {
		return true
	}
	if strings.HasPrefix(name, ".") && name != "." {
		return true
	}
	normalized := filepath.ToSlash(path)
	for _, fragment := range excludedPathFragments {
		if strings.Contains(normalized, fragment) {
			return true
		}
	}
	return e.matchesPattern(name)
}

// SkipFile reports whether a single file should be ignored.
func (e *Excluder) SkipFile(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
		return true
	}
	return e.matchesPattern(name)
}

func (e *Excluder) matchesPattern(name string) bool {
	for _, pattern := range e.patterns {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
