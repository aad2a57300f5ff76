package scout

import (
	"os"
	"path/filepath"
)

// DefaultRoots returns the directories scanned when the config names none:
// the common document folders under the user's home, filtered to those that
// exist. On Windows the home drive root is considered too broad, so the
// same home subfolders are used everywhere.
func DefaultRoots() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	candidates := []string{
		filepath.Join(home, "Documents"),
		filepath.Join(home, "Desktop"),
		filepath.Join(home, "Downloads"),
		filepath.Join(home, "Notes"),
	}

	var roots []string
	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			roots = append(roots, dir)
		}
	}
	return roots
}
