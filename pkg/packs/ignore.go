package packs

import (
	"os"
	"path"
	"path/filepath"

	"github.com/TouchController/E1epack/pkg/logging"
)

// IgnoreFile marks a pack directory, or a directory inside a pack, as excluded
const IgnoreFile = ".e1epackignore"

// HasIgnoreFile checks if a directory contains an ignore marker
func HasIgnoreFile(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, IgnoreFile))
	return err == nil
}

// ShouldIgnorePack reports whether a pack directory is excluded from builds
func ShouldIgnorePack(dir string) bool {
	if HasIgnoreFile(dir) {
		logger := logging.GetLogger("packs.ignore")
		logger.Debug().
			Str("pack", filepath.Base(dir)).
			Msg("Pack ignored due to .e1epackignore file")
		return true
	}
	return false
}

// matchesIgnore reports whether rel (slash separated) or its base name
// matches any of the patterns
func matchesIgnore(rel string, patterns []string) bool {
	base := path.Base(rel)
	for _, pattern := range patterns {
		if matched, _ := path.Match(pattern, base); matched {
			return true
		}
		if matched, _ := path.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}
