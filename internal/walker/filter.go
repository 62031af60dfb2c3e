package walker

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// shouldSkipDir checks whether a directory name matches a skip entry.
func shouldSkipDir(name string, skip []string) bool {
	for _, excl := range skip {
		if name == excl {
			return true
		}
	}
	return false
}

// MatchesInclude returns true if the given relative path matches any of the
// include patterns. If patterns is empty, everything is included. A pattern
// without a slash is also tried against the base name.
func MatchesInclude(relPath string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	normalized := filepath.ToSlash(relPath)
	base := filepath.Base(normalized)

	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if matched, err := doublestar.Match(pattern, normalized); err == nil && matched {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if matched, err := doublestar.Match(pattern, base); err == nil && matched {
				return true
			}
		}
	}
	return false
}
