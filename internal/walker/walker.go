package walker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// FileInfo holds metadata about a single file discovered during traversal.
type FileInfo struct {
	Path    string // Absolute path on disk.
	RelPath string // Slash-separated path relative to the root.
}

// Config controls the behaviour of Walk.
type Config struct {
	RootDir  string
	Include  []string // Glob patterns; only matching files are returned.
	SkipDirs []string // Directory names whose subtrees are pruned.
}

// Walk traverses the tree rooted at cfg.RootDir and returns every file or
// symlink matching Include, in lexical order. Any entry that cannot be read
// aborts the walk, so a caller never sees a partial listing.
func Walk(cfg Config) ([]FileInfo, error) {
	root, err := filepath.Abs(cfg.RootDir)
	if err != nil {
		return nil, fmt.Errorf("walker: resolve root: %w", err)
	}
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("walker: %w", err)
	}

	var files []FileInfo

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && shouldSkipDir(d.Name(), cfg.SkipDirs) {
				return filepath.SkipDir
			}
			return nil
		}
		if !MatchesInclude(relPath, cfg.Include) {
			return nil
		}

		files = append(files, FileInfo{
			Path:    path,
			RelPath: filepath.ToSlash(relPath),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walker: traversal: %w", err)
	}

	return files, nil
}

// HashFile computes the SHA-256 digest of the given file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SameContent reports whether two files have identical content.
func SameContent(a, b string) (bool, error) {
	ha, err := HashFile(a)
	if err != nil {
		return false, err
	}
	hb, err := HashFile(b)
	if err != nil {
		return false, err
	}
	return ha == hb, nil
}
