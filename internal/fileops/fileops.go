// Package fileops holds the whole-file filesystem operations the maintenance
// commands are built from. Writes go through a temporary file in the target
// directory and a rename, so readers never see a partially written file.
package fileops

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrMissing is returned when the path an operation acts on does not exist.
var ErrMissing = errors.New("path does not exist")

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ReadLines reads the whole file and splits it into lines. Each line keeps
// its terminator, so joining the result reproduces the file exactly.
func ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrMissing)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return SplitLines(string(data)), nil
}

// SplitLines splits s after every newline. A trailing line without a
// terminator is kept as the last element.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// WriteLines replaces the content of path with the concatenated lines.
func WriteLines(path string, lines []string) error {
	return WriteFile(path, []byte(strings.Join(lines, "")))
}

// WriteFile atomically replaces the content of path. An existing file keeps
// its permission bits.
func WriteFile(path string, data []byte) error {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file for %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("setting mode on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// CopyFile overwrites dst with the full content of src.
func CopyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", src, ErrMissing)
		}
		return fmt.Errorf("reading %s: %w", src, err)
	}
	return WriteFile(dst, data)
}

// Move renames src to dst. When a rename is not possible (for example across
// filesystems) the tree is copied and the source removed.
func Move(src, dst string) error {
	if !Exists(src) {
		return fmt.Errorf("%s: %w", src, ErrMissing)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating parent of %s: %w", dst, err)
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyTree(src, dst); err != nil {
		return fmt.Errorf("moving %s to %s: %w", src, dst, err)
	}
	return os.RemoveAll(src)
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		out := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(out, 0o755)
		}
		return copyRegular(p, out)
	})
}

func copyRegular(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// Remove deletes a single file or empty directory.
func Remove(path string) error {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, ErrMissing)
		}
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}

// RemoveTree deletes path and everything below it.
func RemoveTree(path string) error {
	if !Exists(path) {
		return fmt.Errorf("%s: %w", path, ErrMissing)
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}

// Glob returns the paths under root matching a doublestar pattern, sorted.
// The pattern is relative to root and uses forward slashes.
func Glob(root, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(root), filepath.ToSlash(pattern), doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = filepath.Join(root, filepath.FromSlash(m))
	}
	sort.Strings(paths)
	return paths, nil
}
