package fileops

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Rewrite is a literal substring replacement.
type Rewrite struct {
	Old string `yaml:"old" koanf:"old"`
	New string `yaml:"new" koanf:"new"`
}

// ReplaceAll applies rules in order to s and returns the result and the
// total number of replacements made.
func ReplaceAll(s string, rules []Rewrite) (string, int) {
	total := 0
	for _, r := range rules {
		if r.Old == "" {
			continue
		}
		n := strings.Count(s, r.Old)
		if n == 0 {
			continue
		}
		s = strings.ReplaceAll(s, r.Old, r.New)
		total += n
	}
	return s, total
}

// ReplaceInFile applies rules to the file at path. The file is rewritten
// only when its content changed and dryRun is false. It returns the number
// of replacements.
func ReplaceInFile(path string, rules []Rewrite, dryRun bool) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%s: %w", path, ErrMissing)
		}
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	out, n := ReplaceAll(string(data), rules)
	if out == string(data) || dryRun {
		return n, nil
	}
	if err := WriteFile(path, []byte(out)); err != nil {
		return 0, err
	}
	return n, nil
}
