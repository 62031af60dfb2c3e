package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/ziadkadry99/sitefix/internal/relocate"
)

// detectHomepage returns the first of the usual homepage names found in root.
func detectHomepage(root string) string {
	for _, name := range []string{"index.html", "index.htm", "index-1.html"} {
		matches, _ := filepath.Glob(filepath.Join(root, name))
		if len(matches) > 0 {
			return name
		}
	}
	return "index.html"
}

// RunWizard asks for the mirror root and a first relocation rule, then saves
// the resulting Config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to sitefix! Let's configure your mirror.")
	fmt.Println()

	cfg := DefaultConfig()

	rootPrompt := promptui.Prompt{
		Label:   "Mirror root directory",
		Default: cfg.Root,
	}
	root, err := rootPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("root: %w", err)
	}
	cfg.Root = root

	def := DefaultRelocations[0]

	filePrompt := promptui.Prompt{
		Label:   "Page to reorder",
		Default: detectHomepage(root),
	}
	file, err := filePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("page: %w", err)
	}

	rule := Relocation{Name: def.Name, File: file}
	markers := []struct {
		label string
		def   relocate.Marker
		dst   *relocate.Marker
	}{
		{"Block A start marker", def.A.Start, &rule.A.Start},
		{"Block A end marker", def.A.End, &rule.A.End},
		{"Block B start marker", def.B.Start, &rule.B.Start},
		{"Block B end marker", def.B.End, &rule.B.End},
	}

	for _, m := range markers {
		p := promptui.Prompt{
			Label:   m.label,
			Default: string(m.def),
			Validate: func(s string) error {
				if s == "" {
					return relocate.ErrEmptyMarker
				}
				return nil
			},
		}
		v, err := p.Run()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.label, err)
		}
		*m.dst = relocate.Marker(v)
	}

	orderPrompt := promptui.Select{
		Label: "Desired order",
		Items: []string{
			string(relocate.BBeforeA) + ": move block B in front of block A",
			string(relocate.ABeforeB) + ": keep block A in front of block B",
		},
	}
	orderIdx, _, err := orderPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("order selection: %w", err)
	}
	rule.Order = []relocate.Order{relocate.BBeforeA, relocate.ABeforeB}[orderIdx]
	cfg.Relocations = []Relocation{rule}

	backendPrompt := promptui.Prompt{
		Label:   "Backend files to delete on revert (comma-separated)",
		Default: strings.Join(cfg.Revert.BackendFiles, ", "),
	}
	backendStr, err := backendPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("backend files: %w", err)
	}
	cfg.Revert.BackendFiles = splitAndTrim(backendStr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			token := trimSpace(s[start:i])
			if token != "" {
				result = append(result, token)
			}
			start = i + 1
		}
	}
	return result
}

func trimSpace(s string) string {
	i, j := 0, len(s)
	for i < j && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	for j > i && (s[j-1] == ' ' || s[j-1] == '\t') {
		j--
	}
	return s[i:j]
}
