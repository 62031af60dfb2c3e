package config

import (
	"github.com/ziadkadry99/sitefix/internal/fileops"
	"github.com/ziadkadry99/sitefix/internal/relocate"
)

// Config is the top-level sitefix configuration, corresponding to .sitefix.yml.
type Config struct {
	Root        string        `yaml:"root" koanf:"root"`
	Relocations []Relocation  `yaml:"relocations" koanf:"relocations"`
	Promote     PromoteConfig `yaml:"promote" koanf:"promote"`
	Revert      RevertConfig  `yaml:"revert" koanf:"revert"`
	Journal     JournalConfig `yaml:"journal" koanf:"journal"`
	Log         LogConfig     `yaml:"log" koanf:"log"`
}

// Relocation is a named pairwise block ordering rule for one file.
type Relocation struct {
	Name  string         `yaml:"name" koanf:"name"`
	File  string         `yaml:"file" koanf:"file"`
	A     relocate.Block `yaml:"a" koanf:"a"`
	B     relocate.Block `yaml:"b" koanf:"b"`
	Order relocate.Order `yaml:"order" koanf:"order"`
}

// PromoteConfig configures the promote and restore commands.
type PromoteConfig struct {
	From     string            `yaml:"from" koanf:"from"`
	To       string            `yaml:"to" koanf:"to"`
	LinkGlob string            `yaml:"link_glob" koanf:"link_glob"`
	Rewrites []fileops.Rewrite `yaml:"rewrites" koanf:"rewrites"`
}

// RevertConfig configures the revert command.
type RevertConfig struct {
	TemplatesDir      string            `yaml:"templates_dir" koanf:"templates_dir"`
	SkipTemplateDirs  []string          `yaml:"skip_template_dirs" koanf:"skip_template_dirs"`
	StaticAssetsDir   string            `yaml:"static_assets_dir" koanf:"static_assets_dir"`
	AssetsDir         string            `yaml:"assets_dir" koanf:"assets_dir"`
	StaticDir         string            `yaml:"static_dir" koanf:"static_dir"`
	ForceRemoveStatic bool              `yaml:"force_remove_static" koanf:"force_remove_static"`
	LinkGlob          string            `yaml:"link_glob" koanf:"link_glob"`
	Rewrites          []fileops.Rewrite `yaml:"rewrites" koanf:"rewrites"`
	BackendFiles      []string          `yaml:"backend_files" koanf:"backend_files"`
	BackendDirs       []string          `yaml:"backend_dirs" koanf:"backend_dirs"`
}

// JournalConfig controls the run journal.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled" koanf:"enabled"`
	Path    string `yaml:"path" koanf:"path"`
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"`
}
