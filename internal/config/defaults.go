package config

import (
	"github.com/ziadkadry99/sitefix/internal/fileops"
	"github.com/ziadkadry99/sitefix/internal/relocate"
)

// DefaultFile is the config file looked up when --config is not given.
const DefaultFile = ".sitefix.yml"

// DefaultJournalPath is relative to the mirror root.
const DefaultJournalPath = ".sitefix/journal.db"

// DefaultRelocations reorders the etrade template homepage so the
// testimonials come before the most sold products.
var DefaultRelocations = []Relocation{
	{
		Name: "testimonials-first",
		File: "index.html",
		A: relocate.Block{
			Start: "<!-- Start Most Sold Product Area",
			End:   "<!-- End Most Sold Product Area",
		},
		B: relocate.Block{
			Start: "<!-- Start Testimonila Area",
			End:   "<!-- End Testimonila Area",
		},
		Order: relocate.BBeforeA,
	},
}

// DefaultBackendFiles are the files left behind by the dynamic-app version
// of the site.
var DefaultBackendFiles = []string{
	"app.py",
	"models.py",
	"init_db.py",
	"init_db_v2.py",
	"digiflow_v2.db",
	"etrade.db",
	"convert_structure.py",
}

// DefaultBackendDirs are removed with everything below them.
var DefaultBackendDirs = []string{
	"__pycache__",
	"migrations",
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Root:        ".",
		Relocations: append([]Relocation(nil), DefaultRelocations...),
		Promote: PromoteConfig{
			From:     "index-1.html",
			To:       "index.html",
			LinkGlob: "*.html",
			Rewrites: []fileops.Rewrite{
				{Old: `href="index-1.html"`, New: `href="index.html"`},
			},
		},
		Revert: RevertConfig{
			TemplatesDir:     "templates",
			SkipTemplateDirs: []string{"admin"},
			StaticAssetsDir:  "static/assets",
			AssetsDir:        "assets",
			StaticDir:        "static",
			LinkGlob:         "*.html",
			Rewrites: []fileops.Rewrite{
				{Old: `src="/static/assets/`, New: `src="assets/`},
				{Old: `href="/static/assets/`, New: `href="assets/`},
			},
			BackendFiles: append([]string(nil), DefaultBackendFiles...),
			BackendDirs:  append([]string(nil), DefaultBackendDirs...),
		},
		Journal: JournalConfig{
			Enabled: true,
			Path:    DefaultJournalPath,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
