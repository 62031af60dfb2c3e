package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/sitefix/internal/relocate"
)

// EnvPrefix prefixes environment overrides. A double underscore separates
// nested keys: SITEFIX_JOURNAL__ENABLED=false sets journal.enabled.
const EnvPrefix = "SITEFIX_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (SITEFIX_*). A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	// Lists given in the file replace the default lists instead of being
	// merged element by element.
	err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Result:           cfg,
			WeaklyTypedInput: true,
			ZeroFields:       true,
			TagName:          "koanf",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validLogFormats = map[string]bool{
	"console": true,
	"json":    true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("root is required")
	}

	seen := make(map[string]bool)
	for i, r := range c.Relocations {
		if r.Name == "" {
			return fmt.Errorf("relocations[%d]: name is required", i)
		}
		if seen[r.Name] {
			return fmt.Errorf("relocations[%d]: duplicate name %q", i, r.Name)
		}
		seen[r.Name] = true
		if err := r.Validate(); err != nil {
			return fmt.Errorf("relocation %q: %w", r.Name, err)
		}
	}

	if c.Promote.From == "" || c.Promote.To == "" {
		return fmt.Errorf("promote.from and promote.to are required")
	}
	if c.Promote.From == c.Promote.To {
		return fmt.Errorf("promote.from and promote.to must differ")
	}

	if c.Revert.StaticAssetsDir != "" && c.Revert.StaticAssetsDir == c.Revert.AssetsDir {
		return fmt.Errorf("revert.static_assets_dir and revert.assets_dir must differ")
	}

	if c.Journal.Enabled && c.Journal.Path == "" {
		return fmt.Errorf("journal.path is required when the journal is enabled")
	}

	if c.Log.Level != "" && !validLogLevels[c.Log.Level] {
		return fmt.Errorf("invalid log.level %q: must be one of debug, info, warn, error", c.Log.Level)
	}
	if c.Log.Format != "" && !validLogFormats[c.Log.Format] {
		return fmt.Errorf("invalid log.format %q: must be console or json", c.Log.Format)
	}

	return nil
}

// Validate checks a single relocation rule.
func (r Relocation) Validate() error {
	if r.File == "" {
		return fmt.Errorf("file is required")
	}
	if err := r.A.Validate(); err != nil {
		return fmt.Errorf("block a: %w", err)
	}
	if err := r.B.Validate(); err != nil {
		return fmt.Errorf("block b: %w", err)
	}
	if _, err := relocate.ParseOrder(string(r.Order)); err != nil {
		return err
	}
	return nil
}

// FindRelocation returns the rule with the given name.
func (c *Config) FindRelocation(name string) (Relocation, bool) {
	for _, r := range c.Relocations {
		if r.Name == name {
			return r, true
		}
	}
	return Relocation{}, false
}
