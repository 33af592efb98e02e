package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/TouchController/E1epack/pkg/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes environment overrides: E1EPACK_BUILD_JOBS sets build.jobs
const EnvPrefix = "E1EPACK_"

// ProjectConfigFiles are the file names looked up in the project root
var ProjectConfigFiles = []string{"e1epack.toml", ".e1epack.toml"}

// LoadOptions controls where configuration is read from
type LoadOptions struct {
	// Root is the project root; defaults to the working directory
	Root string
	// File is an explicit config file; when empty ProjectConfigFiles are tried in Root
	File string
	// Overrides are applied last, keyed by dotted path ("build.jobs")
	Overrides map[string]interface{}
}

// Load reads the layered configuration
func Load(opts LoadOptions) (*Config, error) {
	root := opts.Root
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "cannot resolve project root").
			WithDetail("path", root)
	}

	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. Project config
	source, err := projectConfigPath(absRoot, opts.File)
	if err != nil {
		return nil, err
	}
	if source != "" {
		if err := k.Load(file.Provider(source), toml.Parser()); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load project config").
				WithDetail("path", source)
		}
	}

	// 3. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}

	// 4. Explicit overrides (command-line flags)
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	cfg.Root = absRoot
	cfg.Source = source

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the embedded defaults rooted at root
func Default(root string) (*Config, error) {
	return Load(LoadOptions{Root: root, File: os.DevNull})
}

func projectConfigPath(root, explicit string) (string, error) {
	if explicit == os.DevNull {
		return "", nil
	}
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", errors.Wrap(err, errors.ErrConfigLoad, "config file not found").
				WithDetail("path", explicit)
		}
		return explicit, nil
	}
	for _, name := range ProjectConfigFiles {
		p := filepath.Join(root, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

// envKey maps E1EPACK_SECTION_SOME_KEY to section.some_key
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, key, found := strings.Cut(s, "_")
	if !found {
		return s
	}
	return section + "." + key
}
