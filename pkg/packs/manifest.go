package packs

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/TouchController/E1epack/pkg/errors"
	"github.com/TouchController/E1epack/pkg/ids"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ManifestFiles are the accepted manifest names, in lookup order
var ManifestFiles = []string{"pack.toml", "pack.yaml", "pack.yml"}

// Prebuilt declares a dependency supplied already built, as a directory or
// a zip archive.
type Prebuilt struct {
	ID   string `toml:"id" yaml:"id"`
	Path string `toml:"path" yaml:"path"`
	// Closure is nil when the manifest does not declare one
	Closure []string `toml:"closure" yaml:"closure"`
}

// Manifest is the decoded pack manifest
type Manifest struct {
	ID           string     `toml:"id" yaml:"id"`
	Version      string     `toml:"version" yaml:"version"`
	Description  string     `toml:"description" yaml:"description"`
	Dependencies []string   `toml:"dependencies" yaml:"dependencies"`
	Prebuilt     []Prebuilt `toml:"prebuilt" yaml:"prebuilt"`
}

// FindManifest returns the manifest path in dir, or "" when there is none
func FindManifest(dir string) string {
	for _, name := range ManifestFiles {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p
		}
	}
	return ""
}

// LoadManifest reads and decodes the manifest at path
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrPackAccess, "cannot read pack manifest").
			WithDetail("path", path)
	}

	var m Manifest
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&m); err != nil {
			return nil, errors.Wrap(err, errors.ErrPackInvalid, "cannot parse pack manifest").
				WithDetail("path", path)
		}
	default:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil {
			return nil, errors.Wrap(err, errors.ErrPackInvalid, "cannot parse pack manifest").
				WithDetail("path", path)
		}
	}
	return &m, nil
}

// Validate checks every identifier the manifest declares
func (m *Manifest) Validate() error {
	if err := ids.ValidatePackID(m.ID); err != nil {
		return err
	}
	if err := ids.ValidateVersion(m.Version); err != nil {
		return withPack(err, m.ID)
	}

	seen := map[string]bool{}
	declare := func(dep string) error {
		if err := ids.ValidatePackID(dep); err != nil {
			return withPack(err, m.ID)
		}
		if seen[dep] {
			return errors.Newf(errors.ErrPackInvalid, "pack %q declares dependency %q more than once", m.ID, dep).
				WithDetail("pack", m.ID).
				WithDetail("dependency", dep)
		}
		seen[dep] = true
		return nil
	}

	for _, dep := range m.Dependencies {
		if err := declare(dep); err != nil {
			return err
		}
	}
	for _, pb := range m.Prebuilt {
		if err := declare(pb.ID); err != nil {
			return err
		}
		if pb.Path == "" {
			return errors.Newf(errors.ErrPackInvalid, "prebuilt dependency %q of pack %q has no path", pb.ID, m.ID).
				WithDetail("pack", m.ID).
				WithDetail("dependency", pb.ID)
		}
		for _, id := range pb.Closure {
			if err := ids.ValidatePackID(id); err != nil {
				return withPack(err, m.ID)
			}
		}
	}
	return nil
}

func withPack(err error, pack string) error {
	if e, ok := err.(*errors.Error); ok {
		return e.WithDetail("pack", pack)
	}
	return err
}
