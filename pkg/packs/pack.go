package packs

import (
	"path/filepath"

	"github.com/TouchController/E1epack/pkg/ids"
)

// Pack is a discovered pack directory and its manifest
type Pack struct {
	// Dir is the absolute path to the pack directory
	Dir string
	// ManifestPath is the manifest file the pack was loaded from
	ManifestPath string
	Manifest     Manifest
}

// ID returns the pack id declared in the manifest
func (p Pack) ID() ids.PackID {
	return ids.PackID(p.Manifest.ID)
}

// Version returns the declared version
func (p Pack) Version() string {
	return p.Manifest.Version
}

// Dependencies returns the ids of the monorepo packs this pack depends on
func (p Pack) Dependencies() []ids.PackID {
	deps := make([]ids.PackID, len(p.Manifest.Dependencies))
	for i, d := range p.Manifest.Dependencies {
		deps[i] = ids.PackID(d)
	}
	return deps
}

// PrebuiltPath resolves a prebuilt dependency path against the pack directory
func (p Pack) PrebuiltPath(pb Prebuilt) string {
	if filepath.IsAbs(pb.Path) {
		return pb.Path
	}
	return filepath.Join(p.Dir, filepath.FromSlash(pb.Path))
}
