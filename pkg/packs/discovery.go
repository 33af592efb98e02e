package packs

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/TouchController/E1epack/pkg/errors"
	"github.com/TouchController/E1epack/pkg/logging"
)

// Discover loads every pack directly under packsDir, sorted by id.
//
// Hidden directories, directories without a manifest and directories
// holding an ignore marker are skipped. Manifests are decoded but not
// validated; see ValidateAll.
func Discover(packsDir string) ([]Pack, error) {
	logger := logging.GetLogger("packs.discovery")
	logger.Trace().Str("root", packsDir).Msg("Discovering packs")

	info, err := os.Stat(packsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.ErrNotFound, "packs directory does not exist").
				WithDetail("path", packsDir)
		}
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot access packs directory").
			WithDetail("path", packsDir)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrInvalidInput, "packs directory is not a directory").
			WithDetail("path", packsDir)
	}

	entries, err := os.ReadDir(packsDir)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot read packs directory").
			WithDetail("path", packsDir)
	}

	var packs []Pack
	byID := map[string]string{}
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		dir := filepath.Join(packsDir, name)
		manifestPath := FindManifest(dir)
		if manifestPath == "" {
			logger.Trace().Str("path", dir).Msg("Skipping directory without manifest")
			continue
		}
		if ShouldIgnorePack(dir) {
			continue
		}

		manifest, err := LoadManifest(manifestPath)
		if err != nil {
			return nil, err
		}
		if prev, dup := byID[manifest.ID]; dup {
			return nil, errors.Newf(errors.ErrPackInvalid, "pack id %q is declared by both %s and %s", manifest.ID, prev, dir).
				WithDetail("pack", manifest.ID).
				WithDetail("first", prev).
				WithDetail("second", dir)
		}
		byID[manifest.ID] = dir

		packs = append(packs, Pack{Dir: dir, ManifestPath: manifestPath, Manifest: *manifest})
		logger.Trace().
			Str("pack", manifest.ID).
			Str("path", dir).
			Msg("Loaded pack")
	}

	sort.Slice(packs, func(i, j int) bool {
		return packs[i].Manifest.ID < packs[j].Manifest.ID
	})

	logger.Info().Int("count", len(packs)).Msg("Discovered packs")
	return packs, nil
}

// ValidateAll validates every manifest, failing on the first malformed one
func ValidateAll(packs []Pack) error {
	for _, p := range packs {
		if err := p.Manifest.Validate(); err != nil {
			if e, ok := err.(*errors.Error); ok {
				e.WithDetail("manifest", p.ManifestPath)
			}
			return err
		}
	}
	return nil
}
