package packs

import (
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/TouchController/E1epack/pkg/errors"
	"github.com/TouchController/E1epack/pkg/ids"
)

// SourceFiles returns the pack's content files as slash-separated paths
// relative to the pack directory, sorted.
//
// The manifest, ignore markers, directories holding an ignore marker and
// anything matching an ignore pattern are left out; only regular files
// are returned.
func (p Pack) SourceFiles(ignore []string) ([]string, error) {
	manifests := map[string]bool{}
	for _, name := range ManifestFiles {
		manifests[name] = true
	}

	var files []string
	err := filepath.WalkDir(p.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == p.Dir {
			return nil
		}
		rel, err := filepath.Rel(p.Dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if matchesIgnore(rel, ignore) || HasIgnoreFile(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || d.Name() == IgnoreFile {
			return nil
		}
		if manifests[rel] || matchesIgnore(rel, ignore) {
			return nil
		}
		if err := ids.ValidateSourcePath(rel); err != nil {
			if e, ok := err.(*errors.Error); ok {
				e.WithDetail("pack", p.Manifest.ID)
			}
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		if errors.GetErrorCode(err) != errors.ErrUnknown {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot list pack files").
			WithDetail("pack", p.Manifest.ID).
			WithDetail("path", p.Dir)
	}

	sort.Strings(files)
	return files, nil
}
