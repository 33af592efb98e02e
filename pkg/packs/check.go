package packs

import (
	"os"
	"path/filepath"

	"github.com/TouchController/E1epack/pkg/errors"
	"github.com/TouchController/E1epack/pkg/minify"
)

// CheckJSON parses every JSON resource among the pack's source files and
// returns the first malformed one, in source order
func (p Pack) CheckJSON(ignore []string) error {
	files, err := p.SourceFiles(ignore)
	if err != nil {
		return err
	}
	for _, rel := range files {
		if !minify.Applies(rel) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(p.Dir, filepath.FromSlash(rel)))
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", rel).
				WithDetail("pack", p.Manifest.ID).
				WithDetail("source", rel)
		}
		if err := minify.Check(data); err != nil {
			return errors.Wrapf(err, errors.ErrInvalidInput, "pack %s: malformed JSON in %s", p.Manifest.ID, rel).
				WithDetail("pack", p.Manifest.ID).
				WithDetail("source", rel)
		}
	}
	return nil
}
