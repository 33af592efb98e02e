package mapping

import (
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/TouchController/E1epack/pkg/errors"
	"github.com/TouchController/E1epack/pkg/ids"
	"github.com/TouchController/E1epack/pkg/logging"
)

// ProcessedMarker is appended to artifact names when original names are not kept
const ProcessedMarker = ".out"

const (
	legacyDir    = "function"
	canonicalDir = "functions"
)

// Handle is one processed-file artifact
type Handle struct {
	// Source is the pack-relative path the artifact is produced from
	Source string
	// Name is the artifact's file name
	Name string
}

// Path returns where the artifact lives under dir
func (h *Handle) Path(dir string) string {
	return filepath.Join(dir, filepath.FromSlash(path.Dir(h.Source)), h.Name)
}

// Mapping maps destination keys to artifacts
type Mapping struct {
	keys    map[string]*Handle
	handles []*Handle
	aliased int
}

// Lookup returns the handle registered under key
func (m *Mapping) Lookup(key string) (*Handle, bool) {
	h, ok := m.keys[key]
	return h, ok
}

// Len returns the number of keys
func (m *Mapping) Len() int {
	return len(m.keys)
}

// Aliased returns how many legacy alias keys were registered
func (m *Mapping) Aliased() int {
	return m.aliased
}

// Keys returns all keys in ascending order
func (m *Mapping) Keys() []string {
	keys := make([]string, 0, len(m.keys))
	for k := range m.keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Handles returns every handle in source order
func (m *Mapping) Handles() []*Handle {
	out := make([]*Handle, len(m.handles))
	copy(out, m.handles)
	return out
}

// KeysFor returns the keys pointing at h, in ascending order
func (m *Mapping) KeysFor(h *Handle) []string {
	var keys []string
	for k, v := range m.keys {
		if v == h {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Groups returns, for each source path, the keys registered for it
func (m *Mapping) Groups() map[string][]string {
	groups := make(map[string][]string, len(m.handles))
	for _, h := range m.handles {
		groups[h.Source] = m.KeysFor(h)
	}
	return groups
}

func (m *Mapping) register(key string, h *Handle) error {
	if prev, ok := m.keys[key]; ok {
		return errors.Newf(errors.ErrDestinationCollision, "destination %q is claimed by %q and %q", key, prev.Source, h.Source).
			WithDetail("destination", key).
			WithDetail("first", prev.Source).
			WithDetail("second", h.Source)
	}
	m.keys[key] = h
	return nil
}

func functionPrefix(packID ids.PackID, dir string) string {
	return "data/" + string(packID) + "/" + dir + "/"
}

// UsesCanonicalLayout reports whether any source path lives under the
// canonical data/<packID>/functions/ directory.
func UsesCanonicalLayout(sourcePaths []string, packID ids.PackID) bool {
	prefix := functionPrefix(packID, canonicalDir)
	for _, p := range sourcePaths {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// Build maps every source path to a fresh Handle and, for packs with no
// file in the canonical function directory, aliases each legacy
// data/<packID>/function/ path to its canonical spelling.
//
// An error is only returned for a key claimed twice, which well-formed
// input (unique source paths) never produces.
func Build(packID ids.PackID, sourcePaths []string, keepOriginalName bool) (*Mapping, error) {
	m := &Mapping{
		keys:    make(map[string]*Handle, len(sourcePaths)),
		handles: make([]*Handle, 0, len(sourcePaths)),
	}

	for _, p := range sourcePaths {
		name := path.Base(p)
		if !keepOriginalName {
			name += ProcessedMarker
		}
		h := &Handle{Source: p, Name: name}
		if err := m.register(p, h); err != nil {
			return nil, err
		}
		m.handles = append(m.handles, h)
	}

	legacy := functionPrefix(packID, legacyDir)
	canonical := functionPrefix(packID, canonicalDir)
	hasCanonical := UsesCanonicalLayout(sourcePaths, packID)
	mixed := false

	for _, h := range m.handles {
		if !strings.Contains(h.Source, legacy) {
			continue
		}
		if hasCanonical {
			mixed = true
			continue
		}
		alias := strings.Replace(h.Source, legacy, canonical, 1)
		if err := m.register(alias, h); err != nil {
			return nil, err
		}
		m.aliased++
	}

	if mixed {
		logger := logging.GetLogger("mapping")
		logger.Warn().
			Str("pack", string(packID)).
			Msg("Pack mixes function/ and functions/ directories; legacy paths are not aliased")
	}

	return m, nil
}
