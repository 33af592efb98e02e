package worker

import (
	"sort"
	"strings"
)

const functionExt = ".mcfunction"

// Index is the set of callable function ids, e.g. "core:util/tick"
type Index struct {
	ids map[string]struct{}
}

// NewIndex builds an index from destination keys. Keys that are not
// function files are ignored.
func NewIndex(keys []string) *Index {
	idx := &Index{ids: make(map[string]struct{}, len(keys))}
	for _, key := range keys {
		if id, ok := FunctionID(key); ok {
			idx.ids[id] = struct{}{}
		}
	}
	return idx
}

// Has reports whether id is callable
func (i *Index) Has(id string) bool {
	if i == nil {
		return false
	}
	_, ok := i.ids[id]
	return ok
}

// Len returns the number of function ids
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.ids)
}

// IDs returns all function ids in ascending order
func (i *Index) IDs() []string {
	if i == nil {
		return nil
	}
	out := make([]string, 0, len(i.ids))
	for id := range i.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// functionKey is a destination key split into its parts:
// data/<namespace>/<root>/<path>.mcfunction
type functionKey struct {
	namespace string
	root      string
	path      string
}

func parseFunctionKey(key string) (functionKey, bool) {
	if !strings.HasPrefix(key, "data/") || !strings.HasSuffix(key, functionExt) {
		return functionKey{}, false
	}
	parts := strings.SplitN(strings.TrimPrefix(key, "data/"), "/", 3)
	if len(parts) != 3 || parts[0] == "" {
		return functionKey{}, false
	}
	if parts[1] != "function" && parts[1] != "functions" {
		return functionKey{}, false
	}
	p := strings.TrimSuffix(parts[2], functionExt)
	if p == "" {
		return functionKey{}, false
	}
	return functionKey{namespace: parts[0], root: parts[1], path: p}, true
}

// FunctionID returns the callable id of a function file key:
// data/core/functions/util/tick.mcfunction is "core:util/tick".
func FunctionID(key string) (string, bool) {
	fk, ok := parseFunctionKey(key)
	if !ok {
		return "", false
	}
	return fk.namespace + ":" + fk.path, true
}
