package archive

import (
	"sort"
	"strings"

	"github.com/TouchController/E1epack/pkg/mapping"
)

// Wildcard matches exactly one path segment in a remap prefix
const Wildcard = "*"

// Remap moves every destination under From to the same place under To.
// Each Wildcard segment of From captures one segment, substituted into
// the matching Wildcard of To.
type Remap struct {
	From string
	To   string
}

// Apply returns key relocated by r, and whether r matched
func (r Remap) Apply(key string) (string, bool) {
	from := strings.Split(r.From, "/")
	parts := strings.Split(key, "/")
	// From ends in '/', so its last element is the empty remainder
	prefix := len(from) - 1
	if prefix <= 0 || len(parts) <= prefix {
		return key, false
	}

	var captured []string
	for i, seg := range from[:prefix] {
		switch {
		case seg == Wildcard && parts[i] != "":
			captured = append(captured, parts[i])
		case seg != parts[i]:
			return key, false
		}
	}

	to := r.To
	for _, c := range captured {
		to = strings.Replace(to, Wildcard, c, 1)
	}
	return to + strings.Join(parts[prefix:], "/"), true
}

// ApplyRemaps relocates key by the first matching remap
func ApplyRemaps(remaps []Remap, key string) string {
	for _, r := range remaps {
		if out, ok := r.Apply(key); ok {
			return out
		}
	}
	return key
}

// Destinations returns the archive paths of every mapping key after remaps,
// sorted and without duplicates.
func Destinations(m *mapping.Mapping, remaps []Remap) []string {
	seen := make(map[string]struct{}, m.Len())
	for _, key := range m.Keys() {
		seen[ApplyRemaps(remaps, key)] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
