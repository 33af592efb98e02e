package closure

import (
	"sort"

	"github.com/TouchController/E1epack/pkg/ids"
)

// Set is a set of pack ids
type Set map[ids.PackID]struct{}

// NewSet returns a set holding the given ids
func NewSet(members ...ids.PackID) Set {
	s := make(Set, len(members))
	s.Add(members...)
	return s
}

// Has reports whether id is a member
func (s Set) Has(id ids.PackID) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of members
func (s Set) Len() int {
	return len(s)
}

// Add inserts ids and returns how many were new
func (s Set) Add(toAdd ...ids.PackID) int {
	origLen := len(s)
	for _, id := range toAdd {
		s[id] = struct{}{}
	}
	return len(s) - origLen
}

// Union inserts every member of other
func (s Set) Union(other Set) {
	for id := range other {
		s[id] = struct{}{}
	}
}

// Clone returns an independent copy
func (s Set) Clone() Set {
	c := make(Set, len(s))
	c.Union(s)
	return c
}

// Equal reports whether both sets hold the same ids
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// Sorted returns the members in ascending order
func (s Set) Sorted() []ids.PackID {
	out := make([]ids.PackID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Strings returns the members in ascending order as plain strings
func (s Set) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, id := range sorted {
		out[i] = string(id)
	}
	return out
}

// FromStrings builds a set from plain strings
func FromStrings(members []string) Set {
	s := make(Set, len(members))
	for _, m := range members {
		s[ids.PackID(m)] = struct{}{}
	}
	return s
}
