// Package graph orders packs so that every pack is scheduled after all of
// its dependencies.
package graph

import (
	"sort"

	"github.com/TouchController/E1epack/pkg/errors"
	"github.com/TouchController/E1epack/pkg/ids"
)

// Levels groups nodes into dependency levels: level 0 holds packs without
// dependencies and every pack sits one level above its deepest dependency.
// Packs within a level do not depend on each other and may be built
// concurrently. Each level is sorted.
//
// A dependency that is not a node is reported as PACK_NOT_FOUND. Nodes
// that can never be scheduled form a cycle, reported as CYCLE_DETECTED for
// the lowest stuck pack and its lowest stuck dependency. Self edges are
// ignored here; the closure resolver reports them.
func Levels(nodes map[ids.PackID][]ids.PackID) ([][]ids.PackID, error) {
	names := make([]ids.PackID, 0, len(nodes))
	for id := range nodes {
		names = append(names, id)
	}
	sortIDs(names)

	pending := make(map[ids.PackID]map[ids.PackID]bool, len(nodes))
	for _, id := range names {
		deps := map[ids.PackID]bool{}
		for _, dep := range nodes[id] {
			if dep == id {
				continue
			}
			if _, ok := nodes[dep]; !ok {
				return nil, errors.Newf(errors.ErrPackNotFound, "pack %q depends on unknown pack %q", id, dep).
					WithDetail("pack", string(id)).
					WithDetail("dependency", string(dep))
			}
			deps[dep] = true
		}
		pending[id] = deps
	}

	var levels [][]ids.PackID
	for len(pending) > 0 {
		var ready []ids.PackID
		for _, id := range names {
			if deps, ok := pending[id]; ok && len(deps) == 0 {
				ready = append(ready, id)
			}
		}
		if len(ready) == 0 {
			return nil, stuck(names, pending)
		}
		for _, id := range ready {
			delete(pending, id)
		}
		for _, deps := range pending {
			for _, id := range ready {
				delete(deps, id)
			}
		}
		levels = append(levels, ready)
	}
	return levels, nil
}

// Flatten returns the levels as one dependency-ordered slice
func Flatten(levels [][]ids.PackID) []ids.PackID {
	var out []ids.PackID
	for _, level := range levels {
		out = append(out, level...)
	}
	return out
}

func stuck(names []ids.PackID, pending map[ids.PackID]map[ids.PackID]bool) error {
	for _, id := range names {
		deps, ok := pending[id]
		if !ok {
			continue
		}
		waiting := make([]ids.PackID, 0, len(deps))
		for dep := range deps {
			waiting = append(waiting, dep)
		}
		sortIDs(waiting)
		dep := waiting[0]
		return errors.Newf(errors.ErrCycleDetected, "dependency cycle between pack %q and %q", id, dep).
			WithDetail("pack", string(id)).
			WithDetail("dependency", string(dep))
	}
	return errors.New(errors.ErrInternal, "scheduler stalled without pending packs")
}

func sortIDs(s []ids.PackID) {
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
}
