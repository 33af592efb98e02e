package packs

import (
	"sort"
	"strings"

	"github.com/TouchController/E1epack/pkg/errors"
	"github.com/TouchController/E1epack/pkg/logging"
)

// NormalizePackName removes trailing slashes from a pack name.
// This handles cases where shell completion adds a trailing slash to directory names.
func NormalizePackName(name string) string {
	return strings.TrimRight(name, "/")
}

// Select returns the named packs together with every monorepo pack they
// depend on, directly or transitively, sorted by id. No names selects all.
//
// Dependencies that are not among all are skipped here and reported by the
// scheduler.
func Select(all []Pack, names []string) ([]Pack, error) {
	logger := logging.GetLogger("packs.selection")

	if len(names) == 0 {
		return all, nil
	}

	byID := make(map[string]Pack, len(all))
	for _, p := range all {
		byID[p.Manifest.ID] = p
	}

	var notFound []string
	selected := map[string]bool{}
	var stack []string
	for _, raw := range names {
		name := NormalizePackName(raw)
		if _, ok := byID[name]; !ok {
			notFound = append(notFound, name)
			continue
		}
		if !selected[name] {
			selected[name] = true
			stack = append(stack, name)
		}
	}

	if len(notFound) > 0 {
		return nil, errors.Newf(errors.ErrPackNotFound, "pack(s) not found: %s", strings.Join(notFound, ", ")).
			WithDetail("notFound", notFound).
			WithDetail("available", IDs(all))
	}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, dep := range byID[id].Manifest.Dependencies {
			if _, ok := byID[dep]; ok && !selected[dep] {
				selected[dep] = true
				stack = append(stack, dep)
			}
		}
	}

	out := make([]Pack, 0, len(selected))
	for id := range selected {
		out = append(out, byID[id])
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Manifest.ID < out[j].Manifest.ID
	})

	logger.Info().
		Int("selected", len(out)).
		Int("total", len(all)).
		Msg("Selected packs")

	return out, nil
}

// IDs returns the ids of packs, in order
func IDs(packs []Pack) []string {
	out := make([]string, len(packs))
	for i, p := range packs {
		out[i] = p.Manifest.ID
	}
	return out
}
