package ui

import (
	"github.com/TouchController/E1epack/pkg/build"
)

// Listing describes one planned pack
type Listing struct {
	ID           string   `json:"id"`
	Version      string   `json:"version"`
	Description  string   `json:"description,omitempty"`
	Dependencies []string `json:"dependencies"`
	Prebuilt     []string `json:"prebuilt,omitempty"`
	Closure      []string `json:"closure"`
	Files        int      `json:"files"`
	Aliased      int      `json:"aliased"`
	Archive      string   `json:"archive"`
}

// Listings returns one Listing per planned pack, in dependency order
func Listings(plan *build.Plan) []Listing {
	out := make([]Listing, 0, len(plan.Packs))
	for _, pp := range plan.Packs {
		m := pp.Pack.Manifest
		l := Listing{
			ID:           m.ID,
			Version:      m.Version,
			Description:  m.Description,
			Dependencies: append([]string{}, m.Dependencies...),
			Closure:      pp.Closure.Strings(),
			Files:        len(pp.Sources),
			Aliased:      pp.Mapping.Aliased(),
			Archive:      pp.Archive,
		}
		for _, pb := range m.Prebuilt {
			l.Prebuilt = append(l.Prebuilt, pb.ID)
		}
		out = append(out, l)
	}
	return out
}
