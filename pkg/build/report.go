package build

import (
	"time"
)

// Report summarises a build
type Report struct {
	BuildID  string        `json:"build_id"`
	DryRun   bool          `json:"dry_run"`
	Packs    []PackReport  `json:"packs"`
	Duration time.Duration `json:"duration_ns"`
}

// PackReport summarises one pack of a build
type PackReport struct {
	ID      string   `json:"id"`
	Version string   `json:"version"`
	Closure []string `json:"closure"`
	// Files counts source files
	Files int `json:"files"`
	// Aliased counts legacy function paths given a second destination
	Aliased int `json:"aliased"`
	// Entries counts archive entries, metadata included; zero on dry runs
	Entries  int           `json:"entries"`
	Archive  string        `json:"archive"`
	Duration time.Duration `json:"duration_ns"`
}

func packReport(pp *PackPlan) PackReport {
	return PackReport{
		ID:      string(pp.Pack.ID()),
		Version: pp.Pack.Version(),
		Closure: pp.Closure.Strings(),
		Files:   len(pp.Sources),
		Aliased: pp.Mapping.Aliased(),
		Archive: pp.Archive,
	}
}

// reportFromPlan reports a plan as a dry run
func reportFromPlan(plan *Plan, started time.Time) *Report {
	r := &Report{BuildID: plan.BuildID, DryRun: true}
	for _, pp := range plan.Packs {
		r.Packs = append(r.Packs, packReport(pp))
	}
	r.Duration = time.Since(started)
	return r
}
