package config

import (
	"path"
	"strings"

	"github.com/TouchController/E1epack/pkg/errors"
)

// Validate checks values that would otherwise fail late in a build
func (c *Config) Validate() error {
	if c.Build.Jobs < 0 {
		return invalid("build.jobs", c.Build.Jobs, "must not be negative")
	}
	if strings.TrimSpace(c.Project.PacksDir) == "" {
		return invalid("project.packs_dir", c.Project.PacksDir, "must not be empty")
	}
	if strings.TrimSpace(c.Project.OutputDir) == "" {
		return invalid("project.output_dir", c.Project.OutputDir, "must not be empty")
	}
	if strings.TrimSpace(c.Project.WorkDir) == "" {
		return invalid("project.work_dir", c.Project.WorkDir, "must not be empty")
	}
	switch c.Worker.Mode {
	case WorkerModeProcess, WorkerModeLocal:
	default:
		return invalid("worker.mode", c.Worker.Mode, "must be \"process\" or \"local\"")
	}
	if !strings.Contains(c.Archive.Name, "{id}") {
		return invalid("archive.name", c.Archive.Name, "must contain {id}")
	}
	if strings.ContainsAny(c.Archive.Name, `/\`) {
		return invalid("archive.name", c.Archive.Name, "must be a file name")
	}
	for _, r := range c.Archive.Remaps {
		if err := validateRemap(r); err != nil {
			return err
		}
	}
	for _, pattern := range c.Build.Ignore {
		if _, err := path.Match(pattern, ""); err != nil {
			return invalid("build.ignore", pattern, "is not a valid glob")
		}
	}
	if c.Watch.Debounce < 0 {
		return invalid("watch.debounce", c.Watch.Debounce, "must not be negative")
	}
	return nil
}

func validateRemap(r Remap) error {
	if r.From == "" || r.To == "" {
		return invalid("archive.remaps", r, "from and to must be set")
	}
	if !strings.HasSuffix(r.From, "/") || !strings.HasSuffix(r.To, "/") {
		return invalid("archive.remaps", r, "prefixes must end with '/'")
	}
	if strings.Count(r.From, "*") != strings.Count(r.To, "*") {
		return invalid("archive.remaps", r, "from and to must have the same number of '*' segments")
	}
	return nil
}

func invalid(key string, value interface{}, reason string) error {
	return errors.Newf(errors.ErrConfigValid, "invalid %s: %s", key, reason).
		WithDetail("key", key).
		WithDetail("value", value)
}
