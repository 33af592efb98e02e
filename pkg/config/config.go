package config

import (
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Worker modes
const (
	WorkerModeProcess = "process"
	WorkerModeLocal   = "local"
)

// Project holds the project layout, relative to the project root
type Project struct {
	PacksDir  string `koanf:"packs_dir"`
	OutputDir string `koanf:"output_dir"`
	WorkDir   string `koanf:"work_dir"`
}

// Build holds build behaviour settings
type Build struct {
	// Jobs bounds concurrent file processing; 0 means one per CPU
	Jobs              int      `koanf:"jobs"`
	KeepOriginalNames bool     `koanf:"keep_original_names"`
	MinifyJSON        bool     `koanf:"minify_json"`
	Ignore            []string `koanf:"ignore"`
}

// Worker selects how function files are rewritten
type Worker struct {
	Mode string `koanf:"mode"`
	// Command is the worker executable and leading arguments; empty means
	// the running e1epack binary.
	Command []string `koanf:"command"`
}

// Remap relocates archive entries from one path prefix to another. A "*"
// segment matches exactly one path segment and is carried over to To.
type Remap struct {
	From string `koanf:"from"`
	To   string `koanf:"to"`
}

// Archive holds archive assembly settings
type Archive struct {
	// Name is the archive file name template; {id} and {version} are substituted
	Name   string  `koanf:"name"`
	Remaps []Remap `koanf:"remaps"`
}

// Watch holds watch mode settings
type Watch struct {
	Debounce time.Duration `koanf:"debounce"`
}

// Config is the main configuration structure
type Config struct {
	Project Project `koanf:"project"`
	Build   Build   `koanf:"build"`
	Worker  Worker  `koanf:"worker"`
	Archive Archive `koanf:"archive"`
	Watch   Watch   `koanf:"watch"`

	// Root is the project root relative paths resolve against
	Root string `koanf:"-"`
	// Source is the project config file that was loaded, if any
	Source string `koanf:"-"`
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// PacksDir returns the absolute packs directory
func (c *Config) PacksDir() string { return c.resolve(c.Project.PacksDir) }

// OutputDir returns the absolute archive output directory
func (c *Config) OutputDir() string { return c.resolve(c.Project.OutputDir) }

// WorkDir returns the absolute directory processed artifacts are written to
func (c *Config) WorkDir() string { return c.resolve(c.Project.WorkDir) }

// Jobs returns the effective file-processing concurrency
func (c *Config) Jobs() int {
	if c.Build.Jobs > 0 {
		return c.Build.Jobs
	}
	return runtime.NumCPU()
}

// ArchiveName returns the archive file name for a pack
func (c *Config) ArchiveName(id, version string) string {
	r := strings.NewReplacer("{id}", id, "{version}", version)
	return r.Replace(c.Archive.Name)
}
