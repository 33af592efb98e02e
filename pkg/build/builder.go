package build

import (
	"github.com/TouchController/E1epack/pkg/archive"
	"github.com/TouchController/E1epack/pkg/config"
	"github.com/TouchController/E1epack/pkg/errors"
	"github.com/TouchController/E1epack/pkg/logging"
	"github.com/TouchController/E1epack/pkg/worker"
	"github.com/rs/zerolog"
)

// Options selects what a build covers
type Options struct {
	// Packs names the packs to build; their dependencies are included.
	// Empty builds every pack.
	Packs []string
	// DryRun plans the build without writing anything
	DryRun bool
}

// Builder runs builds for one project configuration
type Builder struct {
	Config *config.Config
	Worker worker.Worker
	Logger zerolog.Logger
}

// New creates a builder
func New(cfg *config.Config, w worker.Worker) *Builder {
	return &Builder{
		Config: cfg,
		Worker: w,
		Logger: logging.GetLogger("build"),
	}
}

// NewWorker returns the worker selected by cfg
func NewWorker(cfg *config.Config, verbosity int) (worker.Worker, error) {
	switch cfg.Worker.Mode {
	case config.WorkerModeLocal:
		return worker.NewLocal(), nil
	case config.WorkerModeProcess, "":
		return worker.NewProcess(cfg.Worker.Command, verbosity)
	default:
		return nil, errors.Newf(errors.ErrConfigValid, "unknown worker mode %q", cfg.Worker.Mode).
			WithDetail("key", "worker.mode").
			WithDetail("value", cfg.Worker.Mode)
	}
}

func (b *Builder) remaps() []archive.Remap {
	out := make([]archive.Remap, len(b.Config.Archive.Remaps))
	for i, r := range b.Config.Archive.Remaps {
		out[i] = archive.Remap{From: r.From, To: r.To}
	}
	return out
}
