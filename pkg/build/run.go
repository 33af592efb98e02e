package build

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/TouchController/E1epack/pkg/archive"
	"github.com/TouchController/E1epack/pkg/errors"
	"github.com/TouchController/E1epack/pkg/ids"
	"github.com/TouchController/E1epack/pkg/logging"
	"github.com/TouchController/E1epack/pkg/mapping"
	"github.com/TouchController/E1epack/pkg/minify"
	"github.com/TouchController/E1epack/pkg/worker"
	"golang.org/x/sync/errgroup"
)

const functionExt = ".mcfunction"

// Run builds the selected packs and writes their archives. With
// opts.DryRun it only plans.
func (b *Builder) Run(ctx context.Context, opts Options) (*Report, error) {
	started := time.Now()
	if opts.DryRun {
		plan, err := b.Plan(ctx, opts)
		if err != nil {
			return nil, err
		}
		return reportFromPlan(plan, started), nil
	}

	done := logging.LogOperationStart(b.Logger, "build")
	defer done()

	s, err := b.schedule(opts)
	if err != nil {
		return nil, err
	}
	report := &Report{BuildID: s.buildID}

	// archives stay staged until every pack built
	committed := false
	defer func() {
		if !committed {
			b.discardStaged(s)
		}
	}()
	b.Logger.Info().
		Str("build_id", s.buildID).
		Int("packs", len(s.packs)).
		Int("levels", len(s.levels)).
		Msg("Starting build")

	pub := map[ids.PackID]*published{}
	for _, level := range s.levels {
		results := make([]*packResult, len(level))
		g, gctx := errgroup.WithContext(ctx)
		for i, id := range level {
			i := i
			p := s.packs[id]
			g.Go(func() error {
				res, err := b.buildPack(gctx, s.buildID, p.ID(), func() (*PackPlan, error) {
					return b.planPack(p, pub)
				})
				if err != nil {
					return err
				}
				results[i] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		// publish only once the whole level succeeded
		for _, res := range results {
			pub[res.plan.Pack.ID()] = res.plan.publish()
			report.Packs = append(report.Packs, res.report)
		}
	}

	if err := commitStaged(report.Packs); err != nil {
		return nil, err
	}
	committed = true

	report.Duration = time.Since(started)
	b.Logger.Info().
		Str("build_id", s.buildID).
		Dur("duration", report.Duration).
		Msg("Build finished")
	return report, nil
}

// stagedPath is where the archive for path is written before the build
// commits it
func stagedPath(path string) string {
	return filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".staged")
}

func (b *Builder) discardStaged(s *schedule) {
	for _, p := range s.packs {
		staged := stagedPath(b.archivePath(p))
		if err := os.Remove(staged); err != nil && !os.IsNotExist(err) {
			b.Logger.Warn().Err(err).Str("path", staged).Msg("Cannot remove staged archive")
		}
	}
}

// commitStaged moves every staged archive into place. If one move fails the
// archives already moved are removed again.
func commitStaged(reports []PackReport) error {
	for i, rep := range reports {
		if err := os.Rename(stagedPath(rep.Archive), rep.Archive); err != nil {
			for _, done := range reports[:i] {
				_ = os.Remove(done.Archive)
			}
			return errors.Wrapf(err, errors.ErrArchiveWrite, "cannot move archive into %s", rep.Archive).
				WithDetail("pack", rep.ID)
		}
	}
	return nil
}

type packResult struct {
	plan   *PackPlan
	report PackReport
}

func (b *Builder) buildPack(ctx context.Context, buildID string, id ids.PackID, plan func() (*PackPlan, error)) (*packResult, error) {
	started := time.Now()
	logger := logging.ForPack(b.Logger, string(id), buildID)

	pp, err := plan()
	if err != nil {
		return nil, err
	}

	workDir := filepath.Join(b.Config.WorkDir(), string(id))
	if err := os.RemoveAll(workDir); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileWrite, "cannot clear work directory %s", workDir)
	}
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "cannot create work directory %s", workDir)
	}

	logger.Info().
		Strs("closure", pp.Closure.Strings()).
		Int("files", len(pp.Sources)).
		Msg("Processing pack")

	if err := b.processFiles(ctx, pp, workDir); err != nil {
		return nil, err
	}

	res, err := archive.Assemble(ctx, archive.Spec{
		Path:    stagedPath(pp.Archive),
		WorkDir: workDir,
		Mapping: pp.Mapping,
		Remaps:  b.remaps(),
		Metadata: &archive.Metadata{
			ID:      string(id),
			Version: pp.Pack.Version(),
			Closure: pp.Closure.Strings(),
			BuildID: buildID,
		},
	})
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			e.WithDetail("pack", string(id))
		}
		return nil, err
	}

	rep := packReport(pp)
	rep.Entries = len(res.Entries)
	rep.Duration = time.Since(started)

	logger.Info().
		Str("archive", pp.Archive).
		Int("entries", rep.Entries).
		Dur("duration", rep.Duration).
		Msg("Pack built")
	return &packResult{plan: pp, report: rep}, nil
}

// processFiles produces every artifact of the pack under workDir, at most
// Config.Jobs() at a time
func (b *Builder) processFiles(ctx context.Context, pp *PackPlan, workDir string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.Config.Jobs())

	for _, h := range pp.Mapping.Handles() {
		h := h
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := b.processFile(gctx, pp, h, workDir)
			if e, ok := err.(*errors.Error); ok {
				e.WithDetail("pack", string(pp.Pack.ID()))
			}
			return err
		})
	}
	return g.Wait()
}

func (b *Builder) processFile(ctx context.Context, pp *PackPlan, h *mapping.Handle, workDir string) error {
	src := filepath.Join(pp.Pack.Dir, filepath.FromSlash(h.Source))
	dest := h.Path(workDir)

	switch {
	case isFunction(h.Source):
		return b.Worker.Rewrite(ctx, worker.Request{
			Source:    h.Source,
			Dest:      dest,
			BaseDir:   pp.Pack.Dir,
			SourceKey: h.Source,
			Known:     pp.Known,
		})
	case minify.Applies(h.Source):
		data, err := os.ReadFile(src)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", h.Source)
		}
		out := data
		if b.Config.Build.MinifyJSON {
			out, err = minify.JSON(data)
		} else {
			err = minify.Check(data)
		}
		if err != nil {
			if e, ok := err.(*errors.Error); ok {
				e.WithDetail("source", h.Source)
			}
			return err
		}
		return writeArtifact(dest, out)
	default:
		data, err := os.ReadFile(src)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", h.Source)
		}
		return writeArtifact(dest, data)
	}
}

func isFunction(key string) bool {
	return strings.HasPrefix(key, "data/") && strings.HasSuffix(key, functionExt)
}

func writeArtifact(dest string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", filepath.Dir(dest))
	}
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", dest)
	}
	return nil
}
