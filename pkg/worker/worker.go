package worker

import (
	"context"
	"os"
	"path/filepath"

	"github.com/TouchController/E1epack/pkg/errors"
)

// Request describes one file to rewrite
type Request struct {
	// Source is the file to read; relative paths resolve against BaseDir
	Source string
	// Dest is the file to write; relative paths resolve against BaseDir
	Dest string
	// BaseDir is the pack directory
	BaseDir string
	// SourceKey is the destination key of the file inside the pack
	SourceKey string
	// Known lists the destination keys the file may call into
	Known []string
}

func (r Request) sourcePath() string { return r.resolve(r.Source) }

func (r Request) destPath() string { return r.resolve(r.Dest) }

func (r Request) resolve(p string) string {
	if filepath.IsAbs(p) || r.BaseDir == "" {
		return p
	}
	return filepath.Join(r.BaseDir, p)
}

func (r Request) validate() error {
	if r.Source == "" || r.Dest == "" || r.SourceKey == "" {
		return errors.New(errors.ErrInvalidInput, "worker request requires source, dest and key").
			WithDetail("source", r.Source).
			WithDetail("dest", r.Dest).
			WithDetail("key", r.SourceKey)
	}
	return nil
}

// Worker rewrites a single function file
type Worker interface {
	Rewrite(ctx context.Context, req Request) error
}

// Local rewrites files in-process
type Local struct {
	rewriter *Rewriter
}

// NewLocal creates an in-process worker
func NewLocal() *Local {
	return &Local{rewriter: NewRewriter()}
}

// Rewrite implements Worker
func (l *Local) Rewrite(ctx context.Context, req Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := req.validate(); err != nil {
		return err
	}

	src, err := os.ReadFile(req.sourcePath())
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", req.SourceKey).
			WithDetail("path", req.sourcePath())
	}

	out, err := l.rewriter.Rewrite(req.SourceKey, src, NewIndex(req.Known))
	if err != nil {
		return err
	}

	return writeFile(req.destPath(), out)
}

func writeFile(dest string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", filepath.Dir(dest))
	}
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", dest)
	}
	return nil
}
