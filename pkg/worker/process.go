package worker

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"os"
	"os/exec"
	"strings"

	"github.com/TouchController/E1epack/pkg/errors"
	"github.com/TouchController/E1epack/pkg/logging"
	"github.com/rs/zerolog"
)

// Exit codes of the worker subcommand
const (
	ExitOK         = 0
	ExitFailed     = 1
	ExitUnresolved = 2
)

// SubcommandName is the hidden CLI command that runs Serve
const SubcommandName = "worker"

// Process rewrites each file in a separate `e1epack worker` process
type Process struct {
	command   []string
	verbosity int
	logger    zerolog.Logger
}

// NewProcess creates a worker running command. An empty command runs the
// current executable.
func NewProcess(command []string, verbosity int) (*Process, error) {
	if len(command) == 0 {
		exe, err := os.Executable()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrWorkerFailed, "cannot locate the running executable")
		}
		command = []string{exe}
	}
	return &Process{
		command:   append([]string(nil), command...),
		verbosity: verbosity,
		logger:    logging.GetLogger("worker.process"),
	}, nil
}

// Command returns the command line prefix used for each invocation
func (p *Process) Command() []string {
	return append([]string(nil), p.command...)
}

// Rewrite implements Worker
func (p *Process) Rewrite(ctx context.Context, req Request) error {
	if err := req.validate(); err != nil {
		return err
	}

	knownFile, err := writeKnown(req.Known)
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(knownFile) }()

	args := append(p.command[1:len(p.command):len(p.command)], p.args(req, knownFile)...)
	cmd := exec.CommandContext(ctx, p.command[0], args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	p.logger.Trace().
		Str("command", p.command[0]).
		Strs("args", args).
		Msg("Spawning worker")

	runErr := cmd.Run()
	if runErr == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var exitErr *exec.ExitError
	if stderrors.As(runErr, &exitErr) && exitErr.ExitCode() == ExitUnresolved {
		return unresolvedFromReport(req.SourceKey, stdout.Bytes(), stderr.String())
	}

	return errors.Wrapf(runErr, errors.ErrWorkerFailed, "worker failed on %s", req.SourceKey).
		WithDetail("source", req.SourceKey).
		WithDetail("stderr", strings.TrimSpace(stderr.String()))
}

func (p *Process) args(req Request, knownFile string) []string {
	args := []string{
		SubcommandName,
		"--source", req.Source,
		"--dest", req.Dest,
		"--base", req.BaseDir,
		"--key", req.SourceKey,
		"--known-from", knownFile,
	}
	if p.verbosity > 0 {
		args = append(args, "-"+strings.Repeat("v", p.verbosity))
	}
	return args
}

func writeKnown(keys []string) (string, error) {
	f, err := os.CreateTemp("", "e1epack-known-*.txt")
	if err != nil {
		return "", errors.Wrap(err, errors.ErrFileWrite, "cannot create worker key list")
	}
	w := bufio.NewWriter(f)
	for _, k := range keys {
		_, _ = w.WriteString(k)
		_ = w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", errors.Wrap(err, errors.ErrFileWrite, "cannot write worker key list")
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", errors.Wrap(err, errors.ErrFileWrite, "cannot write worker key list")
	}
	return f.Name(), nil
}

func readKnown(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read key list %s", path)
	}
	defer func() { _ = f.Close() }()

	var keys []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if k := strings.TrimSpace(sc.Text()); k != "" {
			keys = append(keys, k)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read key list %s", path)
	}
	return keys, nil
}

// unresolvedReport is what the worker prints on stdout when it exits with
// ExitUnresolved
type unresolvedReport struct {
	Source string `json:"source"`
	Line   int    `json:"line"`
	Target string `json:"target"`
}

func unresolvedFromReport(key string, stdout []byte, stderr string) error {
	var rep unresolvedReport
	if err := json.Unmarshal(bytes.TrimSpace(stdout), &rep); err != nil || rep.Target == "" {
		return errors.Newf(errors.ErrUnresolvedCallTarget, "unresolved call target in %s", key).
			WithDetail("source", key).
			WithDetail("stderr", strings.TrimSpace(stderr))
	}
	return errors.Newf(errors.ErrUnresolvedCallTarget, "%s:%d: unresolved call target %q", rep.Source, rep.Line, rep.Target).
		WithDetail("source", rep.Source).
		WithDetail("line", rep.Line).
		WithDetail("target", rep.Target)
}
