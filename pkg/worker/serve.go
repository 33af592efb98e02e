package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/TouchController/E1epack/pkg/errors"
	"github.com/TouchController/E1epack/pkg/logging"
	"github.com/spf13/pflag"
)

// Serve runs one rewrite described by command line args and returns the
// process exit code. On an unresolved call target it prints a JSON report
// on stdout and returns ExitUnresolved.
func Serve(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet(SubcommandName, pflag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		req       Request
		knownFrom string
		verbosity int
	)
	fs.StringVar(&req.Source, "source", "", "file to read")
	fs.StringVar(&req.Dest, "dest", "", "file to write")
	fs.StringVar(&req.BaseDir, "base", "", "directory relative paths resolve against")
	fs.StringVar(&req.SourceKey, "key", "", "destination key of the file")
	fs.StringVar(&knownFrom, "known-from", "", "file listing callable destination keys, one per line")
	fs.CountVarP(&verbosity, "verbose", "v", "increase verbosity")

	if err := fs.Parse(args); err != nil {
		return ExitFailed
	}
	logging.SetupWorkerLogger(verbosity)
	logger := logging.GetLogger("worker.serve")

	if knownFrom != "" {
		keys, err := readKnown(knownFrom)
		if err != nil {
			_, _ = fmt.Fprintln(stderr, err)
			return ExitFailed
		}
		req.Known = keys
	}

	err := NewLocal().Rewrite(ctx, req)
	if err == nil {
		logger.Debug().Str("key", req.SourceKey).Msg("Rewrite complete")
		return ExitOK
	}

	_, _ = fmt.Fprintln(stderr, err)
	if !errors.IsErrorCode(err, errors.ErrUnresolvedCallTarget) {
		return ExitFailed
	}

	details := errors.GetErrorDetails(err)
	rep := unresolvedReport{Source: req.SourceKey}
	if line, ok := details["line"].(int); ok {
		rep.Line = line
	}
	if target, ok := details["target"].(string); ok {
		rep.Target = target
	}
	if encErr := json.NewEncoder(stdout).Encode(rep); encErr != nil {
		return ExitFailed
	}
	return ExitUnresolved
}
