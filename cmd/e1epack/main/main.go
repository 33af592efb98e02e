package main

import (
	"context"
	stderrors "errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/TouchController/E1epack/cmd/e1epack"
	"github.com/TouchController/E1epack/pkg/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := e1epack.NewRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return
	}

	var exit *e1epack.ExitCodeError
	if stderrors.As(err, &exit) {
		stop()
		os.Exit(exit.Code)
	}

	if r, rerr := ui.NewRenderer(ui.FormatAuto, os.Stderr); rerr == nil {
		_ = r.RenderError(err)
	}
	stop()
	os.Exit(1)
}
