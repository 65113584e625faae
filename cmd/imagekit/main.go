package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	apperrors "github.com/leeforge/imagekit/errors"
	"github.com/leeforge/imagekit/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	_ = logging.Sync()
	_ = logging.CloseAllWriters()
	if err != nil {
		printError(os.Stderr, err)
		os.Exit(apperrors.ExitCode(err))
	}
}

// printError writes one line per failure; a batch chain lists every job.
func printError(w io.Writer, err error) {
	formatter := apperrors.NewErrorFormatter(false, true)
	var chain *apperrors.ErrorChain
	if errors.As(err, &chain) {
		for _, e := range chain.Errors() {
			fmt.Fprintln(w, formatter.Format(e))
		}
		return
	}
	fmt.Fprintln(w, formatter.Format(err))
}
