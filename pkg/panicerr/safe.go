// Package panicerr converts panics in background work into errors.
package panicerr

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sourcegraph/conc/panics"
)

// SafeContext wraps a function that takes a context and returns an error.
func SafeContext(fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		var (
			catcher panics.Catcher
			err     error
		)
		catcher.Try(func() {
			err = fn(ctx)
		})
		if err != nil {
			return err
		}
		return catcher.Recovered().AsError()
	}
}

// Background adapts a long-running loop for conc.WaitGroup.Go. The loop's
// error or panic is logged under name; cancellation is not an error.
func Background(ctx context.Context, name string, fn func(context.Context) error) func() {
	safe := SafeContext(fn)
	return func() {
		err := safe(ctx)
		switch {
		case err == nil, errors.Is(err, context.Canceled):
			slog.InfoContext(ctx, "background job stopped", "job", name)
		default:
			slog.ErrorContext(ctx, "background job failed", "job", name, "error", err)
		}
	}
}
