// Copyright (c) Big Cabal 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/bigcabalworks/sitebatch/internal/ctxlog"
)

// Watch monitors the signal channel and cancels the context on the second
// signal of a given type. A single signal lets the engine finish restoring
// the active site frame before anything is torn down.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for sig := range sigCh {
		if _, ok := seen[sig]; ok {
			ctxlog.Info(ctx, "watchdog", "detail", "received second signal of type, cancelling", "signal", sig.String())
			close(sigCh)
			cancel()

			return
		}

		ctxlog.Info(ctx, "watchdog", "detail", "received first signal of type, waiting for batch to settle", "signal", sig.String())

		seen[sig] = struct{}{}
	}
}
