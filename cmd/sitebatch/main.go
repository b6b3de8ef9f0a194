// Copyright (c) Big Cabal 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the sitebatch command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/bigcabalworks/sitebatch"
	"github.com/bigcabalworks/sitebatch/cmd/sitebatch/run"
	"github.com/bigcabalworks/sitebatch/cmd/sitebatch/show"
	"github.com/bigcabalworks/sitebatch/internal/ctxlog"
	"github.com/bigcabalworks/sitebatch/internal/signalbroker"
)

// rootCmd is the root command for the CLI.
var rootCmd = &cli.Command{
	Commands: []*cli.Command{
		run.RunCmd,
		show.ShowCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "sitebatch",
	Description: `Sitebatch runs a command once for every site of a multi-site
deployment, switching the ambient active site around each invocation and
restoring it afterwards. One site's failure never stops the batch; every
site's outcome is reported at the end.`,
	Usage:                 "sitebatch run --sites sites.yaml -- wp cron run",
	Copyright:             "Copyright (c) Big Cabal 2025. All rights reserved.",
	EnableShellCompletion: true,
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel)

	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", sitebatch.Version, sitebatch.Commit)

	err := rootCmd.Run(ctx, os.Args) // Err is handled by cli framework

	if ctx.Err() != nil {
		ctxlog.Error(ctx, "command terminated due to cancellation", "error", ctx.Err())
		os.Exit(1)
	}

	if err != nil {
		ctxlog.Error(ctx, "command execution failed", "error", err)
		os.Exit(1)
	}
}
