// Copyright (c) Big Cabal 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run implements the `sitebatch run` command.
package run

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"

	"github.com/bigcabalworks/sitebatch/internal/ctxlog"
	"github.com/bigcabalworks/sitebatch/internal/runbatch"
	"github.com/bigcabalworks/sitebatch/internal/shellop"
	"github.com/bigcabalworks/sitebatch/internal/site"
	"github.com/bigcabalworks/sitebatch/internal/tui"
)

const (
	sitesFlag       = "sites"
	outFlag         = "out"
	tuiFlag         = "tui"
	timeoutFlag     = "timeout"
	dirFlag         = "dir"
	showSuccessFlag = "output-success-details"
	cliExitStr      = ""
)

// ErrNoCommand is returned when no command is given after the flags.
var ErrNoCommand = errors.New("no command specified")

// RunCmd is the command that runs a shell command once per site.
var RunCmd = &cli.Command{
	Name: "run",
	Description: `Run a command once for every site in a site directory file.

The command is executed with SITE_ID, SITE_NAME and SITE_DOMAIN exported in
its environment. Sites run strictly in directory order; a failing site is
recorded and the batch continues with the next one.

Site directory URLs use Hashicorp's go-getter syntax, which allows fetching
the file from git, HTTP, S3 and other sources as well as the local disk.
See https://github.com/hashicorp/go-getter.`,
	Usage: "sitebatch run --sites sites.yaml -- wp cron run",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     sitesFlag,
			Aliases:  []string{"s"},
			Usage:    "URL or path of the YAML site directory file.",
			Required: true,
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:      outFlag,
			Usage:     "Write the report to the given file as well as the terminal.",
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.BoolFlag{
			Name:        tuiFlag,
			Aliases:     []string{"t", "interactive"},
			Usage:       "Show live per-site progress in a terminal UI.",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
		&cli.IntFlag{
			Name:    timeoutFlag,
			Usage:   "Abort the whole batch after this many seconds. 0 means no limit.",
			Value:   0,
			Aliases: []string{"T"},
		},
		&cli.StringFlag{
			Name:     dirFlag,
			Aliases:  []string{"C"},
			Usage:    "Working directory for the per-site command.",
			OnlyOnce: true,
		},
		&cli.BoolFlag{
			Name:        showSuccessFlag,
			Aliases:     []string{"success"},
			Usage:       "Include command output for successful sites in the report.",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	args := cmd.Args().Slice()
	if len(args) == 0 {
		logger.Error("Specify the command to run per site after the flags, e.g. `sitebatch run -s sites.yaml -- wp cron run`.")
		return cli.Exit(ErrNoCommand.Error(), 1)
	}

	dir, err := site.FetchDirectory(ctx, afero.NewOsFs(), cmd.String(sitesFlag))
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to load site directory: %s", err.Error()))
		return cli.Exit(cliExitStr, 1)
	}

	op, err := shellop.New(shellop.Command{
		Args:  args,
		Dir:   cmd.String(dirFlag),
		Sites: dir,
	})
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if t := cmd.Int(timeoutFlag); t > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, time.Duration(t)*time.Second)
		defer cancel()
	}

	engine := runbatch.New()

	var (
		results runbatch.Results
		runErr  error
	)

	switch cmd.Bool(tuiFlag) {
	case true:
		// Buffer log output while the TUI owns the terminal.
		buf := new(bytes.Buffer)
		tuiCtx := ctxlog.NewForTUI(ctx, buf)

		runner := tui.NewRunner()
		engine = runbatch.New(runbatch.WithReporter(runner.Reporter()))

		results, runErr = runner.Run(tuiCtx, engine, dir.IDs(), op)

		buf.WriteTo(cmd.Writer) //nolint:errcheck
	default:
		results, runErr = engine.Run(ctx, dir.IDs(), op)
	}

	var fatal *runbatch.FatalError
	if errors.As(runErr, &fatal) {
		logger.Error(fmt.Sprintf("Batch aborted: %s", fatal.Error()))
		return cli.Exit(cliExitStr, 1)
	}

	opts := runbatch.DefaultOutputOptions()
	opts.ShowSuccessDetails = cmd.Bool(showSuccessFlag)

	if err := results.WriteWithOptions(cmd.Writer, opts); err != nil {
		logger.Error(fmt.Sprintf("Failed to write results: %s", err.Error()))
		return cli.Exit(cliExitStr, 1)
	}

	if outFileName := cmd.String(outFlag); outFileName != "" {
		if err := writeReportFile(outFileName, results, opts); err != nil {
			logger.Error(fmt.Sprintf("Failed to write report file: %s", err.Error()))
			return cli.Exit(cliExitStr, 1)
		}

		logger.Info(fmt.Sprintf("Report written to %s", outFileName))
	}

	if runErr != nil {
		logger.Error("Batch did not run to completion.", "error", runErr)
		return cli.Exit(cliExitStr, 1)
	}

	if results.HasError() {
		logger.Error("Some sites failed. See above for details.")
		return cli.Exit(cliExitStr, 1)
	}

	return nil
}

func writeReportFile(name string, results runbatch.Results, opts *runbatch.OutputOptions) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}

	defer f.Close() //nolint:errcheck

	return results.WriteWithOptions(f, opts)
}
