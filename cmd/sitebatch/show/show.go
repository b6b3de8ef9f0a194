// Copyright (c) Big Cabal 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package show implements the `sitebatch show` command.
package show

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/TylerBrock/colorjson"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"

	"github.com/bigcabalworks/sitebatch/internal/ctxlog"
	"github.com/bigcabalworks/sitebatch/internal/site"
)

const (
	sitesFlag  = "sites"
	cliExitStr = ""

	jsonIndent = 2
)

// ShowCmd prints the resolved site directory.
var ShowCmd = &cli.Command{
	Name: "show",
	Description: `Fetch a site directory file and print the resolved directory as JSON.
Useful to verify what a run would iterate over before running it.`,
	Usage: "sitebatch show --sites sites.yaml",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     sitesFlag,
			Aliases:  []string{"s"},
			Usage:    "URL or path of the YAML site directory file.",
			Required: true,
			OnlyOnce: true,
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	dir, err := site.FetchDirectory(ctx, afero.NewOsFs(), cmd.String(sitesFlag))
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to load site directory: %s", err.Error()))
		return cli.Exit(cliExitStr, 1)
	}

	sites, err := dir.List(ctx)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	// Round-trip through encoding/json to get the generic structure the
	// color formatter accepts.
	raw, err := json.Marshal(map[string]any{"sites": sites})
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	var obj any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	formatter := colorjson.NewFormatter()
	formatter.Indent = jsonIndent

	out, err := formatter.Marshal(obj)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	fmt.Fprintln(cmd.Writer, string(out)) //nolint:errcheck

	return nil
}
