// Copyright (c) Big Cabal 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package shellop builds batch operations that run a shell command once per
// site. The active site is exported to the child process environment as
// SITE_ID, SITE_NAME and SITE_DOMAIN, mirroring how ambient context reaches
// legacy scripts.
package shellop

import (
	"context"
	"errors"
	"os"
	"os/exec"

	"github.com/bigcabalworks/sitebatch/internal/ctxlog"
	"github.com/bigcabalworks/sitebatch/internal/runbatch"
	"github.com/bigcabalworks/sitebatch/internal/site"
)

// Environment variable names exported to the child process.
const (
	SiteIDEnvVar     = "SITE_ID"
	SiteNameEnvVar   = "SITE_NAME"
	SiteDomainEnvVar = "SITE_DOMAIN"
)

// ErrEmptyCommand is returned when no command arguments are supplied.
var ErrEmptyCommand = errors.New("no command to run")

// Command describes the shell command executed for each site.
type Command struct {
	Args  []string       // Argv of the command; Args[0] is the executable
	Dir   string         // Working directory, empty for the current one
	Sites site.Directory // Optional directory used to resolve name and domain
}

// New returns an Operation running the command for each site. It fails fast
// (at construction, not per site) when the command is empty.
func New(cmd Command) (runbatch.Operation, error) {
	if len(cmd.Args) == 0 {
		return nil, ErrEmptyCommand
	}

	return func(ctx context.Context, id site.ID) runbatch.OperationReturn {
		env := append(os.Environ(), SiteIDEnvVar+"="+string(id))

		if cmd.Sites != nil {
			s, err := cmd.Sites.Get(ctx, id)
			if err != nil {
				return runbatch.OperationReturn{Err: err}
			}

			env = append(env,
				SiteNameEnvVar+"="+s.Name,
				SiteDomainEnvVar+"="+s.Domain,
			)
		}

		ctxlog.Debug(ctx, "executing site command", "site", id.String(), "args", cmd.Args)

		c := exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...)
		c.Dir = cmd.Dir
		c.Env = env

		out, err := c.CombinedOutput()

		return runbatch.OperationReturn{Output: out, Err: err}
	}, nil
}
