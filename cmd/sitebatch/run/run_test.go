// Copyright (c) Big Cabal 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigcabalworks/sitebatch/internal/runbatch"
)

const sitesYAML = `sites:
  - id: alpha
    name: Alpha Magazine
    domain: alpha.example.com
  - id: beta
    name: Beta News
    domain: beta.example.com
`

func TestRunCmd(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test uses a POSIX shell")
	}

	sitesPath := filepath.Join(t.TempDir(), "sites.yaml")
	require.NoError(t, os.WriteFile(sitesPath, []byte(sitesYAML), 0o644))

	buf := &bytes.Buffer{}
	RunCmd.Writer = buf

	err := RunCmd.Run(context.Background(), []string{
		"run", "-s", sitesPath, "--success", "--", "sh", "-c", "printf 'hello from %s' \"$SITE_ID\"",
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "beta")
	assert.Contains(t, out, "hello from alpha")
	assert.Contains(t, out, "2 sites: 2 succeeded, 0 failed, 0 canceled")
}

func TestWriteReportFile(t *testing.T) {
	results := runbatch.Results{
		{SiteID: "alpha", Status: runbatch.StatusSuccess},
	}

	name := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, writeReportFile(name, results, runbatch.DefaultOutputOptions()))

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1 sites: 1 succeeded, 0 failed, 0 canceled")
}
