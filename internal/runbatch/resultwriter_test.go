// Copyright (c) Big Cabal 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteResults_Statuses(t *testing.T) {
	results := Results{
		{SiteID: "alpha", Status: StatusSuccess, Duration: 120 * time.Millisecond},
		{SiteID: "beta", Status: StatusError, Err: errors.New("cron failed"), Output: []byte("line one\nline two")},
		{SiteID: "gamma", Status: StatusCanceled, Err: errors.New("context canceled")},
	}

	buf := &bytes.Buffer{}
	require.NoError(t, WriteResults(buf, results, nil))

	out := buf.String()
	assert.Contains(t, out, "✓")
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "(120ms)")
	assert.Contains(t, out, "✗")
	assert.Contains(t, out, "beta")
	assert.Contains(t, out, "➜ Error: cron failed")
	assert.Contains(t, out, "    line one")
	assert.Contains(t, out, "    line two")
	assert.Contains(t, out, "~")
	assert.Contains(t, out, "gamma")
	assert.Contains(t, out, "3 sites: 1 succeeded, 1 failed, 1 canceled")
}

func TestWriteResults_SuccessOutputHiddenByDefault(t *testing.T) {
	results := Results{
		{SiteID: "alpha", Status: StatusSuccess, Output: []byte("quiet success")},
	}

	buf := &bytes.Buffer{}
	require.NoError(t, WriteResults(buf, results, nil))
	assert.NotContains(t, buf.String(), "quiet success")

	buf.Reset()
	opts := DefaultOutputOptions()
	opts.ShowSuccessDetails = true
	require.NoError(t, WriteResults(buf, results, opts))
	assert.Contains(t, buf.String(), "    quiet success")
}

func TestWriteResults_OutputSuppressed(t *testing.T) {
	results := Results{
		{SiteID: "beta", Status: StatusError, Err: errors.New("boom"), Output: []byte("stack trace here")},
	}

	buf := &bytes.Buffer{}
	require.NoError(t, WriteResults(buf, results, &OutputOptions{IncludeOutput: false, ShowDurations: true}))

	out := buf.String()
	assert.Contains(t, out, "➜ Error: boom")
	assert.NotContains(t, out, "stack trace here")
}

func TestWriteResults_NoDurations(t *testing.T) {
	results := Results{
		{SiteID: "alpha", Status: StatusSuccess, Duration: time.Second},
	}

	buf := &bytes.Buffer{}
	require.NoError(t, WriteResults(buf, results, &OutputOptions{IncludeOutput: true}))
	assert.NotContains(t, buf.String(), "(1s)")
}

func TestWriteResults_Empty(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteResults(buf, Results{}, nil))
	assert.Contains(t, buf.String(), "0 sites: 0 succeeded, 0 failed, 0 canceled")
}
