// Copyright (c) Big Cabal 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/bigcabalworks/sitebatch/internal/color"
)

// OutputOptions controls what is included in the output.
type OutputOptions struct {
	IncludeOutput      bool // Whether to include operation output in the report
	ShowSuccessDetails bool // Whether to show output for successful sites too
	ShowDurations      bool // Whether to append per-site durations
}

// DefaultOutputOptions returns a default set of output options.
func DefaultOutputOptions() *OutputOptions {
	return &OutputOptions{
		IncludeOutput:      true,
		ShowSuccessDetails: false,
		ShowDurations:      true,
	}
}

const durationRounding = 10 * time.Millisecond

// WriteResults writes a formatted per-site report to the provided writer.
func WriteResults(w io.Writer, results Results, options *OutputOptions) error {
	if options == nil {
		options = DefaultOutputOptions()
	}

	for _, r := range results {
		if err := writeResult(w, r, options); err != nil {
			return err
		}
	}

	return writeSummary(w, results)
}

func writeResult(w io.Writer, r *Result, options *OutputOptions) error {
	var statusStr, labelPrefix string

	switch r.Status {
	case StatusCanceled:
		statusStr = color.Colorize("~", color.FgYellow)
		labelPrefix = color.ControlString(color.Bold, color.FgYellow)
	case StatusError:
		statusStr = color.Colorize("✗", color.FgRed)
		labelPrefix = color.ControlString(color.Bold, color.FgRed)
	case StatusSuccess:
		statusStr = color.Colorize("✓", color.FgGreen)
		labelPrefix = color.ControlString(color.Bold, color.FgGreen)
	default:
		statusStr = color.Colorize("?", color.FgWhite)
	}

	if _, err := fmt.Fprintf(w, "%s %s%s%s", statusStr, labelPrefix, r.SiteID, color.ControlString(color.Reset)); err != nil {
		return err
	}

	if options.ShowDurations && r.Duration > 0 {
		fmt.Fprintf(w, " (%s)", r.Duration.Round(durationRounding)) // nolint:errcheck
	}

	fmt.Fprintln(w) // nolint:errcheck

	if r.Err != nil {
		errColor := color.FgRed
		if r.Status == StatusCanceled {
			errColor = color.FgYellow
		}

		fmt.Fprintf( // nolint:errcheck
			w,
			"  %s %s%s\n",
			color.ColorizeNoReset("➜ Error:", errColor),
			r.Err.Error(),
			color.ControlString(color.Reset),
		)
	}

	showOutput := options.IncludeOutput && len(r.Output) > 0 &&
		(r.Status != StatusSuccess || options.ShowSuccessDetails)

	if showOutput {
		if err := writeIndented(w, r.Output); err != nil {
			return err
		}
	}

	return nil
}

func writeIndented(w io.Writer, output []byte) error {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		if _, err := fmt.Fprintf(w, "    %s\n", scanner.Text()); err != nil {
			return err
		}
	}

	return scanner.Err()
}

func writeSummary(w io.Writer, results Results) error {
	var ok, failed, canceled int

	for _, r := range results {
		switch r.Status {
		case StatusSuccess:
			ok++
		case StatusCanceled:
			canceled++
		case StatusError:
			failed++
		}
	}

	summary := fmt.Sprintf("%d sites: %d succeeded, %d failed, %d canceled", len(results), ok, failed, canceled)

	c := color.FgGreen
	if failed > 0 || canceled > 0 {
		c = color.FgRed
	}

	_, err := fmt.Fprintf(w, "\n%s\n", color.Colorize(summary, c, color.Bold))

	return err
}
