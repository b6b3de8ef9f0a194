// Copyright (c) Big Cabal 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/bigcabalworks/sitebatch/internal/site"
)

// ResultStatus represents the outcome of one site's operation.
type ResultStatus int

const (
	// StatusSuccess means the operation completed without error.
	StatusSuccess ResultStatus = iota
	// StatusError means the operation failed or could not be started.
	StatusError
	// StatusCanceled means the batch was cancelled before or during the operation.
	StatusCanceled
)

const statusUnknownStr = "unknown"

// String returns the string representation of the ResultStatus.
func (s ResultStatus) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	case StatusCanceled:
		return "canceled"
	default:
		return statusUnknownStr
	}
}

// Result is the recorded outcome for one site in a batch.
type Result struct {
	SiteID   site.ID       // The site this outcome belongs to
	Status   ResultStatus  // Success, error or canceled
	Output   []byte        // Operation payload, if any
	Err      error         // Error, if any
	Duration time.Duration // Wall time spent on this site, including the switch
}

// Results is the ordered per-site outcome list of a batch run.
// There is exactly one entry per input site ID, in input order.
type Results []*Result

// HasError reports whether any site's outcome is a failure or cancellation.
func (r Results) HasError() bool {
	for _, res := range r {
		if res.Status != StatusSuccess {
			return true
		}
	}

	return false
}

// Err aggregates all per-site errors into a single error, or nil when every
// site succeeded.
func (r Results) Err() error {
	var merr *multierror.Error

	for _, res := range r {
		if res.Err == nil {
			continue
		}

		merr = multierror.Append(merr, fmt.Errorf("site %s: %w", res.SiteID, res.Err))
	}

	return merr.ErrorOrNil()
}

// Print outputs the results to stdout with default options.
func (r Results) Print() error {
	return WriteResults(os.Stdout, r, nil)
}

// Write outputs the results to the specified writer with default options.
func (r Results) Write(w io.Writer) error {
	return WriteResults(w, r, nil)
}

// WriteWithOptions outputs the results to the specified writer with the specified options.
func (r Results) WriteWithOptions(w io.Writer, options *OutputOptions) error {
	return WriteResults(w, r, options)
}
