// Copyright (c) Big Cabal 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"errors"
	"fmt"

	"github.com/bigcabalworks/sitebatch/internal/site"
)

var (
	// ErrRestoreMismatch is returned inside a *FatalError when popping a
	// site's frame did not restore the site that was active before the push.
	ErrRestoreMismatch = errors.New("restored site does not match the shadowed site")
	// ErrDepthMismatch is returned inside a *FatalError when the stack depth
	// at the end of a batch differs from the depth at its start.
	ErrDepthMismatch = errors.New("stack depth changed across the batch")
)

// FatalError is an engine-fatal failure: the restoration machinery itself
// broke, as opposed to a failure in caller-supplied site logic. It aborts the
// whole batch, since every subsequent site would execute under a wrong
// ambient context. It is never downgraded to a per-site failure.
type FatalError struct {
	SiteID site.ID // The site whose switch was in flight when the invariant broke
	cause  error
}

// NewFatalError creates a FatalError for the given site and cause.
func NewFatalError(id site.ID, cause error) *FatalError {
	return &FatalError{SiteID: id, cause: cause}
}

// Error implements the error interface for FatalError.
func (e *FatalError) Error() string {
	return fmt.Sprintf("site context corrupted while switching %s: %s", e.SiteID, e.cause.Error())
}

// Unwrap returns the underlying cause.
func (e *FatalError) Unwrap() error {
	return e.cause
}
