// Copyright (c) Big Cabal 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"fmt"

	"github.com/bigcabalworks/sitebatch/internal/site"
)

// Operation is the unit of work executed once per site. The active site is
// passed explicitly and is also readable from the context via site.FromContext
// for code that only sees a context.
//
// Operations must honor context cancellation; the engine will not wait for a
// cancelled operation before restoring the site context.
type Operation func(ctx context.Context, id site.ID) OperationReturn

// OperationReturn is the outcome of a single operation invocation.
type OperationReturn struct {
	Output []byte // Caller-defined payload, e.g. captured command output
	Err    error  // Any error that occurred during execution
}

// PanicError is the error recorded when an operation panics.
// It is constructed with the value that caused the panic.
type PanicError struct {
	v any
}

// NewPanicError creates a new PanicError with the given value.
func NewPanicError(v any) error {
	return &PanicError{v: v}
}

// Error implements the error interface for PanicError.
func (e *PanicError) Error() string {
	prefix := "operation panic:"

	switch x := e.v.(type) {
	case string:
		return fmt.Sprintf("%s %s", prefix, x)
	case error:
		return fmt.Sprintf("%s %s", prefix, x.Error())
	default:
		return fmt.Sprintf("%s %v", prefix, x)
	}
}
