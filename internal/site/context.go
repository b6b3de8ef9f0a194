// Copyright (c) Big Cabal 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package site

import "context"

type idKey struct{}

// NewContext returns a context carrying the given site ID.
// New operations should prefer the explicit ID argument they receive from the
// engine; the context carrier exists so values flow into code that only sees
// a context (loggers, transports).
func NewContext(ctx context.Context, id ID) context.Context {
	return context.WithValue(ctx, idKey{}, id)
}

// FromContext returns the site ID carried by the context, or None.
func FromContext(ctx context.Context) ID {
	id, ok := ctx.Value(idKey{}).(ID)
	if !ok {
		return None
	}

	return id
}
