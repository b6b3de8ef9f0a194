// Copyright (c) Big Cabal 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a slog logger in a context.Context and provides the
// console handler used by the CLI. The log level is read from an environment
// variable derived from the executable name: for a binary named "sitebatch"
// the variable is SITEBATCH_LOG_LEVEL and accepts DEBUG, INFO, WARN or
// ERROR. Anything else defaults to WARN.
package ctxlog
