// Copyright (c) Big Cabal 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color applies ANSI control codes to strings for console output.
// Output is automatically disabled when stdout is not a terminal or when the
// NO_COLOR environment variable is set, and can be forced with FORCE_COLOR.
package color
