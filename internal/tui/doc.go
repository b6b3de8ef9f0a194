// Copyright (c) Big Cabal 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tui renders live per-site batch progress with bubbletea. It
// consumes the engine's progress events and shows each site moving through
// pending, running and done states while the batch executes.
package tui
