// Copyright (c) Big Cabal 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package progress defines the real-time events emitted while a batch runs
// and the Reporter interface used to deliver them to listeners such as the
// TUI. Reporting is best-effort: a slow or absent listener never blocks the
// engine.
package progress
