// Copyright (c) Big Cabal 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package site defines site identity for multi-site platforms and the
// directory used to enumerate sites. A site is one logical partition of a
// shared-process deployment; the engine in runbatch switches the ambient
// active site while it executes an operation for each one.
package site
