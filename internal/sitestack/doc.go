// Copyright (c) Big Cabal 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package sitestack tracks the ambient "active site" of the process as a
// strict LIFO stack of switch frames. Push and Pop are the only operations
// that may mutate the active site; everything else reads it via Current.
//
// The stack exists as a compatibility shim for call sites that rely on
// ambient site lookup. New code should accept the site ID as an explicit
// argument and treat the stack as the engine's restoration machinery only.
package sitestack
