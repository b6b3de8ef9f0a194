// Copyright (c) Big Cabal 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package sitestack

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bigcabalworks/sitebatch/internal/site"
)

// ErrImbalancedPop is returned when Pop is called on an empty stack.
// It always indicates a caller bug (a pop without a matching push) and must
// never be absorbed silently.
var ErrImbalancedPop = errors.New("pop without matching push")

// Frame is one active site switch.
type Frame struct {
	ID       site.ID   // The site made active by this switch
	PushedAt time.Time // When the switch happened
}

// Stack holds the active-site frames for one execution unit. The zero value
// is ready to use and represents the default (no-site) context.
//
// Reads are safe from any goroutine. Push/Pop balance is the caller's
// responsibility; the batch engine serializes mutation around whole batch
// runs so that two batches can never interleave their switches.
type Stack struct {
	mu     sync.RWMutex
	frames []Frame
}

// Default is the process-wide stack used by legacy ambient-lookup call sites.
var Default = &Stack{}

// Push makes id the active site, shadowing the previously active site.
// Pushing the None sentinel is a caller contract violation and fails with
// ErrNoneID; the stack is not modified in that case.
func (s *Stack) Push(id site.ID) error {
	if id.IsNone() {
		return fmt.Errorf("%w: cannot push", site.ErrNoneID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.frames = append(s.frames, Frame{ID: id, PushedAt: time.Now()})

	return nil
}

// Pop removes the top frame and returns its site ID, restoring the
// previously active site (or None when the stack empties). Popping an empty
// stack fails with ErrImbalancedPop and does not mutate state.
func (s *Stack) Pop() (site.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.frames) == 0 {
		return site.None, ErrImbalancedPop
	}

	top := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]

	return top.ID, nil
}

// Current returns the active site ID, or None when no switch is in effect.
func (s *Stack) Current() site.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.frames) == 0 {
		return site.None
	}

	return s.frames[len(s.frames)-1].ID
}

// Depth returns the number of active switch frames.
func (s *Stack) Depth() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.frames)
}
