// Copyright (c) Big Cabal 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bigcabalworks/sitebatch/internal/progress"
	"github.com/bigcabalworks/sitebatch/internal/runbatch"
	"github.com/bigcabalworks/sitebatch/internal/site"
)

// Reporter implements progress.Reporter and forwards events to the TUI.
type Reporter struct {
	program *tea.Program
	closed  bool
	mutex   sync.RWMutex
}

var _ progress.Reporter = (*Reporter)(nil)

// NewReporter creates a progress reporter feeding the given program.
func NewReporter(program *tea.Program) *Reporter {
	return &Reporter{program: program}
}

// Report implements progress.Reporter.Report.
func (r *Reporter) Report(event progress.Event) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if r.closed || r.program == nil {
		return
	}

	r.program.Send(EventMsg{Event: event})
}

// Close implements progress.Reporter.Close.
func (r *Reporter) Close() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.closed = true
}

// Runner couples a batch runner to the progress display.
type Runner struct {
	model    *Model
	program  *tea.Program
	reporter *Reporter
	mutex    sync.Mutex
}

// NewRunner creates a new TUI runner.
func NewRunner() *Runner {
	model := NewModel()
	program := tea.NewProgram(model, tea.WithAltScreen())
	reporter := NewReporter(program)

	return &Runner{
		model:    model,
		program:  program,
		reporter: reporter,
	}
}

// Reporter returns the progress reporter for this TUI runner. Pass it to the
// engine via runbatch.WithReporter.
func (r *Runner) Reporter() progress.Reporter {
	return r.reporter
}

// Run executes the batch while the TUI owns the terminal. The display stays
// up after completion until the user quits; if the user quits early the
// batch is left to finish headless.
func (r *Runner) Run(ctx context.Context, engine *runbatch.Runner, ids []site.ID, op runbatch.Operation) (runbatch.Results, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	type batchReturn struct {
		results runbatch.Results
		err     error
	}

	resultCh := make(chan batchReturn, 1)

	go func() {
		results, err := engine.Run(ctx, ids, op)
		r.program.Send(BatchDoneMsg{Results: results, Err: err})
		resultCh <- batchReturn{results: results, err: err}
	}()

	_, tuiErr := r.program.Run()

	r.reporter.Close()

	ret := <-resultCh

	if ret.err != nil {
		return ret.results, ret.err
	}

	return ret.results, tuiErr
}
