// Copyright (c) Big Cabal 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"sync"
	"time"

	"github.com/bigcabalworks/sitebatch/internal/ctxlog"
	"github.com/bigcabalworks/sitebatch/internal/progress"
	"github.com/bigcabalworks/sitebatch/internal/site"
	"github.com/bigcabalworks/sitebatch/internal/sitestack"
)

// runnerKey marks a context as belonging to an in-flight Run of a specific
// Runner, so a nested Run from inside an operation reuses the batch lock
// instead of deadlocking on it.
type runnerKey struct{}

// Runner executes operations across sites with guaranteed context
// restoration. Concurrent Run calls on one Runner serialize; the ambient
// site stack is a single-slot resource and interleaved switches from two
// batches would corrupt it for both.
type Runner struct {
	mu       sync.Mutex
	stack    *sitestack.Stack
	reporter progress.Reporter
}

// Option implements a functional options pattern for Runner.
type Option func(r *Runner)

// WithStack sets the site stack the runner switches on.
// Use this to give a worker its own stack instead of the process default.
func WithStack(stack *sitestack.Stack) Option {
	return func(r *Runner) {
		r.stack = stack
	}
}

// WithReporter sets the progress reporter for the runner.
func WithReporter(reporter progress.Reporter) Option {
	return func(r *Runner) {
		r.reporter = reporter
	}
}

// New creates a Runner. Without options it switches on sitestack.Default and
// reports progress nowhere.
func New(opts ...Option) *Runner {
	r := &Runner{
		stack:    sitestack.Default,
		reporter: progress.NopReporter{},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Stack returns the site stack this runner switches on.
func (r *Runner) Stack() *sitestack.Stack {
	return r.stack
}

// Run executes op once per id, in input order, and returns one outcome per
// input id in the same order. Duplicates are executed independently.
//
// A per-site failure (operation error, panic, or a sentinel id in the list)
// is recorded and iteration continues. A *FatalError is returned when the
// restoration machinery itself breaks; the batch stops at the offending site
// and the partial results are returned alongside.
//
// Cancellation never leaves the stack imbalanced: the active frame is popped
// before the cancellation surfaces, sites not yet started are recorded as
// canceled, and ctx.Err is returned.
func (r *Runner) Run(ctx context.Context, ids []site.ID, op Operation) (Results, error) {
	if owner, ok := ctx.Value(runnerKey{}).(*Runner); !ok || owner != r {
		r.mu.Lock()
		defer r.mu.Unlock()

		ctx = context.WithValue(ctx, runnerKey{}, r)
	}

	logger := ctxlog.Logger(ctx).With("sites", len(ids))
	logger.Debug("starting batch")

	entryDepth := r.stack.Depth()
	results := make(Results, 0, len(ids))

	for i, id := range ids {
		if ctx.Err() != nil {
			results = append(results, &Result{
				SiteID: id,
				Status: StatusCanceled,
				Err:    ctx.Err(),
			})
			r.report(progress.Event{SiteID: id, Index: i, Total: len(ids), Type: progress.EventSiteCanceled})

			continue
		}

		res, fatal := r.runOne(ctx, i, len(ids), id, op)
		results = append(results, res)

		if fatal != nil {
			logger.Error("aborting batch", "site", id.String(), "error", fatal)
			return results, fatal
		}
	}

	if d := r.stack.Depth(); d != entryDepth {
		return results, NewFatalError(site.None, ErrDepthMismatch)
	}

	r.report(progress.Event{Total: len(ids), Type: progress.EventBatchCompleted, Timestamp: time.Now()})
	logger.Debug("batch finished", "failed", results.HasError())

	return results, ctx.Err()
}

// runOne performs one push/invoke/pop cycle. The pop and the restoration
// check live in a deferred guard so they execute on every exit path.
func (r *Runner) runOne(ctx context.Context, index, total int, id site.ID, op Operation) (res *Result, fatal *FatalError) {
	start := time.Now()
	res = &Result{SiteID: id, Status: StatusSuccess}

	prev := r.stack.Current()

	if err := r.stack.Push(id); err != nil {
		// The frame was never pushed, so there is nothing to pop.
		res.Status = StatusError
		res.Err = err
		res.Duration = time.Since(start)
		r.report(progress.Event{SiteID: id, Index: index, Total: total, Type: progress.EventSiteFailed, Err: err, Timestamp: time.Now()})

		return res, nil
	}

	r.report(progress.Event{SiteID: id, Index: index, Total: total, Type: progress.EventSiteStarted, Timestamp: start})

	defer func() {
		popped, err := r.stack.Pop()

		switch {
		case err != nil:
			fatal = NewFatalError(id, err)
		case popped != id, r.stack.Current() != prev:
			fatal = NewFatalError(id, ErrRestoreMismatch)
		}

		res.Duration = time.Since(start)

		switch {
		case fatal != nil:
			r.report(progress.Event{SiteID: id, Index: index, Total: total, Type: progress.EventSiteFailed, Err: fatal, Timestamp: time.Now()})
		case res.Status == StatusCanceled:
			r.report(progress.Event{SiteID: id, Index: index, Total: total, Type: progress.EventSiteCanceled, Timestamp: time.Now()})
		case res.Status == StatusError:
			r.report(progress.Event{SiteID: id, Index: index, Total: total, Type: progress.EventSiteFailed, Err: res.Err, Timestamp: time.Now()})
		default:
			r.report(progress.Event{SiteID: id, Index: index, Total: total, Type: progress.EventSiteCompleted, Timestamp: time.Now()})
		}
	}()

	ret := r.invoke(ctx, id, op)

	res.Output = ret.Output
	res.Err = ret.Err

	switch {
	case ret.Err != nil && ctx.Err() != nil:
		res.Status = StatusCanceled
	case ret.Err != nil:
		res.Status = StatusError
	}

	return res, nil
}

// invoke runs the operation in a goroutine so a cancelled context surfaces
// without waiting for the operation to notice. The channel is buffered and
// never closed; a late result from an abandoned operation is simply dropped
// with the channel.
func (r *Runner) invoke(ctx context.Context, id site.ID, op Operation) OperationReturn {
	retCh := make(chan OperationReturn, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				ctxlog.Error(ctx, "operation panicked", "site", id.String(), "panic", p)
				retCh <- OperationReturn{Err: NewPanicError(p)}
			}
		}()

		retCh <- op(site.NewContext(ctx, id), id)
	}()

	select {
	case ret := <-retCh:
		return ret
	case <-ctx.Done():
		return OperationReturn{Err: ctx.Err()}
	}
}

func (r *Runner) report(event progress.Event) {
	if r.reporter == nil {
		return
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	r.reporter.Report(event)
}
