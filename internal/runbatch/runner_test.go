// Copyright (c) Big Cabal 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/bigcabalworks/sitebatch/internal/site"
	"github.com/bigcabalworks/sitebatch/internal/sitestack"
)

func newTestRunner() *Runner {
	return New(WithStack(&sitestack.Stack{}))
}

func okOp(_ context.Context, _ site.ID) OperationReturn {
	return OperationReturn{}
}

func TestRun_AllSuccess(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := newTestRunner()
	ids := []site.ID{"alpha", "beta", "gamma"}

	var visited []site.ID

	results, err := r.Run(context.Background(), ids, func(_ context.Context, id site.ID) OperationReturn {
		visited = append(visited, id)
		return OperationReturn{Output: []byte(id)}
	})

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, ids, visited)

	for i, res := range results {
		assert.Equal(t, ids[i], res.SiteID)
		assert.Equal(t, StatusSuccess, res.Status)
		assert.Equal(t, []byte(ids[i]), res.Output)
		assert.NoError(t, res.Err)
	}

	assert.Equal(t, site.None, r.Stack().Current())
	assert.Equal(t, 0, r.Stack().Depth())
}

func TestRun_FailureIsolation(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := newTestRunner()
	testErr := errors.New("beta exploded")

	results, err := r.Run(context.Background(), []site.ID{"alpha", "beta", "gamma"},
		func(_ context.Context, id site.ID) OperationReturn {
			if id == "beta" {
				return OperationReturn{Err: testErr}
			}

			return OperationReturn{}
		})

	require.NoError(t, err, "a per-site failure must not fail the batch")
	require.Len(t, results, 3)

	assert.Equal(t, StatusSuccess, results[0].Status)
	assert.Equal(t, StatusError, results[1].Status)
	assert.Equal(t, site.ID("beta"), results[1].SiteID)
	assert.ErrorIs(t, results[1].Err, testErr)
	assert.Equal(t, StatusSuccess, results[2].Status, "sites after a failure must still run")

	assert.Equal(t, site.None, r.Stack().Current())
}

func TestRun_EmptyList(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := newTestRunner()

	calls := 0

	results, err := r.Run(context.Background(), nil, func(_ context.Context, _ site.ID) OperationReturn {
		calls++
		return OperationReturn{}
	})

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, calls)
	assert.Equal(t, 0, r.Stack().Depth())
}

func TestRun_DuplicatesRunIndependently(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := newTestRunner()

	calls := 0

	results, err := r.Run(context.Background(), []site.ID{"alpha", "alpha"},
		func(_ context.Context, id site.ID) OperationReturn {
			calls++
			assert.Equal(t, site.ID("alpha"), r.Stack().Current())
			assert.Equal(t, 1, r.Stack().Depth(), "each occurrence gets its own push")

			return OperationReturn{}
		})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 2, calls)
	assert.Equal(t, site.ID("alpha"), results[0].SiteID)
	assert.Equal(t, site.ID("alpha"), results[1].SiteID)
	assert.Equal(t, 0, r.Stack().Depth())
}

func TestRun_SentinelInListIsPerSiteFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := newTestRunner()

	var visited []site.ID

	results, err := r.Run(context.Background(), []site.ID{"alpha", site.None, "gamma"},
		func(_ context.Context, id site.ID) OperationReturn {
			visited = append(visited, id)
			return OperationReturn{}
		})

	require.NoError(t, err, "a sentinel entry is a per-site failure, not a batch failure")
	require.Len(t, results, 3)

	assert.Equal(t, StatusError, results[1].Status)
	assert.ErrorIs(t, results[1].Err, site.ErrNoneID)
	assert.Equal(t, []site.ID{"alpha", "gamma"}, visited, "the operation must never see the sentinel")
	assert.Equal(t, 0, r.Stack().Depth())
}

func TestRun_OperationSeesActiveSite(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := newTestRunner()

	results, err := r.Run(context.Background(), []site.ID{"alpha", "beta"},
		func(ctx context.Context, id site.ID) OperationReturn {
			assert.Equal(t, id, r.Stack().Current(), "ambient lookup must agree with the explicit argument")
			assert.Equal(t, id, site.FromContext(ctx))

			return OperationReturn{}
		})

	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRun_PanicRecordedAsFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := newTestRunner()

	results, err := r.Run(context.Background(), []site.ID{"alpha", "beta"},
		func(_ context.Context, id site.ID) OperationReturn {
			if id == "alpha" {
				panic("boom")
			}

			return OperationReturn{}
		})

	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, StatusError, results[0].Status)

	var panicErr *PanicError
	assert.ErrorAs(t, results[0].Err, &panicErr)
	assert.Contains(t, results[0].Err.Error(), "boom")

	assert.Equal(t, StatusSuccess, results[1].Status)
	assert.Equal(t, 0, r.Stack().Depth())
}

func TestRun_OperationPopsStackIsFatal(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := newTestRunner()

	var visited []site.ID

	results, err := r.Run(context.Background(), []site.ID{"alpha", "beta", "gamma"},
		func(_ context.Context, id site.ID) OperationReturn {
			visited = append(visited, id)

			if id == "alpha" {
				_, popErr := r.Stack().Pop() // misbehaving operation unbalances the stack
				assert.NoError(t, popErr)
			}

			return OperationReturn{}
		})

	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, site.ID("alpha"), fatal.SiteID)

	assert.Equal(t, []site.ID{"alpha"}, visited, "no further sites may run once the context is corrupted")
	assert.Len(t, results, 1)
}

func TestRun_OperationPushesStackIsFatal(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := newTestRunner()

	_, err := r.Run(context.Background(), []site.ID{"alpha", "beta"},
		func(_ context.Context, id site.ID) OperationReturn {
			if id == "alpha" {
				assert.NoError(t, r.Stack().Push("rogue"))
			}

			return OperationReturn{}
		})

	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	assert.ErrorIs(t, err, ErrRestoreMismatch)
}

func TestRun_NestedBatchUnwinds(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := newTestRunner()

	var innerVisited []site.ID

	results, err := r.Run(context.Background(), []site.ID{"outer"},
		func(ctx context.Context, id site.ID) OperationReturn {
			innerResults, innerErr := r.Run(ctx, []site.ID{"inner-a", "inner-b"},
				func(_ context.Context, innerID site.ID) OperationReturn {
					innerVisited = append(innerVisited, innerID)
					assert.Equal(t, innerID, r.Stack().Current())
					assert.Equal(t, 2, r.Stack().Depth(), "nested frame sits on top of the outer one")

					return OperationReturn{}
				})
			if innerErr != nil {
				return OperationReturn{Err: innerErr}
			}

			assert.Len(t, innerResults, 2)
			assert.Equal(t, id, r.Stack().Current(), "nested batch must fully unwind before the outer pop")

			return OperationReturn{}
		})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, StatusSuccess, results[0].Status)
	assert.Equal(t, []site.ID{"inner-a", "inner-b"}, innerVisited)
	assert.Equal(t, 0, r.Stack().Depth())
}

func TestRun_CancellationRestoresContextFirst(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := newTestRunner()
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})

	go func() {
		<-started
		cancel()
	}()

	results, err := r.Run(ctx, []site.ID{"alpha", "beta", "gamma"},
		func(opCtx context.Context, id site.ID) OperationReturn {
			if id == "alpha" {
				close(started)
				<-opCtx.Done()

				return OperationReturn{Err: opCtx.Err()}
			}

			return OperationReturn{}
		})

	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 3, "cancelled batches still record one outcome per input site")

	assert.Equal(t, StatusCanceled, results[0].Status)
	assert.Equal(t, StatusCanceled, results[1].Status)
	assert.Equal(t, StatusCanceled, results[2].Status)
	assert.Equal(t, site.None, r.Stack().Current(), "cancellation must never leak a frame")
	assert.Equal(t, 0, r.Stack().Depth())

	cancel()
}

func TestRun_SlowOperationDoesNotBlockCancellation(t *testing.T) {
	r := newTestRunner()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	release := make(chan struct{})
	started := make(chan struct{})

	go func() {
		<-started
		cancel()
	}()

	done := make(chan struct{})

	var results Results

	var err error

	go func() {
		defer close(done)

		results, err = r.Run(ctx, []site.ID{"alpha"},
			func(_ context.Context, _ site.ID) OperationReturn {
				close(started)
				<-release // ignores cancellation on purpose

				return OperationReturn{}
			})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation despite a stuck operation")
	}

	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 1)
	assert.Equal(t, StatusCanceled, results[0].Status)
	assert.Equal(t, 0, r.Stack().Depth())

	close(release) // let the abandoned operation goroutine finish
}

func TestRun_ConcurrentBatchesSerialize(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := newTestRunner()

	const batches = 4

	var wg sync.WaitGroup

	for range batches {
		wg.Add(1)

		go func() {
			defer wg.Done()

			results, err := r.Run(context.Background(), []site.ID{"alpha", "beta"},
				func(_ context.Context, _ site.ID) OperationReturn {
					// With serialized batches exactly one frame is ever active.
					assert.Equal(t, 1, r.Stack().Depth())
					return OperationReturn{}
				})
			assert.NoError(t, err)
			assert.Len(t, results, 2)
		}()
	}

	wg.Wait()
	assert.Equal(t, 0, r.Stack().Depth())
}

func TestRun_PreservesPreexistingContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	stack := &sitestack.Stack{}
	require.NoError(t, stack.Push("ambient"))

	r := New(WithStack(stack))

	results, err := r.Run(context.Background(), []site.ID{"alpha"},
		func(_ context.Context, _ site.ID) OperationReturn {
			return OperationReturn{}
		})

	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, site.ID("ambient"), stack.Current(), "the pre-call context must be restored")
	assert.Equal(t, 1, stack.Depth())
}

func TestRun_DurationsRecorded(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := newTestRunner()

	results, err := r.Run(context.Background(), []site.ID{"alpha"},
		func(_ context.Context, _ site.ID) OperationReturn {
			time.Sleep(10 * time.Millisecond)
			return OperationReturn{}
		})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.GreaterOrEqual(t, results[0].Duration, 10*time.Millisecond)
}

func TestRun_DefaultStack(t *testing.T) {
	r := New()
	assert.Same(t, sitestack.Default, r.Stack())

	_, err := r.Run(context.Background(), []site.ID{"alpha"}, okOp)
	require.NoError(t, err)
	assert.Equal(t, 0, sitestack.Default.Depth())
}
