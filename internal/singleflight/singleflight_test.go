package singleflight

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestGroup_CoalescesConcurrentCalls(t *testing.T) {
	t.Parallel()

	var g Group[string, int]
	var calls atomic.Int64
	release := make(chan struct{})

	var eg errgroup.Group
	results := make([]int, 16)
	for i := range results {
		eg.Go(func() error {
			v, err := g.Do(context.Background(), "k", func() (int, error) {
				calls.Add(1)
				<-release
				return 42, nil
			})
			results[i] = v
			return err
		})
	}

	require.Eventually(t, func() bool { return g.Waiters("k") == len(results)-1 }, 2*time.Second, time.Millisecond)
	close(release)
	require.NoError(t, eg.Wait())

	assert.Equal(t, int64(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, 42, v)
	}
	assert.Equal(t, 0, g.InFlight())
}

func TestGroup_ErrorIsShared(t *testing.T) {
	t.Parallel()

	var g Group[int, string]
	boom := errors.New("boom")
	_, err := g.Do(context.Background(), 1, func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)

	// A finished flight is forgotten: the next call runs fn again.
	v, err := g.Do(context.Background(), 1, func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestGroup_FollowerCancellation(t *testing.T) {
	t.Parallel()

	var g Group[string, int]
	release := make(chan struct{})
	leaderDone := make(chan error, 1)
	go func() {
		_, err := g.Do(context.Background(), "k", func() (int, error) {
			<-release
			return 1, nil
		})
		leaderDone <- err
	}()
	require.Eventually(t, func() bool { return g.InFlight() == 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.Do(ctx, "k", func() (int, error) { return 2, nil })
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	assert.NoError(t, <-leaderDone)
}

func TestGroup_PanicReleasesFollowers(t *testing.T) {
	t.Parallel()

	var g Group[string, int]
	release := make(chan struct{})
	go func() {
		defer func() { _ = recover() }()
		_, _ = g.Do(context.Background(), "k", func() (int, error) {
			<-release
			panic("kaboom")
		})
	}()
	require.Eventually(t, func() bool { return g.InFlight() == 1 }, time.Second, time.Millisecond)

	followerErr := make(chan error, 1)
	go func() {
		_, err := g.Do(context.Background(), "k", func() (int, error) { return 0, nil })
		followerErr <- err
	}()
	require.Eventually(t, func() bool { return g.Waiters("k") == 1 }, time.Second, time.Millisecond)
	close(release)

	err := <-followerErr
	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "kaboom", pe.Value)
}

// A *PanicError returned as a plain error is a result like any other.
func TestGroup_ReturnedPanicErrorDoesNotPanic(t *testing.T) {
	t.Parallel()

	var g Group[string, int]
	want := &PanicError{Value: "not a real panic"}
	require.NotPanics(t, func() {
		_, err := g.Do(context.Background(), "k", func() (int, error) { return 0, want })
		assert.Same(t, want, err)
	})
}

func TestGroup_LeaderRepanics(t *testing.T) {
	t.Parallel()

	var g Group[string, int]
	assert.PanicsWithValue(t, "kaboom", func() {
		_, _ = g.Do(context.Background(), "k", func() (int, error) { panic("kaboom") })
	})
	assert.Equal(t, 0, g.InFlight())
}
