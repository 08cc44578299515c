// Package singleflight coalesces concurrent loads of the same key.
package singleflight

import (
	"context"
	"fmt"
	"sync"
)

// Group runs at most one fn per key at a time. Callers that arrive while a
// load is in flight wait for its result instead of starting their own.
//
// The first caller for a key is the leader and runs fn on its own calling
// goroutine. Followers wait on the flight's done channel; cancelling a
// follower's ctx releases only that follower. fn is responsible for
// honouring the leader's context.
type Group[K comparable, V any] struct {
	mu      sync.Mutex
	flights map[K]*flight[V]
}

type flight[V any] struct {
	done     chan struct{} // closed after val and err are set
	val      V
	err      error
	waiters  int  // followers joined so far
	panicked bool // fn panicked; err holds the *PanicError
}

// PanicError wraps a panic raised by fn so that followers see an error
// instead of blocking forever. The leader re-panics.
type PanicError struct {
	Value any
}

func (p *PanicError) Error() string { return fmt.Sprintf("singleflight: load panicked: %v", p.Value) }

// Do runs fn for key unless a run is already in flight, in which case it
// waits for that run's result or for ctx to be done.
func (g *Group[K, V]) Do(ctx context.Context, key K, fn func() (V, error)) (V, error) {
	g.mu.Lock()
	if g.flights == nil {
		g.flights = make(map[K]*flight[V])
	}
	if f, ok := g.flights[key]; ok {
		f.waiters++
		g.mu.Unlock()
		select {
		case <-f.done:
			return f.val, f.err
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err()
		}
	}
	f := &flight[V]{done: make(chan struct{})}
	g.flights[key] = f
	g.mu.Unlock()

	g.run(key, f, fn)
	if f.panicked {
		panic(f.err.(*PanicError).Value)
	}
	return f.val, f.err
}

// InFlight returns the number of keys currently being loaded.
func (g *Group[K, V]) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.flights)
}

// Waiters returns the number of followers that joined key's flight, or 0
// when no load for key is in flight.
func (g *Group[K, V]) Waiters(key K) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if f, ok := g.flights[key]; ok {
		return f.waiters
	}
	return 0
}

func (g *Group[K, V]) run(key K, f *flight[V], fn func() (V, error)) {
	defer func() {
		if r := recover(); r != nil {
			f.panicked = true
			f.err = &PanicError{Value: r}
		}
		g.mu.Lock()
		delete(g.flights, key)
		g.mu.Unlock()
		close(f.done)
	}()
	f.val, f.err = fn()
}
