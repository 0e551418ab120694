// Package resource manages the lifecycle of remotely fetched data: it
// owns the loading/error state around a fetch thunk, refetches when the
// declared dependencies change, and guarantees that neither stale
// completions nor completions arriving after scope teardown ever write
// state.
package resource

import (
	"context"
	"reflect"
	"sync"

	"github.com/yassnemo/health-pulse-sub000/pkg/api"
)

// Fetcher produces one value of the resource. It is re-invoked on every
// refresh and dependency change.
type Fetcher[T any] func(ctx context.Context) (T, error)

// State is an observable snapshot of a resource. Err holds the
// user-renderable message extracted from the last failed fetch; it is
// empty while the last fetch succeeded or is still in flight.
type State[T any] struct {
	Data    T
	Loading bool
	Err     string
}

// Scope bounds the lifetime of the resources created within it. Closing
// the scope cancels in-flight fetch contexts and forbids any further
// state writes, which is what makes teardown mid-flight safe.
type Scope struct {
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// NewScope creates a scope detached from any parent context.
func NewScope() *Scope {
	return NewScopeContext(context.Background())
}

// NewScopeContext creates a scope whose fetches are bounded by parent.
func NewScopeContext(parent context.Context) *Scope {
	ctx, cancel := context.WithCancel(parent)
	return &Scope{ctx: ctx, cancel: cancel}
}

// Close tears the scope down. Idempotent.
func (s *Scope) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
}

// Closed reports whether the scope has been torn down.
func (s *Scope) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Resource is one remotely fetched value with its lifecycle state.
type Resource[T any] struct {
	scope *Scope
	fetch Fetcher[T]

	mu    sync.Mutex
	state State[T]
	deps  []any
	// epoch is the generation counter: each launched fetch captures the
	// value at launch, and a completion whose generation is no longer
	// current is discarded. Monotonic, never timestamps.
	epoch uint64

	subMu   sync.Mutex
	subs    map[int]func(State[T])
	nextSub int
}

// New creates a resource owned by scope and starts the initial fetch.
// initial seeds Data until the first fetch resolves.
func New[T any](scope *Scope, initial T, fetch Fetcher[T]) *Resource[T] {
	r := &Resource[T]{
		scope: scope,
		fetch: fetch,
		state: State[T]{Data: initial},
		subs:  make(map[int]func(State[T])),
	}
	r.launch()
	return r
}

// Snapshot returns the current state.
func (r *Resource[T]) Snapshot() State[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Refresh re-runs the fetch, bumping the generation so any still-pending
// older fetch can no longer write.
func (r *Resource[T]) Refresh() {
	r.launch()
}

// SetDeps declares the dependency vector. When it differs from the
// previous one a refetch is triggered; an equal vector is a no-op.
func (r *Resource[T]) SetDeps(deps ...any) {
	r.mu.Lock()
	if reflect.DeepEqual(r.deps, deps) {
		r.mu.Unlock()
		return
	}
	r.deps = deps
	r.mu.Unlock()
	r.launch()
}

// SetData applies an optimistic local mutation without fetching. The
// next refresh or dependency change overwrites it with server state.
func (r *Resource[T]) SetData(v T) {
	r.mu.Lock()
	if r.scope.Closed() {
		r.mu.Unlock()
		return
	}
	r.state.Data = v
	snap := r.state
	r.mu.Unlock()
	r.notify(snap)
}

// Subscribe registers fn to observe every state change. The returned
// function removes the subscription.
func (r *Resource[T]) Subscribe(fn func(State[T])) func() {
	r.subMu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.subMu.Unlock()
	return func() {
		r.subMu.Lock()
		delete(r.subs, id)
		r.subMu.Unlock()
	}
}

func (r *Resource[T]) notify(snap State[T]) {
	r.subMu.Lock()
	fns := make([]func(State[T]), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

func (r *Resource[T]) launch() {
	r.mu.Lock()
	if r.scope.Closed() {
		r.mu.Unlock()
		return
	}
	r.epoch++
	gen := r.epoch
	r.state.Loading = true
	r.state.Err = ""
	snap := r.state
	r.mu.Unlock()
	r.notify(snap)

	go func() {
		data, err := r.fetch(r.scope.ctx)

		r.mu.Lock()
		// A torn-down scope or a superseded generation never writes.
		if r.scope.Closed() || gen != r.epoch {
			r.mu.Unlock()
			return
		}
		if err != nil {
			r.state.Err = api.ErrorMessage(err)
		} else {
			r.state.Data = data
			r.state.Err = ""
		}
		r.state.Loading = false
		snap := r.state
		r.mu.Unlock()
		r.notify(snap)
	}()
}
