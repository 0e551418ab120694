package resource

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yassnemo/health-pulse-sub000/pkg/api"
)

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}

func TestInitialFetchResolves(t *testing.T) {
	scope := NewScope()
	defer scope.Close()

	r := New(scope, "", func(ctx context.Context) (string, error) {
		return "fetched", nil
	})

	eventually(t, func() bool {
		s := r.Snapshot()
		return !s.Loading && s.Data == "fetched" && s.Err == ""
	})
}

func TestFetchErrorSurfacesServerDetail(t *testing.T) {
	scope := NewScope()
	defer scope.Close()

	r := New(scope, "", func(ctx context.Context) (string, error) {
		return "", &api.Error{Status: 404, Detail: "Patient not found"}
	})

	eventually(t, func() bool {
		s := r.Snapshot()
		return !s.Loading && s.Err == "Patient not found"
	})
}

func TestStaleCompletionIsDiscarded(t *testing.T) {
	scope := NewScope()
	defer scope.Close()

	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	var calls atomic.Int64

	r := New(scope, "", func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			close(firstStarted)
			<-releaseFirst
			return "stale", nil
		}
		return "fresh", nil
	})

	<-firstStarted
	r.Refresh()
	eventually(t, func() bool {
		s := r.Snapshot()
		return !s.Loading && s.Data == "fresh"
	})

	// The first fetch now completes out of order; its write must be
	// suppressed because its generation was superseded.
	close(releaseFirst)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, "fresh", r.Snapshot().Data)
}

func TestCompletionAfterTeardownNeverWrites(t *testing.T) {
	scope := NewScope()

	started := make(chan struct{})
	release := make(chan struct{})
	r := New(scope, "initial", func(ctx context.Context) (string, error) {
		close(started)
		<-release
		return "late", nil
	})

	var wrote atomic.Bool
	r.Subscribe(func(s State[string]) {
		if s.Data == "late" {
			wrote.Store(true)
		}
	})

	<-started
	scope.Close()
	close(release)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, "initial", r.Snapshot().Data)
	assert.False(t, wrote.Load())
}

func TestScopeCloseCancelsFetchContext(t *testing.T) {
	scope := NewScope()
	canceled := make(chan struct{})

	New(scope, "", func(ctx context.Context) (string, error) {
		<-ctx.Done()
		close(canceled)
		return "", ctx.Err()
	})

	scope.Close()
	select {
	case <-canceled:
	case <-time.After(2 * time.Second):
		t.Fatal("fetch context was not canceled on scope close")
	}
}

func TestSetDepsRefetchesOnlyOnChange(t *testing.T) {
	scope := NewScope()
	defer scope.Close()

	var calls atomic.Int64
	r := New(scope, 0, func(ctx context.Context) (int, error) {
		return int(calls.Add(1)), nil
	})
	eventually(t, func() bool { return !r.Snapshot().Loading })

	r.SetDeps("dept", 1)
	eventually(t, func() bool { return calls.Load() == 2 && !r.Snapshot().Loading })

	// Same vector: no refetch.
	r.SetDeps("dept", 1)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(2), calls.Load())

	r.SetDeps("dept", 2)
	eventually(t, func() bool { return calls.Load() == 3 })
}

func TestSetDataIsOptimisticUntilRefresh(t *testing.T) {
	scope := NewScope()
	defer scope.Close()

	r := New(scope, "", func(ctx context.Context) (string, error) {
		return "server", nil
	})
	eventually(t, func() bool { return r.Snapshot().Data == "server" })

	r.SetData("optimistic")
	assert.Equal(t, "optimistic", r.Snapshot().Data)

	r.Refresh()
	eventually(t, func() bool {
		s := r.Snapshot()
		return !s.Loading && s.Data == "server"
	})
}

func TestSetDataAfterCloseIsIgnored(t *testing.T) {
	scope := NewScope()
	r := New(scope, "initial", func(ctx context.Context) (string, error) {
		return "initial", nil
	})
	eventually(t, func() bool { return !r.Snapshot().Loading })

	scope.Close()
	r.SetData("after-close")
	assert.Equal(t, "initial", r.Snapshot().Data)
}

func TestRefreshAfterCloseIsNoop(t *testing.T) {
	scope := NewScope()
	var calls atomic.Int64
	r := New(scope, 0, func(ctx context.Context) (int, error) {
		return int(calls.Add(1)), nil
	})
	eventually(t, func() bool { return !r.Snapshot().Loading })

	scope.Close()
	r.Refresh()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(1), calls.Load())
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	scope := NewScope()
	defer scope.Close()

	r := New(scope, "", func(ctx context.Context) (string, error) {
		return "v", nil
	})
	eventually(t, func() bool { return !r.Snapshot().Loading })

	var notified atomic.Int64
	unsub := r.Subscribe(func(State[string]) { notified.Add(1) })

	r.SetData("a")
	eventually(t, func() bool { return notified.Load() == 1 })

	unsub()
	r.SetData("b")
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(1), notified.Load())
}
