package loader

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/tabula/internal/fetch"
	"github.com/five82/tabula/internal/paging"
	"github.com/five82/tabula/internal/resource"
	"github.com/five82/tabula/internal/state"
)

func newList(t *testing.T, b resource.Backend) *ListLoader {
	t.Helper()
	return NewListLoader(context.Background(), b, 5, zerolog.Nop())
}

func ids(items []resource.Record) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestListLoader_MountLoadsFirstPage(t *testing.T) {
	l := newList(t, newStubBackend(12))

	p := l.Mount()
	require.NotNil(t, p)
	assert.True(t, l.Store().Snapshot().Loading())

	assert.Equal(t, fetch.OutcomeLoaded, p())
	snap := l.Store().Snapshot()
	assert.Equal(t, fetch.StatusLoaded, snap.Status)
	assert.Equal(t, 1, snap.Page.Index)
	assert.Equal(t, 3, snap.TotalPages)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(snap.Items))
}

func TestListLoader_NextPreviousAtBounds(t *testing.T) {
	l := newList(t, newStubBackend(12))
	l.Mount()()

	assert.Nil(t, l.Previous(), "previous on page 1 is a no-op")

	require.Equal(t, fetch.OutcomeLoaded, l.Next()())
	require.Equal(t, fetch.OutcomeLoaded, l.Next()())
	snap := l.Store().Snapshot()
	assert.Equal(t, 3, snap.Page.Index)
	assert.Equal(t, []int64{11, 12}, ids(snap.Items), "items hold only the current page")

	assert.Nil(t, l.Next(), "next on the last page is a no-op")

	require.Equal(t, fetch.OutcomeLoaded, l.Previous()())
	assert.Equal(t, 2, l.Store().Snapshot().Page.Index)
}

func TestListLoader_GoToRejectsOutOfRange(t *testing.T) {
	l := newList(t, newStubBackend(12))
	l.Mount()()

	p, err := l.GoTo(4)
	assert.ErrorIs(t, err, paging.ErrOutOfRange)
	assert.Nil(t, p)
	assert.Equal(t, 1, l.Store().Snapshot().Page.Index)

	p, err = l.GoTo(1)
	require.NoError(t, err)
	assert.Nil(t, p, "jumping to the current page does not reload")

	p, err = l.GoTo(3)
	require.NoError(t, err)
	require.Equal(t, fetch.OutcomeLoaded, p())
	assert.Equal(t, 3, l.Store().Snapshot().Page.Index)
}

func TestListLoader_SupersededResponseNeverApplies(t *testing.T) {
	b := newStubBackend(30)
	l := newList(t, b)
	l.Mount()()

	gateA := b.gate(2)
	pA, err := l.GoTo(2)
	require.NoError(t, err)
	pB, err := l.GoTo(3)
	require.NoError(t, err)

	doneA := make(chan fetch.Outcome)
	go func() { doneA <- pA() }()

	// B resolves first, then the slow A.
	require.Equal(t, fetch.OutcomeLoaded, pB())
	close(gateA)
	assert.Equal(t, fetch.OutcomeStale, <-doneA)

	snap := l.Store().Snapshot()
	assert.Equal(t, 3, snap.Page.Index)
	assert.Equal(t, []int64{11, 12, 13, 14, 15}, ids(snap.Items))
	assert.Equal(t, fetch.StatusLoaded, snap.Status)
}

func TestListLoader_NextWhileLoadingAdvancesFromTarget(t *testing.T) {
	l := newList(t, newStubBackend(30))
	l.Mount()()

	first := l.Next()
	second := l.Next()
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, 3, l.Store().Snapshot().Pending)

	assert.Equal(t, fetch.OutcomeStale, first())
	assert.Equal(t, fetch.OutcomeLoaded, second())
	assert.Equal(t, 3, l.Store().Snapshot().Page.Index)
}

func TestListLoader_FailedLoadSurfacesError(t *testing.T) {
	b := newStubBackend(12)
	l := newList(t, b)
	l.Mount()()

	b.mu.Lock()
	b.failList[2] = errors.New("connection refused")
	b.mu.Unlock()

	assert.Equal(t, fetch.OutcomeFailed, l.Next()())
	snap := l.Store().Snapshot()
	assert.Equal(t, fetch.StatusError, snap.Status)
	assert.ErrorContains(t, snap.Err, "connection refused")
	assert.Equal(t, 1, snap.Page.Index, "failed page leaves the loaded page in place")
	assert.Len(t, snap.Items, 5)

	// Retrying after the error is allowed.
	b.mu.Lock()
	delete(b.failList, 2)
	b.mu.Unlock()
	p, err := l.GoTo(2)
	require.NoError(t, err)
	assert.Equal(t, fetch.OutcomeLoaded, p())
}

func TestListLoader_CollectionShrankBelowPage(t *testing.T) {
	b := newStubBackend(12)
	l := newList(t, b)
	l.Mount()()
	p, err := l.GoTo(3)
	require.NoError(t, err)
	p()

	b.mu.Lock()
	b.total = 7
	b.mu.Unlock()

	assert.Equal(t, fetch.OutcomeFailed, l.Reload()())
	snap := l.Store().Snapshot()
	assert.ErrorIs(t, snap.Err, ErrPageGone)
	assert.Equal(t, 2, snap.TotalPages)
	assert.Equal(t, 2, snap.Page.Index)
	assert.Empty(t, snap.Items)
}

func TestListLoader_UnmountCancelsInFlight(t *testing.T) {
	b := newStubBackend(12)
	l := newList(t, b)
	gate := b.gate(1)

	p := l.Mount()
	done := make(chan fetch.Outcome)
	go func() { done <- p() }()

	l.Unmount()
	l.Unmount()
	close(gate)

	assert.Equal(t, fetch.OutcomeStale, <-done)
	snap := l.Store().Snapshot()
	assert.Equal(t, fetch.StatusIdle, snap.Status)
	assert.Empty(t, snap.Items)
}

func TestListLoader_UnmountDropsStateAndRemountStartsOver(t *testing.T) {
	l := newList(t, newStubBackend(12))
	l.Mount()()
	p, err := l.GoTo(3)
	require.NoError(t, err)
	p()

	l.Unmount()
	snap := l.Store().Snapshot()
	assert.Equal(t, fetch.StatusIdle, snap.Status)
	assert.Equal(t, 1, snap.Page.Index)
	assert.Empty(t, snap.Items)

	require.Equal(t, fetch.OutcomeLoaded, l.Mount()())
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(l.Store().Snapshot().Items))
}

func TestListLoader_ParentCancellationIsSilent(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	l := NewListLoader(parent, ctxBackend{newStubBackend(0)}, 5, zerolog.Nop())

	p := l.Mount()
	cancel()
	assert.Equal(t, fetch.OutcomeCancelled, p())

	snap := l.Store().Snapshot()
	assert.Equal(t, fetch.StatusIdle, snap.Status)
	assert.NoError(t, snap.Err)
}

func TestRecordLoader_MountEditAndReplace(t *testing.T) {
	b := newStubBackend(10)
	l := NewRecordLoader(context.Background(), b, zerolog.Nop())

	require.Equal(t, fetch.OutcomeLoaded, l.Mount(5)())
	first := l.Store()
	snap := first.Snapshot()
	assert.True(t, snap.HasRecord)
	assert.EqualValues(t, 5, snap.Record.ID)

	assert.True(t, l.Edit(state.FieldTitle, "draft"))
	assert.Equal(t, "draft", l.Store().Snapshot().Record.Title)

	// Same id: reload into the same store.
	l.Mount(5)()
	assert.Same(t, first, l.Store())

	// Different id: state replaced wholesale.
	l.Mount(6)()
	assert.NotSame(t, first, l.Store())
	assert.EqualValues(t, 6, l.Store().Snapshot().Record.ID)
}

func TestRecordLoader_NotFoundIsError(t *testing.T) {
	l := NewRecordLoader(context.Background(), newStubBackend(3), zerolog.Nop())

	assert.Equal(t, fetch.OutcomeFailed, l.Mount(99)())
	snap := l.Store().Snapshot()
	assert.Equal(t, fetch.StatusError, snap.Status)
	var apiErr *resource.APIError
	assert.ErrorAs(t, snap.Err, &apiErr)
	assert.False(t, snap.HasRecord)
}

func TestRecordLoader_SwitchingIDsDiscardsOldResponse(t *testing.T) {
	b := newStubBackend(10)
	l := NewRecordLoader(context.Background(), b, zerolog.Nop())

	pOld := l.Mount(3)
	pNew := l.Mount(4)

	assert.Equal(t, fetch.OutcomeLoaded, pNew())
	assert.Equal(t, fetch.OutcomeStale, pOld())
	assert.EqualValues(t, 4, l.Store().Snapshot().Record.ID)
}

func TestRecordLoader_UnmountDropsDraft(t *testing.T) {
	l := NewRecordLoader(context.Background(), newStubBackend(3), zerolog.Nop())
	l.Mount(2)()
	l.Unmount()

	snap := l.Store().Snapshot()
	assert.False(t, snap.HasRecord)
	assert.Zero(t, snap.ID)
}

// ctxBackend blocks until the request context is done.
type ctxBackend struct{ *stubBackend }

func (ctxBackend) List(ctx context.Context, page paging.Page) (resource.ListPage, error) {
	<-ctx.Done()
	return resource.ListPage{}, ctx.Err()
}

func TestListLoader_SubscriberCanStartNextLoad(t *testing.T) {
	l := newList(t, newStubBackend(12))

	next := make(chan Pending, 1)
	unsubscribe := l.Store().Subscribe(func(c state.Collection) {
		if c.Status == fetch.StatusLoaded && c.Page.Index == 1 {
			select {
			case next <- l.Next():
			default:
			}
		}
	})
	defer unsubscribe()

	settled := make(chan fetch.Outcome, 1)
	go func() { settled <- l.Mount()() }()

	select {
	case out := <-settled:
		assert.Equal(t, fetch.OutcomeLoaded, out)
	case <-time.After(5 * time.Second):
		t.Fatal("load never settled: subscriber blocked on the loader")
	}

	p := <-next
	require.NotNil(t, p)
	assert.Equal(t, 2, l.Store().Snapshot().Target())
	assert.Equal(t, fetch.OutcomeLoaded, p())
	assert.Equal(t, 2, l.Store().Snapshot().Page.Index)
}
