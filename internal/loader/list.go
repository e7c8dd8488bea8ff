package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/five82/tabula/internal/fetch"
	"github.com/five82/tabula/internal/paging"
	"github.com/five82/tabula/internal/resource"
	"github.com/five82/tabula/internal/state"
)

// ErrPageGone is reported when a page loads after the collection shrank
// below it.
var ErrPageGone = errors.New("page no longer exists")

// ListLoader is the paginated list loader.
type ListLoader struct {
	parent  context.Context
	backend resource.Backend
	ctrl    *fetch.Controller
	store   *state.CollectionStore
	size    int
}

// NewListLoader returns a loader positioned on page 1. Requests derive from
// parent, so cancelling parent aborts them.
func NewListLoader(parent context.Context, backend resource.Backend, pageSize int, logger zerolog.Logger) *ListLoader {
	if parent == nil {
		parent = context.Background()
	}
	if pageSize <= 0 {
		pageSize = paging.DefaultSize
	}
	return &ListLoader{
		parent:  parent,
		backend: backend,
		ctrl:    fetch.New("list", logger),
		store:   state.NewCollectionStore(pageSize),
		size:    pageSize,
	}
}

// Store exposes the state the list view renders from.
func (l *ListLoader) Store() *state.CollectionStore {
	return l.store
}

// Mount loads page 1.
func (l *ListLoader) Mount() Pending {
	return l.load(1)
}

// Unmount aborts the in-flight load, if any, and drops the list state.
func (l *ListLoader) Unmount() {
	l.ctrl.Cancel()
	l.store.Reset()
}

// Reload fetches the page the view is on (or heading to) again.
func (l *ListLoader) Reload() Pending {
	return l.load(l.store.Snapshot().Target())
}

// Next moves one page forward; nil on the last page.
func (l *ListLoader) Next() Pending {
	snap := l.store.Snapshot()
	cur := snap.Target()
	next := paging.Next(cur, snap.TotalPages)
	if next == cur {
		return nil
	}
	return l.load(next)
}

// Previous moves one page back; nil on page 1.
func (l *ListLoader) Previous() Pending {
	cur := l.store.Snapshot().Target()
	prev := paging.Previous(cur)
	if prev == cur {
		return nil
	}
	return l.load(prev)
}

// GoTo jumps to target. Out-of-range targets are rejected with
// paging.ErrOutOfRange; the current page returns nil without loading.
func (l *ListLoader) GoTo(target int) (Pending, error) {
	snap := l.store.Snapshot()
	page, err := paging.GoTo(target, snap.TotalPages)
	if err != nil {
		return nil, err
	}
	if page == snap.Target() && snap.Status != fetch.StatusError {
		return nil, nil
	}
	return l.load(page), nil
}

func (l *ListLoader) load(index int) Pending {
	tok, ctx := l.ctrl.Begin(l.parent)
	l.store.BeginLoad(index)
	page := paging.Page{Index: index, Size: l.size}

	return func() fetch.Outcome {
		res, err := l.backend.List(ctx, page)
		total := 1
		if err == nil {
			total = paging.TotalPages(res.TotalCount, page.Size)
			if index > total {
				err = fmt.Errorf("%w: page %d of %d", ErrPageGone, index, total)
			}
		}
		l.store.Hold()
		defer l.store.Release()
		return l.ctrl.Complete(tok, err, fetch.Handlers{
			OnLoaded: func() {
				l.store.ApplyPage(index, res.Items, total)
			},
			OnError: func(err error) {
				if errors.Is(err, ErrPageGone) {
					l.store.FailBeyondLast(total, err)
					return
				}
				l.store.FailLoad(err)
			},
			OnCancelled: l.store.AbandonLoad,
		})
	}
}
