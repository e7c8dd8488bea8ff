package loader

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/five82/tabula/internal/fetch"
	"github.com/five82/tabula/internal/resource"
	"github.com/five82/tabula/internal/state"
)

// RecordLoader is the single record loader behind the update view.
type RecordLoader struct {
	parent  context.Context
	backend resource.Backend
	ctrl    *fetch.Controller

	mu    sync.Mutex
	store *state.DetailStore
	view  context.Context
	leave context.CancelFunc
}

// NewRecordLoader returns an unmounted loader.
func NewRecordLoader(parent context.Context, backend resource.Backend, logger zerolog.Logger) *RecordLoader {
	if parent == nil {
		parent = context.Background()
	}
	l := &RecordLoader{
		parent:  parent,
		backend: backend,
		ctrl:    fetch.New("record", logger),
	}
	l.resetLocked(0)
	return l
}

// Store exposes the state the update view renders from. It changes
// identity whenever Mount switches to another id.
func (l *RecordLoader) Store() *state.DetailStore {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store
}

// Context is cancelled when the mounted record view goes away, either by
// Unmount or by Mount switching to another id. Writes issued from the view
// run under it.
func (l *RecordLoader) Context() context.Context {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.view
}

// Mount loads the record with id. A different id than the one mounted
// replaces the state wholesale; the same id reloads into the same state.
func (l *RecordLoader) Mount(id int64) Pending {
	tok, ctx := l.ctrl.Begin(l.parent)

	l.mu.Lock()
	if l.store.Snapshot().ID != id {
		l.resetLocked(id)
	}
	store := l.store
	l.mu.Unlock()

	store.BeginLoad()

	return func() fetch.Outcome {
		rec, err := l.backend.Get(ctx, id)
		store.Hold()
		defer store.Release()
		return l.ctrl.Complete(tok, err, fetch.Handlers{
			OnLoaded:    func() { store.ApplyRecord(rec) },
			OnError:     store.FailLoad,
			OnCancelled: store.AbandonLoad,
		})
	}
}

// Unmount aborts the in-flight load and drops the draft.
func (l *RecordLoader) Unmount() {
	l.ctrl.Cancel()

	l.mu.Lock()
	l.resetLocked(0)
	l.mu.Unlock()
}

// resetLocked drops the current view: it cancels the view context and
// installs fresh state keyed by id.
func (l *RecordLoader) resetLocked(id int64) {
	if l.leave != nil {
		l.leave()
	}
	l.view, l.leave = context.WithCancel(l.parent)
	l.store = state.NewDetailStore(id)
}

// Edit applies one field edit to the local draft.
func (l *RecordLoader) Edit(field state.Field, value string) bool {
	return l.Store().Edit(field, value)
}
