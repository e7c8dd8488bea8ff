// Package mutation writes records through the backend and folds the results
// into whichever view state is mounted.
package mutation

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/five82/tabula/internal/metrics"
	"github.com/five82/tabula/internal/resource"
	"github.com/five82/tabula/internal/route"
	"github.com/five82/tabula/internal/state"
)

// ErrNothingToSubmit is returned by Submit when no record is loaded or a
// submit is already running.
var ErrNothingToSubmit = errors.New("no record ready to submit")

// ErrViewGone is returned by Submit when the update view it was issued from
// was unmounted before the write settled. Nothing is applied and no
// navigation happens.
var ErrViewGone = errors.New("update view left before the save settled")

// ListState is satisfied by the list loader.
type ListState interface {
	Store() *state.CollectionStore
}

// DetailState is satisfied by the record loader.
type DetailState interface {
	Store() *state.DetailStore
}

// Facade is the single entry point for record writes.
type Facade struct {
	backend resource.Backend
	list    ListState
	detail  DetailState
	nav     route.Navigator
	logger  zerolog.Logger
}

// New wires a façade. list, detail and nav may be nil when the caller has no
// such view.
func New(backend resource.Backend, list ListState, detail DetailState, nav route.Navigator, logger zerolog.Logger) *Facade {
	return &Facade{
		backend: backend,
		list:    list,
		detail:  detail,
		nav:     nav,
		logger:  logger.With().Str("component", "mutation").Logger(),
	}
}

// Create posts draft and puts the server's record at the front of the
// current page. The page count is left alone.
func (f *Facade) Create(ctx context.Context, draft resource.Draft) (resource.Record, error) {
	rec, err := f.backend.Create(ctx, draft)
	if err != nil {
		f.failList("create", err)
		return resource.Record{}, fmt.Errorf("create record: %w", err)
	}
	f.succeeded("create", rec.ID)
	if store := f.listStore(); store != nil {
		store.Prepend(rec)
	}
	return rec, nil
}

// Update puts draft for id and replaces the matching item in place.
func (f *Facade) Update(ctx context.Context, id int64, draft resource.Draft) (resource.Record, error) {
	rec, err := f.backend.Update(ctx, id, draft)
	if err != nil {
		f.failList("update", err)
		return resource.Record{}, fmt.Errorf("update record %d: %w", id, err)
	}
	if rec.ID == 0 {
		rec.ID = id
	}
	f.succeeded("update", id)
	if store := f.listStore(); store != nil {
		store.Replace(rec)
	}
	return rec, nil
}

// Remove deletes id and drops it from the current page.
func (f *Facade) Remove(ctx context.Context, id int64) error {
	if err := f.backend.Delete(ctx, id); err != nil {
		f.failList("delete", err)
		return fmt.Errorf("delete record %d: %w", id, err)
	}
	f.succeeded("delete", id)
	if store := f.listStore(); store != nil {
		store.Remove(id)
	}
	return nil
}

// Submit writes the update view's draft. On success the draft becomes the
// server's record and the view navigates back to the list; on failure the
// local edits stay and the detail state reports the error. If the view was
// unmounted meanwhile the result is dropped and ErrViewGone returned.
func (f *Facade) Submit(ctx context.Context) (resource.Record, error) {
	if f.detail == nil {
		return resource.Record{}, ErrNothingToSubmit
	}
	store := f.detail.Store()
	draft, ok := store.BeginSubmit()
	if !ok {
		return resource.Record{}, ErrNothingToSubmit
	}

	rec, err := f.backend.Update(ctx, draft.ID, resource.DraftFrom(draft))
	if f.detail.Store() != store {
		f.logger.Debug().Err(err).Int64("id", draft.ID).Msg("submit settled after the view left")
		return resource.Record{}, fmt.Errorf("submit record %d: %w", draft.ID, ErrViewGone)
	}
	if err != nil {
		metrics.MutationsTotal.WithLabelValues("submit", string(resource.Classify(err))).Inc()
		f.logger.Error().Err(err).Int64("id", draft.ID).Msg("submit failed")
		store.FailSubmit(err)
		return resource.Record{}, fmt.Errorf("submit record %d: %w", draft.ID, err)
	}
	if rec.ID == 0 {
		rec.ID = draft.ID
	}
	f.succeeded("submit", rec.ID)
	store.ApplySubmitted(rec)

	if f.nav != nil {
		if err := f.nav.Navigate(route.ListPath); err != nil {
			f.logger.Warn().Err(err).Msg("navigate after submit")
		}
	}
	return rec, nil
}

// EditPath is the path of the update view for id.
func (f *Facade) EditPath(id int64) string {
	return route.UpdatePath(id)
}

func (f *Facade) listStore() *state.CollectionStore {
	if f.list == nil {
		return nil
	}
	return f.list.Store()
}

func (f *Facade) failList(op string, err error) {
	class := resource.Classify(err)
	metrics.MutationsTotal.WithLabelValues(op, string(class)).Inc()
	if class == resource.ErrorClassCancelled {
		f.logger.Debug().Err(err).Str("op", op).Msg("mutation cancelled")
		return
	}
	f.logger.Error().Err(err).Str("op", op).Msg("mutation failed")
	if store := f.listStore(); store != nil {
		store.Fail(err)
	}
}

func (f *Facade) succeeded(op string, id int64) {
	metrics.MutationsTotal.WithLabelValues(op, "ok").Inc()
	f.logger.Info().Str("op", op).Int64("id", id).Msg("mutation applied")
}
