package state

import (
	"sync"
	"time"

	"github.com/five82/tabula/internal/fetch"
	"github.com/five82/tabula/internal/resource"
)

// Field names an editable record field.
type Field string

const (
	FieldTitle Field = "title"
	FieldBody  Field = "body"
)

// Detail is the update view's state: the record being edited as a local
// draft.
type Detail struct {
	ID        int64
	Record    resource.Record
	HasRecord bool
	// Dirty is set once a field edit diverged the draft from the server copy.
	Dirty      bool
	Submitting bool
	Status     fetch.Status
	Err        error
	UpdatedAt  time.Time
}

// Editable reports whether the draft can take edits and be submitted.
func (d Detail) Editable() bool {
	return d.HasRecord && !d.Submitting && d.Status != fetch.StatusLoading
}

// DetailStore coordinates updates to the update view state.
type DetailStore struct {
	mu         sync.RWMutex
	snapshot   Detail
	prevStatus fetch.Status
	version    uint64
	subs       subscribers[Detail]
}

// NewDetailStore returns an idle store keyed by id.
func NewDetailStore(id int64) *DetailStore {
	return &DetailStore{snapshot: Detail{ID: id}}
}

// Snapshot returns a copy of the current state.
func (s *DetailStore) Snapshot() Detail {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cloneLocked()
}

// Subscribe registers fn for every change. The returned func unsubscribes.
func (s *DetailStore) Subscribe(fn func(Detail)) func() {
	return s.subs.add(fn)
}

// BeginLoad marks the record as loading.
func (s *DetailStore) BeginLoad() {
	s.update(func(d *Detail) {
		if d.Status != fetch.StatusLoading {
			s.prevStatus = d.Status
		}
		d.Status = fetch.StatusLoading
	})
}

// ApplyRecord installs the server copy, discarding any local edits.
func (s *DetailStore) ApplyRecord(rec resource.Record) {
	s.update(func(d *Detail) {
		d.Record = rec
		d.HasRecord = true
		d.Dirty = false
		d.Status = fetch.StatusLoaded
		d.Err = nil
	})
}

// FailLoad records a load error.
func (s *DetailStore) FailLoad(err error) {
	s.update(func(d *Detail) {
		d.Status = fetch.StatusError
		d.Err = err
	})
}

// AbandonLoad restores the status held before a cancelled load.
func (s *DetailStore) AbandonLoad() {
	s.update(func(d *Detail) {
		if d.Status == fetch.StatusLoading {
			d.Status = s.prevStatus
		}
	})
}

// Edit sets one field of the local draft. It returns false when there is no
// record to edit yet.
func (s *DetailStore) Edit(field Field, value string) bool {
	ok := false
	s.update(func(d *Detail) {
		if !d.HasRecord {
			return
		}
		switch field {
		case FieldTitle:
			d.Record.Title = value
		case FieldBody:
			d.Record.Body = value
		default:
			return
		}
		d.Dirty = true
		ok = true
	})
	return ok
}

// BeginSubmit marks the draft as being written and returns it.
func (s *DetailStore) BeginSubmit() (resource.Record, bool) {
	var rec resource.Record
	ok := false
	s.update(func(d *Detail) {
		if !d.HasRecord || d.Submitting {
			return
		}
		d.Submitting = true
		rec = d.Record
		ok = true
	})
	return rec, ok
}

// ApplySubmitted replaces the draft with the canonical record.
func (s *DetailStore) ApplySubmitted(rec resource.Record) {
	s.update(func(d *Detail) {
		d.Record = rec
		d.HasRecord = true
		d.Dirty = false
		d.Submitting = false
		d.Status = fetch.StatusLoaded
		d.Err = nil
	})
}

// FailSubmit records a write error and keeps the local edits.
func (s *DetailStore) FailSubmit(err error) {
	s.update(func(d *Detail) {
		d.Submitting = false
		d.Status = fetch.StatusError
		d.Err = err
	})
}

// Hold defers subscriber notifications until the matching Release, which
// delivers the newest snapshot. Loaders hold the store while settling a
// response so callbacks never run under the fetch controller's lock.
func (s *DetailStore) Hold() {
	s.subs.hold()
}

// Release ends a Hold.
func (s *DetailStore) Release() {
	s.subs.release()
}

func (s *DetailStore) update(fn func(*Detail)) {
	s.mu.Lock()
	fn(&s.snapshot)
	s.snapshot.UpdatedAt = time.Now()
	s.version++
	version, snap := s.version, s.cloneLocked()
	s.mu.Unlock()

	s.subs.notify(version, snap)
}

// cloneLocked copies the snapshot. Detail holds no slices or maps, so a
// value copy is enough.
func (s *DetailStore) cloneLocked() Detail {
	return s.snapshot
}
