package state

import (
	"sync"
	"time"

	"github.com/five82/tabula/internal/fetch"
	"github.com/five82/tabula/internal/paging"
	"github.com/five82/tabula/internal/resource"
)

// Collection is the list view's state at a point in time.
type Collection struct {
	// Items holds the records of Page only.
	Items []resource.Record
	// Page is the page Items belong to.
	Page       paging.Page
	TotalPages int
	// Pending is the page being loaded, zero when nothing is in flight.
	Pending   int
	Status    fetch.Status
	Err       error
	UpdatedAt time.Time
}

// Loading reports whether a page load is in flight.
func (c Collection) Loading() bool {
	return c.Status == fetch.StatusLoading
}

// Target is the page the view is heading to: the pending page while loading,
// otherwise the current page.
func (c Collection) Target() int {
	if c.Pending > 0 {
		return c.Pending
	}
	return c.Page.Index
}

// CollectionStore coordinates updates to the list view state.
type CollectionStore struct {
	mu         sync.RWMutex
	snapshot   Collection
	prevStatus fetch.Status
	version    uint64
	subs       subscribers[Collection]
}

// NewCollectionStore returns an idle store positioned on page 1.
func NewCollectionStore(pageSize int) *CollectionStore {
	return &CollectionStore{
		snapshot: Collection{
			Page:       paging.First(pageSize),
			TotalPages: 1,
			Status:     fetch.StatusIdle,
		},
	}
}

// Snapshot returns a copy of the current state.
func (s *CollectionStore) Snapshot() Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cloneLocked()
}

// Subscribe registers fn for every change. The returned func unsubscribes.
func (s *CollectionStore) Subscribe(fn func(Collection)) func() {
	return s.subs.add(fn)
}

// BeginLoad marks index as the page being loaded.
func (s *CollectionStore) BeginLoad(index int) {
	s.update(func(c *Collection) {
		if c.Status != fetch.StatusLoading {
			s.prevStatus = c.Status
		}
		c.Pending = index
		c.Status = fetch.StatusLoading
	})
}

// ApplyPage replaces the items with a freshly loaded page.
func (s *CollectionStore) ApplyPage(index int, items []resource.Record, totalPages int) {
	s.update(func(c *Collection) {
		c.Items = cloneRecords(items)
		c.Page.Index = index
		c.TotalPages = totalPages
		c.Pending = 0
		c.Status = fetch.StatusLoaded
		c.Err = nil
	})
}

// FailLoad records a load error. Items and Page keep describing the last
// page that did load.
func (s *CollectionStore) FailLoad(err error) {
	s.update(func(c *Collection) {
		c.Pending = 0
		c.Status = fetch.StatusError
		c.Err = err
	})
}

// AbandonLoad drops the pending page after a cancellation. A status still
// showing the load reverts to the one held before it began; an error a
// mutation recorded meanwhile stays.
func (s *CollectionStore) AbandonLoad() {
	s.update(func(c *Collection) {
		c.Pending = 0
		if c.Status == fetch.StatusLoading {
			c.Status = s.prevStatus
		}
	})
}

// Reset returns the store to its freshly created state on page 1.
func (s *CollectionStore) Reset() {
	s.update(func(c *Collection) {
		*c = Collection{
			Page:       paging.First(c.Page.Size),
			TotalPages: 1,
			Status:     fetch.StatusIdle,
		}
		s.prevStatus = fetch.StatusIdle
	})
}

// Fail records a mutation error without touching the items.
func (s *CollectionStore) Fail(err error) {
	s.update(func(c *Collection) {
		c.Status = fetch.StatusError
		c.Err = err
	})
}

// Prepend puts rec at the front of the current page.
func (s *CollectionStore) Prepend(rec resource.Record) {
	s.update(func(c *Collection) {
		items := make([]resource.Record, 0, len(c.Items)+1)
		items = append(items, rec)
		c.Items = append(items, c.Items...)
	})
}

// Replace swaps the item carrying rec.ID in place. It reports whether the
// item was on the current page.
func (s *CollectionStore) Replace(rec resource.Record) bool {
	found := false
	s.update(func(c *Collection) {
		for i := range c.Items {
			if c.Items[i].ID == rec.ID {
				c.Items[i] = rec
				found = true
				return
			}
		}
	})
	return found
}

// Remove drops the item with id. It reports whether the item was present.
func (s *CollectionStore) Remove(id int64) bool {
	found := false
	s.update(func(c *Collection) {
		out := c.Items[:0:0]
		for _, it := range c.Items {
			if it.ID == id {
				found = true
				continue
			}
			out = append(out, it)
		}
		c.Items = out
	})
	return found
}

// Hold defers subscriber notifications until the matching Release, which
// delivers the newest snapshot. Loaders hold the store while settling a
// response so callbacks never run under the fetch controller's lock.
func (s *CollectionStore) Hold() {
	s.subs.hold()
}

// Release ends a Hold.
func (s *CollectionStore) Release() {
	s.subs.release()
}

func (s *CollectionStore) update(fn func(*Collection)) {
	s.mu.Lock()
	fn(&s.snapshot)
	s.snapshot.UpdatedAt = time.Now()
	s.version++
	version, snap := s.version, s.cloneLocked()
	s.mu.Unlock()

	s.subs.notify(version, snap)
}

func (s *CollectionStore) cloneLocked() Collection {
	snap := s.snapshot
	snap.Items = cloneRecords(s.snapshot.Items)
	return snap
}

func cloneRecords(items []resource.Record) []resource.Record {
	if len(items) == 0 {
		return nil
	}
	dup := make([]resource.Record, len(items))
	copy(dup, items)
	return dup
}

// FailBeyondLast records that the pending page no longer exists because the
// collection shrank to totalPages. The page index is pulled back inside the
// new range; items are dropped if their page is gone too.
func (s *CollectionStore) FailBeyondLast(totalPages int, err error) {
	s.update(func(c *Collection) {
		c.TotalPages = totalPages
		if c.Page.Index > totalPages {
			c.Page.Index = totalPages
			c.Items = nil
		}
		c.Pending = 0
		c.Status = fetch.StatusError
		c.Err = err
	})
}
