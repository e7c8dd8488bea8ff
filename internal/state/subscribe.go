package state

import "sync"

// subscribers fans snapshots out to registered callbacks.
//
// Deliveries are serialized and ordered by version: a snapshot older than one
// already queued is dropped, and a notify issued from inside a callback is
// queued and delivered once that callback returns. While held, snapshots are
// queued and the newest one is delivered on the last release.
type subscribers[T any] struct {
	mu         sync.Mutex
	next       int
	fns        map[int]func(T)
	queued     uint64
	pending    *T
	holds      int
	delivering bool
}

func (s *subscribers[T]) add(fn func(T)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fns == nil {
		s.fns = make(map[int]func(T))
	}
	id := s.next
	s.next++
	s.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.fns, id)
			s.mu.Unlock()
		})
	}
}

func (s *subscribers[T]) notify(version uint64, snap T) {
	s.mu.Lock()
	if version <= s.queued {
		s.mu.Unlock()
		return
	}
	s.queued = version
	s.pending = &snap
	s.deliverLocked()
}

func (s *subscribers[T]) hold() {
	s.mu.Lock()
	s.holds++
	s.mu.Unlock()
}

func (s *subscribers[T]) release() {
	s.mu.Lock()
	if s.holds > 0 {
		s.holds--
	}
	s.deliverLocked()
}

// deliverLocked is entered with s.mu held and returns with it released.
func (s *subscribers[T]) deliverLocked() {
	if s.delivering {
		s.mu.Unlock()
		return
	}
	s.delivering = true
	for s.pending != nil && s.holds == 0 {
		snap := *s.pending
		s.pending = nil
		fns := make([]func(T), 0, len(s.fns))
		for _, fn := range s.fns {
			fns = append(fns, fn)
		}
		s.mu.Unlock()

		for _, fn := range fns {
			fn(snap)
		}

		s.mu.Lock()
	}
	s.delivering = false
	s.mu.Unlock()
}
