package params

import (
	"sync"
	"sync/atomic"
)

// Store publishes snapshots from control goroutines to the audio callback.
// Load is a single atomic pointer load and never blocks. Writers copy the
// current snapshot, modify the copy and swap it in; they are serialised
// among themselves only.
type Store struct {
	mu  sync.Mutex
	cur atomic.Pointer[Snapshot]
}

// NewStore returns a store holding a sanitised copy of initial.
func NewStore(initial Snapshot) *Store {
	s := &Store{}
	s.Publish(initial)

	return s
}

// Load returns the most recently published snapshot. The result is shared
// and must not be modified.
func (s *Store) Load() *Snapshot {
	return s.cur.Load()
}

// Publish replaces the snapshot with a sanitised copy of snap.
func (s *Store) Publish(snap Snapshot) {
	snap.Sanitize()

	s.mu.Lock()
	s.cur.Store(&snap)
	s.mu.Unlock()
}

// Update applies fn to a copy of the current snapshot and publishes it.
func (s *Store) Update(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := Defaults()
	if cur := s.cur.Load(); cur != nil {
		next = *cur
	}

	fn(&next)
	next.Sanitize()
	s.cur.Store(&next)
}
