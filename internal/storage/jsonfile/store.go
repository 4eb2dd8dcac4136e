// Package jsonfile persists the order-service dataset as a single JSON
// document on disk, compatible with the lowdb format the sibling services
// use ({"orders": [...], "lastOrderCounters": {...}}).
package jsonfile

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-faster/errors"

	"github.com/xenking/pos-backoffice/internal/domain/order"
)

var _ order.Store = (*Store)(nil)

// Store implements order.Store over a JSON document file. The full document
// is loaded at startup and rewritten after every mutation; the in-memory
// state equals durable state whenever the lock is free.
type Store struct {
	path string

	mu    sync.RWMutex
	state order.State
}

// Open loads the document at path. A missing file is initialized to an empty
// dataset and written immediately; an unreadable or corrupt file is an error
// the caller should treat as fatal.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	buf, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.state = order.State{Orders: []order.Order{}, Counters: map[string]int{}}
		if err := s.persist(); err != nil {
			return nil, errors.Wrap(err, "initialize store")
		}
		return s, nil
	case err != nil:
		return nil, errors.Wrap(err, "read store")
	}

	if err := json.Unmarshal(buf, &s.state); err != nil {
		return nil, errors.Wrapf(err, "decode store %s", path)
	}
	if s.state.Orders == nil {
		s.state.Orders = []order.Order{}
	}
	if s.state.Counters == nil {
		s.state.Counters = map[string]int{}
	}
	return s, nil
}

// Update applies fn to the state under an exclusive lock and persists the
// result before releasing it. If fn fails, or the durable write fails, the
// in-memory state is rolled back and nothing is written.
func (s *Store) Update(fn func(*order.State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := snapshot(s.state)
	if err := fn(&s.state); err != nil {
		s.state = prev
		return err
	}
	if err := s.persist(); err != nil {
		s.state = prev
		return errors.Wrap(err, "persist store")
	}
	return nil
}

// View runs fn against the current state under a shared lock. fn must not
// retain or mutate what it is given; copy out anything needed afterwards.
func (s *Store) View(fn func(order.State)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.state)
}

// Ping reports whether the backing file is still reachable. Used by the
// readiness probe.
func (s *Store) Ping() error {
	_, err := os.Stat(s.path)
	return errors.Wrap(err, "stat store")
}

// persist writes the document to a temp file in the same directory and
// renames it over the target, so readers of the file never observe a partial
// write. Caller must hold the write lock.
func (s *Store) persist() error {
	// Two-space indent matches what lowdb writes.
	buf, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode")
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".orders-*.json")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrap(err, "replace store file")
	}
	return nil
}

// snapshot copies the state deeply enough to undo any mutation our Update
// callers perform: the orders slice and the counter map. Order values are
// copied by value; callers replace nested pointers rather than mutating
// through them.
func snapshot(st order.State) order.State {
	orders := make([]order.Order, len(st.Orders))
	copy(orders, st.Orders)
	counters := make(map[string]int, len(st.Counters))
	for k, v := range st.Counters {
		counters[k] = v
	}
	return order.State{Orders: orders, Counters: counters}
}
