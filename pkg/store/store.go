// Package store persists small record collections as flat JSON arrays.
//
// Each store is process local and single writer. The whole collection is
// rewritten after every mutation; load failures degrade to an empty store.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

// JSON is an in-memory slice of T mirrored to a file.
type JSON[T any] struct {
	path   string
	items  []T
	logger *log.Logger
	mu     sync.RWMutex
}

// Open loads the store at path. A missing file yields an empty store; a
// corrupt or unreadable file yields an empty store and a logged warning.
func Open[T any](path string, logger *log.Logger) *JSON[T] {
	if logger == nil {
		logger = log.Default()
	}
	s := &JSON[T]{
		path:   path,
		items:  []T{},
		logger: logger.With("store", filepath.Base(path)),
	}
	if err := s.load(); err != nil {
		s.logger.Warn("could not load store, starting empty", "path", path, "err", err)
		s.items = []T{}
	}
	return s
}

// Path returns the backing file.
func (s *JSON[T]) Path() string { return s.path }

// Len returns the number of records.
func (s *JSON[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Items returns a copy of all records in order, never nil.
func (s *JSON[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]T{}, s.items...)
}

// At returns the record at the 0-based index i.
func (s *JSON[T]) At(i int) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.items) {
		var zero T
		return zero, false
	}
	return s.items[i], true
}

// Append adds item and saves.
func (s *JSON[T]) Append(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, item)
	s.save()
}

// Update applies fn to the record at index i and saves.
func (s *JSON[T]) Update(i int, fn func(*T)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.items) {
		return false
	}
	fn(&s.items[i])
	s.save()
	return true
}

// Remove deletes the record at index i and saves.
func (s *JSON[T]) Remove(i int) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if i < 0 || i >= len(s.items) {
		return zero, false
	}
	removed := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.save()
	return removed, true
}

// Replace swaps the whole collection and saves.
func (s *JSON[T]) Replace(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]T{}, items...)
	s.save()
}

func (s *JSON[T]) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "read store")
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return errors.Wrap(err, "decode store")
	}
	if items != nil {
		s.items = items
	}
	return nil
}

// save must be called with mu held. Failures are logged and swallowed.
func (s *JSON[T]) save() {
	if err := s.write(); err != nil {
		s.logger.Error("could not save store", "path", s.path, "err", err)
	}
}

func (s *JSON[T]) write() error {
	data, err := json.MarshalIndent(s.items, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode store")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, "create store dir")
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "write store")
	}
	return errors.Wrap(os.Rename(tmp, s.path), "replace store")
}

var (
	idMu   sync.Mutex
	lastID int64
)

// NextID returns a millisecond timestamp id, strictly greater than every id
// in existing and any id handed out before by this process. Passing the
// persisted ids keeps new ids unique when the clock has stepped back.
func NextID(existing ...int64) int64 {
	idMu.Lock()
	defer idMu.Unlock()
	id := time.Now().UnixMilli()
	floor := lastID
	for _, e := range existing {
		floor = max(floor, e)
	}
	if id <= floor {
		id = floor + 1
	}
	lastID = id
	return id
}
