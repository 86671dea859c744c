package fs

import (
	"sync"
	"time"
)

// indexEntry represents what the watcher last saw of a document.
type indexEntry struct {
	Path         string
	LastModified time.Time
}

// index tracks the documents known to the watcher, keyed by ID.
// It decides whether a change is an addition or a modification and lets
// removals of unknown files be dropped.
type index struct {
	mu      sync.RWMutex
	entries map[string]*indexEntry
}

func newIndex() *index {
	return &index{entries: make(map[string]*indexEntry)}
}

// Put records a document and reports whether it was already known
// and whether its modification time changed.
func (i *index) Put(id, path string, modTime time.Time) (known, changed bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	entry, ok := i.entries[id]
	if !ok {
		i.entries[id] = &indexEntry{Path: path, LastModified: modTime}
		return false, true
	}
	changed = !entry.LastModified.Equal(modTime) || entry.Path != path
	entry.Path = path
	entry.LastModified = modTime
	return true, changed
}

// Remove forgets a document and reports whether it was known.
func (i *index) Remove(id string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.entries[id]; !ok {
		return false
	}
	delete(i.entries, id)
	return true
}

// Len returns the number of known documents.
func (i *index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}

// Reset drops every entry.
func (i *index) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries = make(map[string]*indexEntry)
}
