package fs

import (
	"sort"
	"time"

	"github.com/aretw0/introspection"
)

// CollectionState is the introspection snapshot of a filesystem collection.
type CollectionState struct {
	Path          string     `json:"path"`
	Pattern       string     `json:"pattern"`
	WatchedDir    string     `json:"watched_dir,omitempty"`
	WatcherActive bool       `json:"watcher_active"`
	IndexSize     int        `json:"index_size"`
	LastScan      *time.Time `json:"last_scan,omitempty"`
	Serializers   []string   `json:"serializers"`
}

// State implements introspection.Introspectable.
func (c *Collection) State() any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	exts := make([]string, 0, len(c.serializers))
	for ext := range c.serializers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)

	return CollectionState{
		Path:          c.Path,
		Pattern:       c.config.Pattern,
		WatchedDir:    c.watchedDir,
		WatcherActive: c.watcherActive,
		IndexSize:     c.index.Len(),
		LastScan:      c.lastScan,
		Serializers:   exts,
	}
}

// ComponentType implements introspection.Component.
func (c *Collection) ComponentType() string {
	return "filesystem"
}

var _ introspection.Introspectable = (*Collection)(nil)
var _ introspection.Component = (*Collection)(nil)
