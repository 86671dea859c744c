// Package fs exposes a directory of JSON, YAML and Markdown files as a
// watchable document collection. It mirrors the Firestore listener
// closely enough to run City Scout locally without a cloud project: the
// first snapshot reports every existing document as added, later file
// changes are reported one by one.
package fs

import (
	"context"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/zeebo/errs"

	"github.com/lakshay-nasa/city-scout/pkg/core"
)

// Error is the error class for filesystem collection failures.
var Error = errs.Class("fs")

const (
	DefaultPattern     = "**/*"
	DefaultEventBuffer = 100
	DefaultDebounce    = 50 * time.Millisecond
)

// Config holds the configuration of a filesystem collection.
type Config struct {
	// Path is the root directory; each collection is a subdirectory of it.
	Path string
	// Pattern filters files relative to the collection directory (doublestar syntax).
	Pattern     string
	Strict      bool
	EventBuffer int
	Debounce    time.Duration
	Logger      *slog.Logger
	// ErrorHandler receives watcher and parse errors that are otherwise only logged.
	ErrorHandler func(error)
}

// Collection implements core.Source on top of the local filesystem.
type Collection struct {
	Path        string
	config      Config
	serializers map[string]Serializer
	index       *index

	mu            sync.RWMutex
	watcherActive bool
	watchedDir    string
	lastScan      *time.Time
}

// NewCollection creates a filesystem-backed collection source.
func NewCollection(config Config) *Collection {
	if config.Pattern == "" {
		config.Pattern = DefaultPattern
	}
	if config.EventBuffer <= 0 {
		config.EventBuffer = DefaultEventBuffer
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Collection{
		Path:        config.Path,
		config:      config,
		serializers: DefaultSerializers(config.Strict),
		index:       newIndex(),
	}
}

// RegisterSerializer adds or replaces the serializer for an extension (e.g. ".toml").
func (c *Collection) RegisterSerializer(ext string, s Serializer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.serializers[strings.ToLower(ext)] = s
}

// Dir returns the directory backing a collection. An empty name or "." is the root itself.
func (c *Collection) Dir(collection string) string {
	if collection == "" || collection == "." {
		return c.Path
	}
	return filepath.Join(c.Path, filepath.FromSlash(collection))
}

// scanned is a document read from disk together with the file it came from.
type scanned struct {
	core.Document
	Path    string
	ModTime time.Time
}

// Scan reads every document of a collection, sorted by ID.
func (c *Collection) Scan(ctx context.Context, collection string) ([]core.Document, error) {
	entries, err := c.scanDir(ctx, c.Dir(collection))
	if err != nil {
		return nil, err
	}
	docs := make([]core.Document, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, e.Document)
	}
	return docs, nil
}

func (c *Collection) scanDir(ctx context.Context, dir string) ([]scanned, error) {
	var docs []scanned

	err := filepath.WalkDir(dir, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if path != dir && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !c.accepts(dir, path) {
			return nil
		}

		doc, err := c.readDocument(dir, path)
		if err != nil {
			c.reportError(err)
			return nil
		}
		entry := scanned{Document: doc, Path: path}
		if info, err := d.Info(); err == nil {
			entry.ModTime = info.ModTime()
		}
		docs = append(docs, entry)
		return nil
	})
	if err != nil {
		return nil, Error.Wrap(err)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })

	now := time.Now()
	c.mu.Lock()
	c.lastScan = &now
	c.mu.Unlock()

	return docs, nil
}

// Watch subscribes to a collection directory. The first snapshot lists
// every existing document as ADDED; subsequent snapshots carry one change each.
func (c *Collection) Watch(ctx context.Context, collection string) (<-chan core.Snapshot, error) {
	dir := c.Dir(collection)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, Error.Wrap(fmt.Errorf("collection %q: %w", collection, err))
	}
	if !info.IsDir() {
		return nil, Error.New("collection %q is not a directory: %s", collection, dir)
	}

	out := make(chan core.Snapshot, c.config.EventBuffer)
	w := newWatchWorker(c, dir, out)
	if err := w.Start(ctx); err != nil {
		return nil, Error.Wrap(err)
	}
	return out, nil
}

// accepts reports whether a file path belongs to the collection.
func (c *Collection) accepts(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if isHidden(part) {
			return false
		}
	}
	base := filepath.Base(path)
	if strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".tmp") {
		return false
	}
	if c.serializerFor(path) == nil {
		return false
	}
	ok, err := doublestar.Match(c.config.Pattern, filepath.ToSlash(rel))
	return err == nil && ok
}

func (c *Collection) serializerFor(path string) Serializer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serializers[strings.ToLower(filepath.Ext(path))]
}

// resolveID maps a file to its document ID: the relative path without extension.
func resolveID(dir, path string) (string, error) {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	return strings.TrimSuffix(rel, filepath.Ext(rel)), nil
}

func (c *Collection) readDocument(dir, path string) (core.Document, error) {
	id, err := resolveID(dir, path)
	if err != nil {
		return core.Document{}, Error.Wrap(err)
	}
	fields, err := c.parseFile(path)
	if err != nil {
		return core.Document{}, err
	}
	return core.Document{ID: id, Fields: fields}, nil
}

func (c *Collection) parseFile(path string) (core.Fields, error) {
	s := c.serializerFor(path)
	if s == nil {
		return nil, Error.New("unsupported file type: %s", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	defer f.Close()

	fields, err := s.Parse(f)
	if err != nil {
		return nil, Error.Wrap(fmt.Errorf("parse %s: %w", path, err))
	}
	return fields, nil
}

func (c *Collection) reportError(err error) {
	c.config.Logger.Warn("collection error", "error", err)
	if c.config.ErrorHandler != nil {
		c.config.ErrorHandler(err)
	}
}

// ReadDocument parses a single file with the default serializers.
// The ID is the file name without extension.
func ReadDocument(path string, strict bool) (core.Document, error) {
	c := NewCollection(Config{Path: filepath.Dir(path), Strict: strict})
	return c.readDocument(filepath.Dir(path), path)
}

func (c *Collection) setWatcherActive(dir string, active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watcherActive = active
	if active {
		c.watchedDir = dir
	}
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

var _ core.Source = (*Collection)(nil)
