// Package core holds the domain of City Scout: itinerary documents, the
// changes a collection emits for them, and the logic that turns those
// changes into catalog metadata.
package core

import (
	"fmt"
	"reflect"
	"time"
)

// Field defaults applied when an itinerary omits them.
const (
	DefaultStatus   = "draft"
	ExportedStatus  = "exported"
	UnknownUserName = "Unknown User"
)

// Fields is the raw field map of a document as stored in the collection.
type Fields map[string]any

// Status returns the "status" field, or DefaultStatus when the key is missing.
// A present but non-string value yields "".
func (f Fields) Status() string {
	v, ok := f["status"]
	if !ok {
		return DefaultStatus
	}
	s, _ := v.(string)
	return s
}

// Exported reports whether the document has been exported by its owner.
func (f Fields) Exported() bool {
	return f.Status() == ExportedStatus
}

// UserName returns user.name, falling back to UnknownUserName when any level is missing.
func (f Fields) UserName() string {
	user, ok := asMap(f["user"])
	if !ok {
		return UnknownUserName
	}
	name, ok := user["name"]
	if !ok || name == nil {
		return UnknownUserName
	}
	if s, ok := name.(string); ok {
		return s
	}
	return fmt.Sprint(name)
}

// LocationCount returns the number of entries in "locations", 0 when absent.
func (f Fields) LocationCount() int {
	v := reflect.ValueOf(f["locations"])
	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return v.Len()
	default:
		return 0
	}
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Fields:
		return m, true
	default:
		return nil, false
	}
}

// Document is a single itinerary identified by its collection ID.
type Document struct {
	ID     string
	Fields Fields
}

// ChangeKind is the type of change a collection reports for a document.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "ADDED"
	ChangeModified ChangeKind = "MODIFIED"
	ChangeRemoved  ChangeKind = "REMOVED"
)

// Change is one document change within a snapshot.
type Change struct {
	Kind     ChangeKind
	Document Document
}

func (c Change) String() string {
	return fmt.Sprintf("%s %s", c.Kind, c.Document.ID)
}

// Snapshot is a batch of changes delivered together by a source.
type Snapshot struct {
	ReadTime time.Time
	Changes  []Change
}
