package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestCollection_Scan(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "itineraries")
	writeFile(t, filepath.Join(dir, "rome.json"), `{"status":"exported","locations":[1,2,3]}`)
	writeFile(t, filepath.Join(dir, "eu", "paris.yaml"), "user:\n  name: Ana\n")
	writeFile(t, filepath.Join(dir, "notes.md"), "---\nstatus: draft\n---\nbody")
	writeFile(t, filepath.Join(dir, "broken.json"), "{")
	writeFile(t, filepath.Join(dir, "readme.txt"), "ignored")
	writeFile(t, filepath.Join(dir, ".hidden", "secret.json"), "{}")
	writeFile(t, filepath.Join(dir, "draft.json~"), "{}")

	var reported []error
	c := NewCollection(Config{Path: root, ErrorHandler: func(err error) { reported = append(reported, err) }})

	docs, err := c.Scan(context.Background(), "itineraries")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	var ids []string
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	want := []string{"eu/paris", "notes", "rome"}
	if len(ids) != len(want) {
		t.Fatalf("want %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("want %v, got %v", want, ids)
		}
	}

	if docs[0].Fields.UserName() != "Ana" {
		t.Errorf("unexpected user %q", docs[0].Fields.UserName())
	}
	if docs[2].Fields.LocationCount() != 3 {
		t.Errorf("unexpected location count %d", docs[2].Fields.LocationCount())
	}
	if len(reported) != 1 {
		t.Errorf("want one parse error for broken.json, got %v", reported)
	}

	state := c.State().(CollectionState)
	if state.LastScan == nil {
		t.Error("expected last scan time to be recorded")
	}
}

func TestCollection_Pattern(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.json"), "{}")
	writeFile(t, filepath.Join(root, "sub", "b.json"), "{}")

	c := NewCollection(Config{Path: root, Pattern: "sub/*.json"})
	docs, err := c.Scan(context.Background(), "")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "sub/b" {
		t.Fatalf("unexpected documents: %+v", docs)
	}
}

func TestCollection_WatchMissingDir(t *testing.T) {
	c := NewCollection(Config{Path: t.TempDir()})
	if _, err := c.Watch(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for a missing collection")
	} else if !Error.Has(err) {
		t.Fatalf("expected fs error class, got %v", err)
	}
}

func TestResolveID(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/data/c/rome.json", "rome"},
		{"/data/c/eu/paris.yaml", "eu/paris"},
		{"/data/c/v1.2/trip.md", "v1.2/trip"},
	}
	for _, tc := range tests {
		got, err := resolveID(filepath.FromSlash("/data/c"), filepath.FromSlash(tc.path))
		if err != nil {
			t.Fatalf("resolveID(%s): %v", tc.path, err)
		}
		if got != tc.want {
			t.Errorf("resolveID(%s): want %q, got %q", tc.path, tc.want, got)
		}
	}
}

func TestReadDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abc123.json")
	writeFile(t, path, `{"status":"exported","user":{"name":"Ana"},"locations":[1,2,3]}`)

	doc, err := ReadDocument(path, false)
	if err != nil {
		t.Fatalf("ReadDocument failed: %v", err)
	}
	if doc.ID != "abc123" {
		t.Errorf("unexpected id %q", doc.ID)
	}
	if !doc.Fields.Exported() {
		t.Error("expected exported document")
	}
}
