package fs

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSerializers(t *testing.T) {
	tests := []struct {
		ext   string
		input string
	}{
		{".json", `{"status":"exported","user":{"name":"Ana"},"locations":["a","b"]}`},
		{".yaml", "status: exported\nuser:\n  name: Ana\nlocations:\n  - a\n  - b\n"},
		{".md", "---\nstatus: exported\nuser:\n  name: Ana\nlocations: [a, b]\n---\nDay one: museums.\n"},
	}

	serializers := DefaultSerializers(false)

	for _, tc := range tests {
		t.Run(tc.ext, func(t *testing.T) {
			fields, err := serializers[tc.ext].Parse(strings.NewReader(tc.input))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if !fields.Exported() {
				t.Errorf("expected exported status, got %q", fields.Status())
			}
			if got := fields.UserName(); got != "Ana" {
				t.Errorf("user name: want Ana, got %q", got)
			}
			if got := fields.LocationCount(); got != 2 {
				t.Errorf("location count: want 2, got %d", got)
			}
		})
	}
}

func TestMarkdownSerializer_Body(t *testing.T) {
	s := NewMarkdownSerializer(false)

	fields, err := s.Parse(strings.NewReader("---\ntitle: Rome\n---\nDay one.\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if fields["content"] != "Day one.\n" {
		t.Errorf("unexpected content %q", fields["content"])
	}

	fields, err = s.Parse(strings.NewReader("just notes"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if fields["content"] != "just notes" {
		t.Errorf("unexpected content %q", fields["content"])
	}
	if fields.Status() != "draft" {
		t.Errorf("body-only document should default to draft, got %q", fields.Status())
	}

	if _, err := s.Parse(strings.NewReader("---\ntitle: broken\n")); err == nil {
		t.Error("expected error for unterminated front matter")
	}
}

func TestSerializers_EmptyDocument(t *testing.T) {
	for ext, s := range DefaultSerializers(false) {
		input := ""
		if ext == ".json" {
			input = "{}"
		}
		fields, err := s.Parse(strings.NewReader(input))
		if err != nil {
			t.Fatalf("%s: Parse failed: %v", ext, err)
		}
		if fields == nil {
			t.Fatalf("%s: expected non-nil fields", ext)
		}
		if fields.UserName() != "Unknown User" {
			t.Errorf("%s: unexpected user %q", ext, fields.UserName())
		}
	}
}

func TestSerializers_Strict(t *testing.T) {
	jsonFields, err := NewJSONSerializer(true).Parse(strings.NewReader(`{"budget": 12345678901234567}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if jsonFields["budget"] != json.Number("12345678901234567") {
		t.Errorf("json: want json.Number, got %T %v", jsonFields["budget"], jsonFields["budget"])
	}

	yamlFields, err := NewYAMLSerializer(true).Parse(strings.NewReader("budget: 12345678901234567\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if yamlFields["budget"] != json.Number("12345678901234567") {
		t.Errorf("yaml: want json.Number, got %T %v", yamlFields["budget"], yamlFields["budget"])
	}
}

func TestJSONSerializer_Invalid(t *testing.T) {
	if _, err := NewJSONSerializer(false).Parse(strings.NewReader("{")); err == nil {
		t.Error("expected error for invalid json")
	}
}
