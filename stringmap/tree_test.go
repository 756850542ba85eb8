package stringmap

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func parseTree(t *testing.T, data string) Tree {
	t.Helper()
	tree := make(Tree)
	if err := json.Unmarshal([]byte(data), &tree); err != nil {
		t.Fatalf("bad fixture JSON: %v", err)
	}
	return tree
}

func TestWrap(t *testing.T) {
	if got := Wrap("hello", false); got != "\u202ahello\u202c" {
		t.Errorf("Wrap ltr = %q", got)
	}
	if got := Wrap("שלום", true); got != "\u202bשלום\u202c" {
		t.Errorf("Wrap rtl = %q", got)
	}
	if got := Wrap("", true); got != "" {
		t.Errorf("Wrap of empty string = %q, want unchanged", got)
	}

	// Wrapping is not idempotent; a second application must add a second pair
	// of marks. The build relies on applying it exactly once.
	once := Wrap("x", false)
	twice := Wrap(once, false)
	if twice == once {
		t.Error("expected double wrap to differ from single wrap")
	}
	if strings.Count(twice, "\u202c") != 2 {
		t.Errorf("expected two pop marks after double wrap, got %q", twice)
	}
}

func TestFormatTree(t *testing.T) {
	tree := parseTree(t, `{
		"a": { "value": "A" },
		"nested": { "deep": { "value": "D" } },
		"empty": { "value": "" }
	}`)

	FormatTree(tree, false)

	if got := Lookup(tree, "a").Value; got != "\u202aA\u202c" {
		t.Errorf("a = %q", got)
	}
	if got := Lookup(tree, "nested.deep").Value; got != "\u202aD\u202c" {
		t.Errorf("nested.deep = %q", got)
	}
	if got := Lookup(tree, "empty").Value; got != "" {
		t.Errorf("empty values must stay unmarked, got %q", got)
	}
}

func TestFlattenLookupRoundTrip(t *testing.T) {
	tree := parseTree(t, `{
		"a": { "b": { "value": "AB", "metadata": { "tier": "1" } } },
		"c": { "value": "C" },
		"x": { "y": { "z": { "value": "XYZ" } } }
	}`)

	flat := Flatten(tree)
	if len(flat) != 3 {
		t.Fatalf("expected 3 leaves, got %v: %v", len(flat), flat)
	}

	// Every flattened key must point back to its own leaf.
	for key, entry := range flat {
		found := Lookup(tree, key)
		if found == nil {
			t.Errorf("Lookup(%q) = nil for a flattened key", key)
			continue
		}
		if found.Value != entry.Value {
			t.Errorf("Lookup(%q).Value = %q, want %q", key, found.Value, entry.Value)
		}
	}

	if got := flat["a.b"].Metadata["tier"]; got != "1" {
		t.Errorf("metadata not carried through flatten: %v", got)
	}
}

func TestFlatKeys(t *testing.T) {
	tree := parseTree(t, `{"b": {"value": "B"}, "a": {"value": "A"}}`)
	if got := FlatKeys(tree); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("FlatKeys = %v", got)
	}
}

func TestLookupMisses(t *testing.T) {
	tree := parseTree(t, `{"a": {"b": {"value": "AB"}}}`)

	for _, key := range []string{"a", "a.b.c", "nope", "a.nope", ""} {
		if entry := Lookup(tree, key); entry != nil {
			t.Errorf("Lookup(%q) = %+v, want nil", key, entry)
		}
	}
}

func TestLookupBracketSegments(t *testing.T) {
	// A literal dotted key is addressable only through the bracket form; the
	// dotted form tokenizes into separate segments and misses.
	tree := parseTree(t, `{"acid-base.title": {"value": "T"}}`)

	if entry := Lookup(tree, "['acid-base.title']"); entry == nil || entry.Value != "T" {
		t.Errorf("bracket lookup = %+v", entry)
	}
	if entry := Lookup(tree, "acid-base.title"); entry != nil {
		t.Errorf("dotted lookup of a literal dotted key should miss, got %+v", entry)
	}
}

func TestTokenize(t *testing.T) {
	cases := []struct {
		key  string
		want []string
	}{
		{"a.b.c", []string{"a", "b", "c"}},
		{".a.b", []string{"a", "b"}},
		{"['x.y']", []string{"x.y"}},
		{`["x.y"]`, []string{"x.y"}},
		{"[ 'spaced' ]", []string{"spaced"}},
		{"a['b.c'].d", []string{"a", "b.c", "d"}},
		{"", nil},
	}

	for _, c := range cases {
		if got := Tokenize(c.key); !reflect.DeepEqual(got, c.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", c.key, got, c.want)
		}
	}
}
