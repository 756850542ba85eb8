/*
Package stringmap builds the per-locale string maps for a simulation repository.

It scans module source for string accesses, loads the nested JSON translation
files for every (repository, locale) pair that a build needs, and assembles a
flat {locale: {NAMESPACE/partial.key: value}} map with a metadata side map.
*/
package stringmap

import (
	"sort"
)

// Directional embedding marks. Every non-empty string value is wrapped in an
// embedding mark matching its locale's direction plus the pop mark, so that
// embedded values render correctly inside host text of the opposite direction.
const (
	ltrMark = "\u202a"
	rtlMark = "\u202b"
	popMark = "\u202c"
)

// Tree is a parsed translation file: a nested JSON object whose leaves are
// objects with a "value" key (plus optional "metadata" and "history").
type Tree map[string]interface{}

// Entry is a single resolved translation leaf.
type Entry struct {
	Value    string
	Metadata map[string]interface{}
}

// entryOf interprets a tree node as a leaf entry. A node is a leaf when it has
// a string under the "value" key.
func entryOf(node map[string]interface{}) (e *Entry, ok bool) {
	value, ok := node["value"].(string)
	if !ok {
		return nil, false
	}

	e = &Entry{Value: value}
	if metadata, ok := node["metadata"].(map[string]interface{}); ok {
		e.Metadata = metadata
	}
	return e, true
}

// Wrap adds directional embedding marks around a string. Empty strings are
// returned unchanged. Wrapping is intentionally not idempotent; it must be
// applied exactly once per value per build.
func Wrap(s string, rtl bool) string {
	if s == "" {
		return s
	}
	if rtl {
		return rtlMark + s + popMark
	}
	return ltrMark + s + popMark
}

// FormatTree walks a tree and wraps every leaf value with directional marks,
// in place.
func FormatTree(tree Tree, rtl bool) {
	formatNode(map[string]interface{}(tree), rtl)
}

func formatNode(node map[string]interface{}, rtl bool) {
	if value, ok := node["value"].(string); ok {
		node["value"] = Wrap(value, rtl)
		return
	}
	for _, child := range node {
		if childNode, ok := child.(map[string]interface{}); ok {
			formatNode(childNode, rtl)
		}
	}
}

// Lookup navigates the tree one key segment at a time and returns the leaf
// entry at exactly that path, or nil when any segment is missing or the final
// node is not a leaf. The key is tokenized with the same rules the scanner
// uses to assemble partial string keys.
func Lookup(tree Tree, partialKey string) *Entry {
	node := map[string]interface{}(tree)

	segments := Tokenize(partialKey)
	if len(segments) == 0 {
		return nil
	}

	for i, segment := range segments {
		child, ok := node[segment]
		if !ok {
			return nil
		}
		childNode, ok := child.(map[string]interface{})
		if !ok {
			return nil
		}
		if i == len(segments)-1 {
			entry, ok := entryOf(childNode)
			if !ok {
				return nil
			}
			return entry
		}
		node = childNode
	}
	return nil
}

// Flatten reduces a tree to a flat {dotted.key: entry} map, visiting leaves in
// the same way FormatTree does.
func Flatten(tree Tree) map[string]Entry {
	flat := make(map[string]Entry)
	flattenNode(map[string]interface{}(tree), "", flat)
	return flat
}

func flattenNode(node map[string]interface{}, prefix string, flat map[string]Entry) {
	if entry, ok := entryOf(node); ok {
		flat[prefix] = *entry
		return
	}
	for key, child := range node {
		childNode, ok := child.(map[string]interface{})
		if !ok {
			continue
		}
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		flattenNode(childNode, path, flat)
	}
}

// FlatKeys returns the sorted flattened keys of a tree.
func FlatKeys(tree Tree) []string {
	flat := Flatten(tree)
	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Tokenize splits a string access path into its segments, handling both
// .identifier and ['text'] / ["text"] forms. A plain dotted key like 'a.b'
// tokenizes to [a b]; a bracket chunk keeps its text as a single segment.
func Tokenize(key string) []string {
	var segments []string

	i := 0
	for i < len(key) {
		switch key[i] {
		case '.':
			i++
		case '[':
			j := skipSpace(key, i+1)
			if j >= len(key) || (key[j] != '\'' && key[j] != '"') {
				// Not a quoted chunk. An unquoted bracket is one of the
				// documented text-scanning degenerate cases; skip the bracket
				// character and keep going.
				i++
				continue
			}
			quote := key[j]
			j++
			start := j
			for j < len(key) && key[j] != quote {
				j++
			}
			segments = append(segments, key[start:j])
			if j < len(key) {
				j++
			}
			j = skipSpace(key, j)
			if j < len(key) && key[j] == ']' {
				j++
			}
			i = j
		default:
			start := i
			for i < len(key) && key[i] != '.' && key[i] != '[' {
				i++
			}
			segments = append(segments, key[start:i])
		}
	}
	return segments
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}
