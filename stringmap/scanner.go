package stringmap

import (
	"regexp"
	"sort"
	"strings"
)

// reactiveSuffix marks accesses that return a live string Property rather than
// a literal value. Partial keys ending in it are not required to resolve to a
// translation.
const reactiveSuffix = "StringProperty"

// accessChunks matches the body of a string access: one or more .identifier or
// ['text'] / ["text"] chunks, followed by a single character that cannot
// continue the access. That trailing character only delimits the match and is
// stripped before the match is used.
const accessChunks = `((\.[a-zA-Z_$][a-zA-Z0-9_$]*)|(\[\s*'[^']+'\s*\])|(\[\s*"[^"]+"\s*\]))+[^\.\[]`

var (
	// FooStrings[ 'xStringProperty' ].value => FooStrings[ 'x' ]
	bracketValueRewrite = regexp.MustCompile(reactiveSuffix + `(['"]\s*\])\.value`)
	// FooStrings.xStringProperty.value => FooStrings.x
	dotValueRewrite = regexp.MustCompile(reactiveSuffix + `\.value`)
)

// Scanner extracts the partial string keys that module source references
// against one repository's string module.
//
// This is a text scan, not an AST pass, and it keeps the known degenerate
// behaviors of text scanning: computed member accesses like Foo.bar[0] or
// Foo.bar['length'] can yield incorrect keys.
type Scanner struct {
	repo   string
	prefix string
	access *regexp.Regexp
}

// NewScanner creates a scanner for the given repository. The string-module
// identifier is the PascalCase repository name with 'Strings' appended, e.g.
// 'joist' scans for JoistStrings accesses.
func NewScanner(repo string) *Scanner {
	prefix := StringsPrefix(repo)
	return &Scanner{
		repo:   repo,
		prefix: prefix,
		access: regexp.MustCompile(regexp.QuoteMeta(prefix) + accessChunks),
	}
}

// PartialKeys scans the given module source texts and returns the sorted set
// of unique partial string keys they reference. Files that never mention the
// string-module identifier are skipped entirely.
func (s *Scanner) PartialKeys(contents []string) []string {
	var accesses []string
	for _, content := range contents {
		if !strings.Contains(content, s.prefix) {
			continue
		}
		for _, match := range s.access.FindAllString(content, -1) {
			// Strip the delimiting character that ended the match.
			match = match[:len(match)-1]

			// FooStrings[ 'xStringProperty' ].value => FooStrings[ 'x' ]
			match = bracketValueRewrite.ReplaceAllString(match, "$1")
			// FooStrings.xStringProperty.value => FooStrings.x
			match = dotValueRewrite.ReplaceAllString(match, "")

			accesses = append(accesses, match)
		}
	}

	seen := make(map[string]bool)
	var keys []string
	for _, access := range accesses {
		partial := strings.Join(Tokenize(strings.TrimPrefix(access, s.prefix)), ".")

		// Scanning the import statement itself produces the artifact
		// `FooStrings.js` => key 'js'.
		if partial == "js" || partial == "" {
			continue
		}
		if !seen[partial] {
			seen[partial] = true
			keys = append(keys, partial)
		}
	}

	sort.Strings(keys)
	return keys
}

// IsReactiveOnly reports whether a partial key refers to a string Property
// binding rather than a literal string, and is therefore exempt from having to
// resolve to a translation.
func IsReactiveOnly(partialKey string) bool {
	return strings.HasSuffix(partialKey, reactiveSuffix)
}

// StringsPrefix returns the string-module identifier for a repository name:
// PascalCase with 'Strings' appended ('build-a-molecule' -> 'BuildAMoleculeStrings').
func StringsPrefix(repo string) string {
	return PascalCase(repo) + "Strings"
}

// PascalCase converts a lowercase-with-dashes repository name to PascalCase.
func PascalCase(repo string) string {
	parts := strings.Split(repo, "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, "")
}

// KebabCase converts a PascalCase name back to lowercase-with-dashes
// ('BuildAMolecule' -> 'build-a-molecule').
func KebabCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
