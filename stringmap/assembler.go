package stringmap

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/phetsims/simstrings/locale"
)

// stringsImport matches import statements of repository string modules, e.g.
// `import JoistStrings from '../../joist/js/JoistStrings.js'`. The captured
// PascalCase name identifies the repository.
var stringsImport = regexp.MustCompile(`import\s+([a-zA-Z_$][a-zA-Z0-9_$]*)Strings\s+from\s+'[^']*Strings\.js'`)

// Resolution records where one string key's value came from for one requested
// locale.
type Resolution struct {
	Locale         string
	StringKey      string
	ResolvedLocale string
}

// Result is the output of an assembly: the per-locale string map, the metadata
// side map (populated only from fallback-locale entries), and the per-key
// resolution audit.
type Result struct {
	StringMap   map[string]map[string]string
	Metadata    map[string]map[string]interface{}
	Resolutions []Resolution
}

// Assembler builds the final string maps for a set of used modules.
type Assembler struct {
	Loader *Loader
}

// Assemble builds the {locale: {NAMESPACE/partial.key: value}} map for every
// requested locale.
//
// The requested locales must include the fallback locale and must all be known
// to the locale table. Every non-reactive string access discovered in the used
// modules must resolve somewhere along its locale fallback chain; a key that
// resolves nowhere fails the whole build.
func (a *Assembler) Assemble(locales []string, usedModulePaths []string) (*Result, error) {
	if !contains(locales, locale.Fallback) {
		return nil, errors.New(fmt.Sprintf("the locale list must include the fallback locale '%v'", locale.Fallback))
	}
	for _, loc := range locales {
		if err := a.Loader.Locales.Validate(loc); err != nil {
			return nil, err
		}
	}

	contents := make([]string, len(usedModulePaths))
	for i, path := range usedModulePaths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("could not read used module '%v': %w", path, err)
		}
		contents[i] = string(data)
	}

	repos := a.usedRepos(contents)

	namespaces := make(map[string]string, len(repos))
	for _, repo := range repos {
		namespace, err := ReadNamespace(a.Loader.ReposRoot, repo)
		if err != nil {
			return nil, err
		}
		namespaces[repo] = namespace
	}

	// Load each needed (repo, locale) file exactly once. Locales longer than
	// two characters also need their language-family file for fallback.
	needed := neededLocales(locales)
	trees := make(map[string]map[string]Tree, len(repos))
	for _, repo := range repos {
		trees[repo] = make(map[string]Tree, len(needed))
		for _, loc := range needed {
			trees[repo][loc] = a.Loader.Load(repo, loc)
		}
	}

	result := &Result{
		StringMap: make(map[string]map[string]string, len(locales)),
		Metadata:  make(map[string]map[string]interface{}),
	}
	for _, loc := range locales {
		result.StringMap[loc] = make(map[string]string)
	}

	for _, repo := range repos {
		partialKeys := NewScanner(repo).PartialKeys(contents)

		for _, partialKey := range partialKeys {
			if IsReactiveOnly(partialKey) {
				continue
			}

			fullKey := namespaces[repo] + "/" + partialKey

			for _, loc := range locales {
				entry, resolvedLocale := resolve(trees[repo], loc, partialKey)
				if entry == nil {
					return nil, errors.New(fmt.Sprintf(
						"string key '%v' has no entry in any fallback of locale '%v'", fullKey, loc))
				}

				result.StringMap[loc][fullKey] = entry.Value
				result.Resolutions = append(result.Resolutions, Resolution{
					Locale:         loc,
					StringKey:      fullKey,
					ResolvedLocale: resolvedLocale,
				})

				// Metadata is authoritative only from the fallback locale.
				if loc == locale.Fallback && entry.Metadata != nil {
					result.Metadata[fullKey] = entry.Metadata
				}
			}
		}
	}

	return result, nil
}

// usedRepos scans module contents for string-module imports and returns the
// sorted set of referenced repositories that exist as sibling checkouts.
func (a *Assembler) usedRepos(contents []string) []string {
	seen := make(map[string]bool)
	var repos []string

	for _, content := range contents {
		for _, match := range stringsImport.FindAllStringSubmatch(content, -1) {
			repo := KebabCase(match[1])
			if seen[repo] {
				continue
			}
			seen[repo] = true

			if HasManifest(a.Loader.ReposRoot, repo) {
				repos = append(repos, repo)
			}
		}
	}

	sort.Strings(repos)
	return repos
}

// resolve walks a locale's fallback chain against one repository's loaded
// trees and returns the first entry found, plus the locale it came from.
func resolve(trees map[string]Tree, loc, partialKey string) (*Entry, string) {
	for _, fallback := range locale.Fallbacks(loc) {
		tree, ok := trees[fallback]
		if !ok {
			continue
		}
		if entry := Lookup(tree, partialKey); entry != nil {
			return entry, fallback
		}
	}
	return nil, ""
}

// neededLocales expands the requested locales with the language-family forms
// their fallback chains will consult.
func neededLocales(locales []string) []string {
	needed := append([]string{}, locales...)
	for _, loc := range locales {
		if len(loc) > 2 {
			if family := locale.Family(loc); !contains(needed, family) {
				needed = append(needed, family)
			}
		}
	}
	return needed
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// DiscoverUsedModules expands the configured glob patterns under a repository
// directory into the sorted list of module files to scan.
func DiscoverUsedModules(repoDir string, patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(filepath.Join(repoDir, filepath.FromSlash(pattern)))
		if err != nil {
			return nil, fmt.Errorf("bad module pattern '%v': %w", pattern, err)
		}
		for _, match := range matches {
			if !seen[match] {
				seen[match] = true
				paths = append(paths, match)
			}
		}
	}

	sort.Strings(paths)
	return paths, nil
}
