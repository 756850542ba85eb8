package stringmap

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/phetsims/simstrings/locale"
)

// Loader reads translation files for (repository, locale) pairs.
//
// The fallback locale's file lives in the repository itself; every other
// locale's file lives under the sibling translations directory (babel):
//
//	{reposRoot}/{repo}/{repo}-strings_en.json
//	{babelDir}/{repo}/{repo}-strings_{locale}.json
type Loader struct {
	ReposRoot string
	BabelDir  string
	Locales   locale.Table
}

// Path returns the on-disk location of the translation file for a
// (repository, locale) pair.
func (l *Loader) Path(repo, loc string) string {
	dir := filepath.Join(l.BabelDir, repo)
	if loc == locale.Fallback {
		dir = filepath.Join(l.ReposRoot, repo)
	}
	return filepath.Join(dir, StringsFileName(repo, loc))
}

// Load reads and parses the translation file for a (repository, locale) pair
// and applies directional formatting to every string value in it. A missing
// or unparsable file is not an error; it yields an empty tree, meaning "no
// overrides for this locale".
func (l *Loader) Load(repo, loc string) Tree {
	tree := make(Tree)

	data, err := os.ReadFile(l.Path(repo, loc))
	if err == nil {
		if err := json.Unmarshal(data, &tree); err != nil {
			tree = make(Tree)
		}
	}

	FormatTree(tree, l.Locales.IsRTL(loc))
	return tree
}

// StringsFileName returns the conventional file name for a repository's
// translation file in a given locale.
func StringsFileName(repo, loc string) string {
	return fmt.Sprintf("%v-strings_%v.json", repo, loc)
}

// packageManifest is the subset of a repository's package.json that the build
// needs.
type packageManifest struct {
	Phet struct {
		RequirejsNamespace string `json:"requirejsNamespace"`
	} `json:"phet"`
}

// HasManifest reports whether a sibling repository checkout exists, judged by
// the presence of its package manifest.
func HasManifest(reposRoot, repo string) bool {
	_, err := os.Stat(filepath.Join(reposRoot, repo, "package.json"))
	return err == nil
}

// ReadNamespace reads a repository's requirejs namespace (e.g. 'JOIST') from
// its package manifest.
func ReadNamespace(reposRoot, repo string) (string, error) {
	path := filepath.Join(reposRoot, repo, "package.json")

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var manifest packageManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return "", fmt.Errorf("could not parse '%v': %w", path, err)
	}

	if manifest.Phet.RequirejsNamespace == "" {
		return "", errors.New(fmt.Sprintf("repo '%v' has no phet.requirejsNamespace in its package manifest", repo))
	}
	return manifest.Phet.RequirejsNamespace, nil
}
