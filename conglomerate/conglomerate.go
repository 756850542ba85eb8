/*
Package conglomerate pre-merges every locale's translation file for a
repository into one combined JSON file, so development mode can fetch all
locales in a single request instead of one request per locale.
*/
package conglomerate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/phetsims/simstrings/locale"
	"github.com/phetsims/simstrings/stringmap"
)

// OutputDirName is the directory under babel that holds generated
// development-strings files.
const OutputDirName = "_generated_development_strings"

// Value is a reduced string entry: the translation value with history and
// other metadata fields stripped.
type Value struct {
	Value string `json:"value"`
}

// Strings is the merged development-strings object: locale to partial string
// key to reduced value. Keys are not yet namespaced; that happens when the
// file is consumed.
type Strings map[string]map[string]Value

// Build merges every available translation file for a repository. A missing
// translations directory is tolerated; the result may be empty.
func Build(reposRoot, babelDir, repo string) (Strings, error) {
	files, err := candidateFiles(reposRoot, babelDir, repo)
	if err != nil {
		return nil, err
	}

	merged := make(Strings)
	for _, file := range files {
		loc := LocaleFromFileName(filepath.Base(file))
		if loc == "" {
			continue
		}

		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}

		tree := make(stringmap.Tree)
		if err := json.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("could not parse '%v': %w", file, err)
		}

		reduced := make(map[string]Value)
		for key, entry := range stringmap.Flatten(tree) {
			reduced[key] = Value{Value: entry.Value}
		}
		merged[loc] = reduced
	}

	return merged, nil
}

// Conglomerate builds the merged development-strings object for a repository
// and writes it to {babelDir}/_generated_development_strings/{repo}_all.json.
// When the repository has no translations at all, it logs and writes nothing.
func Conglomerate(reposRoot, babelDir, repo string, notify chan<- string) error {
	merged, err := Build(reposRoot, babelDir, repo)
	if err != nil {
		return err
	}

	if len(merged) == 0 {
		fmt.Printf("No translations found for %v, skipping conglomerate\n", repo)
		return nil
	}

	outDir := filepath.Join(babelDir, OutputDirName)
	if err := os.MkdirAll(outDir, 0755); err != nil && !os.IsExist(err) {
		return err
	}

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return err
	}

	outFile := filepath.Join(outDir, OutputFileName(repo))
	if err := os.WriteFile(outFile, data, 0644); err != nil {
		return err
	}

	if notify != nil {
		notify <- outFile
	}
	return nil
}

// OutputFileName returns the conglomerate file name for a repository.
func OutputFileName(repo string) string {
	return repo + "_all.json"
}

// LocaleFromFileName extracts the locale token between the last '_' and
// '.json' of a translation file name, or "" when the name has no locale.
func LocaleFromFileName(name string) string {
	if !strings.HasSuffix(name, ".json") {
		return ""
	}
	trimmed := strings.TrimSuffix(name, ".json")
	idx := strings.LastIndex(trimmed, "_")
	if idx < 0 {
		return ""
	}
	return trimmed[idx+1:]
}

// candidateFiles lists the translation files to merge: everything under the
// repository's babel directory, plus the repository's own fallback-locale
// file when present.
func candidateFiles(reposRoot, babelDir, repo string) ([]string, error) {
	files, err := doublestar.FilepathGlob(filepath.Join(babelDir, repo, repo+"-strings_*.json"))
	if err != nil {
		return nil, err
	}

	enFile := filepath.Join(reposRoot, repo, stringmap.StringsFileName(repo, locale.Fallback))
	if _, err := os.Stat(enFile); err == nil {
		files = append(files, enFile)
	}

	sort.Strings(files)
	return files, nil
}
