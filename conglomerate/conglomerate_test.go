package conglomerate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLocaleFromFileName(t *testing.T) {
	cases := map[string]string{
		"example-sim-strings_en.json":    "en",
		"example-sim-strings_zh_CN.json": "CN",
		"readme.txt":                     "",
		"nolocale.json":                  "",
	}
	for name, want := range cases {
		if got := LocaleFromFileName(name); got != want {
			t.Errorf("LocaleFromFileName(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestConglomerateMergesAllLocales(t *testing.T) {
	root := t.TempDir()
	reposRoot := filepath.Join(root, "repos")
	babelDir := filepath.Join(root, "babel")

	writeFile(t, filepath.Join(reposRoot, "example-sim", "example-sim-strings_en.json"), `{
		"title": { "value": "Example", "history": [ { "who": "someone" } ] }
	}`)
	writeFile(t, filepath.Join(babelDir, "example-sim", "example-sim-strings_es.json"), `{
		"title": { "value": "Ejemplo", "metadata": { "x": 1 } }
	}`)

	if err := Conglomerate(reposRoot, babelDir, "example-sim", nil); err != nil {
		t.Fatalf("Conglomerate: %v", err)
	}

	outFile := filepath.Join(babelDir, OutputDirName, "example-sim_all.json")
	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("expected output file: %v", err)
	}

	var merged Strings
	if err := json.Unmarshal(data, &merged); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if got := merged["en"]["title"].Value; got != "Example" {
		t.Errorf("en title = %q", got)
	}
	if got := merged["es"]["title"].Value; got != "Ejemplo" {
		t.Errorf("es title = %q", got)
	}

	// History and metadata must be stripped from the reduced entries.
	var raw map[string]map[string]map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	for loc, strings := range raw {
		for key, entry := range strings {
			if len(entry) != 1 {
				t.Errorf("%v/%v kept extra fields: %v", loc, key, entry)
			}
		}
	}
}

func TestConglomerateNoTranslations(t *testing.T) {
	root := t.TempDir()
	reposRoot := filepath.Join(root, "repos")
	babelDir := filepath.Join(root, "babel")

	if err := os.MkdirAll(filepath.Join(reposRoot, "bare-sim"), 0755); err != nil {
		t.Fatal(err)
	}

	if err := Conglomerate(reposRoot, babelDir, "bare-sim", nil); err != nil {
		t.Fatalf("Conglomerate: %v", err)
	}

	if _, err := os.Stat(filepath.Join(babelDir, OutputDirName)); !os.IsNotExist(err) {
		t.Error("no output directory should be created when there is nothing to write")
	}
}

func TestBuildNestedKeysFlatten(t *testing.T) {
	root := t.TempDir()
	reposRoot := filepath.Join(root, "repos")
	babelDir := filepath.Join(root, "babel")

	writeFile(t, filepath.Join(reposRoot, "example-sim", "example-sim-strings_en.json"), `{
		"screen": { "lab": { "value": "Lab" } }
	}`)

	merged, err := Build(reposRoot, babelDir, "example-sim")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := merged["en"]["screen.lab"].Value; got != "Lab" {
		t.Errorf("screen.lab = %q", got)
	}
}
