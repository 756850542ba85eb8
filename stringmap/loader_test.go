package stringmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/phetsims/simstrings/locale"
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

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	root := t.TempDir()
	return &Loader{
		ReposRoot: filepath.Join(root, "repos"),
		BabelDir:  filepath.Join(root, "babel"),
		Locales:   locale.Default(),
	}
}

func TestLoaderPaths(t *testing.T) {
	l := newTestLoader(t)

	en := l.Path("example-sim", "en")
	wantEn := filepath.Join(l.ReposRoot, "example-sim", "example-sim-strings_en.json")
	if en != wantEn {
		t.Errorf("en path = %v, want %v", en, wantEn)
	}

	es := l.Path("example-sim", "es")
	wantEs := filepath.Join(l.BabelDir, "example-sim", "example-sim-strings_es.json")
	if es != wantEs {
		t.Errorf("es path = %v, want %v", es, wantEs)
	}
}

func TestLoaderReadsAndFormats(t *testing.T) {
	l := newTestLoader(t)
	writeFile(t, l.Path("example-sim", "en"), `{"greeting": {"value": "Hello"}}`)
	writeFile(t, l.Path("example-sim", "ar"), `{"greeting": {"value": "مرحبا"}}`)

	en := l.Load("example-sim", "en")
	if got := Lookup(en, "greeting").Value; got != "\u202aHello\u202c" {
		t.Errorf("en greeting = %q", got)
	}

	ar := l.Load("example-sim", "ar")
	if got := Lookup(ar, "greeting").Value; got != "\u202bمرحبا\u202c" {
		t.Errorf("ar greeting = %q", got)
	}
}

func TestLoaderMissingFileIsEmptyTree(t *testing.T) {
	l := newTestLoader(t)

	tree := l.Load("example-sim", "es")
	if len(tree) != 0 {
		t.Errorf("expected empty tree for a missing file, got %v", tree)
	}
}

func TestLoaderInvalidJSONIsEmptyTree(t *testing.T) {
	l := newTestLoader(t)
	writeFile(t, l.Path("example-sim", "es"), `{not json`)

	tree := l.Load("example-sim", "es")
	if len(tree) != 0 {
		t.Errorf("expected empty tree for invalid JSON, got %v", tree)
	}
}

func TestReadNamespace(t *testing.T) {
	l := newTestLoader(t)
	writeFile(t, filepath.Join(l.ReposRoot, "example-sim", "package.json"),
		`{"name": "example-sim", "phet": {"requirejsNamespace": "EXAMPLE_SIM"}}`)

	ns, err := ReadNamespace(l.ReposRoot, "example-sim")
	if err != nil {
		t.Fatalf("ReadNamespace: %v", err)
	}
	if ns != "EXAMPLE_SIM" {
		t.Errorf("namespace = %q", ns)
	}

	if _, err := ReadNamespace(l.ReposRoot, "no-such-repo"); err == nil {
		t.Error("expected error for a repo without a manifest")
	}

	writeFile(t, filepath.Join(l.ReposRoot, "bare-repo", "package.json"), `{"name": "bare-repo"}`)
	if _, err := ReadNamespace(l.ReposRoot, "bare-repo"); err == nil {
		t.Error("expected error for a manifest without a namespace")
	}

	if !HasManifest(l.ReposRoot, "example-sim") {
		t.Error("HasManifest should see example-sim")
	}
	if HasManifest(l.ReposRoot, "no-such-repo") {
		t.Error("HasManifest should not see no-such-repo")
	}
}
