package stringmap

import (
	"reflect"
	"testing"
)

const exampleModule = `
import ExampleSimStrings from '../../example-sim/js/ExampleSimStrings.js';

const title = ExampleSimStrings.ResetAllButton.name;
const again = ExampleSimStrings.ResetAllButton.name;
const nested = ExampleSimStrings.screen.title;
const property = ExampleSimStrings.magnifierStringProperty;
const unwrapped = ExampleSimStrings.magnifierStringProperty.value;
const bracket = ExampleSimStrings[ 'acid-base.title' ];
`

func TestStringsPrefix(t *testing.T) {
	cases := map[string]string{
		"joist":            "JoistStrings",
		"example-sim":      "ExampleSimStrings",
		"build-a-molecule": "BuildAMoleculeStrings",
	}
	for repo, want := range cases {
		if got := StringsPrefix(repo); got != want {
			t.Errorf("StringsPrefix(%q) = %q, want %q", repo, got, want)
		}
	}
}

func TestKebabCase(t *testing.T) {
	cases := map[string]string{
		"Joist":          "joist",
		"ExampleSim":     "example-sim",
		"BuildAMolecule": "build-a-molecule",
	}
	for name, want := range cases {
		if got := KebabCase(name); got != want {
			t.Errorf("KebabCase(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestScannerPartialKeys(t *testing.T) {
	keys := NewScanner("example-sim").PartialKeys([]string{exampleModule})

	want := []string{
		"ResetAllButton.name",
		"acid-base.title",
		"magnifier",
		"magnifierStringProperty",
		"screen.title",
	}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("PartialKeys = %v, want %v", keys, want)
	}
}

func TestScannerNeverEmitsJsArtifact(t *testing.T) {
	// The import statement itself matches as `ExampleSimStrings.js'`; the
	// resulting 'js' key must be filtered out.
	keys := NewScanner("example-sim").PartialKeys([]string{
		`import ExampleSimStrings from '../ExampleSimStrings.js';`,
	})
	for _, key := range keys {
		if key == "js" {
			t.Fatalf("scanner emitted the 'js' artifact: %v", keys)
		}
	}
}

func TestScannerUniqueKeys(t *testing.T) {
	keys := NewScanner("example-sim").PartialKeys([]string{exampleModule, exampleModule})

	seen := make(map[string]bool)
	for _, key := range keys {
		if seen[key] {
			t.Errorf("duplicate key %q in scanner output", key)
		}
		seen[key] = true
	}
}

func TestScannerSkipsUnrelatedFiles(t *testing.T) {
	keys := NewScanner("example-sim").PartialKeys([]string{
		`const x = OtherSimStrings.some.key;`,
	})
	if len(keys) != 0 {
		t.Errorf("expected no keys from a file without the prefix, got %v", keys)
	}
}

func TestScannerReactiveRewrites(t *testing.T) {
	// .value off a reactive access strips the marker in both the bracket and
	// dot forms, leaving the plain string key.
	keys := NewScanner("example-sim").PartialKeys([]string{
		`import ExampleSimStrings from './ExampleSimStrings.js';
		 const a = ExampleSimStrings[ 'faradayStringProperty' ].value;
		 const b = ExampleSimStrings.voltageStringProperty.value;
		 const c = ExampleSimStrings["currentStringProperty"].value;`,
	})

	want := []string{"current", "faraday", "voltage"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("keys = %v, want %v", keys, want)
	}
}

func TestIsReactiveOnly(t *testing.T) {
	if !IsReactiveOnly("magnifierStringProperty") {
		t.Error("expected StringProperty suffix to be reactive-only")
	}
	if IsReactiveOnly("magnifier") {
		t.Error("plain keys are not reactive-only")
	}
}
