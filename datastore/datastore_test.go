package datastore

import (
	"database/sql"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/phetsims/simstrings/config"
	"github.com/phetsims/simstrings/stringmap"
)

func newTestStore(t *testing.T) *DataStore {
	t.Helper()

	db, err := sqlx.Connect("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("could not open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ds, err := New(db, config.DbDriverSqlite3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := ds.MigrateUp(); err != nil {
		t.Fatalf("MigrateUp: %v", err)
	}
	return ds
}

func sampleResult() *stringmap.Result {
	return &stringmap.Result{
		Resolutions: []stringmap.Resolution{
			{Locale: "es", StringKey: "NS/A.b", ResolvedLocale: "es"},
			{Locale: "es", StringKey: "NS/C.d", ResolvedLocale: "en"},
			{Locale: "en", StringKey: "NS/A.b", ResolvedLocale: "en"},
			{Locale: "en", StringKey: "NS/C.d", ResolvedLocale: "en"},
		},
	}
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	db, err := sqlx.Connect("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if _, err := New(db, "oracle"); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestRecordAndReport(t *testing.T) {
	ds := newTestStore(t)

	buildId, err := ds.RecordBuild("example-sim", sampleResult())
	if err != nil {
		t.Fatalf("RecordBuild: %v", err)
	}

	latest, err := ds.GetLatestBuildId("example-sim")
	if err != nil {
		t.Fatalf("GetLatestBuildId: %v", err)
	}
	if latest != buildId {
		t.Errorf("latest build = %v, want %v", latest, buildId)
	}

	fallbacks, err := ds.GetFallbacks(buildId)
	if err != nil {
		t.Fatalf("GetFallbacks: %v", err)
	}
	if len(fallbacks) != 1 {
		t.Fatalf("expected exactly one fallback row, got %v", fallbacks)
	}
	fb := fallbacks[0]
	if fb.Locale != "es" || fb.StringKey != "NS/C.d" || fb.ResolvedLocale != "en" {
		t.Errorf("fallback row = %+v", fb)
	}
}

func TestLatestBuildWins(t *testing.T) {
	ds := newTestStore(t)

	first, err := ds.RecordBuild("example-sim", sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	second, err := ds.RecordBuild("example-sim", sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	if second <= first {
		t.Errorf("build ids should increase: %v then %v", first, second)
	}

	latest, err := ds.GetLatestBuildId("example-sim")
	if err != nil {
		t.Fatal(err)
	}
	if latest != second {
		t.Errorf("latest = %v, want %v", latest, second)
	}

	count, err := ds.GetBuildCount("example-sim")
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("count = %v, want 2", count)
	}
}

func TestUnknownRepoHasNoBuilds(t *testing.T) {
	ds := newTestStore(t)

	if _, err := ds.GetLatestBuildId("never-built"); err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}

	count, err := ds.GetBuildCount("never-built")
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("count = %v, want 0", count)
	}
}
