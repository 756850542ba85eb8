package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/phetsims/simstrings/config"
	"github.com/phetsims/simstrings/conglomerate"
	"github.com/phetsims/simstrings/datastore"
	"github.com/phetsims/simstrings/locale"
	"github.com/phetsims/simstrings/stringmap"
	"github.com/phetsims/simstrings/unbuilt"
	"github.com/phetsims/simstrings/watcher"
)

const (
	cmdMissing      = "missing"
	cmdUnrecognised = "unrecognised"
	cmdHelp         = "help"
	cmdBuild        = "build"
	cmdConglomerate = "conglomerate"
	cmdFetch        = "fetch"
	cmdInitDb       = "init-db"
	cmdReport       = "report"
	cmdServe        = "serve"
	cmdWatch        = "watch"
)

// Gets list of available commands
func availableCommands() []string {
	return []string{cmdBuild, cmdConglomerate, cmdFetch, cmdHelp, cmdInitDb, cmdReport, cmdServe, cmdWatch}
}

func localeTable(c config.Config) (locale.Table, error) {
	locales := locale.Default()
	if c.Sim.LocaleData != "" {
		if err := locales.LoadFile(c.Sim.LocaleData); err != nil {
			return nil, err
		}
	}
	return locales, nil
}

func newLoader(c config.Config, locales locale.Table) *stringmap.Loader {
	return &stringmap.Loader{
		ReposRoot: c.Paths.ReposRoot,
		BabelDir:  c.Paths.BabelDir,
		Locales:   locales,
	}
}

// build assembles the string map for the configured sim and locales, and
// writes the strings file and the metadata file to the output directory.
func build(c config.Config) {
	start := time.Now()

	locales, err := localeTable(c)
	checkFatal(err)

	repoDir := filepath.Join(c.Paths.ReposRoot, c.Sim.Repo)
	modules, err := stringmap.DiscoverUsedModules(repoDir, c.Sim.ModulePatterns)
	checkFatal(err)

	assembler := &stringmap.Assembler{Loader: newLoader(c, locales)}
	result, err := assembler.Assemble(c.Sim.Locales, modules)
	checkFatal(err)

	checkFatal(os.MkdirAll(c.Paths.OutDir, 0755))
	writeJson(filepath.Join(c.Paths.OutDir, c.Sim.Repo+"_strings.json"), result.StringMap)
	writeJson(filepath.Join(c.Paths.OutDir, c.Sim.Repo+"_string-metadata.json"), result.Metadata)

	elapsed := time.Since(start).Seconds()
	fmt.Printf("Built %v locales from %v modules in %fs\n", len(c.Sim.Locales), len(modules), elapsed)
}

func writeJson(file string, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	checkFatal(err)
	checkFatal(os.WriteFile(file, data, 0644))
	fmt.Println("Wrote", file)
}

// generateConglomerate merges every locale's translation file for the
// configured sim into one development-strings file.
func generateConglomerate(c config.Config) {
	written := make(chan string, 1)
	checkFatal(conglomerate.Conglomerate(c.Paths.ReposRoot, c.Paths.BabelDir, c.Sim.Repo, written))

	select {
	case file := <-written:
		fmt.Println("Wrote", file)
	default:
	}
}

// fetchStrings loads the configured sim's strings over HTTP from a running
// strings server, the way unbuilt mode does, and writes the result to the
// output directory.
func fetchStrings(c config.Config) {
	locales, err := localeTable(c)
	checkFatal(err)

	namespace, err := stringmap.ReadNamespace(c.Paths.ReposRoot, c.Sim.Repo)
	checkFatal(err)

	var requests []unbuilt.Request
	if c.Fetch.AllLocales {
		requests = unbuilt.AllLocaleRequests(c.Sim.Repo, namespace, locales)
	} else {
		for _, loc := range c.Sim.Locales {
			requests = append(requests, unbuilt.Request{Repo: c.Sim.Repo, Namespace: namespace, Locale: loc})
		}
	}

	loader := &unbuilt.Loader{
		BaseURL: c.Fetch.BaseURL,
		Locales: locales,
		Quiet:   c.Fetch.AllLocales,
	}
	service := loader.Load(context.Background(), requests)

	checkFatal(os.MkdirAll(c.Paths.OutDir, 0755))
	writeJson(filepath.Join(c.Paths.OutDir, c.Sim.Repo+"_fetched-strings.json"), service)

	fmt.Printf("Fetched %v of %v locales\n", len(service.Locales()), len(requests))
}

// initDb initializes the database with all necessary tables.
func initDb(c config.Config) {
	var db *sqlx.DB
	db, err := sqlx.Connect(c.DB.Driver, c.DB.ConnectionString())
	checkFatal(err)
	ds, err := datastore.New(db, c.DB.Driver)
	checkFatal(err)

	dbVersion, err := ds.MigrateUp()
	if err != nil {
		fmt.Println(err)
		checkFatal(errors.New(fmt.Sprintf("Could not complete database migration, last applied version was %v", dbVersion)))
	}

	fmt.Println("Successfully migrated the database to version", dbVersion)
}

// watchTranslations regenerates the development-strings conglomerate whenever
// a translation file for the configured sim changes.
func watchTranslations(c config.Config) {
	dirs := []string{
		filepath.Join(c.Paths.BabelDir, c.Sim.Repo),
		filepath.Join(c.Paths.ReposRoot, c.Sim.Repo),
	}

	w := &watcher.Watcher{
		Dirs:     dirs,
		Debounce: time.Duration(c.Watch.DebounceMs) * time.Millisecond,
		Ignore:   c.Watch.IgnorePatterns,
		OnChange: func(paths []string) {
			fmt.Printf("%v files changed, regenerating conglomerate\n", len(paths))
			if err := conglomerate.Conglomerate(c.Paths.ReposRoot, c.Paths.BabelDir, c.Sim.Repo, nil); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
			}
		},
	}

	fmt.Printf("Watching %v for translation changes\n", strings.Join(dirs, ", "))
	checkFatal(w.Run(context.Background()))
}
