/*
Package report assembles the configured sim's string map, records the
per-key resolution audit as a new build, and prints every key whose value
fell back past its requested locale, i.e. the strings still waiting on a
translation.
*/
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/phetsims/simstrings/config"
	"github.com/phetsims/simstrings/datastore"
	"github.com/phetsims/simstrings/locale"
	"github.com/phetsims/simstrings/stringmap"
)

func checkFatal(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func Run(c config.Config) {
	start := time.Now()

	results := make(chan datastore.Fallback, 100)
	done := make(chan bool, 1)

	go func() {
		for {
			fb := <-results
			fmt.Printf("%v  %v (resolved from %v)\n", fb.Locale, fb.StringKey, fb.ResolvedLocale)
		}
	}()

	var (
		count int
		stats datastore.Stats
	)
	go func() {
		var db *sqlx.DB
		db, err := sqlx.Connect(c.DB.Driver, c.DB.ConnectionString())
		checkFatal(err)
		ds, err := datastore.New(db, c.DB.Driver)
		checkFatal(err)

		result, err := assemble(c)
		checkFatal(err)

		buildId, err := ds.RecordBuild(c.Sim.Repo, result)
		checkFatal(err)

		fallbacks, err := ds.GetFallbacks(buildId)
		checkFatal(err)
		for _, fb := range fallbacks {
			results <- fb
		}
		count = len(fallbacks)

		stats = ds.Stats

		done <- true
	}()
	<-done

	elapsed := time.Since(start).Seconds()
	fmt.Printf("Recorded %v fallback keys in %fs\n\n", count, elapsed)

	fmt.Fprintln(os.Stderr, stats)
}

func assemble(c config.Config) (*stringmap.Result, error) {
	locales := locale.Default()
	if c.Sim.LocaleData != "" {
		if err := locales.LoadFile(c.Sim.LocaleData); err != nil {
			return nil, err
		}
	}

	repoDir := filepath.Join(c.Paths.ReposRoot, c.Sim.Repo)
	modules, err := stringmap.DiscoverUsedModules(repoDir, c.Sim.ModulePatterns)
	if err != nil {
		return nil, err
	}

	assembler := &stringmap.Assembler{
		Loader: &stringmap.Loader{
			ReposRoot: c.Paths.ReposRoot,
			BabelDir:  c.Paths.BabelDir,
			Locales:   locales,
		},
	}
	return assembler.Assemble(c.Sim.Locales, modules)
}
