package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"

	"github.com/phetsims/simstrings/config"
	"github.com/phetsims/simstrings/conglomerate"
	"github.com/phetsims/simstrings/datastore"
	"github.com/phetsims/simstrings/locale"
	"github.com/phetsims/simstrings/stringmap"
)

var (
	cfg     config.Config
	locales locale.Table
	regen   chan string
)

func checkFatal(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func checkHttpWithStatus(e error, w http.ResponseWriter, status int) (hadError bool) {
	if e != nil {
		w.WriteHeader(status)

		errMsg := e.Error()
		// Don't expose the 'sql: no rows in result set' message to the user
		if status == http.StatusNotFound && e == sql.ErrNoRows {
			errMsg = "not found"
		}

		jsonErr := struct {
			Error string `json:"error"`
		}{
			Error: errMsg,
		}
		enc := json.NewEncoder(w)
		enc.Encode(jsonErr)

		return true
	}
	return false
}

func checkHttp(e error, w http.ResponseWriter) (hadError bool) {
	status := http.StatusInternalServerError
	if e == sql.ErrNoRows {
		status = http.StatusNotFound
	}
	return checkHttpWithStatus(e, w, status)
}

// Instantiates a datastore for a request using the given DB connection
func handleWithDatastore(db *sqlx.DB, driver string, f func(http.ResponseWriter, *http.Request, *datastore.DataStore)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds, err := datastore.New(db, driver)

		if checkHttpWithStatus(err, w, http.StatusServiceUnavailable) {
			return
		}
		f(w, r, ds)
	}
}

func setJsonHeaders(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		h.ServeHTTP(w, r)
	})
}

func newLoader() *stringmap.Loader {
	return &stringmap.Loader{
		ReposRoot: cfg.Paths.ReposRoot,
		BabelDir:  cfg.Paths.BabelDir,
		Locales:   locales,
	}
}

// Gets the locale table: every locale the build tooling knows about
func getLocalesHandler(w http.ResponseWriter, r *http.Request) {
	var output struct {
		Locales locale.Table `json:"locales"`
	}
	output.Locales = locales

	enc := json.NewEncoder(w)
	checkHttp(enc.Encode(output), w)
}

// Serves a repo's raw translation file for one locale. This is the endpoint
// unbuilt mode fetches, one request per (repo, locale).
func getStringsFileHandler(w http.ResponseWriter, r *http.Request) {
	repo := mux.Vars(r)["repo"]
	loc := mux.Vars(r)["locale"]

	data, err := os.ReadFile(newLoader().Path(repo, loc))
	if os.IsNotExist(err) {
		checkHttpWithStatus(sql.ErrNoRows, w, http.StatusNotFound)
		return
	}
	if checkHttp(err, w) {
		return
	}

	w.Write(data)
}

// Serves a repo's generated development-strings conglomerate file
func getConglomerateHandler(w http.ResponseWriter, r *http.Request) {
	repo := mux.Vars(r)["repo"]

	file := filepath.Join(cfg.Paths.BabelDir, conglomerate.OutputDirName, conglomerate.OutputFileName(repo))
	data, err := os.ReadFile(file)
	if os.IsNotExist(err) {
		checkHttpWithStatus(sql.ErrNoRows, w, http.StatusNotFound)
		return
	}
	if checkHttp(err, w) {
		return
	}

	w.Write(data)
}

// Queues regeneration of a repo's development-strings conglomerate
func regenerateConglomerateHandler(w http.ResponseWriter, r *http.Request) {
	repo := mux.Vars(r)["repo"]

	regen <- repo

	w.Write([]byte("{\"result\":\"ok\"}\n"))
}

// Assembles the full string map for the configured sim on the fly. The
// 'locales' query parameter (comma-separated) overrides the configured locale
// list.
func getStringMapHandler(w http.ResponseWriter, r *http.Request) {
	buildLocales := cfg.Sim.Locales
	if param := r.URL.Query().Get("locales"); param != "" {
		buildLocales = strings.Split(param, ",")
	}

	result, err := assemble(buildLocales)
	if checkHttpWithStatus(err, w, http.StatusBadRequest) {
		return
	}

	var output struct {
		Strings  map[string]map[string]string      `json:"strings"`
		Metadata map[string]map[string]interface{} `json:"stringMetadata"`
	}
	output.Strings = result.StringMap
	output.Metadata = result.Metadata

	enc := json.NewEncoder(w)
	checkHttp(enc.Encode(output), w)
}

// Assembles the configured sim's string map and records its resolution audit
// as a new build
func createBuildHandler(w http.ResponseWriter, r *http.Request, ds *datastore.DataStore) {
	repo := mux.Vars(r)["repo"]

	result, err := assemble(cfg.Sim.Locales)
	if checkHttp(err, w) {
		return
	}

	buildId, err := ds.RecordBuild(repo, result)
	if checkHttp(err, w) {
		return
	}

	var output struct {
		Result  string `json:"result"`
		BuildId int64  `json:"buildId"`
	}
	output.Result = "ok"
	output.BuildId = buildId

	enc := json.NewEncoder(w)
	checkHttp(enc.Encode(output), w)
}

// Gets the fallback report for a repo's most recent recorded build: every
// (locale, string key) whose value came from a fallback locale
func getReportHandler(w http.ResponseWriter, r *http.Request, ds *datastore.DataStore) {
	repo := mux.Vars(r)["repo"]

	buildId, err := ds.GetLatestBuildId(repo)
	if checkHttp(err, w) {
		return
	}

	fallbacks, err := ds.GetFallbacks(buildId)
	if checkHttp(err, w) {
		return
	}

	var output struct {
		BuildId   int64           `json:"buildId"`
		Fallbacks []fallbackEntry `json:"fallbacks"`
	}
	output.BuildId = buildId
	output.Fallbacks = make([]fallbackEntry, len(fallbacks))
	for i, fb := range fallbacks {
		output.Fallbacks[i] = fallbackEntry{
			Locale:         fb.Locale,
			StringKey:      fb.StringKey,
			ResolvedLocale: fb.ResolvedLocale,
		}
	}

	enc := json.NewEncoder(w)
	checkHttp(enc.Encode(output), w)
}

type fallbackEntry struct {
	Locale         string `json:"locale"`
	StringKey      string `json:"stringKey"`
	ResolvedLocale string `json:"resolvedLocale"`
}

func assemble(buildLocales []string) (*stringmap.Result, error) {
	repoDir := filepath.Join(cfg.Paths.ReposRoot, cfg.Sim.Repo)
	modules, err := stringmap.DiscoverUsedModules(repoDir, cfg.Sim.ModulePatterns)
	if err != nil {
		return nil, err
	}

	assembler := &stringmap.Assembler{Loader: newLoader()}
	return assembler.Assemble(buildLocales, modules)
}

func Serve(c config.Config) {
	cfg = c
	locales = locale.Default()
	if c.Sim.LocaleData != "" {
		checkFatal(locales.LoadFile(c.Sim.LocaleData))
	}
	regen = make(chan string, 100)

	var db *sqlx.DB
	db, err := sqlx.Connect(c.DB.Driver, c.DB.ConnectionString())
	checkFatal(err)

	// Listen for repos whose conglomerate should be regenerated
	go func() {
		for {
			repo := <-regen
			err := conglomerate.Conglomerate(c.Paths.ReposRoot, c.Paths.BabelDir, repo, nil)
			if err != nil {
				fmt.Println(err)
			}
		}
	}()

	r := mux.NewRouter().StrictSlash(true)
	r.HandleFunc("/locales", getLocalesHandler).Methods("GET")
	r.HandleFunc("/repos/{repo}/strings/{locale}", getStringsFileHandler).Methods("GET")
	r.HandleFunc("/repos/{repo}/conglomerate", getConglomerateHandler).Methods("GET")
	r.HandleFunc("/repos/{repo}/conglomerate", regenerateConglomerateHandler).Methods("POST")
	r.HandleFunc("/repos/{repo}/builds", handleWithDatastore(db, c.DB.Driver, createBuildHandler)).Methods("POST")
	r.HandleFunc("/repos/{repo}/report", handleWithDatastore(db, c.DB.Driver, getReportHandler)).Methods("GET")
	r.HandleFunc("/stringmap", getStringMapHandler).Methods("GET")

	rWithMiddleWares := handlers.CombinedLoggingHandler(os.Stdout, setJsonHeaders(r))

	fmt.Printf("Listening on port %v\n", c.Server.Port)
	http.ListenAndServe(fmt.Sprintf(":%v", c.Server.Port), rWithMiddleWares)
}
