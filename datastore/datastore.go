/*
Package datastore persists string-map build reports: one row per build plus,
per (locale, string key), the locale its value actually resolved from. The
fallback audit backs the 'report' command, which lists keys that fell back
past their requested locale (i.e. strings still waiting on a translation).
*/
package datastore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/phetsims/simstrings/config"
	"github.com/phetsims/simstrings/stringmap"
)

// Adapter provides database-driver-specific query strings, etc.
type Adapter interface {
	EnsureVersionTableExists(*sqlx.DB) error
	PostCreate(*sqlx.DB) error
	MigrateUp(*sqlx.DB) (int64, error)
	MigrateDown(*sqlx.DB) (int64, error)
	SupportsLastInsertId() bool
	CreateBuildQuery() string
	CreateBuildReturningQuery() string
	CreateResolutionQuery() string
	GetLatestBuildIdQuery() string
	GetFallbacksQuery() string
	GetBuildCountQuery() string
}

type DataStore struct {
	adapter Adapter
	db      *sqlx.DB
	Stats   Stats
}

type Stats map[StatKey]StatItem

type StatKey struct {
	Name   string
	Action string
}

type StatItem struct {
	Duration time.Duration
	Count    int
}

func (s Stats) Log(name, action string, d time.Duration) {
	item := s[StatKey{Name: name, Action: action}]
	item.Count++
	item.Duration += d
	s[StatKey{Name: name, Action: action}] = item
}

func (s Stats) String() (out string) {
	for k, v := range s {
		out += fmt.Sprintf("%v  %v '%v' actions took %v total, %v avg\n", v.Count, k.Name, k.Action, v.Duration, v.Duration/time.Duration(v.Count))
	}

	return out
}

// Fallback is one reported key: for the given requested locale, the string
// key's value came from resolvedLocale instead.
type Fallback struct {
	Locale         string `db:"locale"`
	StringKey      string `db:"string_key"`
	ResolvedLocale string `db:"resolved_locale"`
}

// Creates a new datastore using the given database connection. The driver
// parameter is used to select the appropriate database adapter, and should be
// one of the config.DbDriver* constants.
func New(db *sqlx.DB, driver string) (ds *DataStore, err error) {
	adp, err := newAdapter(driver)
	if err != nil {
		return &DataStore{}, err
	}

	ds = &DataStore{
		adapter: adp,
		db:      db,
		Stats:   make(map[StatKey]StatItem),
	}

	err = ds.adapter.PostCreate(ds.db)
	if err != nil {
		return ds, err
	}

	return ds, nil
}

func newAdapter(driver string) (adp Adapter, err error) {
	switch driver {
	case config.DbDriverSqlite3:
		adp = &Sqlite3Adapter{}
	case config.DbDriverPostgresql:
		adp = &PostgresAdapter{}
	}

	if adp == nil {
		return nil, errors.New(fmt.Sprintf("no adapter available for database driver '%v'", driver))
	}

	return adp, nil
}

// MigrateUp brings the database schema up to the latest version.
func (ds *DataStore) MigrateUp() (version int64, err error) {
	if err = ds.adapter.EnsureVersionTableExists(ds.db); err != nil {
		return 0, err
	}
	return ds.adapter.MigrateUp(ds.db)
}

// MigrateDown reverts every applied migration.
func (ds *DataStore) MigrateDown() (version int64, err error) {
	if err = ds.adapter.EnsureVersionTableExists(ds.db); err != nil {
		return 0, err
	}
	return ds.adapter.MigrateDown(ds.db)
}

func (ds *DataStore) createBuild(repo string) (id int64, err error) {
	start := time.Now()
	defer func() { ds.Stats.Log("build", "insert", time.Since(start)) }()

	now := time.Now().UTC()
	if ds.adapter.SupportsLastInsertId() {
		result, err := ds.db.Exec(ds.adapter.CreateBuildQuery(), repo, now)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	}

	err = ds.db.QueryRow(ds.adapter.CreateBuildReturningQuery(), repo, now).Scan(&id)
	return id, err
}

func (ds *DataStore) insertResolution(buildId int64, r stringmap.Resolution) (err error) {
	start := time.Now()
	defer func() { ds.Stats.Log("resolution", "insert", time.Since(start)) }()

	_, err = ds.db.Exec(ds.adapter.CreateResolutionQuery(), buildId, r.Locale, r.StringKey, r.ResolvedLocale)

	return err
}

// RecordBuild stores one assembled build's resolution audit and returns the
// new build's id.
func (ds *DataStore) RecordBuild(repo string, result *stringmap.Result) (buildId int64, err error) {
	buildId, err = ds.createBuild(repo)
	if err != nil {
		return 0, err
	}

	for _, r := range result.Resolutions {
		if err = ds.insertResolution(buildId, r); err != nil {
			return buildId, err
		}
	}

	return buildId, nil
}

// GetLatestBuildId returns the most recent build id for a repo, or
// sql.ErrNoRows when the repo has never been recorded.
func (ds *DataStore) GetLatestBuildId(repo string) (id int64, err error) {
	start := time.Now()
	defer func() { ds.Stats.Log("build", "get", time.Since(start)) }()

	row := ds.db.QueryRow(ds.adapter.GetLatestBuildIdQuery(), repo)
	err = row.Scan(&id)

	return id, err
}

// GetFallbacks lists the keys in a build whose value did not come from the
// requested locale, ordered by locale then key.
func (ds *DataStore) GetFallbacks(buildId int64) (fallbacks []Fallback, err error) {
	start := time.Now()
	defer func() { ds.Stats.Log("resolution", "get", time.Since(start)) }()

	err = ds.db.Select(&fallbacks, ds.adapter.GetFallbacksQuery(), buildId)

	return fallbacks, err
}

// GetBuildCount returns how many builds have been recorded for a repo.
func (ds *DataStore) GetBuildCount(repo string) (count int, err error) {
	start := time.Now()
	defer func() { ds.Stats.Log("build", "get", time.Since(start)) }()

	err = ds.db.Get(&count, ds.adapter.GetBuildCountQuery(), repo)
	if err == sql.ErrNoRows {
		return 0, nil
	}

	return count, err
}
