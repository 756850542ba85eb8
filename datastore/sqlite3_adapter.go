package datastore

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// Sqlite3Adapter provides support for SQLite3 databases.
type Sqlite3Adapter struct{}

func (s Sqlite3Adapter) EnsureVersionTableExists(db *sqlx.DB) (err error) {
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS "schema_migrations" ("version" INTEGER PRIMARY KEY NOT NULL)`)
	if err != nil {
		return err
	}

	var count int
	err = db.Get(&count, `SELECT COUNT(*) FROM schema_migrations`)
	if err != nil {
		return err
	}
	switch {
	case count == 0:
		_, err = db.Exec(`INSERT INTO schema_migrations (version) VALUES (0)`)
	case count > 1:
		err = errors.New("too many rows in schema_migrations table")
	}

	return err
}

func (s Sqlite3Adapter) PostCreate(db *sqlx.DB) (err error) {
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return err
	}
	// Faster than using default journal file
	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return err
	}
	// Default (full) is slower
	_, err = db.Exec("PRAGMA synchronous = NORMAL")
	if err != nil {
		return err
	}

	return nil
}

func (s Sqlite3Adapter) up() []string {
	return []string{
		// 1
		`
CREATE TABLE "build" (
    "id" INTEGER PRIMARY KEY AUTOINCREMENT,
    "repo" TEXT,
    "created_at" TIMESTAMP
);
CREATE INDEX "repo" ON "build" ("repo");
CREATE TABLE "resolution" (
    "id" INTEGER PRIMARY KEY AUTOINCREMENT,
    "build_id" INTEGER REFERENCES "build"("id") ON UPDATE CASCADE ON DELETE CASCADE,
    "locale" TEXT,
    "string_key" TEXT,
    "resolved_locale" TEXT
);
CREATE INDEX "build_id" ON "resolution" ("build_id");
CREATE INDEX "build_id_locale" ON "resolution" ("build_id","locale");
`,
	}
}

func (s Sqlite3Adapter) down() []string {
	return []string{
		// 1
		`
DROP TABLE resolution;
DROP TABLE build;
`,
	}
}

func (s Sqlite3Adapter) MigrateUp(db *sqlx.DB) (version int64, err error) {
	startVer, err := s.version(db)
	if err != nil {
		return version, err
	}

	for i, query := range s.up() {
		migTo := int64(i + 1)
		if migTo <= startVer {
			version = migTo
			continue
		}

		_, err = db.Exec(query)
		if err != nil {
			return version, err
		}

		err = s.updateVersion(migTo, db)
		if err != nil {
			return version, err
		}

		version = migTo
	}

	return version, err
}

func (s Sqlite3Adapter) MigrateDown(db *sqlx.DB) (version int64, err error) {
	startVer, err := s.version(db)
	if err != nil {
		return version, err
	}

	down := s.down()
	for i := len(down) - 1; i >= 0; i-- {
		query := down[i]
		migVer := int64(i + 1) // The version of the Down migration we will apply
		migTo := int64(i)      // The version we will end up at

		// Skip migrations for newer versions
		if migVer > startVer {
			version = startVer
			continue
		}

		_, err = db.Exec(query)
		if err != nil {
			return version, err
		}

		err = s.updateVersion(migTo, db)
		if err != nil {
			return version, err
		}

		version = migTo
	}

	return version, err
}

func (s Sqlite3Adapter) SupportsLastInsertId() bool {
	return true
}

func (s Sqlite3Adapter) CreateBuildQuery() string {
	return "INSERT INTO build (repo, created_at) VALUES (?, ?)"
}

func (s Sqlite3Adapter) CreateBuildReturningQuery() string {
	return "INSERT INTO build (repo, created_at) VALUES (?, ?)"
}

func (s Sqlite3Adapter) CreateResolutionQuery() string {
	return "INSERT INTO resolution (build_id, locale, string_key, resolved_locale) VALUES (?, ?, ?, ?)"
}

func (s Sqlite3Adapter) GetLatestBuildIdQuery() string {
	return "SELECT id FROM build WHERE repo = ? ORDER BY id DESC LIMIT 1"
}

func (s Sqlite3Adapter) GetFallbacksQuery() string {
	return "SELECT locale, string_key, resolved_locale FROM resolution WHERE build_id = ? AND locale <> resolved_locale ORDER BY locale, string_key"
}

func (s Sqlite3Adapter) GetBuildCountQuery() string {
	return "SELECT COUNT(*) FROM build WHERE repo = ?"
}

func (s Sqlite3Adapter) version(db *sqlx.DB) (version int64, err error) {
	row := db.QueryRow("SELECT version FROM schema_migrations")
	err = row.Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		return 0, nil
	case err != nil:
		return 0, err
	default:
		return version, nil
	}
}

func (s Sqlite3Adapter) updateVersion(version int64, db *sqlx.DB) (err error) {
	_, err = db.Exec("UPDATE schema_migrations SET version = ?", int64(version))

	return err
}
