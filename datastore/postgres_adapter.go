package datastore

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// PostgresAdapter provides support for PostgreSQL databases.
type PostgresAdapter struct{}

func (a PostgresAdapter) EnsureVersionTableExists(db *sqlx.DB) (err error) {
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version integer PRIMARY KEY NOT NULL)`)
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

func (a PostgresAdapter) PostCreate(db *sqlx.DB) (err error) {
	return nil
}

func (a PostgresAdapter) up() []string {
	return []string{
		// 1
		`
CREATE TABLE build (
    id SERIAL PRIMARY KEY,
    repo varchar,
    created_at timestamptz
);
CREATE INDEX repo_idx ON build (repo);
CREATE TABLE resolution (
    id SERIAL PRIMARY KEY,
    build_id integer REFERENCES build(id) ON DELETE CASCADE ON UPDATE CASCADE,
    locale varchar,
    string_key varchar,
    resolved_locale varchar
);
CREATE INDEX build_id_idx ON resolution (build_id);
CREATE INDEX build_id_locale_idx ON resolution (build_id, locale);
`,
	}
}

func (a PostgresAdapter) down() []string {
	return []string{
		// 1
		`
DROP TABLE IF EXISTS resolution;
DROP TABLE IF EXISTS build;
`,
	}
}

func (a PostgresAdapter) MigrateUp(db *sqlx.DB) (version int64, err error) {
	startVer, err := a.version(db)
	if err != nil {
		return version, err
	}

	for i, query := range a.up() {
		migTo := int64(i + 1)
		if migTo <= startVer {
			version = migTo
			continue
		}

		_, err = db.Exec(query)
		if err != nil {
			return version, err
		}

		err = a.updateVersion(migTo, db)
		if err != nil {
			return version, err
		}

		version = migTo
	}

	return version, err
}

func (a PostgresAdapter) MigrateDown(db *sqlx.DB) (version int64, err error) {
	startVer, err := a.version(db)
	if err != nil {
		return version, err
	}

	down := a.down()
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

		err = a.updateVersion(migTo, db)
		if err != nil {
			return version, err
		}

		version = migTo
	}

	return version, err
}

func (a PostgresAdapter) SupportsLastInsertId() bool {
	return false
}

func (a PostgresAdapter) CreateBuildQuery() string {
	return "INSERT INTO build (repo, created_at) VALUES ($1, $2)"
}

func (a PostgresAdapter) CreateBuildReturningQuery() string {
	return "INSERT INTO build (repo, created_at) VALUES ($1, $2) RETURNING id"
}

func (a PostgresAdapter) CreateResolutionQuery() string {
	return "INSERT INTO resolution (build_id, locale, string_key, resolved_locale) VALUES ($1, $2, $3, $4)"
}

func (a PostgresAdapter) GetLatestBuildIdQuery() string {
	return "SELECT id FROM build WHERE repo = $1 ORDER BY id DESC LIMIT 1"
}

func (a PostgresAdapter) GetFallbacksQuery() string {
	return "SELECT locale, string_key, resolved_locale FROM resolution WHERE build_id = $1 AND locale <> resolved_locale ORDER BY locale, string_key"
}

func (a PostgresAdapter) GetBuildCountQuery() string {
	return "SELECT COUNT(*) FROM build WHERE repo = $1"
}

func (a PostgresAdapter) version(db *sqlx.DB) (version int64, err error) {
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

func (a PostgresAdapter) updateVersion(version int64, db *sqlx.DB) (err error) {
	_, err = db.Exec("UPDATE schema_migrations SET version = $1", int64(version))

	return err
}
