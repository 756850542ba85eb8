package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "simstrings.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validConfig = `
[sim]
repo = "example-sim"
locales = ["es", "en"]

[paths]
repos_root = ".."
babel_dir = "../babel"

[database]
driver = "sqlite3"
file = "./test.db"
`

func TestLoad(t *testing.T) {
	c, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if c.Sim.Repo != "example-sim" {
		t.Errorf("sim.repo = %q", c.Sim.Repo)
	}
	if len(c.Sim.Locales) != 2 || c.Sim.Locales[0] != "es" {
		t.Errorf("sim.locales = %v", c.Sim.Locales)
	}
	// Defaults survive a partial file.
	if c.Server.Port != 8281 {
		t.Errorf("server.port default = %v", c.Server.Port)
	}
	if len(c.Sim.ModulePatterns) == 0 {
		t.Error("module_patterns default missing")
	}
}

func TestLoadRejectsBadDriver(t *testing.T) {
	_, err := Load(writeConfig(t, `
[sim]
repo = "example-sim"
[paths]
repos_root = ".."
babel_dir = "../babel"
[database]
driver = "oracle"
`))
	if err == nil {
		t.Error("expected error for unsupported database driver")
	}
}

func TestLoadRejectsMissingRepo(t *testing.T) {
	_, err := Load(writeConfig(t, `
[paths]
repos_root = ".."
babel_dir = "../babel"
`))
	if err == nil {
		t.Error("expected error for missing sim.repo")
	}
}

func TestConnectionString(t *testing.T) {
	d := DbConfig{Driver: DbDriverSqlite3, File: "./x.db"}
	if got := d.ConnectionString(); got != "./x.db" {
		t.Errorf("sqlite3 connection string = %q", got)
	}

	d = DbConfig{Driver: DbDriverPostgresql, User: "u", Password: "p", Host: "h", Name: "n"}
	want := "postgres://u:p@h/n?sslmode=disable"
	if got := d.ConnectionString(); got != want {
		t.Errorf("postgres connection string = %q, want %q", got, want)
	}
}
