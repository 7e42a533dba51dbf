package db

import (
	"cmp"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

const migrationsDir = "sql/migrations"

//go:embed all:sql/migrations
var migrationsFS embed.FS

// migration is one NNN_description.sql file.
type migration struct {
	version int
	file    string
}

// runMigrations creates the base schema and applies, in version order, every
// migration file not yet listed in schema_migrations. Each file runs in its own
// transaction together with its bookkeeping row.
func runMigrations(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL
	)`); err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}
	if _, err := db.Exec(CreateTablesSQL); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}

	entries, err := migrationsFS.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("listing migrations: %w", err)
	}
	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}

	for _, m := range parseMigrations(entries) {
		if applied[m.version] {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return err
		}
	}
	return nil
}

func applyMigration(db *sql.DB, m migration) error {
	body, err := migrationsFS.ReadFile(path.Join(migrationsDir, m.file))
	if err != nil {
		return fmt.Errorf("migration %s: %w", m.file, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("migration %d: begin: %w", m.version, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(string(body)); err != nil {
		return fmt.Errorf("migration %s: %w", m.file, err)
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`, m.version, time.Now()); err != nil {
		return fmt.Errorf("migration %d: record: %w", m.version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migration %d: commit: %w", m.version, err)
	}
	return nil
}

// parseMigrations keeps the NNN_description.sql files, sorted by version.
func parseMigrations(entries []fs.DirEntry) []migration {
	migrations := lo.FilterMap(entries, func(e fs.DirEntry, _ int) (migration, bool) {
		if e.IsDir() || path.Ext(e.Name()) != ".sql" {
			return migration{}, false
		}
		prefix, _, ok := strings.Cut(e.Name(), "_")
		if !ok {
			return migration{}, false
		}
		v, err := strconv.Atoi(prefix)
		if err != nil {
			return migration{}, false
		}
		return migration{version: v, file: e.Name()}, true
	})
	slices.SortFunc(migrations, func(a, b migration) int {
		return cmp.Compare(a.version, b.version)
	})
	return migrations
}

// appliedVersions reads schema_migrations. The rows are closed before returning
// because the pool holds a single connection.
func appliedVersions(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("reading schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := map[int]bool{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("reading schema_migrations: %w", err)
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// SchemaVersion returns the highest applied migration version, 0 when none.
func SchemaVersion(db *sql.DB) (int, error) {
	var v sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_migrations`).Scan(&v); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return int(v.Int64), nil
}
