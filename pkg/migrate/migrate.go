package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/pressly/goose/v3"
)

const DefaultDir = "pkg/migrate/migrations"

// Applied describes one migration that ran.
type Applied struct {
	Version  int64
	Path     string
	Duration time.Duration
}

// Status describes one known migration and whether the database has it.
type Status struct {
	Version   int64
	Path      string
	Applied   bool
	AppliedAt time.Time
}

// Migrator runs goose migrations from a single source against one database.
type Migrator struct {
	provider *goose.Provider
}

// EmbeddedFS returns the migrations compiled into the binary.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(Embedded, embeddedDir)
	if err != nil {
		panic(fmt.Sprintf("embedded migrations: %v", err))
	}
	return sub
}

// DirFS returns the migrations in dir on disk.
func DirFS(dir string) fs.FS {
	return os.DirFS(dir)
}

// New builds a Postgres migrator over the .sql files at the root of fsys.
func New(db *sql.DB, fsys fs.FS) (*Migrator, error) {
	return newMigrator(goose.DialectPostgres, db, fsys)
}

func newMigrator(dialect goose.Dialect, db *sql.DB, fsys fs.FS) (*Migrator, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	if fsys == nil {
		return nil, fmt.Errorf("migration source is required")
	}
	p, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return &Migrator{provider: p}, nil
}

// Up applies every pending migration.
func (m *Migrator) Up(ctx context.Context) ([]Applied, error) {
	results, err := m.provider.Up(ctx)
	if err != nil {
		return toApplied(results), fmt.Errorf("goose up: %w", err)
	}
	return toApplied(results), nil
}

// Down rolls back the most recent migration.
func (m *Migrator) Down(ctx context.Context) (Applied, error) {
	result, err := m.provider.Down(ctx)
	if err != nil {
		return Applied{}, fmt.Errorf("goose down: %w", err)
	}
	return toApplied([]*goose.MigrationResult{result})[0], nil
}

func (m *Migrator) Status(ctx context.Context) ([]Status, error) {
	states, err := m.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("goose status: %w", err)
	}
	out := make([]Status, 0, len(states))
	for _, s := range states {
		st := Status{Applied: s.State == goose.StateApplied, AppliedAt: s.AppliedAt}
		if s.Source != nil {
			st.Version, st.Path = s.Source.Version, s.Source.Path
		}
		out = append(out, st)
	}
	return out, nil
}

func (m *Migrator) Version(ctx context.Context) (int64, error) {
	v, err := m.provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("get db version: %w", err)
	}
	return v, nil
}

// MigrateTo moves the schema up or down until target (YYYYMMDDHHMMSS) is
// the current version.
func (m *Migrator) MigrateTo(ctx context.Context, target string) error {
	version, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", target, err)
	}
	current, err := m.Version(ctx)
	if err != nil {
		return err
	}
	switch {
	case current < version:
		_, err = m.provider.UpTo(ctx, version)
	case current > version:
		_, err = m.provider.DownTo(ctx, version)
	}
	if err != nil {
		return fmt.Errorf("goose migrate to %d: %w", version, err)
	}
	return nil
}

func toApplied(results []*goose.MigrationResult) []Applied {
	out := make([]Applied, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		a := Applied{Duration: r.Duration}
		if r.Source != nil {
			a.Version, a.Path = r.Source.Version, r.Source.Path
		}
		out = append(out, a)
	}
	return out
}
