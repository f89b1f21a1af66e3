package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/multierr"
)

const versionLayout = "20060102150405"

var (
	sqlFileRe      = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)
	nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)
)

// ValidateDir checks the migrations in dir on disk.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	return ValidateFS(os.DirFS(dir), ".")
}

// ValidateFS checks every .sql file under root: the YYYYMMDDHHMMSS_name.sql
// naming, unique versions, and both goose direction markers. All problems
// are reported together.
func ValidateFS(fsys fs.FS, root string) error {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", root, err)
	}

	var errs error
	seen := map[string]string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			errs = multierr.Append(errs, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name))
			continue
		}
		if _, err := time.Parse(versionLayout, m[1]); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("migration %q has an impossible timestamp", name))
		}
		if prev, ok := seen[m[1]]; ok {
			errs = multierr.Append(errs, fmt.Errorf("duplicate migration version %s in %q and %q", m[1], prev, name))
		}
		seen[m[1]] = name

		b, err := fs.ReadFile(fsys, filepath.ToSlash(filepath.Join(root, name)))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("read %q: %w", name, err))
			continue
		}
		for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
			if !strings.Contains(string(b), marker) {
				errs = multierr.Append(errs, fmt.Errorf("migration %q missing %q", name, marker))
			}
		}
	}
	return errs
}

// CreateSQLMigration writes an empty goose migration named
// <dir>/<YYYYMMDDHHMMSS>_<name>.sql and returns its path.
func CreateSQLMigration(dir, name string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	safe := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
	safe = strings.Trim(nameSanitizeRe.ReplaceAllString(safe, "_"), "_")
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	path := filepath.Join(dir, time.Now().UTC().Format(versionLayout)+"_"+safe+".sql")
	body := "-- +goose Up\n-- +goose StatementBegin\n-- " + safe +
		"\n-- +goose StatementEnd\n\n-- +goose Down\n-- +goose StatementBegin\n-- rollback " + safe +
		"\n-- +goose StatementEnd\n"

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create migration %q: %w", path, err)
	}
	if _, err := f.WriteString(body); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write migration %q: %w", path, err)
	}
	return path, f.Close()
}
