package acadbond

import (
	"context"
	"embed"
	"io/fs"
	"sort"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

//go:embed data/sql/fixtures
var fixturesFS embed.FS

// GetMigrationsFS returns the migration files for this package
func GetMigrationsFS() embed.FS {
	return migrationsFS
}

// RunMigrations executes the embedded up migrations in lexical order.
// Statements are idempotent so repeated startups are safe.
func RunMigrations(ctx context.Context, db *bun.DB) error {
	return execEmbeddedSQL(ctx, db, migrationsFS, "data/sql/migrations", ".up.sql")
}

// RunFixtures loads the embedded sample data. Inserts are conflict-safe so
// repeated startups are safe. Callers that want an empty database skip it.
func RunFixtures(ctx context.Context, db *bun.DB) error {
	return execEmbeddedSQL(ctx, db, fixturesFS, "data/sql/fixtures", ".sql")
}

func execEmbeddedSQL(ctx context.Context, db *bun.DB, fsys embed.FS, root, suffix string) error {
	var files []string
	err := fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, suffix) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to walk embedded sql")
	}

	sort.Strings(files)

	for _, file := range files {
		raw, err := fsys.ReadFile(file)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read embedded sql").
				WithMetadata(map[string]any{"file": file})
		}
		// some drivers only execute the first statement per call
		for _, stmt := range strings.Split(string(raw), ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to apply embedded sql").
					WithMetadata(map[string]any{"file": file})
			}
		}
	}

	return nil
}
