package buildcache

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // pure-Go local driver, no cgo toolchain required
)

// OpenLocal opens (creating if absent) the embedded per-project build
// cache at <dir>/.ringc-cache/build.db, avoiding recompilation of an
// unchanged entry point the way SPEC_FULL.md's domain-stack table
// describes for modernc.org/sqlite.
func OpenLocal(dir string) (Cache, error) {
	cacheDir := filepath.Join(dir, ".ringc-cache")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating build cache directory %s", cacheDir)
	}
	path := filepath.Join(cacheDir, "build.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening local build cache %s", path)
	}
	return newSQLCache(db, "sqlite")
}
