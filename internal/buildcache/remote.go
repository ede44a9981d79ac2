package buildcache

import (
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	_ "github.com/denisenkom/go-mssqldb" // sqlserver://
	_ "github.com/go-sql-driver/mysql"   // mysql://
	_ "github.com/lib/pq"                // postgres://
)

// OpenRemote opens a team-shared build cache backend selected by DSN
// scheme, implementing the same Cache interface as the local sqlite
// cache (SPEC_FULL.md §3's database/sql DSN-dispatched remote build
// cache). Supported schemes: mysql://, sqlserver://, postgres://.
func OpenRemote(dsn string) (Cache, error) {
	driverName, dataSource, err := dispatchDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driverName, dataSource)
	if err != nil {
		return nil, errors.Wrapf(err, "opening remote build cache (%s)", driverName)
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrapf(err, "connecting to remote build cache (%s)", driverName)
	}
	return newSQLCache(db, driverName)
}

func dispatchDSN(dsn string) (driverName, dataSource string, err error) {
	switch {
	case strings.HasPrefix(dsn, "mysql://"):
		return "mysql", strings.TrimPrefix(dsn, "mysql://"), nil
	case strings.HasPrefix(dsn, "sqlserver://"):
		return "sqlserver", dsn, nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", dsn, nil
	default:
		return "", "", errors.Errorf("unsupported build cache DSN scheme in %q (want mysql://, sqlserver://, or postgres://)", dsn)
	}
}
