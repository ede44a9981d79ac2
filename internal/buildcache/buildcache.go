// Package buildcache implements SPEC_FULL.md §3's build cache: a
// content-hash-keyed store of compiled internal/generator.Application
// artifacts, so an unchanged entry point never pays the analysis pass
// twice. Two backends share the Cache interface: an embedded, pure-Go
// local cache (modernc.org/sqlite) for single-machine use, and a
// database/sql remote cache dispatched by DSN scheme for team-shared
// builds. Grounded on the teacher's internal/database package (a
// sql.DB-backed store behind a small interface), generalized from
// the teacher's arbitrary key/value rows to a fixed
// digest -> gob-encoded Application mapping.
package buildcache

import (
	"bytes"
	"crypto/sha256"
	"database/sql"
	"encoding/gob"
	"encoding/hex"
	"time"

	"github.com/golang-sql/civil"
	"github.com/pkg/errors"

	"github.com/ringlang/ringc/internal/bytecode"
	"github.com/ringlang/ringc/internal/generator"
)

func init() {
	for _, inst := range []bytecode.Instruction{
		bytecode.PushConst{}, bytecode.LoadPush{}, bytecode.StoreSequence{}, bytecode.StoreSequenceByIndex{},
		bytecode.Slice{}, bytecode.Add{}, bytecode.Sub{}, bytecode.Mul{}, bytecode.Div{}, bytecode.Rem{}, bytecode.Neg{},
		bytecode.Eq{}, bytecode.Ne{}, bytecode.Lt{}, bytecode.Le{}, bytecode.Gt{}, bytecode.Ge{},
		bytecode.And{}, bytecode.Or{}, bytecode.Xor{}, bytecode.Not{},
		bytecode.BitAnd{}, bytecode.BitOr{}, bytecode.BitXor{}, bytecode.BitShl{}, bytecode.BitShr{}, bytecode.BitNot{},
		bytecode.Cast{}, bytecode.If{}, bytecode.Else{}, bytecode.EndIf{}, bytecode.ConditionalSelect{},
		bytecode.LoopBegin{}, bytecode.LoopEnd{}, bytecode.Call{}, bytecode.CallIntrinsic{}, bytecode.Return{}, bytecode.Exit{},
		bytecode.FileMarker{}, bytecode.FunctionMarker{}, bytecode.LineMarker{}, bytecode.ColumnMarker{},
		bytecode.Dbg{}, bytecode.Require{},
	} {
		gob.Register(inst)
	}
}

// Key returns the content-hash cache key for a source blob: the hex
// SHA-256 of the source bytes alone. The per-compilation build id
// (`google/uuid`-minted, stored on the Application itself) is not
// part of the key.
func Key(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}

func encode(app *generator.Application) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(app); err != nil {
		return nil, errors.Wrap(err, "encoding cached application")
	}
	return buf.Bytes(), nil
}

func decode(raw []byte) (*generator.Application, error) {
	var app generator.Application
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&app); err != nil {
		return nil, errors.Wrap(err, "decoding cached application")
	}
	return &app, nil
}

// Cache is the build-cache interface both backends implement.
type Cache interface {
	Get(key string) (*generator.Application, bool, error)
	Put(key string, app *generator.Application) error
	Close() error
}

// sqlCache is the shared implementation behind both the embedded
// sqlite backend and the remote database/sql backends: one table,
// keyed by content hash, storing the gob-encoded Application.
type sqlCache struct {
	db        *sql.DB
	tableDDL  string
	upsertSQL string
	selectSQL string
}

func newSQLCache(db *sql.DB, driverName string) (*sqlCache, error) {
	c := &sqlCache{
		db:        db,
		tableDDL:  "CREATE TABLE IF NOT EXISTS ringc_build_cache (digest TEXT PRIMARY KEY, application BLOB NOT NULL, created_date TEXT NOT NULL)",
		selectSQL: "SELECT application FROM ringc_build_cache WHERE digest = ?",
		upsertSQL: "INSERT INTO ringc_build_cache (digest, application, created_date) VALUES (?, ?, ?) ON CONFLICT (digest) DO UPDATE SET application = excluded.application, created_date = excluded.created_date",
	}
	if driverName == "mysql" {
		c.upsertSQL = "INSERT INTO ringc_build_cache (digest, application, created_date) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE application = VALUES(application), created_date = VALUES(created_date)"
	}
	if driverName == "sqlserver" {
		c.selectSQL = "SELECT application FROM ringc_build_cache WHERE digest = @p1"
	}
	if _, err := db.Exec(c.tableDDL); err != nil {
		return nil, errors.Wrap(err, "creating build cache table")
	}
	return c, nil
}

// createdDate stamps each cache row with the calendar date it was
// written, civil.DateOf's intended use (a DATE column with no
// time-of-day or timezone component) per SPEC_FULL.md §3's
// golang-sql/civil wiring.
func createdDate() string { return civil.DateOf(time.Now()).String() }

func (c *sqlCache) Get(key string) (*generator.Application, bool, error) {
	var raw []byte
	err := c.db.QueryRow(c.selectSQL, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "querying build cache")
	}
	app, err := decode(raw)
	if err != nil {
		return nil, false, err
	}
	return app, true, nil
}

func (c *sqlCache) Put(key string, app *generator.Application) error {
	raw, err := encode(app)
	if err != nil {
		return err
	}
	if _, err := c.db.Exec(c.upsertSQL, key, raw, createdDate()); err != nil {
		return errors.Wrap(err, "writing build cache")
	}
	return nil
}

func (c *sqlCache) Close() error { return c.db.Close() }
