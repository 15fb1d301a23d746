package sqlitedb

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/flightsurety/flightsurety/keyvaluedb"
	"github.com/flightsurety/flightsurety/types"
)

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key   BLOB PRIMARY KEY NOT NULL,
	value BLOB NOT NULL
) WITHOUT ROWID`

type (
	EncodeFn func(v any) ([]byte, error)
	DecodeFn func(data []byte, v any) error

	// SQLiteDB is a key-value store on top of a single SQLite table. Keys
	// are compared as BLOBs which gives the same order as bytes.Compare.
	SQLiteDB struct {
		db      *sql.DB
		path    string
		encoder EncodeFn
		decoder DecodeFn
	}
)

// New opens (creating if needed) the SQLite database file, values are CBOR encoded.
func New(dbPath string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every connection would get its own in-memory database
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := configure(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteDB{
		db:      db,
		path:    dbPath,
		encoder: types.Cbor.Marshal,
		decoder: types.Cbor.Unmarshal,
	}, nil
}

func configure(db *sql.DB) error {
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return nil
}

func (db *SQLiteDB) Path() string {
	return db.path
}

func (db *SQLiteDB) Read(key []byte, v any) (bool, error) {
	if err := keyvaluedb.CheckKeyAndValue(key, v); err != nil {
		return false, err
	}
	return read(db.db, db.decoder, key, v)
}

func (db *SQLiteDB) Write(key []byte, v any) error {
	if err := keyvaluedb.CheckKeyAndValue(key, v); err != nil {
		return err
	}
	return write(db.db, db.encoder, key, v)
}

func (db *SQLiteDB) Delete(key []byte) error {
	if err := keyvaluedb.CheckKey(key); err != nil {
		return err
	}
	if _, err := db.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("sqlite db delete failed, %w", err)
	}
	return nil
}

func (db *SQLiteDB) First() keyvaluedb.Iterator {
	it := newIterator(db.db, db.decoder)
	it.first()
	return it
}

func (db *SQLiteDB) Last() keyvaluedb.Iterator {
	it := newIterator(db.db, db.decoder)
	it.last()
	return it
}

func (db *SQLiteDB) Find(key []byte) keyvaluedb.Iterator {
	it := newIterator(db.db, db.decoder)
	it.seek(key)
	return it
}

func (db *SQLiteDB) StartTx() (keyvaluedb.DBTransaction, error) {
	tx, err := db.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start sqlite tx, %w", err)
	}
	return &Tx{tx: tx, enc: db.encoder, dec: db.decoder}, nil
}

func (db *SQLiteDB) Close() error {
	return db.db.Close()
}

// queryer is implemented both by *sql.DB and *sql.Tx.
type queryer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

func read(q queryer, dec DecodeFn, key []byte, v any) (bool, error) {
	var data []byte
	err := q.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&data)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("sqlite db read failed, %w", err)
	}
	if err := dec(data, v); err != nil {
		return true, fmt.Errorf("sqlite db read failed, %w", err)
	}
	return true, nil
}

func write(q queryer, enc EncodeFn, key []byte, v any) error {
	b, err := enc(v)
	if err != nil {
		return err
	}
	if _, err := q.Exec(`INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, b); err != nil {
		return fmt.Errorf("sqlite db write failed, %w", err)
	}
	return nil
}
