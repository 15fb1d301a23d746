package boltdb

import (
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/flightsurety/flightsurety/keyvaluedb"
	"github.com/flightsurety/flightsurety/types"
)

// all the registry data lives in a single bucket, other backends have no buckets
var registryBucket = []byte("registry")

type (
	EncodeFn func(v any) ([]byte, error)
	DecodeFn func(data []byte, v any) error

	BoltDB struct {
		db      *bolt.DB
		encoder EncodeFn
		decoder DecodeFn
	}
)

// New opens (creating when missing) the Bolt DB file, values are CBOR encoded.
func New(dbFile string) (*BoltDB, error) {
	db, err := bolt.Open(dbFile, 0600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db %q: %w", dbFile, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(registryBucket)
		return err
	}); err != nil {
		return nil, errors.Join(fmt.Errorf("creating bucket: %w", err), db.Close())
	}
	return &BoltDB{
		db:      db,
		encoder: types.Cbor.Marshal,
		decoder: types.Cbor.Unmarshal,
	}, nil
}

func (db *BoltDB) Path() string {
	return db.db.Path()
}

func (db *BoltDB) Read(key []byte, v any) (found bool, err error) {
	err = db.db.View(func(tx *bolt.Tx) error {
		found, err = get(tx.Bucket(registryBucket), db.decoder, key, v)
		return err
	})
	if err != nil {
		return found, fmt.Errorf("bolt db read: %w", err)
	}
	return found, nil
}

func (db *BoltDB) Write(key []byte, v any) error {
	if err := db.db.Update(func(tx *bolt.Tx) error {
		return put(tx.Bucket(registryBucket), db.encoder, key, v)
	}); err != nil {
		return fmt.Errorf("bolt db write: %w", err)
	}
	return nil
}

func (db *BoltDB) Delete(key []byte) error {
	if err := db.db.Update(func(tx *bolt.Tx) error {
		return del(tx.Bucket(registryBucket), key)
	}); err != nil {
		return fmt.Errorf("bolt db delete: %w", err)
	}
	return nil
}

func (db *BoltDB) First() keyvaluedb.Iterator {
	return newIterator(db.db, db.decoder, func(c *bolt.Cursor) ([]byte, []byte) { return c.First() })
}

func (db *BoltDB) Last() keyvaluedb.Iterator {
	return newIterator(db.db, db.decoder, func(c *bolt.Cursor) ([]byte, []byte) { return c.Last() })
}

func (db *BoltDB) Find(key []byte) keyvaluedb.Iterator {
	return newIterator(db.db, db.decoder, func(c *bolt.Cursor) ([]byte, []byte) { return c.Seek(key) })
}

func (db *BoltDB) StartTx() (keyvaluedb.DBTransaction, error) {
	tx, err := NewBoltTx(db.db, registryBucket, db.encoder, db.decoder)
	if err != nil {
		return nil, fmt.Errorf("starting bolt tx: %w", err)
	}
	return tx, nil
}

func (db *BoltDB) Close() error {
	if db.db == nil {
		return nil
	}
	return db.db.Close()
}

func get(b *bolt.Bucket, dec DecodeFn, key []byte, v any) (bool, error) {
	if err := keyvaluedb.CheckKeyAndValue(key, v); err != nil {
		return false, err
	}
	data := b.Get(key)
	if data == nil {
		return false, nil
	}
	return true, dec(data, v)
}

func put(b *bolt.Bucket, enc EncodeFn, key []byte, v any) error {
	if err := keyvaluedb.CheckKeyAndValue(key, v); err != nil {
		return err
	}
	data, err := enc(v)
	if err != nil {
		return fmt.Errorf("encoding value: %w", err)
	}
	return b.Put(key, data)
}

func del(b *bolt.Bucket, key []byte) error {
	if err := keyvaluedb.CheckKey(key); err != nil {
		return err
	}
	return b.Delete(key)
}
