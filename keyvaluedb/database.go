/*
Package keyvaluedb defines the durable storage used by the node to persist the
committed registry units. Values are encoded by the implementation, keys are
compared as raw bytes.
*/
package keyvaluedb

import (
	"errors"
)

type (
	Reader interface {
		// Read decodes the value stored under key into value, found is false
		// when the key does not exist.
		Read(key []byte, value any) (found bool, err error)
	}

	Writer interface {
		Write(key []byte, value any) error
		Delete(key []byte) error
	}

	Iterable interface {
		// First returns iterator positioned to the smallest key.
		First() Iterator
		// Last returns iterator positioned to the greatest key.
		Last() Iterator
		// Find returns iterator positioned to the first key which is not less than key.
		Find(key []byte) Iterator
	}

	/*
	Iterator is positioned to a key-value pair until it moves past the first
	or the last key, after that it is invalid.

	NB! iterator must be closed, backends may hold a read transaction open
	for the lifetime of the iterator.
	*/
	Iterator interface {
		Next()
		Prev()
		Valid() bool
		// Key returns nil when the iterator is not valid.
		Key() []byte
		Value(value any) error
		Close() error
	}

	/*
	DBTransaction groups writes so that they are applied all together by
	Commit or not at all. Every transaction must end with Commit or Rollback,
	only one transaction may be open at a time.
	*/
	DBTransaction interface {
		Reader
		Writer
		Commit() error
		Rollback() error
	}

	KeyValueDB interface {
		Reader
		Writer
		Iterable
		StartTx() (DBTransaction, error)
		Close() error
	}
)

// IsEmpty returns true when the db holds no keys.
func IsEmpty(db KeyValueDB) (empty bool, err error) {
	if db == nil {
		return true, errors.New("db is nil")
	}
	it := db.First()
	defer func() { err = errors.Join(err, it.Close()) }()
	return !it.Valid(), nil
}
