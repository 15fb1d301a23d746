package keyvaluedb

import (
	"errors"
	"reflect"
)

var (
	ErrInvalidKey = errors.New("invalid key")
	ErrValueIsNil = errors.New("value is nil")
)

// CheckKey returns ErrInvalidKey for an empty key.
func CheckKey(key []byte) error {
	if len(key) == 0 {
		return ErrInvalidKey
	}
	return nil
}

// CheckValue returns ErrValueIsNil for nil and for typed nil pointers.
func CheckValue(val any) error {
	if val == nil {
		return ErrValueIsNil
	}
	rv := reflect.ValueOf(val)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return ErrValueIsNil
	}
	return nil
}

func CheckKeyAndValue(key []byte, val any) error {
	return errors.Join(CheckKey(key), CheckValue(val))
}
