// Package record stores finished attempt results and crash-restore timer
// snapshots in a content-addressed in-memory store. Entries are msgpack
// payloads wrapped in a type-tagged frame and keyed by their farm hash,
// so identical states always land on the same key.
package record

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Hash is the content address of a stored entry.
type Hash uint64

// Serde is anything that can round-trip through an ordered byte stream.
type Serde interface {
	Serialize(w io.Writer) error
	Deserialize(r io.Reader) error
}

// Store is the persistence surface the session layer writes attempts to.
type Store interface {
	Put(item Serde) (Hash, error)
	Has(hash Hash) bool
	getValue(hash Hash) (bool, []byte, error)
}

// ErrNotFound reports a hash with no stored entry.
var ErrNotFound = errors.New("record: hash not found")

// Retrieve fetches and decodes the entry stored under hash. The stored
// type tag must match T.
func Retrieve[T Serde](s Store, hash Hash) (T, error) {
	var zero T

	has, data, err := s.getValue(hash)
	if err != nil {
		return zero, err
	}
	if !has {
		return zero, fmt.Errorf("%w: %#x", ErrNotFound, uint64(hash))
	}

	entry := &TypedEntry{}
	if err := entry.Deserialize(bytes.NewReader(data)); err != nil {
		return zero, fmt.Errorf("deserializing entry frame: %w", err)
	}

	instance, err := createInstance(entry.TypeTag)
	if err != nil {
		return zero, err
	}
	if err := instance.Deserialize(bytes.NewReader(entry.Data)); err != nil {
		return zero, fmt.Errorf("deserializing %s payload: %w", entry.TypeTag, err)
	}

	result, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("record: type mismatch: expected %T, got %T", zero, instance)
	}
	return result, nil
}
