package types

import "errors"

// Store maps "ClassName.id" keys to records and persists the whole mapping
// to a single on-disk document. Every mutating call flushes before returning.
type Store interface {
	// All returns every record ordered by key.
	All() []*Record

	// ByClass returns the records of one class ordered by key.
	ByClass(class string) []*Record

	// Get returns the record with the given class and id.
	// Returns ErrNotFound if no such record exists.
	Get(class, id string) (*Record, error)

	// New registers a record and flushes the store.
	New(r *Record) error

	// Update refreshes the record's updated_at and flushes the store.
	// Returns ErrNotFound if the record was never registered.
	Update(r *Record) error

	// Delete removes the record and flushes the store.
	// Returns ErrNotFound if no such record exists.
	Delete(class, id string) error

	// Save flushes the in-memory mapping to disk.
	Save() error

	// Reload discards the in-memory mapping and reads it back from disk.
	Reload() error

	// Close releases backend resources. Idempotent.
	Close() error
}

// Store errors.
var (
	ErrNotFound          = errors.New("record not found")
	ErrInvalidID         = errors.New("invalid record ID")
	ErrInvalidData       = errors.New("invalid record data")
	ErrUnknownClass      = errors.New("unknown class")
	ErrReservedAttribute = errors.New("attribute is reserved")
	ErrStoreClosed       = errors.New("store is closed")
)
