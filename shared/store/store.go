// Package store is a thin adapter over a collection oriented document store.
//
// The Store interface works on loosely typed documents and performs no schema
// validation. Collection wraps a Store with a typed record, encoding records
// on the way in and decoding and validating them on the way out.
package store

import (
	"context"
	"errors"
)

var (
	// ErrStoreUnavailable is returned when the backing store cannot serve a request.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrDuplicateKey is returned when a write violates a unique index.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrInvalidRecord is returned when a record fails encoding, decoding or validation.
	ErrInvalidRecord = errors.New("invalid record")
)

// Document is a loosely typed record.
type Document map[string]any

// Filter selects documents whose fields equal the given values.
// An empty filter matches every document.
type Filter map[string]any

// Index describes a single field index.
type Index struct {
	Field  string
	Unique bool
}

// Store defines the generic operations over named collections.
type Store interface {
	// Insert appends doc to collection.
	Insert(ctx context.Context, collection string, doc Document) error

	// FindOne returns the first document matching filter. Absence is reported
	// with found == false and a nil error.
	FindOne(ctx context.Context, collection string, filter Filter) (doc Document, found bool, err error)

	// FindMany returns every document matching filter in store order.
	FindMany(ctx context.Context, collection string, filter Filter) ([]Document, error)

	// UpdateFields sets the given fields on the first document matching filter
	// and returns the number of matched documents.
	UpdateFields(ctx context.Context, collection string, filter Filter, set Document) (int64, error)

	// Count returns the number of documents matching filter.
	Count(ctx context.Context, collection string, filter Filter) (int64, error)

	// EnsureIndexes creates the given indexes if they do not exist yet.
	EnsureIndexes(ctx context.Context, collection string, indexes ...Index) error

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}
