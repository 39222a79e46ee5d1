package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Validator is implemented by records that check their own invariants.
// Collection calls Validate before every insert and after every decode.
type Validator interface {
	Validate() error
}

// Collection is a typed view over one collection of a Store.
type Collection[T any] struct {
	store Store
	name  string
}

// NewCollection creates a typed view over the named collection.
func NewCollection[T any](s Store, name string) *Collection[T] {
	return &Collection[T]{store: s, name: name}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string {
	return c.name
}

// Insert validates and stores record.
func (c *Collection[T]) Insert(ctx context.Context, record *T) error {
	doc, err := Encode(record)
	if err != nil {
		return err
	}

	return c.store.Insert(ctx, c.name, doc)
}

// FindOne returns the first record matching filter, or found == false.
func (c *Collection[T]) FindOne(ctx context.Context, filter Filter) (*T, bool, error) {
	doc, found, err := c.store.FindOne(ctx, c.name, filter)
	if err != nil || !found {
		return nil, false, err
	}

	record, err := Decode[T](doc)
	if err != nil {
		return nil, false, err
	}

	return record, true, nil
}

// FindMany returns every record matching filter.
func (c *Collection[T]) FindMany(ctx context.Context, filter Filter) ([]*T, error) {
	docs, err := c.store.FindMany(ctx, c.name, filter)
	if err != nil {
		return nil, err
	}

	records := make([]*T, 0, len(docs))
	for _, doc := range docs {
		record, err := Decode[T](doc)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

// UpdateFields sets fields on the first record matching filter.
func (c *Collection[T]) UpdateFields(ctx context.Context, filter Filter, set Document) (int64, error) {
	return c.store.UpdateFields(ctx, c.name, filter, set)
}

// Count returns the number of records matching filter.
func (c *Collection[T]) Count(ctx context.Context, filter Filter) (int64, error) {
	return c.store.Count(ctx, c.name, filter)
}

// EnsureIndexes creates indexes on the collection.
func (c *Collection[T]) EnsureIndexes(ctx context.Context, indexes ...Index) error {
	return c.store.EnsureIndexes(ctx, c.name, indexes...)
}

// Encode converts a bson tagged record into a Document.
func Encode(record any) (Document, error) {
	if v, ok := record.(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
		}
	}

	data, err := bson.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %w", ErrInvalidRecord, err)
	}

	var doc Document
	if err := bson.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: encode: %w", ErrInvalidRecord, err)
	}

	return doc, nil
}

// Decode converts a Document into a record of type T and validates it.
func Decode[T any](doc Document) (*T, error) {
	data, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrInvalidRecord, err)
	}

	var record T
	if err := bson.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrInvalidRecord, err)
	}

	if v, ok := any(&record).(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
		}
	}

	return &record, nil
}
