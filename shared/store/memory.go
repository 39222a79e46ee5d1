package store

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// MemoryStore is an in-process Store. Documents are kept in insertion order
// and copied through bson on every read and write, so callers never share
// state with the store. Unique indexes are enforced under the store mutex.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]Document
	unique      map[string][]string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string][]Document),
		unique:      make(map[string][]string),
	}
}

func (s *MemoryStore) Insert(ctx context.Context, collection string, doc Document) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	stored, err := normalize(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUnique(collection, stored, -1); err != nil {
		return err
	}

	s.collections[collection] = append(s.collections[collection], stored)

	return nil
}

func (s *MemoryStore) FindOne(ctx context.Context, collection string, filter Filter) (Document, bool, error) {
	if err := checkContext(ctx); err != nil {
		return nil, false, err
	}

	want, err := normalize(Document(filter))
	if err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.collections[collection] {
		if matches(doc, want) {
			out, err := normalize(doc)
			if err != nil {
				return nil, false, err
			}
			return out, true, nil
		}
	}

	return nil, false, nil
}

func (s *MemoryStore) FindMany(ctx context.Context, collection string, filter Filter) ([]Document, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	want, err := normalize(Document(filter))
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := []Document{}
	for _, doc := range s.collections[collection] {
		if !matches(doc, want) {
			continue
		}

		out, err := normalize(doc)
		if err != nil {
			return nil, err
		}
		docs = append(docs, out)
	}

	return docs, nil
}

func (s *MemoryStore) UpdateFields(ctx context.Context, collection string, filter Filter, set Document) (int64, error) {
	if err := checkContext(ctx); err != nil {
		return 0, err
	}

	want, err := normalize(Document(filter))
	if err != nil {
		return 0, err
	}

	fields, err := normalize(set)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.collections[collection]
	for i, doc := range docs {
		if !matches(doc, want) {
			continue
		}

		updated := make(Document, len(doc)+len(fields))
		for k, v := range doc {
			updated[k] = v
		}
		for k, v := range fields {
			updated[k] = v
		}

		if err := s.checkUnique(collection, updated, i); err != nil {
			return 0, err
		}

		docs[i] = updated

		return 1, nil
	}

	return 0, nil
}

func (s *MemoryStore) Count(ctx context.Context, collection string, filter Filter) (int64, error) {
	if err := checkContext(ctx); err != nil {
		return 0, err
	}

	want, err := normalize(Document(filter))
	if err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, doc := range s.collections[collection] {
		if matches(doc, want) {
			n++
		}
	}

	return n, nil
}

func (s *MemoryStore) EnsureIndexes(ctx context.Context, collection string, indexes ...Index) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, idx := range indexes {
		if !idx.Unique {
			continue
		}

		seen := make(map[string]bool)
		for _, doc := range s.collections[collection] {
			key := uniqueKey(doc, idx.Field)
			if seen[key] {
				return fmt.Errorf("%w: existing documents violate unique index on %q", ErrDuplicateKey, idx.Field)
			}
			seen[key] = true
		}

		if !slices.Contains(s.unique[collection], idx.Field) {
			s.unique[collection] = append(s.unique[collection], idx.Field)
		}
	}

	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return checkContext(ctx)
}

func (s *MemoryStore) Close(context.Context) error {
	return nil
}

// checkUnique must be called with the write lock held. skip is the index of
// the document being replaced, or -1 for inserts.
func (s *MemoryStore) checkUnique(collection string, doc Document, skip int) error {
	for _, field := range s.unique[collection] {
		key := uniqueKey(doc, field)

		for i, existing := range s.collections[collection] {
			if i == skip {
				continue
			}
			if uniqueKey(existing, field) == key {
				return fmt.Errorf("%w: %s.%s", ErrDuplicateKey, collection, field)
			}
		}
	}

	return nil
}

func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// normalize deep copies doc through bson so stored values have the same
// types a real driver would hand back.
func normalize(doc Document) (Document, error) {
	if doc == nil {
		return Document{}, nil
	}

	data, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	var out Document
	if err := bson.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	return out, nil
}

func matches(doc Document, filter Document) bool {
	for field, want := range filter {
		got, ok := doc[field]
		if !ok {
			if want == nil {
				continue
			}
			return false
		}
		if !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// uniqueKey indexes a missing field as null, so at most one document per
// unique index may lack it.
func uniqueKey(doc Document, field string) string {
	v, ok := doc[field]
	if !ok || v == nil {
		return "null"
	}
	return fmt.Sprintf("%T:%v", v, v)
}
