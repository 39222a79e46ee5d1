package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	ID        string    `bson:"id"`
	Owner     string    `bson:"owner"`
	Body      string    `bson:"body"`
	Stars     int       `bson:"stars"`
	CreatedAt time.Time `bson:"created_at"`
}

func (n *note) Validate() error {
	if n.ID == "" {
		return errors.New("id is required")
	}
	return nil
}

func TestMemoryStore_InsertAndFind(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Insert(ctx, "notes", Document{"id": "1", "owner": "alice", "stars": 3}))
	require.NoError(t, s.Insert(ctx, "notes", Document{"id": "2", "owner": "bob", "stars": 0}))
	require.NoError(t, s.Insert(ctx, "notes", Document{"id": "3", "owner": "alice", "stars": 3}))

	doc, found, err := s.FindOne(ctx, "notes", Filter{"owner": "bob"})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "2", doc["id"])

	docs, err := s.FindMany(ctx, "notes", Filter{"owner": "alice"})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "1", docs[0]["id"])
	assert.Equal(t, "3", docs[1]["id"])

	docs, err = s.FindMany(ctx, "notes", Filter{"stars": 3})
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	all, err := s.FindMany(ctx, "notes", nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryStore_AbsenceIsNotAnError(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	doc, found, err := s.FindOne(ctx, "notes", Filter{"id": "missing"})
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, doc)

	docs, err := s.FindMany(ctx, "notes", Filter{"owner": "nobody"})
	assert.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)

	n, err := s.Count(ctx, "notes", nil)
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryStore_ReturnedDocumentsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	original := Document{"id": "1", "body": "hello"}
	require.NoError(t, s.Insert(ctx, "notes", original))
	original["body"] = "mutated"

	doc, _, err := s.FindOne(ctx, "notes", Filter{"id": "1"})
	require.NoError(t, err)
	assert.Equal(t, "hello", doc["body"])

	doc["body"] = "mutated again"

	again, _, err := s.FindOne(ctx, "notes", Filter{"id": "1"})
	require.NoError(t, err)
	assert.Equal(t, "hello", again["body"])
}

func TestMemoryStore_UpdateFields(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Insert(ctx, "notes", Document{"id": "1", "owner": "alice", "body": "old"}))

	matched, err := s.UpdateFields(ctx, "notes", Filter{"id": "1"}, Document{"body": "new"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, matched)

	doc, _, err := s.FindOne(ctx, "notes", Filter{"id": "1"})
	require.NoError(t, err)
	assert.Equal(t, "new", doc["body"])
	assert.Equal(t, "alice", doc["owner"])

	matched, err = s.UpdateFields(ctx, "notes", Filter{"id": "nope"}, Document{"body": "x"})
	require.NoError(t, err)
	assert.Zero(t, matched)
}

func TestMemoryStore_UniqueIndex(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.EnsureIndexes(ctx, "users", Index{Field: "username", Unique: true}))
	require.NoError(t, s.Insert(ctx, "users", Document{"id": "1", "username": "alice"}))

	err := s.Insert(ctx, "users", Document{"id": "2", "username": "alice"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	require.NoError(t, s.Insert(ctx, "users", Document{"id": "3", "username": "Alice"}))
	require.NoError(t, s.Insert(ctx, "users", Document{"id": "4", "username": "bob"}))

	_, err = s.UpdateFields(ctx, "users", Filter{"id": "4"}, Document{"username": "alice"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	_, err = s.UpdateFields(ctx, "users", Filter{"id": "1"}, Document{"username": "alice"})
	assert.NoError(t, err)

	n, err := s.Count(ctx, "users", Filter{"username": "alice"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestMemoryStore_EnsureIndexesRejectsExistingDuplicates(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Insert(ctx, "users", Document{"username": "alice"}))
	require.NoError(t, s.Insert(ctx, "users", Document{"username": "alice"}))

	err := s.EnsureIndexes(ctx, "users", Index{Field: "username", Unique: true})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestMemoryStore_UniqueIndexTreatsMissingAsNull(t *testing.T) {
	ctx := context.Background()

	t.Run("insert", func(t *testing.T) {
		s := NewMemoryStore()
		require.NoError(t, s.EnsureIndexes(ctx, "users", Index{Field: "username", Unique: true}))

		require.NoError(t, s.Insert(ctx, "users", Document{"id": "1"}))

		err := s.Insert(ctx, "users", Document{"id": "2"})
		assert.ErrorIs(t, err, ErrDuplicateKey)

		err = s.Insert(ctx, "users", Document{"id": "3", "username": nil})
		assert.ErrorIs(t, err, ErrDuplicateKey)

		require.NoError(t, s.Insert(ctx, "users", Document{"id": "4", "username": "null"}))
	})

	t.Run("ensure over existing", func(t *testing.T) {
		s := NewMemoryStore()
		require.NoError(t, s.Insert(ctx, "users", Document{"id": "1"}))
		require.NoError(t, s.Insert(ctx, "users", Document{"id": "2"}))

		err := s.EnsureIndexes(ctx, "users", Index{Field: "username", Unique: true})
		assert.ErrorIs(t, err, ErrDuplicateKey)
	})
}

func TestMemoryStore_ConcurrentUniqueInserts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.EnsureIndexes(ctx, "users", Index{Field: "username", Unique: true}))

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Insert(ctx, "users", Document{"username": "alice"})
		}()
	}
	wg.Wait()
	close(errs)

	var ok int
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrDuplicateKey)
	}
	assert.Equal(t, 1, ok)
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewMemoryStore()

	err := s.Insert(ctx, "notes", Document{"id": "1"})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, context.Canceled)

	_, _, err = s.FindOne(ctx, "notes", nil)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = s.Count(ctx, "notes", nil)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	assert.ErrorIs(t, s.Ping(ctx), ErrStoreUnavailable)
}

func TestCollection_TypedRoundTrip(t *testing.T) {
	ctx := context.Background()
	notes := NewCollection[note](NewMemoryStore(), "notes")
	createdAt := time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, notes.Insert(ctx, &note{ID: "1", Owner: "alice", Body: "hi", Stars: 7, CreatedAt: createdAt}))

	got, found, err := notes.FindOne(ctx, Filter{"id": "1"})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "alice", got.Owner)
	assert.Equal(t, 7, got.Stars)
	assert.True(t, createdAt.Equal(got.CreatedAt))

	matched, err := notes.UpdateFields(ctx, Filter{"id": "1"}, Document{"stars": 8})
	require.NoError(t, err)
	assert.EqualValues(t, 1, matched)

	list, err := notes.FindMany(ctx, Filter{"owner": "alice"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 8, list[0].Stars)

	n, err := notes.Count(ctx, Filter{"owner": "alice"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, "notes", notes.Name())
}

func TestCollection_ValidatesOnWriteAndRead(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	notes := NewCollection[note](s, "notes")

	err := notes.Insert(ctx, &note{Owner: "alice"})
	assert.ErrorIs(t, err, ErrInvalidRecord)

	require.NoError(t, s.Insert(ctx, "notes", Document{"owner": "mallory"}))
	_, _, err = notes.FindOne(ctx, Filter{"owner": "mallory"})
	assert.ErrorIs(t, err, ErrInvalidRecord)

	require.NoError(t, s.Insert(ctx, "notes", Document{"id": "x", "stars": "not a number"}))
	_, _, err = notes.FindOne(ctx, Filter{"id": "x"})
	assert.ErrorIs(t, err, ErrInvalidRecord)
}
