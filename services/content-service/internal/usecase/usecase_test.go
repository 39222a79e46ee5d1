package usecase

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/matthewhartstonge/argon2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vasapolrittideah/postly-api/services/content-service/internal/model"
	"github.com/vasapolrittideah/postly-api/services/content-service/internal/repository"
	"github.com/vasapolrittideah/postly-api/shared/auth"
	"github.com/vasapolrittideah/postly-api/shared/security"
	"github.com/vasapolrittideah/postly-api/shared/store"
)

var testLogger = zerolog.New(io.Discard)

func ptr[T any](v T) *T { return &v }

func newTestHasher() *security.PasswordHasher {
	cfg := argon2.DefaultConfig()
	cfg.TimeCost = 1
	cfg.MemoryCost = 8 * 1024
	cfg.Parallelism = 1

	return security.NewPasswordHasherWithConfig(cfg)
}

func newTestAuthenticator(t *testing.T) *auth.JWTAuthenticator {
	t.Helper()

	a, err := auth.NewJWTAuthenticator(auth.Config{Secret: "test-secret", TTL: time.Hour})
	require.NoError(t, err)

	return a
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockPostRepository is a mock implementation of PostRepository.
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) CreatePost(ctx context.Context, post *model.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetPost(ctx context.Context, id string) (*model.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostRepository) ListPosts(ctx context.Context, params repository.FilterPostsParams) ([]*model.Post, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Post), args.Error(1)
}

func (m *MockPostRepository) CountPosts(ctx context.Context, params repository.FilterPostsParams) (int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) UpdatePost(ctx context.Context, id string, params repository.UpdatePostParams) (bool, error) {
	args := m.Called(ctx, id, params)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, publishedAt)
	return args.Bool(0), args.Error(1)
}

// MockPasswordHasher is a mock implementation of PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(password, encoded string) bool {
	args := m.Called(password, encoded)
	return args.Bool(0)
}

// MockNotifier is a mock implementation of RegistrationNotifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyRegistered(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// memoryCache is an in-process PostCache.
type memoryCache struct {
	data map[string][]byte
	gets int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string) []byte {
	c.gets++
	return c.data[key]
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	c.data[key] = value
}

func (c *memoryCache) Delete(_ context.Context, key string) {
	delete(c.data, key)
}

type memoryRepos struct {
	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
}

func newMemoryRepos(t *testing.T) memoryRepos {
	t.Helper()

	ctx := context.Background()
	s := store.NewMemoryStore()

	users, err := repository.NewUserRepository(ctx, s)
	require.NoError(t, err)
	posts, err := repository.NewPostRepository(ctx, s)
	require.NoError(t, err)
	comments, err := repository.NewCommentRepository(ctx, s)
	require.NoError(t, err)

	return memoryRepos{users: users, posts: posts, comments: comments}
}
