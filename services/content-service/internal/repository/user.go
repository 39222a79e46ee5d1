package repository

import (
	"context"
	"errors"

	"github.com/vasapolrittideah/postly-api/services/content-service/internal/model"
	"github.com/vasapolrittideah/postly-api/shared/store"
)

// ErrUserAlreadyExists is returned when the username is already registered.
var ErrUserAlreadyExists = errors.New("user already exists")

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	// GetUserByUsername returns nil, nil when no user has that username.
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

const userCollection = "users"

type userStoreRepository struct {
	users *store.Collection[model.User]
}

// NewUserRepository creates a user repository and ensures its indexes.
// The unique username index is what keeps registrations from creating
// duplicate accounts.
func NewUserRepository(ctx context.Context, s store.Store) (UserRepository, error) {
	users := store.NewCollection[model.User](s, userCollection)

	if err := users.EnsureIndexes(ctx,
		store.Index{Field: "id", Unique: true},
		store.Index{Field: "username", Unique: true},
	); err != nil {
		return nil, err
	}

	return &userStoreRepository{users: users}, nil
}

func (r *userStoreRepository) CreateUser(ctx context.Context, user *model.User) error {
	if err := r.users.Insert(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return ErrUserAlreadyExists
		}
		return err
	}

	return nil
}

func (r *userStoreRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	user, found, err := r.users.FindOne(ctx, store.Filter{"username": username})
	if err != nil || !found {
		return nil, err
	}

	return user, nil
}
