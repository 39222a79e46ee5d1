package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/postly-api/services/content-service/internal/model"
	"github.com/vasapolrittideah/postly-api/services/content-service/internal/repository"
	"github.com/vasapolrittideah/postly-api/shared/auth"
)

// fallbackDummyHash is a well-formed argon2id hash at the library defaults,
// verified against when a fresh dummy hash cannot be produced.
const fallbackDummyHash = "$argon2id$v=19$m=65536,t=3,p=4$cG9zdGx5LWR1bW15c2FsdA$AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8"

// AuthUsecase defines the interface for registration and login.
type AuthUsecase interface {
	Register(ctx context.Context, params RegisterParams) (*model.User, error)
	Login(ctx context.Context, params LoginParams) (*Session, error)
	// Authenticate validates a bearer token and returns its claims.
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// RegisterParams defines the parameters for user registration.
type RegisterParams struct {
	Username string
	Email    string
	Password string
}

// LoginParams defines the parameters for user login.
type LoginParams struct {
	Username string
	Password string
}

// Session is the result of a successful login.
type Session struct {
	Username    string
	AccessToken string
	ExpiresAt   time.Time
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) bool
}

// TokenAuthenticator issues and validates access tokens.
type TokenAuthenticator interface {
	GenerateToken(username string) (string, time.Time, error)
	ValidateToken(token string) (*auth.Claims, error)
}

// RegistrationNotifier is told about every new user.
type RegistrationNotifier interface {
	NotifyRegistered(ctx context.Context, user *model.User) error
}

type authUsecase struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	tokens   TokenAuthenticator
	notifier RegistrationNotifier
	logger   *zerolog.Logger
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthUsecase creates a new AuthUsecase. notifier may be nil.
func NewAuthUsecase(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	tokens TokenAuthenticator,
	notifier RegistrationNotifier,
	logger *zerolog.Logger,
) AuthUsecase {
	return &authUsecase{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

func (u *authUsecase) Register(ctx context.Context, params RegisterParams) (*model.User, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	passwordHash, err := u.hasher.Hash(params.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: passwordHash,
		CreatedAt:    u.now().UTC().Truncate(time.Millisecond),
	}

	if err := u.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if u.notifier != nil {
		if err := u.notifier.NotifyRegistered(ctx, user); err != nil {
			u.logger.Warn().Err(err).Str("user_id", user.ID).Msg("failed to send welcome notification")
		}
	}

	return user, nil
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) (*Session, error) {
	user, err := u.userRepo.GetUserByUsername(ctx, params.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user == nil {
		// Burn the same hashing work as a real check so response time does
		// not reveal whether the username exists.
		u.hasher.Verify(params.Password, u.dummyPasswordHash())
		return nil, ErrInvalidCredentials
	}

	if !u.hasher.Verify(params.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := u.tokens.GenerateToken(user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &Session{
		Username:    user.Username,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}

func (u *authUsecase) Authenticate(_ context.Context, token string) (*auth.Claims, error) {
	return u.tokens.ValidateToken(token)
}

func (u *authUsecase) dummyPasswordHash() string {
	u.dummyOnce.Do(func() {
		hash, err := u.hasher.Hash(uuid.NewString())
		if err != nil {
			u.logger.Warn().Err(err).Msg("failed to prepare dummy password hash, using fallback")
			hash = fallbackDummyHash
		}
		u.dummyHash = hash
	})
	return u.dummyHash
}

func (p RegisterParams) validate() error {
	switch {
	case strings.TrimSpace(p.Username) == "":
		return fmt.Errorf("%w: username is required", ErrInvalidInput)
	case strings.TrimSpace(p.Email) == "":
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	case p.Password == "":
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	return nil
}
