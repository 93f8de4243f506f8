package service

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/centsible/centsible-go/internal/crypto"
	"github.com/centsible/centsible-go/internal/metrics"
	"github.com/centsible/centsible-go/internal/model"
	"github.com/centsible/centsible-go/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already taken")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)

// UserStore is the slice of the user repository the auth service needs.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

// AuthConfig tunes the auth service.
type AuthConfig struct {
	JWTSecret     string
	JWTExpiry     time.Duration
	HashWorkers   int64
	LoginAttempts int
	LoginWindow   time.Duration
}

// AuthService handles registration, login, token verification, and the
// admin user listing.
type AuthService struct {
	users    UserStore
	secret   string
	expiry   time.Duration
	hashSem  *semaphore.Weighted
	throttle *loginThrottle
}

// NewAuthService creates a new AuthService. Zero config fields fall
// back to working defaults.
func NewAuthService(users UserStore, cfg AuthConfig) *AuthService {
	if cfg.HashWorkers <= 0 {
		cfg.HashWorkers = int64(runtime.GOMAXPROCS(0))
	}
	if cfg.LoginAttempts <= 0 {
		cfg.LoginAttempts = 5
	}
	if cfg.LoginWindow <= 0 {
		cfg.LoginWindow = 15 * time.Minute
	}

	return &AuthService{
		users:    users,
		secret:   cfg.JWTSecret,
		expiry:   cfg.JWTExpiry,
		hashSem:  semaphore.NewWeighted(cfg.HashWorkers),
		throttle: newLoginThrottle(cfg.LoginAttempts, cfg.LoginWindow),
	}
}

// Close stops the login throttle's cleanup loop.
func (s *AuthService) Close() {
	s.throttle.close()
}

// Register creates a new user account with the default role and
// returns a fresh token.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	if err := validateStruct(req); err != nil {
		return model.AuthResponse{}, err
	}

	// Argon2 hashing is memory- and CPU-heavy; the semaphore keeps a
	// burst of registrations from monopolizing the host.
	if err := s.hashSem.Acquire(ctx, 1); err != nil {
		return model.AuthResponse{}, err
	}
	hash, err := crypto.HashPassword(req.Password)
	s.hashSem.Release(1)
	if err != nil {
		return model.AuthResponse{}, err
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		Role:         model.RoleUser,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.AuthResponse{}, ErrEmailTaken
		}
		return model.AuthResponse{}, err
	}

	token, err := crypto.GenerateToken(user, s.secret, s.expiry)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{Token: token, User: user.Public()}, nil
}

// Login authenticates a user and returns a fresh token. An unknown
// email and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	if err := validateStruct(req); err != nil {
		return model.AuthResponse{}, err
	}

	email := normalizeEmail(req.Email)
	if !s.throttle.allow(email) {
		metrics.LoginThrottledTotal.Inc()
		return model.AuthResponse{}, ErrTooManyAttempts
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}

	match, err := crypto.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return model.AuthResponse{}, err
	}
	if !match {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	token, err := crypto.GenerateToken(user, s.secret, s.expiry)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{Token: token, User: user.Public()}, nil
}

// Verify validates a bearer token and confirms its subject still
// exists, returning the request principal. Identity and role come from
// the user record, so deletions and out-of-band role changes take
// effect before the token expires.
func (s *AuthService) Verify(ctx context.Context, token string) (model.Principal, error) {
	claims, err := crypto.ValidateToken(token, s.secret)
	if err != nil {
		return model.Principal{}, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.Principal{}, crypto.ErrInvalidToken
		}
		return model.Principal{}, err
	}

	return model.Principal{UserID: user.ID, Email: user.Email, Role: user.Role}, nil
}

// Me returns the public projection of the user behind a principal.
func (s *AuthService) Me(ctx context.Context, userID string) (model.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return model.UserResponse{}, err
	}
	return user.Public(), nil
}

// ListUsers returns every account's public projection.
func (s *AuthService) ListUsers(ctx context.Context) ([]model.UserResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.UserResponse, len(users))
	for i := range users {
		out[i] = users[i].Public()
	}
	return out, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
