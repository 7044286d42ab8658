package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/uditb/resumesculpt/internal/config"
	"github.com/uditb/resumesculpt/internal/db"
	"github.com/uditb/resumesculpt/internal/types"
)

// DBClient is the persistence surface the server depends on. *db.DB
// implements it; tests substitute a mock.
type DBClient interface {
	CreateUser(ctx context.Context, email, passwordHash, fullName, plan string) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*db.User, error)
	SetResume(ctx context.Context, userID uuid.UUID, resumeYAML, filename string, uploadedAt time.Time) error
	WeeklyUsage(ctx context.Context, userID uuid.UUID, weekStart time.Time) (int, error)
	ListOptimizations(ctx context.Context, userID uuid.UUID) ([]*db.OptimizationRecord, error)
}

// UserService provides business logic for user authentication operations
type UserService struct {
	db             DBClient
	passwordConfig *config.PasswordConfig
}

// NewUserService creates a new UserService with the given dependencies
func NewUserService(db DBClient, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{
		db:             db,
		passwordConfig: passwordConfig,
	}
}

// Register creates a new account on the free plan.
func (s *UserService) Register(ctx context.Context, req *types.SignupRequest) (*db.User, error) {
	passwordHash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.db.CreateUser(ctx, req.Email, passwordHash, req.FullName, "free")
	if err != nil {
		if errors.Is(err, db.ErrDuplicateEmail) {
			return nil, &ErrEmailAlreadyExists{Email: req.Email}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates a user and returns the account.
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*db.User, error) {
	user, err := s.db.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			// Same error for unknown email and wrong password
			return nil, &ErrInvalidCredentials{}
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	if !s.passwordConfig.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}

	return user, nil
}

// Get retrieves an account by ID.
func (s *UserService) Get(ctx context.Context, userID uuid.UUID) (*db.User, error) {
	user, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, &ErrUserNotFound{UserID: userID}
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
