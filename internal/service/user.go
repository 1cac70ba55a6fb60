package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hyunwoo-dev/elkmart/internal/auth"
	"github.com/hyunwoo-dev/elkmart/internal/domain"
	"github.com/hyunwoo-dev/elkmart/internal/logging"
	"github.com/hyunwoo-dev/elkmart/internal/metrics"
)

type UserService struct {
	users    userRepository
	accounts accountRepository
	db       *sql.DB
}

func NewUserService(users userRepository, accounts accountRepository, db *sql.DB) *UserService {
	return &UserService{users: users, accounts: accounts, db: db}
}

type SignUpRequest struct {
	Name      string
	Email     string
	Password  string
	Birthdate *time.Time
}

// SignUp creates the user, their zero-balance account and the refresh
// token row in one transaction. An account therefore exists for every
// user from the moment the user is visible.
func (s *UserService) SignUp(ctx context.Context, req SignUpRequest) (*domain.User, string, error) {
	_, err := s.users.GetByEmail(ctx, req.Email)
	if err == nil {
		return nil, "", fmt.Errorf("SignUp: %w", domain.ErrEmailTaken)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, "", fmt.Errorf("SignUp: check existing: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("SignUp: hash password: %w", err)
	}

	refreshToken, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, "", fmt.Errorf("SignUp: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		Birthdate:    req.Birthdate,
		CreatedAt:    now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, "", fmt.Errorf("SignUp: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.users.Create(ctx, tx, user); err != nil {
		return nil, "", fmt.Errorf("SignUp: create user: %w", err)
	}

	account := &domain.Account{
		ID:        uuid.New(),
		UserID:    user.ID,
		Balance:   0,
		Version:   1,
		CreatedAt: now,
	}
	if err := s.accounts.Create(ctx, tx, account); err != nil {
		return nil, "", fmt.Errorf("SignUp: create account: %w", err)
	}

	if err := s.users.SaveRefreshToken(ctx, tx, &domain.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		CreatedAt: now,
	}); err != nil {
		return nil, "", fmt.Errorf("SignUp: save refresh token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, "", fmt.Errorf("SignUp: commit: %w", err)
	}

	metrics.RegisteredUsers.Inc()
	logging.FromContext(ctx).Info("user signed up", "user_id", user.ID)
	return user, refreshToken, nil
}

// Login verifies credentials and rotates the refresh token.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("Login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", fmt.Errorf("Login: %w", domain.ErrForbidden)
	}

	refreshToken, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, "", fmt.Errorf("Login: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, "", fmt.Errorf("Login: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.users.SaveRefreshToken(ctx, tx, &domain.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return nil, "", fmt.Errorf("Login: save refresh token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, "", fmt.Errorf("Login: commit: %w", err)
	}

	return user, refreshToken, nil
}

func (s *UserService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.DeleteRefreshToken(ctx, userID); err != nil {
		return fmt.Errorf("Logout: %w", err)
	}
	logging.FromContext(ctx).Info("user logged out", "user_id", userID)
	return nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return user, nil
}
