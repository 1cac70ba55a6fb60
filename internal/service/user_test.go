package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyunwoo-dev/elkmart/internal/domain"
	"github.com/hyunwoo-dev/elkmart/internal/repository"
	"github.com/hyunwoo-dev/elkmart/internal/testutil"
)

func TestSignUp_CreatesUserAndAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := NewUserService(repository.NewUserRepository(db), repository.NewAccountRepository(db), db)

	user, refreshToken, err := svc.SignUp(ctx, SignUpRequest{
		Name:     "Buyer",
		Email:    "buyer@test.com",
		Password: "password123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, refreshToken)

	// Every user starts with a zero-balance account.
	account, err := repository.NewAccountRepository(db).GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), account.Balance)
	assert.Equal(t, int64(1), account.Version)
}

func TestSignUp_EmailTaken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := NewUserService(repository.NewUserRepository(db), repository.NewAccountRepository(db), db)

	_, _, err := svc.SignUp(ctx, SignUpRequest{Name: "A", Email: "dup@test.com", Password: "password123"})
	require.NoError(t, err)

	_, _, err = svc.SignUp(ctx, SignUpRequest{Name: "B", Email: "dup@test.com", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := NewUserService(repository.NewUserRepository(db), repository.NewAccountRepository(db), db)

	_, signupToken, err := svc.SignUp(ctx, SignUpRequest{Name: "Buyer", Email: "buyer@test.com", Password: "password123"})
	require.NoError(t, err)

	user, loginToken, err := svc.Login(ctx, "buyer@test.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "buyer@test.com", user.Email)
	// Login rotates the refresh token.
	assert.NotEqual(t, signupToken, loginToken)
}

func TestLogin_WrongPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := NewUserService(repository.NewUserRepository(db), repository.NewAccountRepository(db), db)

	_, _, err := svc.SignUp(ctx, SignUpRequest{Name: "Buyer", Email: "buyer@test.com", Password: "password123"})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "buyer@test.com", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestLogin_UnknownEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := NewUserService(repository.NewUserRepository(db), repository.NewAccountRepository(db), db)

	_, _, err := svc.Login(ctx, "nobody@test.com", "password123")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
