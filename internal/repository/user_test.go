package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyunwoo-dev/elkmart/internal/domain"
	"github.com/hyunwoo-dev/elkmart/internal/testutil"
)

// Two signups can both pass the service's email pre-check before either
// commits; the insert that loses the race must still surface
// ErrEmailTaken, not a raw constraint error.
func TestUserCreate_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	now := time.Now().UTC()
	first := &domain.User{ID: uuid.New(), Email: "dup@test.com", Name: "First", PasswordHash: "x", CreatedAt: now}
	second := &domain.User{ID: uuid.New(), Email: "dup@test.com", Name: "Second", PasswordHash: "x", CreatedAt: now}

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, tx, first))
	require.NoError(t, tx.Commit())

	tx, err = db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()
	err = repo.Create(ctx, tx, second)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}
