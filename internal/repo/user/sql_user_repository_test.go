package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/repo/sqldb/sqldbtest"
	"github.com/mkrupp/storefront/internal/repo/user"
)

func TestSQLUserRepository(t *testing.T) {
	t.Parallel()

	repo := user.NewSQLUserRepository(sqldbtest.Open(t))
	ctx := context.Background()

	alice := &domain.User{
		Username:     "alice",
		PasswordHash: []byte("hash"),
		Email:        "alice@example.com",
	}
	require.NoError(t, repo.CreateUser(ctx, alice))
	assert.NotZero(t, alice.ID)
	assert.Equal(t, domain.UserStatusActive, alice.Status)

	err := repo.CreateUser(ctx, &domain.User{Username: "alice", PasswordHash: []byte("other")})
	require.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	got, ok, err := repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, alice.ID, got.ID)
	assert.Equal(t, []byte("hash"), got.PasswordHash)
	assert.Equal(t, "alice@example.com", got.Email)

	_, ok, err = repo.GetUserByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.UpdateProfile(ctx, alice.ID, domain.UserProfile{Phone: "555-0100"}))
	require.NoError(t, repo.SetStatus(ctx, alice.ID, domain.UserStatusDisabled))

	got, ok, err = repo.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "555-0100", got.Phone)
	assert.Empty(t, got.Email)
	assert.Equal(t, domain.UserStatusDisabled, got.Status)

	assert.ErrorIs(t, repo.SetStatus(ctx, 999, domain.UserStatusActive), domain.ErrUserNotFound)
	assert.ErrorIs(t, repo.UpdateProfile(ctx, 999, domain.UserProfile{}), domain.ErrUserNotFound)
}
