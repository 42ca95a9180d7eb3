package auth

import (
	"context"
	"testing"
	"time"

	autherrors "petcare/internal/auth/errors"
	"petcare/internal/auth/repository"
	"petcare/pkg/model"
	"petcare/test/integration/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetPasswordNeedsLiveToken(t *testing.T) {
	env := testutil.NewTestEnv(t)
	_, cfg := env.Setup(t)
	repo := repository.NewMongoUserRepository(cfg)
	ctx := context.Background()

	user := &model.User{
		Username:     "drnaidoo",
		Email:        "naidoo@petcare.test",
		PasswordHash: "old-hash",
		FirstName:    "Asha",
		LastName:     "Naidoo",
		Role:         model.RoleVeterinarian,
		IsActive:     true,
	}
	require.NoError(t, repo.Create(ctx, user))

	now := time.Now().UTC()
	require.NoError(t, repo.SetResetToken(ctx, user.ID, "first-hash", now.Add(15*time.Minute)))
	// A second request replaces the first token.
	require.NoError(t, repo.SetResetToken(ctx, user.ID, "second-hash", now.Add(15*time.Minute)))

	t.Run("replaced token cannot write", func(t *testing.T) {
		err := repo.ResetPassword(ctx, user.ID, "first-hash", "stale-hash", now)
		assert.ErrorIs(t, err, autherrors.ErrNotFound)

		stored, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "old-hash", stored.PasswordHash)
	})

	t.Run("expired token cannot write", func(t *testing.T) {
		err := repo.ResetPassword(ctx, user.ID, "second-hash", "late-hash", now.Add(time.Hour))
		assert.ErrorIs(t, err, autherrors.ErrNotFound)
	})

	t.Run("current token writes once", func(t *testing.T) {
		require.NoError(t, repo.ResetPassword(ctx, user.ID, "second-hash", "new-hash", now))

		stored, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "new-hash", stored.PasswordHash)
		assert.Empty(t, stored.PasswordResetToken)
		assert.Nil(t, stored.PasswordResetExpires)

		err = repo.ResetPassword(ctx, user.ID, "second-hash", "replayed-hash", now)
		assert.ErrorIs(t, err, autherrors.ErrNotFound)
	})
}
