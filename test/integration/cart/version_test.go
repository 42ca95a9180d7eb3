package cart

import (
	"context"
	"testing"

	carterrors "petcare/internal/cart/errors"
	"petcare/internal/cart/repository"
	"petcare/pkg/model"
	"petcare/test/integration/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStaleCartWriteIsRejected(t *testing.T) {
	env := testutil.NewTestEnv(t)
	helper, cfg := env.Setup(t)
	repo := repository.NewMongoCartRepository(cfg)
	ctx := context.Background()

	userID := primitive.NewObjectID().Hex()
	kibbleID := primitive.NewObjectID().Hex()
	leashID := primitive.NewObjectID().Hex()

	require.NoError(t, repo.Create(ctx, model.NewCart(userID)))

	// Two requests read the same cart.
	first, err := repo.FindActive(ctx, userID)
	require.NoError(t, err)
	second, err := repo.FindActive(ctx, userID)
	require.NoError(t, err)

	first.AddItem(kibbleID, 450, 2)
	require.NoError(t, repo.SaveItems(ctx, first))
	assert.Equal(t, int64(1), first.Version)

	second.AddItem(leashID, 320.5, 1)
	err = repo.SaveItems(ctx, second)
	assert.ErrorIs(t, err, carterrors.ErrConflict)

	stored, err := repo.FindActive(ctx, userID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1, "the stale write must not replace the first one")
	assert.Equal(t, kibbleID, stored.Items[0].ProductID)
	assert.Equal(t, 2, stored.TotalItems)

	t.Run("reloaded copy saves", func(t *testing.T) {
		stored.AddItem(leashID, 320.5, 1)
		require.NoError(t, repo.SaveItems(ctx, stored))

		again, err := repo.FindActive(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 3, again.TotalItems)
		assert.Equal(t, int64(2), again.Version)
	})

	t.Run("stale checkout is rejected", func(t *testing.T) {
		assert.ErrorIs(t, repo.MarkOrdered(ctx, first), carterrors.ErrConflict)
		assert.Equal(t, int64(1), helper.CountDocuments(t, repository.CollectionName, bson.M{"user_id": userID, "status": model.CartActive}))
	})
}

func TestUnversionedCartStillSaves(t *testing.T) {
	env := testutil.NewTestEnv(t)
	helper, cfg := env.Setup(t)
	repo := repository.NewMongoCartRepository(cfg)
	ctx := context.Background()

	userID := primitive.NewObjectID().Hex()
	require.NoError(t, repo.Create(ctx, model.NewCart(userID)))
	_, err := helper.Database.Collection(repository.CollectionName).UpdateOne(ctx,
		bson.M{"user_id": userID}, bson.M{"$unset": bson.M{"version": ""}})
	require.NoError(t, err)

	c, err := repo.FindActive(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, c.Version)

	c.AddItem(primitive.NewObjectID().Hex(), 99, 1)
	require.NoError(t, repo.SaveItems(ctx, c))
	assert.Equal(t, int64(1), c.Version)
}
