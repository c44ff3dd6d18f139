package repository

import (
	"context"
	"testing"
	"time"

	"adwheel/models"
	"adwheel/repository/testutil"
	"adwheel/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRepository_Take(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewTokenRepository(store.New(testDB.DB))
	ctx := context.Background()

	t.Run("take removes the token", func(t *testing.T) {
		created := testutil.CreateTestToken("tok-1", 42, models.ActionWatchAd)
		require.NoError(t, repo.Create(ctx, created))

		token, err := repo.Take(ctx, "tok-1")
		require.NoError(t, err)
		require.NotNil(t, token)
		assert.Equal(t, "tok-1", token.ID)
		assert.Equal(t, int64(42), token.UserID)
		assert.Equal(t, models.ActionWatchAd, token.Kind)
		assert.WithinDuration(t, created.CreatedAt, token.CreatedAt, time.Millisecond)

		// The take was the deletion; a second take finds nothing.
		token, err = repo.Take(ctx, "tok-1")
		require.NoError(t, err)
		assert.Nil(t, token)
	})

	t.Run("unknown token", func(t *testing.T) {
		token, err := repo.Take(ctx, "never-issued")
		require.NoError(t, err)
		assert.Nil(t, token)
	})
}

func TestTokenRepository_DeleteCreatedBefore(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewTokenRepository(store.New(testDB.DB))
	ctx := context.Background()

	now := time.Now().UTC()

	stale := testutil.CreateTestToken("stale", 42, models.ActionSpin)
	stale.CreatedAt = now.Add(-2 * time.Minute)
	require.NoError(t, repo.Create(ctx, stale))

	fresh := testutil.CreateTestToken("fresh", 42, models.ActionSpin)
	fresh.CreatedAt = now
	require.NoError(t, repo.Create(ctx, fresh))

	swept, err := repo.DeleteCreatedBefore(ctx, now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)

	token, err := repo.Take(ctx, "stale")
	require.NoError(t, err)
	assert.Nil(t, token)

	token, err = repo.Take(ctx, "fresh")
	require.NoError(t, err)
	assert.NotNil(t, token)
}
