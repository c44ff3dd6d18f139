package repository

import (
	"context"
	"testing"
	"time"

	"adwheel/repository/testutil"
	"adwheel/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_GetByID(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(store.New(testDB.DB))
	ctx := context.Background()

	t.Run("user not found", func(t *testing.T) {
		user, err := repo.GetByID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("user found with zeroed defaults", func(t *testing.T) {
		created, err := repo.Create(ctx, 123456, nil)
		require.NoError(t, err)
		require.NotNil(t, created)

		user, err := repo.GetByID(ctx, 123456)
		require.NoError(t, err)
		require.NotNil(t, user)

		assert.Equal(t, int64(123456), user.ID)
		assert.Equal(t, float64(0), user.Balance)
		assert.Equal(t, 0, user.AdsWatchedToday)
		assert.Equal(t, 0, user.SpinsToday)
		assert.Equal(t, 0, user.ReferralsCount)
		assert.False(t, user.IsBanned)
		assert.False(t, user.SpinPending)
		assert.Nil(t, user.LastActionTime)
		assert.Nil(t, user.RefBy)
		assert.False(t, user.CreatedAt.IsZero())
	})
}

func TestUserRepository_Create(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(store.New(testDB.DB))
	ctx := context.Background()

	t.Run("with referrer", func(t *testing.T) {
		refBy := int64(777)
		user, err := repo.Create(ctx, 42, &refBy)
		require.NoError(t, err)
		require.NotNil(t, user.RefBy)
		assert.Equal(t, int64(777), *user.RefBy)
	})

	t.Run("duplicate id", func(t *testing.T) {
		_, err := repo.Create(ctx, 43, nil)
		require.NoError(t, err)

		_, err = repo.Create(ctx, 43, nil)
		assert.Error(t, err)
	})
}

func TestUserRepository_Update(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(store.New(testDB.DB))
	ctx := context.Background()

	user, err := repo.Create(ctx, 42, nil)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Millisecond)
	user.Balance = 33
	user.AdsWatchedToday = 11
	user.SpinsToday = 4
	user.SpinPending = true
	user.LastActionTime = &now
	require.NoError(t, repo.Update(ctx, user))

	got, err := repo.GetByID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, float64(33), got.Balance)
	assert.Equal(t, 11, got.AdsWatchedToday)
	assert.Equal(t, 4, got.SpinsToday)
	assert.True(t, got.SpinPending)
	require.NotNil(t, got.LastActionTime)
	assert.WithinDuration(t, now, *got.LastActionTime, time.Millisecond)
}

func TestUserRepository_SetRefBy_WriteOnce(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(store.New(testDB.DB))
	ctx := context.Background()

	_, err := repo.Create(ctx, 42, nil)
	require.NoError(t, err)

	set, err := repo.SetRefBy(ctx, 42, 7)
	require.NoError(t, err)
	assert.True(t, set)

	// A second attempt must not overwrite the first referrer.
	set, err = repo.SetRefBy(ctx, 42, 99)
	require.NoError(t, err)
	assert.False(t, set)

	user, err := repo.GetByID(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, user.RefBy)
	assert.Equal(t, int64(7), *user.RefBy)
}

func TestUserRepository_CreditAndIncrement(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(store.New(testDB.DB))
	ctx := context.Background()

	_, err := repo.Create(ctx, 42, nil)
	require.NoError(t, err)

	require.NoError(t, repo.Credit(ctx, 42, 0.15))
	require.NoError(t, repo.Credit(ctx, 42, 10))
	require.NoError(t, repo.IncrementReferrals(ctx, 42))
	require.NoError(t, repo.IncrementReferrals(ctx, 42))

	user, err := repo.GetByID(ctx, 42)
	require.NoError(t, err)
	assert.InDelta(t, 10.15, user.Balance, 1e-9)
	assert.Equal(t, 2, user.ReferralsCount)

	t.Run("missing user", func(t *testing.T) {
		assert.Error(t, repo.Credit(ctx, 999, 1))
		assert.Error(t, repo.IncrementReferrals(ctx, 999))
	})
}

func TestUserRepository_DeductBalance(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(store.New(testDB.DB))
	ctx := context.Background()

	_, err := repo.Create(ctx, 42, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Credit(ctx, 42, 500))

	t.Run("sufficient balance", func(t *testing.T) {
		require.NoError(t, repo.DeductBalance(ctx, 42, 400))

		user, err := repo.GetByID(ctx, 42)
		require.NoError(t, err)
		assert.InDelta(t, 100, user.Balance, 1e-9)
	})

	t.Run("insufficient balance leaves no write", func(t *testing.T) {
		err := repo.DeductBalance(ctx, 42, 400)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "insufficient balance")

		user, err := repo.GetByID(ctx, 42)
		require.NoError(t, err)
		assert.InDelta(t, 100, user.Balance, 1e-9)
	})

	t.Run("missing user", func(t *testing.T) {
		err := repo.DeductBalance(ctx, 999, 10)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestUserRepository_ResetDailyCounters(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(store.New(testDB.DB))
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3} {
		user, err := repo.Create(ctx, id, nil)
		require.NoError(t, err)
		user.AdsWatchedToday = 50
		user.SpinsToday = 10
		require.NoError(t, repo.Update(ctx, user))
	}

	reset, err := repo.ResetDailyCounters(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), reset)

	for _, id := range []int64{1, 2, 3} {
		user, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 0, user.AdsWatchedToday)
		assert.Equal(t, 0, user.SpinsToday)
	}
}
