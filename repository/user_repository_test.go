package repository

import (
	"context"
	"testing"

	"fiveaside/models"
	"fiveaside/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_GetByUsername(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("user not found", func(t *testing.T) {
		user, err := repo.GetByUsername(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("user found", func(t *testing.T) {
		created, err := repo.Create(ctx, "ade", 10000)
		require.NoError(t, err)
		require.NotNil(t, created)

		user, err := repo.GetByUsername(ctx, "ade")
		require.NoError(t, err)
		require.NotNil(t, user)

		assert.Equal(t, created.ID, user.ID)
		assert.Equal(t, "ade", user.Username)
		assert.Equal(t, int64(10000), user.Balance)
	})
}

func TestUserRepository_CreditAndDebit(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, err := repo.Create(ctx, "bisi", 1000)
	require.NoError(t, err)

	t.Run("credit adds to balance", func(t *testing.T) {
		err := repo.Credit(ctx, user.ID, 500)
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1500), got.Balance)
	})

	t.Run("debit deducts from balance", func(t *testing.T) {
		err := repo.Debit(ctx, user.ID, 300)
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1200), got.Balance)
	})

	t.Run("debit beyond balance fails and leaves balance unchanged", func(t *testing.T) {
		err := repo.Debit(ctx, user.ID, 5000)
		assert.ErrorIs(t, err, models.ErrInsufficientBalance)

		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1200), got.Balance)
	})

	t.Run("debit unknown user", func(t *testing.T) {
		err := repo.Debit(ctx, 999999, 10)
		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})

	t.Run("credit unknown user", func(t *testing.T) {
		err := repo.Credit(ctx, 999999, 10)
		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})
}
