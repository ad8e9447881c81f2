package repository

import (
	"context"
	"testing"
	"time"

	"fiveaside/events"
	"fiveaside/models"
	"fiveaside/repository/testutil"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWagerRepository_GetPoolByMatch(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	matchRepo := NewMatchRepository(testDB.DB)
	wagerRepo := NewWagerRepository(testDB.DB)
	ctx := context.Background()

	user, err := userRepo.Create(ctx, "ade", 100000)
	require.NoError(t, err)
	require.NoError(t, matchRepo.Upsert(ctx, testutil.CreateTestMatch("match-1")))
	require.NoError(t, matchRepo.Upsert(ctx, testutil.CreateTestMatch("match-2")))

	t.Run("empty pool for match with no wagers", func(t *testing.T) {
		pool, err := wagerRepo.GetPoolByMatch(ctx, "match-1")
		require.NoError(t, err)
		assert.Equal(t, models.Pool{}, pool)
	})

	t.Run("pool sums stakes per outcome", func(t *testing.T) {
		for _, w := range []*models.Wager{
			testutil.CreateTestWager("match-1", user.ID, models.OutcomeHome, 100),
			testutil.CreateTestWager("match-1", user.ID, models.OutcomeHome, 50),
			testutil.CreateTestWager("match-1", user.ID, models.OutcomeAway, 200),
			testutil.CreateTestWager("match-1", user.ID, models.OutcomeDraw, 25),
			// Different match, must not leak in
			testutil.CreateTestWager("match-2", user.ID, models.OutcomeHome, 999),
		} {
			require.NoError(t, wagerRepo.Create(ctx, w))
		}

		pool, err := wagerRepo.GetPoolByMatch(ctx, "match-1")
		require.NoError(t, err)
		assert.Equal(t, models.Pool{Home: 150, Away: 200, Draw: 25}, pool)
		assert.Equal(t, int64(375), pool.Total())
	})
}

func TestWagerRepository_Settle(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	matchRepo := NewMatchRepository(testDB.DB)
	wagerRepo := NewWagerRepository(testDB.DB)
	ctx := context.Background()

	user, err := userRepo.Create(ctx, "bisi", 100000)
	require.NoError(t, err)
	require.NoError(t, matchRepo.Upsert(ctx, testutil.CreateTestMatch("match-1")))

	wager := testutil.CreateTestWager("match-1", user.ID, models.OutcomeHome, 100)
	require.NoError(t, wagerRepo.Create(ctx, wager))
	assert.Equal(t, models.WagerStatusPlaced, wager.Status)

	t.Run("first settle applies", func(t *testing.T) {
		wager.MarkWon(160, 40, time.Now())

		applied, err := wagerRepo.Settle(ctx, wager)
		require.NoError(t, err)
		assert.True(t, applied)

		got, err := wagerRepo.GetByID(ctx, wager.ID)
		require.NoError(t, err)
		assert.Equal(t, models.WagerStatusWon, got.Status)
		assert.Equal(t, int64(160), got.Reward)
		assert.Equal(t, int64(40), got.Fee)
		assert.Equal(t, int64(260), got.TotalReturn)
		assert.NotNil(t, got.SettledAt)
	})

	t.Run("second settle is a no-op", func(t *testing.T) {
		wager.MarkLost(time.Now())

		applied, err := wagerRepo.Settle(ctx, wager)
		require.NoError(t, err)
		assert.False(t, applied)

		// Terminal state from the first settlement is untouched
		got, err := wagerRepo.GetByID(ctx, wager.ID)
		require.NoError(t, err)
		assert.Equal(t, models.WagerStatusWon, got.Status)
		assert.Equal(t, int64(260), got.TotalReturn)
	})
}

func TestWagerRepository_GetPlacedByMatchForUpdate(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	matchRepo := NewMatchRepository(testDB.DB)
	ctx := context.Background()

	user, err := userRepo.Create(ctx, "chidi", 100000)
	require.NoError(t, err)
	require.NoError(t, matchRepo.Upsert(ctx, testutil.CreateTestMatch("match-1")))

	poolRepo := NewWagerRepository(testDB.DB)
	placed := testutil.CreateTestWager("match-1", user.ID, models.OutcomeHome, 100)
	settled := testutil.CreateTestWager("match-1", user.ID, models.OutcomeAway, 200)
	require.NoError(t, poolRepo.Create(ctx, placed))
	require.NoError(t, poolRepo.Create(ctx, settled))

	settled.MarkLost(time.Now())
	applied, err := poolRepo.Settle(ctx, settled)
	require.NoError(t, err)
	require.True(t, applied)

	// Row locks need a transaction
	err = testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
		txRepo := newWagerRepositoryWithTx(tx)
		wagers, err := txRepo.GetPlacedByMatchForUpdate(ctx, "match-1")
		require.NoError(t, err)

		require.Len(t, wagers, 1)
		assert.Equal(t, placed.ID, wagers[0].ID)
		assert.Equal(t, models.WagerStatusPlaced, wagers[0].Status)
		return nil
	})
	require.NoError(t, err)
}

func TestMatchRepository_Upsert(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	matchRepo := NewMatchRepository(testDB.DB)
	ctx := context.Background()

	match := testutil.CreateTestMatch("match-1")
	require.NoError(t, matchRepo.Upsert(ctx, match))

	t.Run("upsert refreshes status and winner", func(t *testing.T) {
		winner := models.OutcomeAway
		update := testutil.CreateTestMatch("match-1")
		update.Status = models.MatchStatusCompleted
		update.WinnerOutcome = &winner
		require.NoError(t, matchRepo.Upsert(ctx, update))

		got, err := matchRepo.GetByID(ctx, "match-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, models.MatchStatusCompleted, got.Status)
		require.NotNil(t, got.WinnerOutcome)
		assert.Equal(t, models.OutcomeAway, *got.WinnerOutcome)
	})

	t.Run("mark settled survives later upserts", func(t *testing.T) {
		require.NoError(t, matchRepo.MarkSettled(ctx, "match-1", time.Now()))

		// A redelivered feed event must not clear settled_at
		winner := models.OutcomeAway
		update := testutil.CreateTestMatch("match-1")
		update.Status = models.MatchStatusCompleted
		update.WinnerOutcome = &winner
		require.NoError(t, matchRepo.Upsert(ctx, update))

		got, err := matchRepo.GetByID(ctx, "match-1")
		require.NoError(t, err)
		assert.NotNil(t, got.SettledAt)
	})

	t.Run("unknown match returns nil", func(t *testing.T) {
		got, err := matchRepo.GetByID(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestUnitOfWork_RollbackDiscardsWrites(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	matchRepo := NewMatchRepository(testDB.DB)
	ctx := context.Background()

	user, err := userRepo.Create(ctx, "dayo", 1000)
	require.NoError(t, err)
	require.NoError(t, matchRepo.Upsert(ctx, testutil.CreateTestMatch("match-1")))

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())
	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	wager := testutil.CreateTestWager("match-1", user.ID, models.OutcomeHome, 100)
	require.NoError(t, uow.WagerRepository().Create(ctx, wager))
	require.NoError(t, uow.UserRepository().Debit(ctx, user.ID, 100))
	require.NoError(t, uow.Rollback())

	// Neither the wager nor the debit survived
	got, err := userRepo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got.Balance)

	wagers, err := NewWagerRepository(testDB.DB).GetByMatch(ctx, "match-1")
	require.NoError(t, err)
	assert.Empty(t, wagers)
}
