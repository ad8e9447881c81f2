package service

import (
	"context"
	"testing"

	"fiveaside/events"
	"fiveaside/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestBettingService_PlaceWager(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockWagerRepo := new(MockWagerRepository)
	mockMatchRepo := new(MockMatchRepository)
	mockHistoryRepo := new(MockBalanceHistoryRepository)

	mockUoW.SetRepositories(mockUserRepo, mockWagerRepo, mockMatchRepo, mockHistoryRepo)

	service := NewBettingService(mockFactory, nil)

	match := &models.Match{
		ID:     "match-1",
		TeamA:  "Thunder FC",
		TeamB:  "Lightning SC",
		Status: models.MatchStatusInProgress,
	}
	user := &models.User{
		ID:       7,
		Username: "ade",
		Balance:  500,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockMatchRepo.On("GetByID", ctx, "match-1").Return(match, nil)
	mockUserRepo.On("GetByID", ctx, int64(7)).Return(user, nil)

	// Pool before this wager joins: 100 on home, 200 on away.
	mockWagerRepo.On("GetPoolByMatch", ctx, "match-1").Return(models.Pool{Home: 100, Away: 200}, nil)

	mockWagerRepo.On("Create", ctx, mock.MatchedBy(func(w *models.Wager) bool {
		// 50 + floor(50*200/100) = 150 raw, winnings 100, fee 20, payout 130
		return w.MatchID == "match-1" &&
			w.OwnerID == 7 &&
			w.Outcome == models.OutcomeHome &&
			w.Stake == 50 &&
			w.PotentialPayout == 130 &&
			w.EffectiveOdds == 2.6
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Wager).ID = 11
	})

	mockUserRepo.On("Debit", ctx, int64(7), int64(50)).Return(nil)

	mockHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.UserID == 7 &&
			h.BalanceBefore == 500 &&
			h.BalanceAfter == 450 &&
			h.ChangeAmount == -50 &&
			h.TransactionType == models.TransactionTypeWagerStake &&
			h.RelatedID != nil && *h.RelatedID == 11
	})).Return(nil)

	wager, err := service.PlaceWager(ctx, "match-1", 7, models.OutcomeHome, 50)

	assert.NoError(t, err)
	assert.NotNil(t, wager)
	assert.Equal(t, int64(11), wager.ID)
	assert.Equal(t, int64(130), wager.PotentialPayout)

	var placed *events.WagerPlacedEvent
	for _, e := range mockUoW.PublishedEvents() {
		if ev, ok := e.(events.WagerPlacedEvent); ok {
			placed = &ev
		}
	}
	assert.NotNil(t, placed)
	assert.Equal(t, int64(11), placed.WagerID)
	assert.Equal(t, int64(130), placed.PotentialPayout)

	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
	mockWagerRepo.AssertExpectations(t)
	mockMatchRepo.AssertExpectations(t)
	mockHistoryRepo.AssertExpectations(t)
}

func TestBettingService_PlaceWager_InsufficientBalance(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockWagerRepo := new(MockWagerRepository)
	mockMatchRepo := new(MockMatchRepository)
	mockHistoryRepo := new(MockBalanceHistoryRepository)

	mockUoW.SetRepositories(mockUserRepo, mockWagerRepo, mockMatchRepo, mockHistoryRepo)

	service := NewBettingService(mockFactory, nil)

	match := &models.Match{ID: "match-1", Status: models.MatchStatusInProgress}
	user := &models.User{ID: 7, Username: "ade", Balance: 30}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockMatchRepo.On("GetByID", ctx, "match-1").Return(match, nil)
	mockUserRepo.On("GetByID", ctx, int64(7)).Return(user, nil)

	wager, err := service.PlaceWager(ctx, "match-1", 7, models.OutcomeHome, 50)

	assert.ErrorIs(t, err, models.ErrInsufficientBalance)
	assert.Nil(t, wager)
	assert.Empty(t, mockUoW.PublishedEvents())

	// Nothing was written and nothing was committed
	mockWagerRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockUserRepo.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestBettingService_PlaceWager_InvalidStake(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	service := NewBettingService(mockFactory, nil)

	for _, stake := range []int64{0, -5} {
		wager, err := service.PlaceWager(ctx, "match-1", 7, models.OutcomeHome, stake)
		assert.ErrorIs(t, err, models.ErrInvalidStake)
		assert.Nil(t, wager)
	}

	// Validation fails before any transaction is opened
	mockFactory.AssertNotCalled(t, "Create")
}

func TestBettingService_PlaceWager_InvalidOutcome(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	service := NewBettingService(mockFactory, nil)

	wager, err := service.PlaceWager(ctx, "match-1", 7, models.Outcome("banana"), 50)
	assert.ErrorIs(t, err, models.ErrInvalidOutcome)
	assert.Nil(t, wager)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestBettingService_PlaceWager_MatchNotOpen(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockMatchRepo := new(MockMatchRepository)

	mockUoW.SetRepositories(nil, nil, mockMatchRepo, nil)

	service := NewBettingService(mockFactory, nil)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	for _, status := range []models.MatchStatus{models.MatchStatusScheduled, models.MatchStatusCompleted} {
		match := &models.Match{ID: "match-1", Status: status}
		mockMatchRepo.ExpectedCalls = nil
		mockMatchRepo.On("GetByID", ctx, "match-1").Return(match, nil)

		wager, err := service.PlaceWager(ctx, "match-1", 7, models.OutcomeHome, 50)
		assert.ErrorIs(t, err, models.ErrMatchNotOpen)
		assert.Nil(t, wager)
	}
}

func TestBettingService_PlaceWager_MatchNotFound(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockMatchRepo := new(MockMatchRepository)

	mockUoW.SetRepositories(nil, nil, mockMatchRepo, nil)

	service := NewBettingService(mockFactory, nil)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockMatchRepo.On("GetByID", ctx, "nope").Return(nil, nil)

	wager, err := service.PlaceWager(ctx, "nope", 7, models.OutcomeHome, 50)
	assert.ErrorIs(t, err, models.ErrMatchNotFound)
	assert.Nil(t, wager)
}

func TestBettingService_GetPool_CacheHit(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	mockCache := new(MockPoolCache)

	service := NewBettingService(mockFactory, mockCache)

	cached := models.Pool{Home: 100, Away: 200, Draw: 50}
	mockCache.On("Get", ctx, "match-1").Return(cached, true)

	pool, err := service.GetPool(ctx, "match-1")

	assert.NoError(t, err)
	assert.Equal(t, cached, pool)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestBettingService_GetPool_CacheMiss(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockWagerRepo := new(MockWagerRepository)
	mockCache := new(MockPoolCache)

	mockUoW.SetRepositories(nil, mockWagerRepo, nil, nil)

	service := NewBettingService(mockFactory, mockCache)

	fresh := models.Pool{Home: 300, Away: 100}
	mockCache.On("Get", ctx, "match-1").Return(models.Pool{}, false)
	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockWagerRepo.On("GetPoolByMatch", ctx, "match-1").Return(fresh, nil)
	mockCache.On("Set", ctx, "match-1", fresh).Return()

	pool, err := service.GetPool(ctx, "match-1")

	assert.NoError(t, err)
	assert.Equal(t, fresh, pool)
	mockCache.AssertExpectations(t)
}

func TestBettingService_PreviewPayout(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockWagerRepo := new(MockWagerRepository)

	mockUoW.SetRepositories(nil, mockWagerRepo, nil, nil)

	service := NewBettingService(mockFactory, nil)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockWagerRepo.On("GetPoolByMatch", ctx, "match-1").Return(models.Pool{Home: 100, Away: 200}, nil)

	payout, odds, err := service.PreviewPayout(ctx, "match-1", models.OutcomeHome, 50)

	assert.NoError(t, err)
	assert.Equal(t, int64(130), payout)
	assert.Equal(t, 2.6, odds)
}
