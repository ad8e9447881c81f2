package service

import (
	"context"
	"testing"

	"fiveaside/events"
	"fiveaside/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_GetOrCreateUser_Existing(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockHistoryRepo := new(MockBalanceHistoryRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, mockHistoryRepo)

	service := NewUserService(mockFactory, 10000)

	existing := &models.User{ID: 1, Username: "ade", Balance: 7500}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockUserRepo.On("GetByUsername", ctx, "ade").Return(existing, nil)

	user, err := service.GetOrCreateUser(ctx, "ade")

	require.NoError(t, err)
	assert.Equal(t, existing, user)
	mockUserRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	mockHistoryRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestUserService_GetOrCreateUser_New(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockHistoryRepo := new(MockBalanceHistoryRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, mockHistoryRepo)

	service := NewUserService(mockFactory, 10000)

	created := &models.User{ID: 9, Username: "bisi", Balance: 10000}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockUserRepo.On("GetByUsername", ctx, "bisi").Return(nil, nil)
	mockUserRepo.On("Create", ctx, "bisi", int64(10000)).Return(created, nil)

	mockHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.UserID == 9 &&
			h.BalanceBefore == 0 &&
			h.BalanceAfter == 10000 &&
			h.ChangeAmount == 10000 &&
			h.TransactionType == models.TransactionTypeInitial
	})).Return(nil)

	user, err := service.GetOrCreateUser(ctx, "bisi")

	require.NoError(t, err)
	assert.Equal(t, created, user)

	var createdEvent *events.UserCreatedEvent
	for _, e := range mockUoW.PublishedEvents() {
		if ev, ok := e.(events.UserCreatedEvent); ok {
			createdEvent = &ev
		}
	}
	require.NotNil(t, createdEvent)
	assert.Equal(t, "bisi", createdEvent.Username)
	assert.Equal(t, int64(10000), createdEvent.InitialBalance)

	mockUserRepo.AssertExpectations(t)
	mockHistoryRepo.AssertExpectations(t)
}

func TestUserService_GetUser_NotFound(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, nil)

	service := NewUserService(mockFactory, 10000)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockUserRepo.On("GetByID", ctx, int64(404)).Return(nil, nil)

	user, err := service.GetUser(ctx, 404)

	assert.ErrorIs(t, err, models.ErrUserNotFound)
	assert.Nil(t, user)
}
