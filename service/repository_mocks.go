package service

import (
	"context"
	"time"

	"fiveaside/events"
	"fiveaside/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, username string, initialBalance int64) (*models.User, error) {
	args := m.Called(ctx, username, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Credit(ctx context.Context, id int64, amount int64) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockUserRepository) Debit(ctx context.Context, id int64, amount int64) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

// MockWagerRepository is a mock implementation of WagerRepository
type MockWagerRepository struct {
	mock.Mock
}

func (m *MockWagerRepository) Create(ctx context.Context, wager *models.Wager) error {
	args := m.Called(ctx, wager)
	return args.Error(0)
}

func (m *MockWagerRepository) GetByID(ctx context.Context, id int64) (*models.Wager, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wager), args.Error(1)
}

func (m *MockWagerRepository) GetByMatch(ctx context.Context, matchID string) ([]*models.Wager, error) {
	args := m.Called(ctx, matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Wager), args.Error(1)
}

func (m *MockWagerRepository) GetByOwner(ctx context.Context, ownerID int64, limit int) ([]*models.Wager, error) {
	args := m.Called(ctx, ownerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Wager), args.Error(1)
}

func (m *MockWagerRepository) GetPoolByMatch(ctx context.Context, matchID string) (models.Pool, error) {
	args := m.Called(ctx, matchID)
	return args.Get(0).(models.Pool), args.Error(1)
}

func (m *MockWagerRepository) GetPlacedByMatchForUpdate(ctx context.Context, matchID string) ([]*models.Wager, error) {
	args := m.Called(ctx, matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Wager), args.Error(1)
}

func (m *MockWagerRepository) Settle(ctx context.Context, wager *models.Wager) (bool, error) {
	args := m.Called(ctx, wager)
	return args.Bool(0), args.Error(1)
}

// MockMatchRepository is a mock implementation of MatchRepository
type MockMatchRepository struct {
	mock.Mock
}

func (m *MockMatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Match), args.Error(1)
}

func (m *MockMatchRepository) Upsert(ctx context.Context, match *models.Match) error {
	args := m.Called(ctx, match)
	return args.Error(0)
}

func (m *MockMatchRepository) MarkSettled(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockMatchRepository) ListRecent(ctx context.Context, limit int) ([]*models.Match, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Match), args.Error(1)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

// capturingEventBus collects events published inside a unit of work so tests
// can assert on them without a real bus.
type capturingEventBus struct {
	published []events.Event
}

func (b *capturingEventBus) Publish(event events.Event) {
	b.published = append(b.published, event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repository getters
// return whatever was wired via SetRepositories rather than going through
// testify, since getter calls are not interesting expectations.
type MockUnitOfWork struct {
	mock.Mock

	userRepo           UserRepository
	wagerRepo          WagerRepository
	matchRepo          MatchRepository
	balanceHistoryRepo BalanceHistoryRepository
	eventBus           *capturingEventBus
}

// SetRepositories wires the repositories the unit of work hands out. Nil is
// fine for repositories a test never touches.
func (m *MockUnitOfWork) SetRepositories(userRepo UserRepository, wagerRepo WagerRepository, matchRepo MatchRepository, balanceHistoryRepo BalanceHistoryRepository) {
	m.userRepo = userRepo
	m.wagerRepo = wagerRepo
	m.matchRepo = matchRepo
	m.balanceHistoryRepo = balanceHistoryRepo
	m.eventBus = &capturingEventBus{}
}

// PublishedEvents returns the events published through this unit of work.
func (m *MockUnitOfWork) PublishedEvents() []events.Event {
	if m.eventBus == nil {
		return nil
	}
	return m.eventBus.published
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	return m.userRepo
}

func (m *MockUnitOfWork) WagerRepository() WagerRepository {
	return m.wagerRepo
}

func (m *MockUnitOfWork) MatchRepository() MatchRepository {
	return m.matchRepo
}

func (m *MockUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository {
	return m.balanceHistoryRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventBus == nil {
		m.eventBus = &capturingEventBus{}
	}
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockPoolCache is a mock implementation of PoolCache
type MockPoolCache struct {
	mock.Mock
}

func (m *MockPoolCache) Get(ctx context.Context, matchID string) (models.Pool, bool) {
	args := m.Called(ctx, matchID)
	return args.Get(0).(models.Pool), args.Bool(1)
}

func (m *MockPoolCache) Set(ctx context.Context, matchID string, pool models.Pool) {
	m.Called(ctx, matchID, pool)
}

func (m *MockPoolCache) Invalidate(ctx context.Context, matchID string) {
	m.Called(ctx, matchID)
}
