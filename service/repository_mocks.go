package service

import (
	"context"

	"dogshouse/events"
	"dogshouse/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, id int64, username string, referredBy *int64, initialBalance int64) (*models.Account, error) {
	args := m.Called(ctx, id, username, referredBy, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) ApplyDelta(ctx context.Context, id int64, delta int64) (int64, error) {
	args := m.Called(ctx, id, delta)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) ApplySettlement(ctx context.Context, id int64, delta int64, won bool) (int64, error) {
	args := m.Called(ctx, id, delta, won)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) ResetTotalWins(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccountRepository) SetBlocked(ctx context.Context, id int64, blocked bool) error {
	args := m.Called(ctx, id, blocked)
	return args.Error(0)
}

func (m *MockAccountRepository) AllIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockAccountRepository) CountAccounts(ctx context.Context) (int64, int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

// MockBalanceEntryRepository is a mock implementation of BalanceEntryRepository
type MockBalanceEntryRepository struct {
	mock.Mock
}

func (m *MockBalanceEntryRepository) Record(ctx context.Context, entry *models.BalanceEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockBalanceEntryRepository) GetByAccount(ctx context.Context, accountID int64, limit int) ([]*models.BalanceEntry, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceEntry), args.Error(1)
}

// MockSettlementRepository is a mock implementation of SettlementRepository
type MockSettlementRepository struct {
	mock.Mock
}

func (m *MockSettlementRepository) Create(ctx context.Context, record *models.SettlementRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockSettlementRepository) GetByAccount(ctx context.Context, accountID int64, limit int) ([]*models.SettlementRecord, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SettlementRecord), args.Error(1)
}

func (m *MockSettlementRepository) GetRecent(ctx context.Context, limit int) ([]*models.SettlementRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SettlementRecord), args.Error(1)
}

func (m *MockSettlementRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockWithdrawalRepository is a mock implementation of WithdrawalRepository
type MockWithdrawalRepository struct {
	mock.Mock
}

func (m *MockWithdrawalRepository) Create(ctx context.Context, request *models.WithdrawalRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WithdrawalRequest), args.Error(1)
}

func (m *MockWithdrawalRepository) ListPending(ctx context.Context) ([]*models.WithdrawalRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WithdrawalRequest), args.Error(1)
}

func (m *MockWithdrawalRepository) Resolve(ctx context.Context, id uuid.UUID, status models.WithdrawalStatus, rejectReason *string) (bool, error) {
	args := m.Called(ctx, id, status, rejectReason)
	return args.Bool(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// noopPublisher swallows events for tests that don't assert on them
type noopPublisher struct{}

func (noopPublisher) Publish(events.Event) {}

// MockUnitOfWork is a mock implementation of UnitOfWork. Begin, Commit and
// Rollback are expectation-driven; repository getters return whatever was
// installed via SetRepositories.
type MockUnitOfWork struct {
	mock.Mock

	accountRepo      AccountRepository
	balanceEntryRepo BalanceEntryRepository
	settlementRepo   SettlementRepository
	withdrawalRepo   WithdrawalRepository
	eventBus         EventPublisher
}

// SetRepositories installs the repositories the getters return
func (m *MockUnitOfWork) SetRepositories(
	accountRepo AccountRepository,
	balanceEntryRepo BalanceEntryRepository,
	settlementRepo SettlementRepository,
	withdrawalRepo WithdrawalRepository,
) {
	m.accountRepo = accountRepo
	m.balanceEntryRepo = balanceEntryRepo
	m.settlementRepo = settlementRepo
	m.withdrawalRepo = withdrawalRepo
}

// SetEventBus installs a publisher for tests that assert on emitted events
func (m *MockUnitOfWork) SetEventBus(bus EventPublisher) {
	m.eventBus = bus
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

func (m *MockUnitOfWork) AccountRepository() AccountRepository {
	return m.accountRepo
}

func (m *MockUnitOfWork) BalanceEntryRepository() BalanceEntryRepository {
	return m.balanceEntryRepo
}

func (m *MockUnitOfWork) SettlementRepository() SettlementRepository {
	return m.settlementRepo
}

func (m *MockUnitOfWork) WithdrawalRepository() WithdrawalRepository {
	return m.withdrawalRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventBus == nil {
		return noopPublisher{}
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
