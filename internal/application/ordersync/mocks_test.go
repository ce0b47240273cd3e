package ordersync

import (
	"context"
	"time"

	"github.com/kiendt120702/BTCShopee-sub000/internal/domain/ordersync"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of ordersync.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) StatusesBySN(ctx context.Context, shopID int64, orderSNs []string) (map[string]ordersync.OrderStatusInfo, error) {
	args := m.Called(ctx, shopID, orderSNs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]ordersync.OrderStatusInfo), args.Error(1)
}

func (m *MockOrderRepository) UpsertBatch(ctx context.Context, shopID int64, orders []ordersync.Order) (ordersync.UpsertResult, error) {
	args := m.Called(ctx, shopID, orders)
	return args.Get(0).(ordersync.UpsertResult), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, shopID int64) (int64, error) {
	args := m.Called(ctx, shopID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) LatestUpdateTime(ctx context.Context, shopID int64) (*time.Time, error) {
	args := m.Called(ctx, shopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockOrderRepository) AvailableMonths(ctx context.Context, shopID int64) ([]string, error) {
	args := m.Called(ctx, shopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockOrderRepository) EscrowCandidates(ctx context.Context, shopID int64, limit, offset int, includeFetched bool) ([]string, error) {
	args := m.Called(ctx, shopID, limit, offset, includeFetched)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockOrderRepository) CountEscrowCandidates(ctx context.Context, shopID int64, includeFetched bool) (int64, error) {
	args := m.Called(ctx, shopID, includeFetched)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) MarkEscrowFetched(ctx context.Context, shopID int64, orderSN string) error {
	args := m.Called(ctx, shopID, orderSN)
	return args.Error(0)
}

func (m *MockOrderRepository) EscrowFlagStats(ctx context.Context, shopID int64, month string) (int64, int64, error) {
	args := m.Called(ctx, shopID, month)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

// MockEscrowRepository is a mock implementation of ordersync.EscrowRepository
type MockEscrowRepository struct {
	mock.Mock
}

func (m *MockEscrowRepository) Upsert(ctx context.Context, escrow *ordersync.Escrow) error {
	args := m.Called(ctx, escrow)
	return args.Error(0)
}

func (m *MockEscrowRepository) Count(ctx context.Context, shopID int64, month string) (int64, error) {
	args := m.Called(ctx, shopID, month)
	return args.Get(0).(int64), args.Error(1)
}

// MockSyncStateRepository is a mock implementation of ordersync.SyncStateRepository
type MockSyncStateRepository struct {
	mock.Mock
}

func (m *MockSyncStateRepository) Get(ctx context.Context, shopID int64) (*ordersync.SyncState, error) {
	args := m.Called(ctx, shopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordersync.SyncState), args.Error(1)
}

func (m *MockSyncStateRepository) Acquire(ctx context.Context, shopID int64) (*ordersync.SyncState, error) {
	args := m.Called(ctx, shopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordersync.SyncState), args.Error(1)
}

func (m *MockSyncStateRepository) Release(ctx context.Context, state *ordersync.SyncState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

// MockMarketplaceGateway is a mock implementation of ordersync.MarketplaceGateway
type MockMarketplaceGateway struct {
	mock.Mock
}

func (m *MockMarketplaceGateway) ListOrders(ctx context.Context, shopID int64, query ordersync.OrderListQuery) (*ordersync.OrderListPage, error) {
	args := m.Called(ctx, shopID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordersync.OrderListPage), args.Error(1)
}

func (m *MockMarketplaceGateway) FetchOrderDetails(ctx context.Context, shopID int64, orderSNs []string) ([]ordersync.Order, error) {
	args := m.Called(ctx, shopID, orderSNs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ordersync.Order), args.Error(1)
}

func (m *MockMarketplaceGateway) FetchEscrowDetail(ctx context.Context, shopID int64, orderSN string) (*ordersync.Escrow, error) {
	args := m.Called(ctx, shopID, orderSN)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordersync.Escrow), args.Error(1)
}
