package ordersync

import (
	"context"
	"testing"

	"github.com/kiendt120702/BTCShopee-sub000/internal/domain/ordersync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newEscrowSyncFixture(config Config) (*EscrowSyncService, *MockOrderRepository, *MockEscrowRepository, *MockSyncStateRepository, *MockMarketplaceGateway) {
	orders := new(MockOrderRepository)
	escrows := new(MockEscrowRepository)
	states := new(MockSyncStateRepository)
	gateway := new(MockMarketplaceGateway)
	service := NewEscrowSyncService(orders, escrows, states, gateway, config, zap.NewNop())
	return service, orders, escrows, states, gateway
}

func TestEscrowSyncService_SyncEscrow(t *testing.T) {
	t.Run("mirrors settlement detail and marks the flag", func(t *testing.T) {
		service, orders, escrows, states, gateway := newEscrowSyncFixture(DefaultConfig())

		states.On("Acquire", mock.Anything, testShopID).Return(freshState(), nil)
		states.On("Release", mock.Anything, mock.Anything).Return(nil)

		detail := &ordersync.Escrow{ShopID: testShopID, OrderSN: "SN-001"}
		gateway.On("FetchEscrowDetail", mock.Anything, testShopID, "SN-001").Return(detail, nil)
		escrows.On("Upsert", mock.Anything, detail).Return(nil)
		orders.On("MarkEscrowFetched", mock.Anything, testShopID, "SN-001").Return(nil)

		result, err := service.SyncEscrow(context.Background(), testShopID, []string{"SN-001"})

		require.NoError(t, err)
		assert.Equal(t, 1, result.SyncedCount)
		assert.Zero(t, result.Failed)
		orders.AssertExpectations(t)
		escrows.AssertExpectations(t)
	})

	t.Run("not-ready settlement is a counted soft failure", func(t *testing.T) {
		service, orders, escrows, states, gateway := newEscrowSyncFixture(DefaultConfig())

		states.On("Acquire", mock.Anything, testShopID).Return(freshState(), nil)
		states.On("Release", mock.Anything, mock.Anything).Return(nil)

		gateway.On("FetchEscrowDetail", mock.Anything, testShopID, "SN-001").
			Return(nil, ordersync.ErrEscrowNotReady)
		detail := &ordersync.Escrow{ShopID: testShopID, OrderSN: "SN-002"}
		gateway.On("FetchEscrowDetail", mock.Anything, testShopID, "SN-002").Return(detail, nil)
		escrows.On("Upsert", mock.Anything, detail).Return(nil)
		orders.On("MarkEscrowFetched", mock.Anything, testShopID, "SN-002").Return(nil)

		result, err := service.SyncEscrow(context.Background(), testShopID, []string{"SN-001", "SN-002"})

		require.NoError(t, err)
		assert.Equal(t, 1, result.SyncedCount)
		assert.Equal(t, 1, result.Failed)
		// The failed order keeps its flag and stays a future candidate.
		orders.AssertNotCalled(t, "MarkEscrowFetched", mock.Anything, testShopID, "SN-001")
	})

	t.Run("hard failure aborts and persists the error", func(t *testing.T) {
		service, _, _, states, gateway := newEscrowSyncFixture(DefaultConfig())

		var released *ordersync.SyncState
		states.On("Acquire", mock.Anything, testShopID).Return(freshState(), nil)
		states.On("Release", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			released = args.Get(1).(*ordersync.SyncState)
		}).Return(nil)

		gateway.On("FetchEscrowDetail", mock.Anything, testShopID, "SN-001").
			Return(nil, assert.AnError)

		result, err := service.SyncEscrow(context.Background(), testShopID, []string{"SN-001"})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, assert.AnError)
		require.NotNil(t, released)
		assert.Contains(t, released.LastError, assert.AnError.Error())
	})

	t.Run("fails fast when another sync holds the lease", func(t *testing.T) {
		service, _, _, states, gateway := newEscrowSyncFixture(DefaultConfig())

		states.On("Acquire", mock.Anything, testShopID).Return(nil, ordersync.ErrSyncInProgress)

		result, err := service.SyncEscrow(context.Background(), testShopID, []string{"SN-001"})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, ordersync.ErrSyncInProgress)
		gateway.AssertNotCalled(t, "FetchEscrowDetail", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestEscrowSyncService_SyncAllEscrow(t *testing.T) {
	t.Run("pages over local candidates and reports progress", func(t *testing.T) {
		service, orders, escrows, states, gateway := newEscrowSyncFixture(DefaultConfig())

		states.On("Acquire", mock.Anything, testShopID).Return(freshState(), nil)
		states.On("Release", mock.Anything, mock.Anything).Return(nil)

		orders.On("CountEscrowCandidates", mock.Anything, testShopID, false).Return(int64(3), nil)
		orders.On("EscrowCandidates", mock.Anything, testShopID, 2, 0, false).
			Return([]string{"SN-001", "SN-002"}, nil)

		gateway.On("FetchEscrowDetail", mock.Anything, testShopID, "SN-001").
			Return(&ordersync.Escrow{ShopID: testShopID, OrderSN: "SN-001"}, nil)
		gateway.On("FetchEscrowDetail", mock.Anything, testShopID, "SN-002").
			Return(nil, ordersync.ErrEscrowNotReady)
		escrows.On("Upsert", mock.Anything, mock.Anything).Return(nil)
		orders.On("MarkEscrowFetched", mock.Anything, testShopID, "SN-001").Return(nil)

		result, err := service.SyncAllEscrow(context.Background(), testShopID, 2, 0, false)

		require.NoError(t, err)
		assert.Equal(t, 1, result.SyncedCount)
		assert.Equal(t, 1, result.Failed)
		assert.True(t, result.HasMore)
		require.NotNil(t, result.Progress)
		assert.Equal(t, int64(3), result.Progress.Total)
		assert.Equal(t, 0, result.Progress.Offset)
		assert.Equal(t, 2, result.Progress.NextOffset)
		assert.InDelta(t, 66.7, result.Progress.Percent, 0.1)
	})

	t.Run("exhausted candidate set reports completion", func(t *testing.T) {
		service, orders, _, states, _ := newEscrowSyncFixture(DefaultConfig())

		states.On("Acquire", mock.Anything, testShopID).Return(freshState(), nil)
		states.On("Release", mock.Anything, mock.Anything).Return(nil)

		orders.On("CountEscrowCandidates", mock.Anything, testShopID, false).Return(int64(2), nil)
		orders.On("EscrowCandidates", mock.Anything, testShopID, 20, 2, false).
			Return([]string{}, nil)

		result, err := service.SyncAllEscrow(context.Background(), testShopID, 0, 2, false)

		require.NoError(t, err)
		assert.False(t, result.HasMore)
		assert.Equal(t, 2, result.Progress.NextOffset)
		assert.InDelta(t, 100.0, result.Progress.Percent, 0.001)
	})

	t.Run("force includes already-fetched orders", func(t *testing.T) {
		service, orders, _, states, _ := newEscrowSyncFixture(DefaultConfig())

		states.On("Acquire", mock.Anything, testShopID).Return(freshState(), nil)
		states.On("Release", mock.Anything, mock.Anything).Return(nil)

		orders.On("CountEscrowCandidates", mock.Anything, testShopID, true).Return(int64(0), nil)
		orders.On("EscrowCandidates", mock.Anything, testShopID, 20, 0, true).
			Return([]string{}, nil)

		_, err := service.SyncAllEscrow(context.Background(), testShopID, 0, 0, true)

		require.NoError(t, err)
		orders.AssertExpectations(t)
	})
}

func TestEscrowSyncService_Stats(t *testing.T) {
	t.Run("escrow stats report flag coverage", func(t *testing.T) {
		service, orders, _, _, _ := newEscrowSyncFixture(DefaultConfig())

		orders.On("EscrowFlagStats", mock.Anything, testShopID, "2025-03").
			Return(int64(40), int64(25), nil)

		stats, err := service.EscrowStats(context.Background(), testShopID, "2025-03")

		require.NoError(t, err)
		assert.Equal(t, int64(40), stats.TotalEligible)
		assert.Equal(t, int64(25), stats.Synced)
		assert.Equal(t, int64(15), stats.Missing)
		assert.InDelta(t, 62.5, stats.Percent, 0.001)
	})

	t.Run("finance stats count mirrored settlement rows", func(t *testing.T) {
		service, orders, escrows, _, _ := newEscrowSyncFixture(DefaultConfig())

		orders.On("EscrowFlagStats", mock.Anything, testShopID, "").
			Return(int64(10), int64(8), nil)
		escrows.On("Count", mock.Anything, testShopID, "").Return(int64(6), nil)

		stats, err := service.FinanceStats(context.Background(), testShopID, "")

		require.NoError(t, err)
		assert.Equal(t, int64(6), stats.Synced)
		assert.Equal(t, int64(4), stats.Missing)
	})

	t.Run("rejects a malformed month", func(t *testing.T) {
		service, _, _, _, _ := newEscrowSyncFixture(DefaultConfig())

		_, err := service.EscrowStats(context.Background(), testShopID, "bad")
		assert.ErrorIs(t, err, ordersync.ErrInvalidMonth)

		_, err = service.FinanceStats(context.Background(), testShopID, "03-2025")
		assert.ErrorIs(t, err, ordersync.ErrInvalidMonth)
	})
}
