package ordersync

import (
	"context"
	"errors"
	"time"

	"github.com/kiendt120702/BTCShopee-sub000/internal/domain/ordersync"
	"go.uber.org/zap"
)

// EscrowSyncService backfills settlement detail for eligible orders. It
// paginates over the local mirror rather than a remote time window and is
// reconciled with the order sync only through the escrow-fetched flag.
type EscrowSyncService struct {
	orders  ordersync.OrderRepository
	escrows ordersync.EscrowRepository
	states  ordersync.SyncStateRepository
	gateway ordersync.MarketplaceGateway
	config  Config
	logger  *zap.Logger
	now     func() time.Time
}

// NewEscrowSyncService creates a new EscrowSyncService
func NewEscrowSyncService(
	orders ordersync.OrderRepository,
	escrows ordersync.EscrowRepository,
	states ordersync.SyncStateRepository,
	gateway ordersync.MarketplaceGateway,
	config Config,
	logger *zap.Logger,
) *EscrowSyncService {
	return &EscrowSyncService{
		orders:  orders,
		escrows: escrows,
		states:  states,
		gateway: gateway,
		config:  config.normalize(),
		logger:  logger,
		now:     time.Now,
	}
}

// SyncEscrow backfills settlement detail for an explicit list of orders.
func (s *EscrowSyncService) SyncEscrow(ctx context.Context, shopID int64, orderSNs []string) (*EscrowSyncResult, error) {
	state, err := s.states.Acquire(ctx, shopID)
	if err != nil {
		return nil, err
	}

	result, runErr := s.syncList(ctx, shopID, orderSNs)
	s.release(ctx, state, runErr)
	if runErr != nil {
		return nil, runErr
	}
	return result, nil
}

// SyncAllEscrow backfills one batch of candidates selected from the local
// mirror: escrow-eligible statuses, excluding already-fetched orders
// unless force is set. Progress is computed against a total queried once
// per invocation.
func (s *EscrowSyncService) SyncAllEscrow(ctx context.Context, shopID int64, batchSize, offset int, force bool) (*EscrowSyncResult, error) {
	if batchSize <= 0 {
		batchSize = s.config.EscrowBatchSize
	}
	if offset < 0 {
		offset = 0
	}

	state, err := s.states.Acquire(ctx, shopID)
	if err != nil {
		return nil, err
	}

	result, runErr := s.syncBatch(ctx, shopID, batchSize, offset, force)
	s.release(ctx, state, runErr)
	if runErr != nil {
		return nil, runErr
	}
	return result, nil
}

func (s *EscrowSyncService) syncBatch(ctx context.Context, shopID int64, batchSize, offset int, force bool) (*EscrowSyncResult, error) {
	total, err := s.orders.CountEscrowCandidates(ctx, shopID, force)
	if err != nil {
		return nil, err
	}

	candidates, err := s.orders.EscrowCandidates(ctx, shopID, batchSize, offset, force)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Starting escrow backfill batch",
		zap.Int64("shop_id", shopID),
		zap.Int("offset", offset),
		zap.Int("candidates", len(candidates)),
		zap.Int64("total", total))

	result, err := s.syncList(ctx, shopID, candidates)
	if err != nil {
		return nil, err
	}

	nextOffset := offset + len(candidates)
	percent := 100.0
	if total > 0 {
		percent = float64(nextOffset) / float64(total) * 100
		if percent > 100 {
			percent = 100
		}
	}
	result.HasMore = int64(nextOffset) < total && len(candidates) > 0
	result.Progress = &ordersync.EscrowProgress{
		Total:      total,
		Offset:     offset,
		NextOffset: nextOffset,
		HasMore:    result.HasMore,
		Percent:    percent,
	}
	return result, nil
}

// syncList fetches settlement detail sequentially for each order. A
// not-ready settlement is a soft failure: counted, skipped, and the order
// stays a candidate for a future batch.
func (s *EscrowSyncService) syncList(ctx context.Context, shopID int64, orderSNs []string) (*EscrowSyncResult, error) {
	result := &EscrowSyncResult{}

	for _, orderSN := range orderSNs {
		escrow, err := s.gateway.FetchEscrowDetail(ctx, shopID, orderSN)
		if err != nil {
			if errors.Is(err, ordersync.ErrEscrowNotReady) {
				s.logger.Debug("Settlement detail not ready",
					zap.Int64("shop_id", shopID),
					zap.String("order_sn", orderSN))
				result.Failed++
				continue
			}
			return nil, err
		}

		if err := s.escrows.Upsert(ctx, escrow); err != nil {
			return nil, err
		}
		if err := s.orders.MarkEscrowFetched(ctx, shopID, orderSN); err != nil {
			return nil, err
		}
		result.SyncedCount++
	}
	return result, nil
}

// FinanceStats reports settlement-record coverage: mirrored escrow rows
// against escrow-eligible orders, optionally for one month.
func (s *EscrowSyncService) FinanceStats(ctx context.Context, shopID int64, month string) (*ordersync.EscrowStats, error) {
	if month != "" {
		if err := ordersync.ValidateMonth(month); err != nil {
			return nil, err
		}
	}

	eligible, _, err := s.orders.EscrowFlagStats(ctx, shopID, month)
	if err != nil {
		return nil, err
	}
	synced, err := s.escrows.Count(ctx, shopID, month)
	if err != nil {
		return nil, err
	}
	return buildEscrowStats(eligible, synced), nil
}

// EscrowStats reports escrow-fetched flag coverage over eligible orders,
// optionally for one month.
func (s *EscrowSyncService) EscrowStats(ctx context.Context, shopID int64, month string) (*ordersync.EscrowStats, error) {
	if month != "" {
		if err := ordersync.ValidateMonth(month); err != nil {
			return nil, err
		}
	}

	eligible, fetched, err := s.orders.EscrowFlagStats(ctx, shopID, month)
	if err != nil {
		return nil, err
	}
	return buildEscrowStats(eligible, fetched), nil
}

func buildEscrowStats(eligible, synced int64) *ordersync.EscrowStats {
	missing := eligible - synced
	if missing < 0 {
		missing = 0
	}
	percent := 100.0
	if eligible > 0 {
		percent = float64(synced) / float64(eligible) * 100
		if percent > 100 {
			percent = 100
		}
	}
	return &ordersync.EscrowStats{
		TotalEligible: eligible,
		Synced:        synced,
		Missing:       missing,
		Percent:       percent,
	}
}

func (s *EscrowSyncService) release(ctx context.Context, state *ordersync.SyncState, runErr error) {
	if runErr != nil {
		state.LastError = runErr.Error()
	}
	if err := s.states.Release(ctx, state); err != nil {
		s.logger.Error("Failed to release sync state",
			zap.Int64("shop_id", state.ShopID),
			zap.Error(err))
	}
}
