package ordersync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kiendt120702/BTCShopee-sub000/internal/domain/ordersync"
	"go.uber.org/zap"
)

// Config contains tuning for the synchronization services.
type Config struct {
	ChunkDays       int           // fixed window size for chunked spans
	PageSize        int           // order-list page size
	DetailBatchSize int           // order serial numbers per detail call
	WriteBatchSize  int           // rows per mirror write batch
	MaxDuration     time.Duration // invocation wall-clock ceiling
	MaxRecords      int           // invocation fetched-record cap
	QuickSyncDays   int           // lookback window for first-time sync
	PeriodicOverlap time.Duration // overlap behind last update_time
	EscrowBatchSize int           // escrow candidates per invocation
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		ChunkDays:       7,
		PageSize:        100,
		DetailBatchSize: ordersync.MaxDetailBatch,
		WriteBatchSize:  50,
		MaxDuration:     50 * time.Second,
		MaxRecords:      500,
		QuickSyncDays:   14,
		PeriodicOverlap: time.Hour,
		EscrowBatchSize: 20,
	}
}

// normalize clamps values the platform caps and fills unset fields.
func (c Config) normalize() Config {
	defaults := DefaultConfig()
	if c.ChunkDays <= 0 {
		c.ChunkDays = defaults.ChunkDays
	}
	if c.PageSize <= 0 {
		c.PageSize = defaults.PageSize
	}
	if c.DetailBatchSize <= 0 || c.DetailBatchSize > ordersync.MaxDetailBatch {
		c.DetailBatchSize = ordersync.MaxDetailBatch
	}
	if c.WriteBatchSize <= 0 {
		c.WriteBatchSize = defaults.WriteBatchSize
	}
	if c.QuickSyncDays <= 0 {
		c.QuickSyncDays = defaults.QuickSyncDays
	}
	if c.EscrowBatchSize <= 0 {
		c.EscrowBatchSize = defaults.EscrowBatchSize
	}
	return c
}

// OrderSyncService reconciles the local order mirror against the remote
// marketplace API: window planning, change-aware fetching, idempotent
// persistence and resumable cursor handling.
type OrderSyncService struct {
	orders  ordersync.OrderRepository
	states  ordersync.SyncStateRepository
	gateway ordersync.MarketplaceGateway
	config  Config
	logger  *zap.Logger
	now     func() time.Time
}

// NewOrderSyncService creates a new OrderSyncService
func NewOrderSyncService(
	orders ordersync.OrderRepository,
	states ordersync.SyncStateRepository,
	gateway ordersync.MarketplaceGateway,
	config Config,
	logger *zap.Logger,
) *OrderSyncService {
	return &OrderSyncService{
		orders:  orders,
		states:  states,
		gateway: gateway,
		config:  config.normalize(),
		logger:  logger,
		now:     time.Now,
	}
}

// Sync runs the automatic mode: a quick lookback sync when the mirror is
// empty, otherwise an incremental sync windowed on update_time from the
// latest mirrored change. An interrupted lookback leaves its window as a
// cursor and the next call re-enters it.
func (s *OrderSyncService) Sync(ctx context.Context, shopID int64) (*SyncResult, error) {
	state, err := s.states.Acquire(ctx, shopID)
	if err != nil {
		return nil, err
	}

	result, runErr := s.runAuto(ctx, state)
	s.release(ctx, state, runErr)
	if runErr != nil {
		return nil, runErr
	}
	return result, nil
}

func (s *OrderSyncService) runAuto(ctx context.Context, state *ordersync.SyncState) (*SyncResult, error) {
	now := s.now().UTC()

	var window Window
	mode := SyncModePeriodic
	switch {
	case state.Phase == ordersync.PhaseQuick && state.RangeStart != nil && state.RangeEnd != nil:
		// A tripped first-time sync left its lookback window behind;
		// re-enter it until it completes. Change detection skips orders
		// already mirrored, so each re-entry makes progress.
		mode = SyncModeQuick
		window = Window{Start: *state.RangeStart, End: *state.RangeEnd}
	default:
		start := now.AddDate(0, 0, -s.config.QuickSyncDays)
		latest, err := s.orders.LatestUpdateTime(ctx, state.ShopID)
		if err != nil {
			return nil, err
		}
		if latest == nil {
			mode = SyncModeQuick
		} else {
			start = latest.Add(-s.config.PeriodicOverlap)
		}
		window = Window{Start: start, End: now}
	}

	s.logger.Info("Starting order sync",
		zap.Int64("shop_id", state.ShopID),
		zap.String("mode", string(mode)),
		zap.Time("window_start", window.Start),
		zap.Time("window_end", window.End),
		zap.Int("window_days", window.Days()))

	budget := NewBudget(s.config.MaxDuration, s.config.MaxRecords)
	stats, stopped, err := s.syncWindow(ctx, state.ShopID, window, ordersync.TimeFieldUpdate, budget)
	if err != nil {
		return nil, err
	}

	switch {
	case state.Phase == ordersync.PhaseMonth || state.Phase == ordersync.PhaseRange:
		// An interrupted chunked span keeps its cursor; record the outcome
		// without clearing it.
		at := s.now()
		state.LastSyncedAt = &at
		state.LastError = ""
	case stopped && mode == SyncModeQuick:
		// First-time lookback needs a cursor: nothing is mirrored beyond
		// the record cap yet, so without one the next run would window on
		// update_time and skip the older remainder.
		state.BeginQuick(window.Start, window.End)
	default:
		// A tripped periodic budget leaves no cursor: the next periodic
		// run re-covers the span through the update-time overlap.
		state.MarkIdle(s.now())
	}

	return &SyncResult{
		Mode:         mode,
		WindowStart:  &window.Start,
		WindowEnd:    &window.End,
		SyncedCount:  stats.Synced,
		Inserted:     stats.Inserted,
		Updated:      stats.Updated,
		Failed:       stats.Failed,
		HasMore:      stopped,
		StoppedEarly: stopped,
	}, nil
}

// SyncMonth processes one chunk of a month walk. A nil chunkEnd starts (or
// restarts) the walk from the end of the month; otherwise the window
// ending at chunkEnd is processed.
func (s *OrderSyncService) SyncMonth(ctx context.Context, shopID int64, month string, chunkEnd *time.Time) (*SyncResult, error) {
	if err := ordersync.ValidateMonth(month); err != nil {
		return nil, err
	}

	state, err := s.states.Acquire(ctx, shopID)
	if err != nil {
		return nil, err
	}

	result, runErr := s.runMonthChunk(ctx, state, month, chunkEnd)
	s.release(ctx, state, runErr)
	if runErr != nil {
		return nil, runErr
	}
	return result, nil
}

// ContinueMonth resumes an in-progress month walk from the persisted
// cursor.
func (s *OrderSyncService) ContinueMonth(ctx context.Context, shopID int64) (*SyncResult, error) {
	state, err := s.states.Acquire(ctx, shopID)
	if err != nil {
		return nil, err
	}

	if state.Phase != ordersync.PhaseMonth || state.Month == "" {
		s.release(ctx, state, nil)
		return nil, ordersync.ErrNoSyncInProgress
	}

	result, runErr := s.runMonthChunk(ctx, state, state.Month, state.ChunkEnd)
	s.release(ctx, state, runErr)
	if runErr != nil {
		return nil, runErr
	}
	return result, nil
}

func (s *OrderSyncService) runMonthChunk(ctx context.Context, state *ordersync.SyncState, month string, chunkEnd *time.Time) (*SyncResult, error) {
	window, _, err := NextMonthWindow(month, chunkEnd, s.config.ChunkDays)
	if err != nil {
		return nil, err
	}
	monthStart, _, err := MonthBounds(month)
	if err != nil {
		return nil, err
	}

	// Persist the cursor at this window's end before doing any work, so
	// an interrupted invocation re-enters the same window.
	state.BeginMonth(month, &window.End)

	s.logger.Info("Starting month sync chunk",
		zap.Int64("shop_id", state.ShopID),
		zap.String("month", month),
		zap.Time("window_start", window.Start),
		zap.Time("window_end", window.End))

	budget := NewBudget(s.config.MaxDuration, s.config.MaxRecords)
	stats, stopped, err := s.syncWindow(ctx, state.ShopID, window, ordersync.TimeFieldCreate, budget)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{
		Mode:         SyncModeMonth,
		Month:        month,
		WindowStart:  &window.Start,
		WindowEnd:    &window.End,
		SyncedCount:  stats.Synced,
		Inserted:     stats.Inserted,
		Updated:      stats.Updated,
		Failed:       stats.Failed,
		StoppedEarly: stopped,
	}

	if stopped {
		// Same window is re-entered next time.
		result.HasMore = true
		result.NextChunkEnd = &window.End
		return result, nil
	}

	if window.Start.Equal(monthStart) {
		state.CompleteMonth(month, s.now())
		return result, nil
	}

	state.BeginMonth(month, &window.Start)
	result.HasMore = true
	result.NextChunkEnd = &window.Start
	return result, nil
}

// SyncDateRange processes one chunk of an arbitrary [start, end) span. The
// span is pre-split into fixed-size windows; a nil chunkIndex resumes from
// the persisted cursor when the same span is in progress, else starts at
// the first window.
func (s *OrderSyncService) SyncDateRange(ctx context.Context, shopID int64, start, end time.Time, chunkIndex *int) (*SyncResult, error) {
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: start %s is not before end %s",
			ordersync.ErrInvalidDateRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	state, err := s.states.Acquire(ctx, shopID)
	if err != nil {
		return nil, err
	}

	result, runErr := s.runRangeChunk(ctx, state, start.UTC(), end.UTC(), chunkIndex)
	s.release(ctx, state, runErr)
	if runErr != nil {
		return nil, runErr
	}
	return result, nil
}

func (s *OrderSyncService) runRangeChunk(ctx context.Context, state *ordersync.SyncState, start, end time.Time, chunkIndex *int) (*SyncResult, error) {
	windows := SplitRange(start, end, s.config.ChunkDays)

	index := 0
	switch {
	case chunkIndex != nil:
		index = *chunkIndex
	case state.Phase == ordersync.PhaseRange &&
		state.RangeStart != nil && state.RangeStart.Equal(start) &&
		state.RangeEnd != nil && state.RangeEnd.Equal(end):
		index = state.ChunkIndex
	}
	if index < 0 || index >= len(windows) {
		return nil, fmt.Errorf("%w: index %d of %d windows", ordersync.ErrInvalidChunkIndex, index, len(windows))
	}
	window := windows[index]

	// Cursor points at the window being processed until it completes.
	state.BeginRange(start, end, index)

	s.logger.Info("Starting date-range sync chunk",
		zap.Int64("shop_id", state.ShopID),
		zap.Int("chunk_index", index),
		zap.Int("total_chunks", len(windows)),
		zap.Time("window_start", window.Start),
		zap.Time("window_end", window.End))

	budget := NewBudget(s.config.MaxDuration, s.config.MaxRecords)
	stats, stopped, err := s.syncWindow(ctx, state.ShopID, window, ordersync.TimeFieldCreate, budget)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{
		Mode:         SyncModeRange,
		WindowStart:  &window.Start,
		WindowEnd:    &window.End,
		SyncedCount:  stats.Synced,
		Inserted:     stats.Inserted,
		Updated:      stats.Updated,
		Failed:       stats.Failed,
		ChunkIndex:   &index,
		TotalChunks:  len(windows),
		StoppedEarly: stopped,
	}

	if stopped {
		result.HasMore = true
		next := index
		result.NextChunkIndex = &next
		return result, nil
	}

	if index+1 < len(windows) {
		state.BeginRange(start, end, index+1)
		result.HasMore = true
		next := index + 1
		result.NextChunkIndex = &next
		return result, nil
	}

	state.MarkIdle(s.now())
	return result, nil
}

// Status returns the current sync state plus mirror-derived figures. It
// takes no lease so callers can poll during a running sync.
func (s *OrderSyncService) Status(ctx context.Context, shopID int64) (*StatusResult, error) {
	state, err := s.states.Get(ctx, shopID)
	if err != nil {
		if !errors.Is(err, ordersync.ErrStateNotFound) {
			return nil, err
		}
		state = &ordersync.SyncState{ShopID: shopID, Phase: ordersync.PhaseIdle}
	}

	total, err := s.orders.Count(ctx, shopID)
	if err != nil {
		return nil, err
	}
	months, err := s.orders.AvailableMonths(ctx, shopID)
	if err != nil {
		return nil, err
	}

	syncedMonths := state.SyncedMonths
	if syncedMonths == nil {
		syncedMonths = []string{}
	}
	if months == nil {
		months = []string{}
	}

	return &StatusResult{
		ShopID:          shopID,
		IsSyncing:       state.IsSyncing,
		Phase:           state.Phase,
		Month:           state.Month,
		ChunkEnd:        state.ChunkEnd,
		RangeStart:      state.RangeStart,
		RangeEnd:        state.RangeEnd,
		ChunkIndex:      state.ChunkIndex,
		SyncedMonths:    syncedMonths,
		LastSyncedAt:    state.LastSyncedAt,
		LastError:       state.LastError,
		TotalOrders:     total,
		AvailableMonths: months,
	}, nil
}

// syncWindow walks the remote list endpoint for one window, diffs each
// page against the mirror and fetches detail only for new or changed
// orders. Returns whether the execution budget stopped the walk early.
func (s *OrderSyncService) syncWindow(ctx context.Context, shopID int64, window Window, field ordersync.TimeRangeField, budget *Budget) (windowStats, bool, error) {
	var stats windowStats
	cursor := ""

	for {
		if budget.Exceeded() {
			s.logBudget(shopID, budget)
			return stats, true, nil
		}

		page, err := s.gateway.ListOrders(ctx, shopID, ordersync.OrderListQuery{
			TimeField: field,
			TimeFrom:  window.Start,
			TimeTo:    window.End,
			PageSize:  s.config.PageSize,
			Cursor:    cursor,
		})
		if err != nil {
			return stats, false, err
		}

		changed, err := s.filterChanged(ctx, shopID, page.Orders)
		if err != nil {
			return stats, false, err
		}

		for offset := 0; offset < len(changed); offset += s.config.DetailBatchSize {
			if budget.Exceeded() {
				s.logBudget(shopID, budget)
				return stats, true, nil
			}

			limit := offset + s.config.DetailBatchSize
			if limit > len(changed) {
				limit = len(changed)
			}
			orders, err := s.gateway.FetchOrderDetails(ctx, shopID, changed[offset:limit])
			if err != nil {
				return stats, false, err
			}
			budget.Add(len(orders))

			for from := 0; from < len(orders); from += s.config.WriteBatchSize {
				to := from + s.config.WriteBatchSize
				if to > len(orders) {
					to = len(orders)
				}
				written, err := s.orders.UpsertBatch(ctx, shopID, orders[from:to])
				if err != nil {
					return stats, false, err
				}
				stats.Inserted += written.Inserted
				stats.Updated += written.Updated
			}
			stats.Synced += len(orders)
		}

		if !page.More || page.NextCursor == "" {
			return stats, false, nil
		}
		cursor = page.NextCursor
	}
}

// filterChanged drops orders whose remote-reported status matches the
// mirror's stored status. Detail fetch is the expensive call; this is the
// core cost optimization.
func (s *OrderSyncService) filterChanged(ctx context.Context, shopID int64, keys []ordersync.OrderKey) ([]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	orderSNs := make([]string, len(keys))
	for i, key := range keys {
		orderSNs[i] = key.OrderSN
	}
	known, err := s.orders.StatusesBySN(ctx, shopID, orderSNs)
	if err != nil {
		return nil, err
	}

	changed := make([]string, 0, len(keys))
	for _, key := range keys {
		if existing, found := known[key.OrderSN]; found && existing.Status == key.Status {
			continue
		}
		changed = append(changed, key.OrderSN)
	}
	return changed, nil
}

func (s *OrderSyncService) logBudget(shopID int64, budget *Budget) {
	s.logger.Info("Execution budget reached, stopping early",
		zap.Int64("shop_id", shopID),
		zap.Duration("elapsed", budget.Elapsed()),
		zap.Int("records", budget.Records()))
}

// release persists the state and clears the lease on every exit path.
func (s *OrderSyncService) release(ctx context.Context, state *ordersync.SyncState, runErr error) {
	if runErr != nil {
		state.LastError = runErr.Error()
	}
	if err := s.states.Release(ctx, state); err != nil {
		s.logger.Error("Failed to release sync state",
			zap.Int64("shop_id", state.ShopID),
			zap.Error(err))
	}
}
