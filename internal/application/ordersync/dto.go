package ordersync

import (
	"time"

	"github.com/kiendt120702/BTCShopee-sub000/internal/domain/ordersync"
)

// SyncMode identifies how a window was selected for one invocation.
type SyncMode string

const (
	// SyncModeQuick is the first-time sync over a recent lookback window
	SyncModeQuick SyncMode = "quick"
	// SyncModePeriodic is the update-time-based incremental sync
	SyncModePeriodic SyncMode = "periodic"
	// SyncModeMonth is one chunk of a month walk
	SyncModeMonth SyncMode = "month"
	// SyncModeRange is one chunk of an arbitrary date range
	SyncModeRange SyncMode = "range"
)

// SyncResult reports the outcome of one synchronization invocation,
// including the resumption cursor when the span is not exhausted.
type SyncResult struct {
	Mode        SyncMode   `json:"mode"`
	Month       string     `json:"month,omitempty"`
	WindowStart *time.Time `json:"window_start,omitempty"`
	WindowEnd   *time.Time `json:"window_end,omitempty"`
	SyncedCount int        `json:"synced_count"`
	Inserted    int        `json:"inserted"`
	Updated     int        `json:"updated"`
	Failed      int        `json:"failed"`
	HasMore     bool       `json:"has_more"`
	// NextChunkEnd is the month-sync resumption cursor when HasMore
	NextChunkEnd *time.Time `json:"next_chunk_end,omitempty"`
	// ChunkIndex and NextChunkIndex are the range-sync position and
	// resumption cursor
	ChunkIndex     *int `json:"chunk_index,omitempty"`
	NextChunkIndex *int `json:"next_chunk_index,omitempty"`
	TotalChunks    int  `json:"total_chunks,omitempty"`
	// StoppedEarly reports that the execution budget interrupted the
	// window; the same window is re-entered on the next invocation
	StoppedEarly bool `json:"stopped_early,omitempty"`
}

// StatusResult is the sync-status view returned by the status action.
type StatusResult struct {
	ShopID          int64              `json:"shop_id"`
	IsSyncing       bool               `json:"is_syncing"`
	Phase           ordersync.SyncPhase `json:"phase"`
	Month           string             `json:"month,omitempty"`
	ChunkEnd        *time.Time         `json:"chunk_end,omitempty"`
	RangeStart      *time.Time         `json:"range_start,omitempty"`
	RangeEnd        *time.Time         `json:"range_end,omitempty"`
	ChunkIndex      int                `json:"chunk_index"`
	SyncedMonths    []string           `json:"synced_months"`
	LastSyncedAt    *time.Time         `json:"last_synced_at,omitempty"`
	LastError       string             `json:"last_error,omitempty"`
	TotalOrders     int64              `json:"total_orders"`
	AvailableMonths []string           `json:"available_months"`
}

// EscrowSyncResult reports the outcome of one escrow backfill invocation.
type EscrowSyncResult struct {
	SyncedCount int                       `json:"synced_count"`
	Failed      int                       `json:"failed"`
	HasMore     bool                      `json:"has_more"`
	Progress    *ordersync.EscrowProgress `json:"progress,omitempty"`
}

// windowStats accumulates per-window counters during a sync.
type windowStats struct {
	Synced   int
	Inserted int
	Updated  int
	Failed   int
}
