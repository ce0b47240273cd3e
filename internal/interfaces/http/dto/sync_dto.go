package dto

import "time"

// Sync action names dispatched by the sync endpoint
const (
	ActionSync              = "sync"
	ActionSyncMonth         = "sync-month"
	ActionContinueMonthSync = "continue-month-sync"
	ActionSyncDateRange     = "sync-date-range"
	ActionStatus            = "status"
	ActionSyncEscrow        = "sync-escrow"
	ActionSyncAllEscrow     = "sync-all-escrow"
	ActionFinanceStats      = "finance-stats"
	ActionEscrowStats       = "escrow-stats"
)

// SyncActionRequest is the single JSON body accepted by the sync
// endpoint, dispatched on Action. Fields beyond Action and ShopID are
// action-specific.
type SyncActionRequest struct {
	Action string `json:"action" binding:"required"`
	ShopID int64  `json:"shop_id" binding:"required"`

	// Month identifies a YYYY-MM month for sync-month and the stats
	// actions
	Month string `json:"month,omitempty"`
	// ChunkEnd is the optional month-sync resumption cursor
	ChunkEnd *time.Time `json:"chunk_end,omitempty"`

	// StartDate and EndDate bound a date-range sync (YYYY-MM-DD)
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	// ChunkIndex is the optional date-range resumption cursor
	ChunkIndex *int `json:"chunk_index,omitempty"`

	// OrderSNs is the explicit order list for sync-escrow
	OrderSNs []string `json:"order_sns,omitempty"`
	// BatchSize and Offset position a sync-all-escrow invocation
	BatchSize int `json:"batch_size,omitempty"`
	Offset    int `json:"offset,omitempty"`
	// Force re-fetches settlement detail for already-fetched orders
	Force bool `json:"force,omitempty"`
}

// DateLayout is the wire format for StartDate and EndDate
const DateLayout = "2006-01-02"
