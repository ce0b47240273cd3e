package ordersync

import (
	"context"
	"time"
)

// OrderRepository is the persistence port for the order mirror.
type OrderRepository interface {
	// StatusesBySN returns the mirror's last-known (status, update_time)
	// for each of the given order serial numbers. Unknown keys are absent
	// from the map.
	StatusesBySN(ctx context.Context, shopID int64, orderSNs []string) (map[string]OrderStatusInfo, error)

	// UpsertBatch writes fully-detailed orders keyed by (shop_id,
	// order_sn) with update-on-conflict semantics and applies the
	// escrow-fetched flag reset rule. This is the only path that mutates
	// the order mirror.
	UpsertBatch(ctx context.Context, shopID int64, orders []Order) (UpsertResult, error)

	// Count returns the number of mirrored orders for the shop.
	Count(ctx context.Context, shopID int64) (int64, error)

	// LatestUpdateTime returns the maximum remote update_time mirrored
	// for the shop, or nil when the mirror is empty.
	LatestUpdateTime(ctx context.Context, shopID int64) (*time.Time, error)

	// AvailableMonths lists the distinct YYYY-MM months covered by
	// mirrored orders, most recent first.
	AvailableMonths(ctx context.Context, shopID int64) ([]string, error)

	// EscrowCandidates pages over orders in escrow-eligible statuses,
	// ordered by remote create time. When includeFetched is false, orders
	// whose escrow-fetched flag is already set are excluded.
	EscrowCandidates(ctx context.Context, shopID int64, limit, offset int, includeFetched bool) ([]string, error)

	// CountEscrowCandidates returns the total matching EscrowCandidates
	// for progress reporting, queried once per invocation.
	CountEscrowCandidates(ctx context.Context, shopID int64, includeFetched bool) (int64, error)

	// MarkEscrowFetched sets the escrow-fetched flag after a settlement
	// detail has been mirrored.
	MarkEscrowFetched(ctx context.Context, shopID int64, orderSN string) error

	// EscrowFlagStats returns the number of escrow-eligible orders and
	// how many of them have the escrow-fetched flag set, optionally
	// restricted to one YYYY-MM month of remote create time.
	EscrowFlagStats(ctx context.Context, shopID int64, month string) (eligible, fetched int64, err error)
}

// EscrowRepository is the persistence port for mirrored settlement detail.
type EscrowRepository interface {
	// Upsert writes one settlement record keyed by (shop_id, order_sn).
	Upsert(ctx context.Context, escrow *Escrow) error

	// Count returns the number of mirrored settlement records, optionally
	// restricted to one YYYY-MM month of fetch time.
	Count(ctx context.Context, shopID int64, month string) (int64, error)
}

// SyncStateRepository is the persistence port for the per-shop sync state,
// including the cooperative lease.
type SyncStateRepository interface {
	// Get returns the shop's state, or ErrStateNotFound.
	Get(ctx context.Context, shopID int64) (*SyncState, error)

	// Acquire takes the mutual-exclusion flag with a conditional write,
	// creating the state row on first use. Returns ErrSyncInProgress when
	// the flag is already held.
	Acquire(ctx context.Context, shopID int64) (*SyncState, error)

	// Release persists the state and clears the mutual-exclusion flag.
	// Called on every exit path of a holding invocation.
	Release(ctx context.Context, state *SyncState) error
}

// CredentialStore is the persistence port for shop API credentials.
type CredentialStore interface {
	// FindByShop returns the shop's credentials, or ErrCredentialNotFound.
	FindByShop(ctx context.Context, shopID int64) (*ShopCredential, error)

	// SaveTokens persists a refreshed token pair immediately so later
	// calls benefit from it.
	SaveTokens(ctx context.Context, shopID int64, accessToken, refreshToken string, expiresAt *time.Time) error
}
