package ordersync

import (
	"context"
	"time"
)

// TimeRangeField selects which remote timestamp bounds a list query.
type TimeRangeField string

const (
	// TimeFieldCreate windows the query on order creation time; used by
	// month and date-range sync
	TimeFieldCreate TimeRangeField = "create_time"
	// TimeFieldUpdate windows the query on order update time; used by
	// quick and periodic sync
	TimeFieldUpdate TimeRangeField = "update_time"
)

// OrderListQuery is one page request against the platform's time-windowed,
// cursor-paginated order-list endpoint.
type OrderListQuery struct {
	TimeField TimeRangeField
	TimeFrom  time.Time
	TimeTo    time.Time
	PageSize  int
	// Cursor is the opaque pagination token from the previous page;
	// empty for the first page
	Cursor string
}

// OrderListPage is one page of list results: natural keys with the
// remote-reported status, plus the pagination position.
type OrderListPage struct {
	Orders     []OrderKey
	NextCursor string
	More       bool
}

// MarketplaceGateway is the port to the remote marketplace API. The
// implementation handles request signing, rate limiting and the
// one-shot token refresh on auth expiry.
type MarketplaceGateway interface {
	// ListOrders fetches one page of order keys for a time window.
	ListOrders(ctx context.Context, shopID int64, query OrderListQuery) (*OrderListPage, error)

	// FetchOrderDetails fetches full detail for up to MaxDetailBatch
	// orders in one call.
	FetchOrderDetails(ctx context.Context, shopID int64, orderSNs []string) ([]Order, error)

	// FetchEscrowDetail fetches the settlement breakdown for one order.
	// Returns ErrEscrowNotReady when the platform has not computed it yet.
	FetchEscrowDetail(ctx context.Context, shopID int64, orderSN string) (*Escrow, error)
}

// MaxDetailBatch is the platform's cap on order serial numbers per
// detail call.
const MaxDetailBatch = 50
