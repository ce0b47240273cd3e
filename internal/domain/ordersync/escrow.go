package ordersync

import (
	"time"

	"github.com/shopspring/decimal"
)

// Escrow is the settlement detail for one completed order: the realized
// income breakdown as opposed to the nominal order total. One-to-one with
// Order by (ShopID, OrderSN). An escrow record is only created after a
// successful detail fetch; a failed fetch produces no record.
type Escrow struct {
	// ShopID is the marketplace shop this settlement belongs to
	ShopID int64
	// OrderSN is the platform-issued order serial number (natural key)
	OrderSN string
	// EscrowAmount is the net payout to the seller
	EscrowAmount decimal.Decimal
	// BuyerTotalAmount is the amount the buyer actually paid
	BuyerTotalAmount decimal.Decimal
	// SellerDiscount is the discount funded by the seller
	SellerDiscount decimal.Decimal
	// PlatformDiscount is the discount funded by the platform
	PlatformDiscount decimal.Decimal
	// CommissionFee is the platform commission charged on the order
	CommissionFee decimal.Decimal
	// ServiceFee is the platform service fee
	ServiceFee decimal.Decimal
	// TransactionFee is the payment processing fee
	TransactionFee decimal.Decimal
	// Tax is the withheld tax amount
	Tax decimal.Decimal
	// Currency is the ISO currency code for all amounts
	Currency string
	// Items is the raw per-line-item income attribution payload
	Items []byte
	// Adjustments is the raw adjustment history payload
	Adjustments []byte
	// FetchedAt is when the settlement detail was mirrored locally
	FetchedAt time.Time
}

// EscrowProgress reports the position of one escrow backfill invocation
// over the local mirror.
type EscrowProgress struct {
	Total      int64   `json:"total"`
	Offset     int     `json:"offset"`
	NextOffset int     `json:"next_offset"`
	HasMore    bool    `json:"has_more"`
	Percent    float64 `json:"percent"`
}

// EscrowStats are aggregate settlement-coverage counts for a shop,
// optionally restricted to one month.
type EscrowStats struct {
	TotalEligible int64   `json:"total_eligible"`
	Synced        int64   `json:"synced"`
	Missing       int64   `json:"missing"`
	Percent       float64 `json:"percent"`
}
