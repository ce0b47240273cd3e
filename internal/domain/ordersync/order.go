package ordersync

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle status of a marketplace order as
// reported by the Shopee Open API.
type OrderStatus string

const (
	OrderStatusUnpaid         OrderStatus = "UNPAID"
	OrderStatusReadyToShip    OrderStatus = "READY_TO_SHIP"
	OrderStatusProcessed      OrderStatus = "PROCESSED"
	OrderStatusShipped        OrderStatus = "SHIPPED"
	OrderStatusCompleted      OrderStatus = "COMPLETED"
	OrderStatusInCancel       OrderStatus = "IN_CANCEL"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
	OrderStatusToReturn       OrderStatus = "TO_RETURN"
	OrderStatusInvoicePending OrderStatus = "INVOICE_PENDING"
)

// IsValid returns true if the status is one of the known lifecycle statuses.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusUnpaid, OrderStatusReadyToShip, OrderStatusProcessed,
		OrderStatusShipped, OrderStatusCompleted, OrderStatusInCancel,
		OrderStatusCancelled, OrderStatusToReturn, OrderStatusInvoicePending:
		return true
	default:
		return false
	}
}

// IsTerminal returns true for the terminal "completed" state. Settlement
// detail only becomes available once an order reaches this state.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted
}

// String returns the string representation of OrderStatus.
func (s OrderStatus) String() string {
	return string(s)
}

// EscrowEligibleStatuses are the statuses for which settlement detail is
// worth requesting from the platform.
var EscrowEligibleStatuses = []OrderStatus{
	OrderStatusShipped,
	OrderStatusCompleted,
}

// Order is the local mirror of one marketplace order. It is keyed by
// (ShopID, OrderSN); OrderSN is the externally issued order serial number.
// Orders are only ever written by the upsert writer and never deleted.
type Order struct {
	// ShopID is the marketplace shop this order belongs to
	ShopID int64
	// OrderSN is the platform-issued order serial number (natural key)
	OrderSN string
	// Status is the lifecycle status reported by the platform
	Status OrderStatus
	// TotalAmount is the nominal order total
	TotalAmount decimal.Decimal
	// Currency is the ISO currency code of TotalAmount
	Currency string
	// CreateTime is the order creation time on the platform
	CreateTime time.Time
	// UpdateTime is the last modification time on the platform. It is the
	// source of truth for change detection, not a local write timestamp.
	UpdateTime time.Time
	// Items is the raw line-item payload from the platform
	Items []byte
	// Packages is the raw shipping-package payload from the platform
	Packages []byte
	// EscrowFetched reports whether settlement detail has been mirrored
	// for this order. Reset on creation and on the transition into
	// COMPLETED; untouched by any other update.
	EscrowFetched bool
}

// OrderKey is the minimal projection of an order returned by the list
// endpoint: the natural key plus the remote-reported status.
type OrderKey struct {
	OrderSN string
	Status  OrderStatus
}

// OrderStatusInfo is the mirror's last-known state for one order, used by
// change detection to decide whether a detail fetch is needed.
type OrderStatusInfo struct {
	Status     OrderStatus
	UpdateTime time.Time
}

// UpsertResult reports the outcome of one batched write.
type UpsertResult struct {
	Inserted int
	Updated  int
}

// NeedsEscrowReset applies the escrow-fetched flag reset rule: the flag is
// cleared when an order first transitions into the terminal state from any
// other status. New orders always start with the flag cleared.
func NeedsEscrowReset(previous OrderStatus, next OrderStatus) bool {
	return next.IsTerminal() && !previous.IsTerminal()
}
