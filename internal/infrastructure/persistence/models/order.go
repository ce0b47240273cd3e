package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kiendt120702/BTCShopee-sub000/internal/domain/ordersync"
)

// OrderModel is the persistence model for the mirrored Order entity.
// (shop_id, order_sn) is the natural conflict key for upserts.
type OrderModel struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"`
	ShopID      int64           `gorm:"not null;uniqueIndex:idx_orders_shop_sn,priority:1;index:idx_orders_shop_status,priority:1"`
	OrderSN     string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_orders_shop_sn,priority:2"`
	Status      string          `gorm:"type:varchar(32);not null;index:idx_orders_shop_status,priority:2"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	Currency    string          `gorm:"type:varchar(8)"`
	// OrderCreateTime and OrderUpdateTime are the platform's timestamps,
	// not local write times
	OrderCreateTime time.Time `gorm:"not null;index"`
	OrderUpdateTime time.Time `gorm:"not null;index"`
	Items           []byte    `gorm:"type:jsonb"`
	Packages        []byte    `gorm:"type:jsonb"`
	EscrowFetched   bool      `gorm:"not null;default:false;index:idx_orders_escrow_fetched"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *ordersync.Order {
	return &ordersync.Order{
		ShopID:        m.ShopID,
		OrderSN:       m.OrderSN,
		Status:        ordersync.OrderStatus(m.Status),
		TotalAmount:   m.TotalAmount,
		Currency:      m.Currency,
		CreateTime:    m.OrderCreateTime,
		UpdateTime:    m.OrderUpdateTime,
		Items:         m.Items,
		Packages:      m.Packages,
		EscrowFetched: m.EscrowFetched,
	}
}

// FromDomain populates the persistence model from a domain Order entity.
func (m *OrderModel) FromDomain(o *ordersync.Order) {
	m.ShopID = o.ShopID
	m.OrderSN = o.OrderSN
	m.Status = string(o.Status)
	m.TotalAmount = o.TotalAmount
	m.Currency = o.Currency
	m.OrderCreateTime = o.CreateTime
	m.OrderUpdateTime = o.UpdateTime
	m.Items = o.Items
	m.Packages = o.Packages
	m.EscrowFetched = o.EscrowFetched
}
