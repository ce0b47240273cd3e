package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kiendt120702/BTCShopee-sub000/internal/domain/ordersync"
)

// EscrowModel is the persistence model for mirrored settlement detail,
// one-to-one with OrderModel by (shop_id, order_sn).
type EscrowModel struct {
	ID               uint            `gorm:"primaryKey;autoIncrement"`
	ShopID           int64           `gorm:"not null;uniqueIndex:idx_escrows_shop_sn,priority:1"`
	OrderSN          string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_escrows_shop_sn,priority:2"`
	EscrowAmount     decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	BuyerTotalAmount decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	SellerDiscount   decimal.Decimal `gorm:"type:numeric(18,4)"`
	PlatformDiscount decimal.Decimal `gorm:"type:numeric(18,4)"`
	CommissionFee    decimal.Decimal `gorm:"type:numeric(18,4)"`
	ServiceFee       decimal.Decimal `gorm:"type:numeric(18,4)"`
	TransactionFee   decimal.Decimal `gorm:"type:numeric(18,4)"`
	Tax              decimal.Decimal `gorm:"type:numeric(18,4)"`
	Currency         string          `gorm:"type:varchar(8)"`
	Items            []byte          `gorm:"type:jsonb"`
	Adjustments      []byte          `gorm:"type:jsonb"`
	FetchedAt        time.Time       `gorm:"not null;index"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (EscrowModel) TableName() string {
	return "escrows"
}

// ToDomain converts the persistence model to a domain Escrow entity.
func (m *EscrowModel) ToDomain() *ordersync.Escrow {
	return &ordersync.Escrow{
		ShopID:           m.ShopID,
		OrderSN:          m.OrderSN,
		EscrowAmount:     m.EscrowAmount,
		BuyerTotalAmount: m.BuyerTotalAmount,
		SellerDiscount:   m.SellerDiscount,
		PlatformDiscount: m.PlatformDiscount,
		CommissionFee:    m.CommissionFee,
		ServiceFee:       m.ServiceFee,
		TransactionFee:   m.TransactionFee,
		Tax:              m.Tax,
		Currency:         m.Currency,
		Items:            m.Items,
		Adjustments:      m.Adjustments,
		FetchedAt:        m.FetchedAt,
	}
}

// FromDomain populates the persistence model from a domain Escrow entity.
func (m *EscrowModel) FromDomain(e *ordersync.Escrow) {
	m.ShopID = e.ShopID
	m.OrderSN = e.OrderSN
	m.EscrowAmount = e.EscrowAmount
	m.BuyerTotalAmount = e.BuyerTotalAmount
	m.SellerDiscount = e.SellerDiscount
	m.PlatformDiscount = e.PlatformDiscount
	m.CommissionFee = e.CommissionFee
	m.ServiceFee = e.ServiceFee
	m.TransactionFee = e.TransactionFee
	m.Tax = e.Tax
	m.Currency = e.Currency
	m.Items = e.Items
	m.Adjustments = e.Adjustments
	m.FetchedAt = e.FetchedAt
}
