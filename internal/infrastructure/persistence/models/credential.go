package models

import (
	"time"

	"github.com/kiendt120702/BTCShopee-sub000/internal/domain/ordersync"
)

// ShopCredentialModel stores per-shop marketplace API credentials.
// Partner key and tokens are stored as-is; encryption at rest is the
// database's responsibility.
type ShopCredentialModel struct {
	ID           uint       `gorm:"primaryKey;autoIncrement"`
	ShopID       int64      `gorm:"not null;uniqueIndex:idx_shop_credentials_shop"`
	PartnerID    int64      `gorm:"not null"`
	PartnerKey   string     `gorm:"type:varchar(255);not null"`
	AccessToken  string     `gorm:"type:varchar(255)"`
	RefreshToken string     `gorm:"type:varchar(255)"`
	ExpiresAt    *time.Time `gorm:""`
	CreatedAt    time.Time  `gorm:"not null"`
	UpdatedAt    time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ShopCredentialModel) TableName() string {
	return "shop_credentials"
}

// ToDomain converts the persistence model to a domain ShopCredential.
func (m *ShopCredentialModel) ToDomain() *ordersync.ShopCredential {
	return &ordersync.ShopCredential{
		ShopID:       m.ShopID,
		PartnerID:    m.PartnerID,
		PartnerKey:   m.PartnerKey,
		AccessToken:  m.AccessToken,
		RefreshToken: m.RefreshToken,
		ExpiresAt:    m.ExpiresAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
