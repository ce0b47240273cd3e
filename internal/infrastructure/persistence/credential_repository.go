package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/kiendt120702/BTCShopee-sub000/internal/domain/ordersync"
	"github.com/kiendt120702/BTCShopee-sub000/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCredentialRepository implements ordersync.CredentialStore using GORM
type GormCredentialRepository struct {
	db *gorm.DB
}

// NewGormCredentialRepository creates a new GormCredentialRepository
func NewGormCredentialRepository(db *gorm.DB) *GormCredentialRepository {
	return &GormCredentialRepository{db: db}
}

var _ ordersync.CredentialStore = (*GormCredentialRepository)(nil)

// FindByShop returns the shop's credentials, or ErrCredentialNotFound.
func (r *GormCredentialRepository) FindByShop(ctx context.Context, shopID int64) (*ordersync.ShopCredential, error) {
	var model models.ShopCredentialModel
	if err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ordersync.ErrCredentialNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// SaveTokens persists a refreshed token pair for the shop. Shops running
// on the process-default credentials have no row yet, so this is an
// upsert; a row inserted here carries a zero partner id, which the client
// resolves back to the process defaults.
func (r *GormCredentialRepository) SaveTokens(ctx context.Context, shopID int64, accessToken, refreshToken string, expiresAt *time.Time) error {
	model := models.ShopCredentialModel{
		ShopID:       shopID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "shop_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"access_token", "refresh_token", "expires_at", "updated_at",
		}),
	}).Create(&model).Error
}
