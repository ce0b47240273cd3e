package persistence

import (
	"context"

	"github.com/kiendt120702/BTCShopee-sub000/internal/domain/ordersync"
	"github.com/kiendt120702/BTCShopee-sub000/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormEscrowRepository implements ordersync.EscrowRepository using GORM
type GormEscrowRepository struct {
	db *gorm.DB
}

// NewGormEscrowRepository creates a new GormEscrowRepository
func NewGormEscrowRepository(db *gorm.DB) *GormEscrowRepository {
	return &GormEscrowRepository{db: db}
}

var _ ordersync.EscrowRepository = (*GormEscrowRepository)(nil)

// Upsert writes one settlement record keyed by (shop_id, order_sn).
// Re-fetching is allowed; the latest detail wins.
func (r *GormEscrowRepository) Upsert(ctx context.Context, escrow *ordersync.Escrow) error {
	var model models.EscrowModel
	model.FromDomain(escrow)

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "shop_id"}, {Name: "order_sn"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"escrow_amount", "buyer_total_amount", "seller_discount",
			"platform_discount", "commission_fee", "service_fee",
			"transaction_fee", "tax", "currency", "items", "adjustments",
			"fetched_at", "updated_at",
		}),
	}).Create(&model).Error
}

// Count returns the number of mirrored settlement records, optionally
// restricted to one YYYY-MM month of fetch time.
func (r *GormEscrowRepository) Count(ctx context.Context, shopID int64, month string) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.EscrowModel{}).
		Where("shop_id = ?", shopID)
	if month != "" {
		query = query.Where("to_char(fetched_at, 'YYYY-MM') = ?", month)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}
