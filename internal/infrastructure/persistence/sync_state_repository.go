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

// GormSyncStateRepository implements ordersync.SyncStateRepository using
// GORM. The mutual-exclusion flag is taken with a conditional update so
// that concurrent invocations race on the database, not on process memory.
type GormSyncStateRepository struct {
	db *gorm.DB
}

// NewGormSyncStateRepository creates a new GormSyncStateRepository
func NewGormSyncStateRepository(db *gorm.DB) *GormSyncStateRepository {
	return &GormSyncStateRepository{db: db}
}

var _ ordersync.SyncStateRepository = (*GormSyncStateRepository)(nil)

// Get returns the shop's sync state, or ErrStateNotFound.
func (r *GormSyncStateRepository) Get(ctx context.Context, shopID int64) (*ordersync.SyncState, error) {
	var model models.SyncStateModel
	if err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ordersync.ErrStateNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Acquire takes the mutual-exclusion flag, creating the state row on first
// use. Returns ErrSyncInProgress when another invocation already holds it.
func (r *GormSyncStateRepository) Acquire(ctx context.Context, shopID int64) (*ordersync.SyncState, error) {
	seed := models.SyncStateModel{
		ShopID:       shopID,
		Phase:        string(ordersync.PhaseIdle),
		SyncedMonths: "[]",
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "shop_id"}},
		DoNothing: true,
	}).Create(&seed).Error; err != nil {
		return nil, err
	}

	result := r.db.WithContext(ctx).
		Model(&models.SyncStateModel{}).
		Where("shop_id = ? AND is_syncing = ?", shopID, false).
		Updates(map[string]interface{}{
			"is_syncing": true,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ordersync.ErrSyncInProgress
	}

	state, err := r.Get(ctx, shopID)
	if err != nil {
		return nil, err
	}
	state.IsSyncing = true
	return state, nil
}

// Release persists the state and clears the mutual-exclusion flag.
func (r *GormSyncStateRepository) Release(ctx context.Context, state *ordersync.SyncState) error {
	var model models.SyncStateModel
	model.FromDomain(state)
	model.IsSyncing = false

	return r.db.WithContext(ctx).
		Model(&models.SyncStateModel{}).
		Where("shop_id = ?", state.ShopID).
		Updates(map[string]interface{}{
			"is_syncing":     false,
			"phase":          model.Phase,
			"month":          model.Month,
			"chunk_end":      model.ChunkEnd,
			"range_start":    model.RangeStart,
			"range_end":      model.RangeEnd,
			"chunk_index":    model.ChunkIndex,
			"synced_months":  model.SyncedMonths,
			"last_synced_at": model.LastSyncedAt,
			"last_error":     model.LastError,
			"updated_at":     time.Now(),
		}).Error
}
