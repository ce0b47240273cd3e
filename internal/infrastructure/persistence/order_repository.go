package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/kiendt120702/BTCShopee-sub000/internal/domain/ordersync"
	"github.com/kiendt120702/BTCShopee-sub000/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements ordersync.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

var _ ordersync.OrderRepository = (*GormOrderRepository)(nil)

// statusRow is the projection used for change detection lookups.
type statusRow struct {
	OrderSN         string
	Status          string
	OrderUpdateTime time.Time
}

// StatusesBySN returns the mirror's last-known (status, update_time) for
// each of the given order serial numbers.
func (r *GormOrderRepository) StatusesBySN(ctx context.Context, shopID int64, orderSNs []string) (map[string]ordersync.OrderStatusInfo, error) {
	result := make(map[string]ordersync.OrderStatusInfo, len(orderSNs))
	if len(orderSNs) == 0 {
		return result, nil
	}

	var rows []statusRow
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Select("order_sn", "status", "order_update_time").
		Where("shop_id = ? AND order_sn IN ?", shopID, orderSNs).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.OrderSN] = ordersync.OrderStatusInfo{
			Status:     ordersync.OrderStatus(row.Status),
			UpdateTime: row.OrderUpdateTime,
		}
	}
	return result, nil
}

// UpsertBatch writes fully-detailed orders with update-on-conflict
// semantics. New rows start with the escrow-fetched flag cleared; existing
// rows only have the flag cleared on the transition into COMPLETED.
func (r *GormOrderRepository) UpsertBatch(ctx context.Context, shopID int64, orders []ordersync.Order) (ordersync.UpsertResult, error) {
	var result ordersync.UpsertResult
	if len(orders) == 0 {
		return result, nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orderSNs := make([]string, len(orders))
		for i, o := range orders {
			orderSNs[i] = o.OrderSN
		}

		var rows []statusRow
		if err := tx.Model(&models.OrderModel{}).
			Select("order_sn", "status", "order_update_time").
			Where("shop_id = ? AND order_sn IN ?", shopID, orderSNs).
			Find(&rows).Error; err != nil {
			return err
		}
		existing := make(map[string]ordersync.OrderStatus, len(rows))
		for _, row := range rows {
			existing[row.OrderSN] = ordersync.OrderStatus(row.Status)
		}

		var inserts []models.OrderModel
		for i := range orders {
			order := orders[i]
			previous, found := existing[order.OrderSN]
			if !found {
				var model models.OrderModel
				model.FromDomain(&order)
				model.EscrowFetched = false
				inserts = append(inserts, model)
				continue
			}

			updates := map[string]interface{}{
				"status":            string(order.Status),
				"total_amount":      order.TotalAmount,
				"currency":          order.Currency,
				"order_create_time": order.CreateTime,
				"order_update_time": order.UpdateTime,
				"items":             order.Items,
				"packages":          order.Packages,
			}
			if ordersync.NeedsEscrowReset(previous, order.Status) {
				updates["escrow_fetched"] = false
			}
			if err := tx.Model(&models.OrderModel{}).
				Where("shop_id = ? AND order_sn = ?", shopID, order.OrderSN).
				Updates(updates).Error; err != nil {
				return err
			}
			result.Updated++
		}

		if len(inserts) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "shop_id"}, {Name: "order_sn"}},
				DoNothing: true,
			}).Create(&inserts).Error; err != nil {
				return err
			}
			result.Inserted += len(inserts)
		}
		return nil
	})
	if err != nil {
		return ordersync.UpsertResult{}, err
	}
	return result, nil
}

// Count returns the number of mirrored orders for the shop
func (r *GormOrderRepository) Count(ctx context.Context, shopID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("shop_id = ?", shopID).
		Count(&count).Error
	return count, err
}

// LatestUpdateTime returns the maximum remote update_time mirrored for the
// shop, or nil when the mirror is empty.
func (r *GormOrderRepository) LatestUpdateTime(ctx context.Context, shopID int64) (*time.Time, error) {
	var latest sql.NullTime
	err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Select("MAX(order_update_time)").
		Where("shop_id = ?", shopID).
		Scan(&latest).Error
	if err != nil {
		return nil, err
	}
	if !latest.Valid {
		return nil, nil
	}
	return &latest.Time, nil
}

// AvailableMonths lists the distinct YYYY-MM months covered by mirrored
// orders, most recent first.
func (r *GormOrderRepository) AvailableMonths(ctx context.Context, shopID int64) ([]string, error) {
	var months []string
	err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Distinct("to_char(order_create_time, 'YYYY-MM')").
		Where("shop_id = ?", shopID).
		Order("to_char(order_create_time, 'YYYY-MM') DESC").
		Pluck("to_char(order_create_time, 'YYYY-MM')", &months).Error
	if err != nil {
		return nil, err
	}
	return months, nil
}

// escrowCandidateQuery builds the shared filter for escrow candidate
// selection and counting.
func (r *GormOrderRepository) escrowCandidateQuery(ctx context.Context, shopID int64, includeFetched bool) *gorm.DB {
	statuses := make([]string, len(ordersync.EscrowEligibleStatuses))
	for i, s := range ordersync.EscrowEligibleStatuses {
		statuses[i] = string(s)
	}

	query := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("shop_id = ? AND status IN ?", shopID, statuses)
	if !includeFetched {
		query = query.Where("escrow_fetched = ?", false)
	}
	return query
}

// EscrowCandidates pages over orders in escrow-eligible statuses, ordered
// by remote create time.
func (r *GormOrderRepository) EscrowCandidates(ctx context.Context, shopID int64, limit, offset int, includeFetched bool) ([]string, error) {
	var orderSNs []string
	err := r.escrowCandidateQuery(ctx, shopID, includeFetched).
		Order("order_create_time ASC").
		Limit(limit).
		Offset(offset).
		Pluck("order_sn", &orderSNs).Error
	if err != nil {
		return nil, err
	}
	return orderSNs, nil
}

// CountEscrowCandidates returns the total matching EscrowCandidates
func (r *GormOrderRepository) CountEscrowCandidates(ctx context.Context, shopID int64, includeFetched bool) (int64, error) {
	var count int64
	err := r.escrowCandidateQuery(ctx, shopID, includeFetched).Count(&count).Error
	return count, err
}

// MarkEscrowFetched sets the escrow-fetched flag after settlement detail
// has been mirrored for the order.
func (r *GormOrderRepository) MarkEscrowFetched(ctx context.Context, shopID int64, orderSN string) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("shop_id = ? AND order_sn = ?", shopID, orderSN).
		Update("escrow_fetched", true).Error
}

// EscrowFlagStats returns how many escrow-eligible orders exist and how
// many of them have the escrow-fetched flag set, optionally restricted to
// one YYYY-MM month of remote create time.
func (r *GormOrderRepository) EscrowFlagStats(ctx context.Context, shopID int64, month string) (int64, int64, error) {
	statuses := make([]string, len(ordersync.EscrowEligibleStatuses))
	for i, s := range ordersync.EscrowEligibleStatuses {
		statuses[i] = string(s)
	}

	base := func() *gorm.DB {
		query := r.db.WithContext(ctx).
			Model(&models.OrderModel{}).
			Where("shop_id = ? AND status IN ?", shopID, statuses)
		if month != "" {
			query = query.Where("to_char(order_create_time, 'YYYY-MM') = ?", month)
		}
		return query
	}

	var eligible int64
	if err := base().Count(&eligible).Error; err != nil {
		return 0, 0, err
	}
	var fetched int64
	if err := base().Where("escrow_fetched = ?", true).Count(&fetched).Error; err != nil {
		return 0, 0, err
	}
	return eligible, fetched, nil
}
