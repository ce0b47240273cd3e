package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/kiendt120702/BTCShopee-sub000/internal/domain/ordersync"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockEscrowRepository creates a GormEscrowRepository with a mocked SQL connection
func newMockEscrowRepository(t *testing.T) (*GormEscrowRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormEscrowRepository(gormDB), mock, mockDB
}

func TestGormEscrowRepository_Upsert(t *testing.T) {
	t.Run("writes settlement with update-on-conflict", func(t *testing.T) {
		repo, mock, mockDB := newMockEscrowRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`INSERT INTO "escrows" .* ON CONFLICT \("shop_id","order_sn"\) DO UPDATE SET .*"fetched_at".*RETURNING "id"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

		err := repo.Upsert(context.Background(), &ordersync.Escrow{
			ShopID:           77,
			OrderSN:          "SN-001",
			EscrowAmount:     decimal.NewFromFloat(92.40),
			BuyerTotalAmount: decimal.NewFromFloat(105.00),
			CommissionFee:    decimal.NewFromFloat(6.30),
			ServiceFee:       decimal.NewFromFloat(4.20),
			Currency:         "VND",
			FetchedAt:        time.Now(),
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormEscrowRepository_Count(t *testing.T) {
	t.Run("counts all settlements for a shop", func(t *testing.T) {
		repo, mock, mockDB := newMockEscrowRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "escrows" WHERE shop_id = \$1`).
			WithArgs(int64(77)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

		count, err := repo.Count(context.Background(), 77, "")

		assert.NoError(t, err)
		assert.Equal(t, int64(12), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("restricts to one month of fetch time", func(t *testing.T) {
		repo, mock, mockDB := newMockEscrowRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "escrows" WHERE shop_id = \$1 AND to_char\(fetched_at, 'YYYY-MM'\) = \$2`).
			WithArgs(int64(77), "2025-03").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

		count, err := repo.Count(context.Background(), 77, "2025-03")

		assert.NoError(t, err)
		assert.Equal(t, int64(4), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
