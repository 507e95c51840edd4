//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.Payment{},
		&models.OrderItem{},
		&models.Order{},
		&models.ProductSKU{},
		&models.Product{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := models.MigrateAll(db); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresConcurrentStockDecrement(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewProductSKURepository(db)

	product := &models.Product{Name: "pg tee", IsActive: true}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	sku := &models.ProductSKU{ProductID: product.ID, SKUCode: "PG-TEE", PriceAmount: models.NewMoneyFromInt(100), Stock: 10, IsActive: true}
	if err := repo.Create(sku); err != nil {
		t.Fatalf("create sku failed: %v", err)
	}

	var success int64
	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = db.Transaction(func(tx *gorm.DB) error {
				affected, err := repo.WithTx(tx).DecrementStock(sku.ID, 1)
				if err != nil {
					return err
				}
				if affected == 1 {
					atomic.AddInt64(&success, 1)
				}
				return nil
			})
		}()
	}
	wg.Wait()

	got, err := repo.GetByID(sku.ID)
	if err != nil {
		t.Fatalf("reload sku failed: %v", err)
	}
	if success != 10 || got.Stock != 0 {
		t.Fatalf("want 10 successes and zero stock, got success=%d stock=%d", success, got.Stock)
	}
}

func TestPostgresOrderForUpdateAndKeywordSearch(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewOrderRepository(db)

	order := &models.Order{
		OrderNo:       "SFPG0001",
		CustomerID:    1,
		Source:        constants.OrderSourceCustomer,
		ReceiverName:  "Nguyen Van A",
		PaymentMethod: constants.PaymentMethodCOD,
		Platform:      constants.PlatformWeb,
		Status:        constants.OrderStatusPending,
	}
	if err := repo.Create(order, nil); err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		locked, err := repo.WithTx(tx).GetByIDForUpdate(order.ID)
		if err != nil {
			return err
		}
		if locked == nil || locked.OrderNo != "SFPG0001" {
			t.Fatalf("unexpected locked order: %+v", locked)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("for update tx failed: %v", err)
	}

	rows, total, err := repo.ListStaff(OrderListFilter{Keyword: "nguyen", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("keyword search failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("ILIKE search want 1 got total=%d len=%d", total, len(rows))
	}
}
