package main

import (
	"context"
	"errors"
	"log"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/service"

	"gorm.io/gorm"
)

type seedSKU struct {
	Code  string
	Price int64
	Stock int
}

type seedProduct struct {
	Name     string
	Brand    string
	Category string
	SKUs     []seedSKU
}

var seedProducts = []seedProduct{
	{Name: "Áo thun cotton", Brand: "Coolmate", Category: "Thời trang", SKUs: []seedSKU{
		{Code: "TEE-WHITE-M", Price: 199000, Stock: 120},
		{Code: "TEE-WHITE-L", Price: 199000, Stock: 80},
		{Code: "TEE-BLACK-M", Price: 209000, Stock: 60},
	}},
	{Name: "Bình giữ nhiệt 500ml", Brand: "Lock&Lock", Category: "Gia dụng", SKUs: []seedSKU{
		{Code: "FLASK-500-SILVER", Price: 350000, Stock: 40},
	}},
	{Name: "Tai nghe không dây", Brand: "Soundpeats", Category: "Điện tử", SKUs: []seedSKU{
		{Code: "EARBUD-AIR3", Price: 890000, Stock: 25},
		{Code: "EARBUD-AIR3-PRO", Price: 1290000, Stock: 3},
	}},
}

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, false); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}
	if err := models.InitDefaultRanks(); err != nil {
		stdLog.Fatalf("Failed to create ranks: %v", err)
	}
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		stdLog.Printf("redis unavailable, rank cache not cleared: %v", err)
	} else {
		if err := service.InvalidateRankCache(context.Background()); err != nil {
			stdLog.Printf("clear rank cache failed: %v", err)
		}
		defer cache.Close()
	}

	brandIDs := map[string]uint{}
	categoryIDs := map[string]uint{}
	for _, item := range seedProducts {
		if _, ok := brandIDs[item.Brand]; !ok {
			brand := models.Brand{Name: item.Brand}
			if err := models.DB.Where("name = ?", item.Brand).FirstOrCreate(&brand).Error; err != nil {
				stdLog.Fatalf("Failed to create brand %s: %v", item.Brand, err)
			}
			brandIDs[item.Brand] = brand.ID
		}
		if _, ok := categoryIDs[item.Category]; !ok {
			category := models.Category{Name: item.Category}
			if err := models.DB.Where("name = ?", item.Category).FirstOrCreate(&category).Error; err != nil {
				stdLog.Fatalf("Failed to create category %s: %v", item.Category, err)
			}
			categoryIDs[item.Category] = category.ID
		}
	}

	var firstSKU uint
	for _, item := range seedProducts {
		product := models.Product{
			Name:       item.Name,
			BrandID:    brandIDs[item.Brand],
			CategoryID: categoryIDs[item.Category],
			IsActive:   true,
		}
		if err := models.DB.Where("name = ?", item.Name).FirstOrCreate(&product).Error; err != nil {
			stdLog.Fatalf("Failed to create product %s: %v", item.Name, err)
		}
		for _, s := range item.SKUs {
			sku, created, err := ensureSKU(product.ID, s)
			if err != nil {
				stdLog.Printf("Failed to create sku %s: %v", s.Code, err)
				continue
			}
			if firstSKU == 0 {
				firstSKU = sku.ID
			}
			if created {
				stdLog.Printf("Created sku: %s", s.Code)
			} else {
				stdLog.Printf("SKU already exists: %s", s.Code)
			}
		}
	}

	seedShippers(stdLog)
	seedPromotion(stdLog, brandIDs["Coolmate"])
	seedVoucher(stdLog)
	stdLog.Printf("Seed finished, first sku id=%d", firstSKU)
}

func ensureSKU(productID uint, s seedSKU) (*models.ProductSKU, bool, error) {
	var existing models.ProductSKU
	err := models.DB.Where("sku_code = ?", s.Code).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	sku := &models.ProductSKU{
		ProductID:   productID,
		SKUCode:     s.Code,
		PriceAmount: models.NewMoneyFromInt(s.Price),
		Stock:       s.Stock,
		IsActive:    true,
	}
	if err := models.DB.Create(sku).Error; err != nil {
		return nil, false, err
	}
	return sku, true, nil
}

func seedShippers(stdLog *log.Logger) {
	for _, shipper := range []models.Shipper{
		{Name: "Trần Văn Bình", Phone: "0901234567", IsActive: true},
		{Name: "Lê Thị Cúc", Phone: "0912345678", IsActive: true},
	} {
		row := shipper
		if err := models.DB.Where("phone = ?", shipper.Phone).FirstOrCreate(&row).Error; err != nil {
			stdLog.Printf("Failed to create shipper %s: %v", shipper.Name, err)
		}
	}
}

func seedPromotion(stdLog *log.Logger, brandID uint) {
	priority := 1
	promotion := models.Promotion{
		Name:            "Coolmate tuần lễ vàng",
		DiscountPercent: models.NewMoneyFromInt(15),
		Priority:        &priority,
		ScopeType:       constants.PromotionScopeScoped,
		IsActive:        true,
	}
	var existing models.Promotion
	if err := models.DB.Where("name = ?", promotion.Name).First(&existing).Error; err == nil {
		stdLog.Printf("Promotion already exists: %s", promotion.Name)
		return
	}
	promotion.Targets = []models.PromotionTarget{{TargetType: constants.PromotionTargetBrand, TargetID: brandID}}
	if err := models.DB.Create(&promotion).Error; err != nil {
		stdLog.Printf("Failed to create promotion: %v", err)
		return
	}
	stdLog.Printf("Created promotion: %s", promotion.Name)
}

func seedVoucher(stdLog *log.Logger) {
	maxDiscount := models.NewMoneyFromInt(50000)
	voucher := models.Voucher{
		Code:              "WELCOME10",
		DiscountPercent:   models.NewMoneyFromInt(10),
		MinOrderAmount:    models.NewMoneyFromInt(300000),
		MaxDiscountAmount: &maxDiscount,
		AudienceType:      constants.VoucherAudienceAll,
		IsActive:          true,
	}
	if err := models.DB.Where("code = ?", voucher.Code).FirstOrCreate(&voucher).Error; err != nil {
		stdLog.Printf("Failed to create voucher: %v", err)
		return
	}
	stdLog.Printf("Voucher ready: %s", voucher.Code)
}
