package repository

import (
	"errors"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// ProductSKURepository 商品 SKU 数据访问接口
type ProductSKURepository interface {
	GetByID(id uint) (*models.ProductSKU, error)
	ListByIDs(ids []uint) ([]models.ProductSKU, error)
	Create(item *models.ProductSKU) error
	Update(item *models.ProductSKU) error
	DecrementStock(skuID uint, quantity int) (int64, error)
	RestoreStock(skuID uint, quantity int) (int64, error)
	WithTx(tx *gorm.DB) ProductSKURepository
}

// GormProductSKURepository GORM 实现
type GormProductSKURepository struct {
	db *gorm.DB
}

// NewProductSKURepository 创建 SKU 仓库
func NewProductSKURepository(db *gorm.DB) *GormProductSKURepository {
	return &GormProductSKURepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductSKURepository) WithTx(tx *gorm.DB) ProductSKURepository {
	if tx == nil {
		return r
	}
	return &GormProductSKURepository{db: tx}
}

// GetByID 根据 ID 获取 SKU（含商品）
func (r *GormProductSKURepository) GetByID(id uint) (*models.ProductSKU, error) {
	if id == 0 {
		return nil, errors.New("invalid sku id")
	}
	var item models.ProductSKU
	if err := r.db.Preload("Product").First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListByIDs 批量获取 SKU（含商品）
func (r *GormProductSKURepository) ListByIDs(ids []uint) ([]models.ProductSKU, error) {
	if len(ids) == 0 {
		return []models.ProductSKU{}, nil
	}
	var items []models.ProductSKU
	if err := r.db.Preload("Product").Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Create 创建 SKU
func (r *GormProductSKURepository) Create(item *models.ProductSKU) error {
	if item == nil {
		return errors.New("sku is nil")
	}
	return r.db.Create(item).Error
}

// Update 更新 SKU
func (r *GormProductSKURepository) Update(item *models.ProductSKU) error {
	if item == nil {
		return errors.New("sku is nil")
	}
	return r.db.Save(item).Error
}

// DecrementStock 条件扣减库存，库存不足时影响行数为 0
func (r *GormProductSKURepository) DecrementStock(skuID uint, quantity int) (int64, error) {
	if skuID == 0 || quantity <= 0 {
		return 0, errors.New("invalid stock decrement params")
	}
	result := r.db.Model(&models.ProductSKU{}).
		Where("id = ? AND stock >= ?", skuID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// RestoreStock 归还库存
func (r *GormProductSKURepository) RestoreStock(skuID uint, quantity int) (int64, error) {
	if skuID == 0 || quantity <= 0 {
		return 0, errors.New("invalid stock restore params")
	}
	result := r.db.Unscoped().Model(&models.ProductSKU{}).
		Where("id = ?", skuID).
		Update("stock", gorm.Expr("stock + ?", quantity))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
