package repository

import (
	"errors"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	ListByCustomer(customerID uint) ([]models.CartItem, error)
	ListByIDs(customerID uint, ids []uint) ([]models.CartItem, error)
	Upsert(item *models.CartItem) error
	UpdateQuantity(customerID, id uint, quantity int) (int64, error)
	DeleteByIDs(customerID uint, ids []uint) (int64, error)
	WithTx(tx *gorm.DB) *GormCartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) *GormCartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// ListByCustomer 获取客户购物车项
func (r *GormCartRepository) ListByCustomer(customerID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Preload("SKU").Preload("SKU.Product").
		Where("customer_id = ?", customerID).
		Order("updated_at desc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListByIDs 获取客户勾选的购物车项，不属于该客户的 ID 会被忽略
func (r *GormCartRepository) ListByIDs(customerID uint, ids []uint) ([]models.CartItem, error) {
	if len(ids) == 0 {
		return []models.CartItem{}, nil
	}
	var items []models.CartItem
	if err := r.db.Preload("SKU").Preload("SKU.Product").
		Where("customer_id = ? AND id IN ?", customerID, ids).
		Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Upsert 添加购物车项，同一 SKU 数量累加
func (r *GormCartRepository) Upsert(item *models.CartItem) error {
	if item == nil {
		return errors.New("cart item is nil")
	}
	var existing models.CartItem
	err := r.db.Where("customer_id = ? AND sku_id = ?", item.CustomerID, item.SKUID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(item).Error
	}
	if err != nil {
		return err
	}
	if err := r.db.Model(&existing).Updates(map[string]interface{}{
		"quantity":   gorm.Expr("quantity + ?", item.Quantity),
		"updated_at": item.UpdatedAt,
	}).Error; err != nil {
		return err
	}
	item.ID = existing.ID
	item.Quantity = existing.Quantity + item.Quantity
	item.CreatedAt = existing.CreatedAt
	return nil
}

// UpdateQuantity 修改购物车项数量
func (r *GormCartRepository) UpdateQuantity(customerID, id uint, quantity int) (int64, error) {
	result := r.db.Model(&models.CartItem{}).
		Where("id = ? AND customer_id = ?", id, customerID).
		Update("quantity", quantity)
	return result.RowsAffected, result.Error
}

// DeleteByIDs 删除客户的购物车项
func (r *GormCartRepository) DeleteByIDs(customerID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Where("customer_id = ? AND id IN ?", customerID, ids).Delete(&models.CartItem{})
	return result.RowsAffected, result.Error
}
