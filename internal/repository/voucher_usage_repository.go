package repository

import (
	"errors"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// VoucherUsageRepository 优惠券使用记录数据访问接口
type VoucherUsageRepository interface {
	Create(usage *models.VoucherUsage) error
	ExistsByCustomer(voucherID, customerID uint) (bool, error)
	ListByOrderID(orderID uint) ([]models.VoucherUsage, error)
	DeleteByOrderID(orderID uint) (int64, error)
	WithTx(tx *gorm.DB) *GormVoucherUsageRepository
}

// GormVoucherUsageRepository GORM 实现
type GormVoucherUsageRepository struct {
	db *gorm.DB
}

// NewVoucherUsageRepository 创建优惠券使用记录仓库
func NewVoucherUsageRepository(db *gorm.DB) *GormVoucherUsageRepository {
	return &GormVoucherUsageRepository{db: db}
}

// WithTx 绑定事务
func (r *GormVoucherUsageRepository) WithTx(tx *gorm.DB) *GormVoucherUsageRepository {
	if tx == nil {
		return r
	}
	return &GormVoucherUsageRepository{db: tx}
}

// Create 创建使用记录
func (r *GormVoucherUsageRepository) Create(usage *models.VoucherUsage) error {
	if usage == nil {
		return errors.New("voucher usage is nil")
	}
	return r.db.Create(usage).Error
}

// ExistsByCustomer 判断客户是否已使用过该优惠券
func (r *GormVoucherUsageRepository) ExistsByCustomer(voucherID, customerID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.VoucherUsage{}).
		Where("voucher_id = ? AND customer_id = ?", voucherID, customerID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByOrderID 获取订单使用记录
func (r *GormVoucherUsageRepository) ListByOrderID(orderID uint) ([]models.VoucherUsage, error) {
	var usages []models.VoucherUsage
	if err := r.db.Where("order_id = ?", orderID).Find(&usages).Error; err != nil {
		return nil, err
	}
	return usages, nil
}

// DeleteByOrderID 物理删除订单的使用记录，删除后客户可再次使用
func (r *GormVoucherUsageRepository) DeleteByOrderID(orderID uint) (int64, error) {
	if orderID == 0 {
		return 0, errors.New("invalid order id")
	}
	result := r.db.Where("order_id = ?", orderID).Delete(&models.VoucherUsage{})
	return result.RowsAffected, result.Error
}
