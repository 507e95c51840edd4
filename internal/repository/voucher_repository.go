package repository

import (
	"errors"
	"strings"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// VoucherRepository 优惠券数据访问接口
type VoucherRepository interface {
	GetByID(id uint) (*models.Voucher, error)
	GetByCode(code string) (*models.Voucher, error)
	Create(voucher *models.Voucher) error
	Assign(voucherID, customerID uint) error
	IsAssigned(voucherID, customerID uint) (bool, error)
	WithTx(tx *gorm.DB) *GormVoucherRepository
}

// GormVoucherRepository GORM 实现
type GormVoucherRepository struct {
	db *gorm.DB
}

// NewVoucherRepository 创建优惠券仓库
func NewVoucherRepository(db *gorm.DB) *GormVoucherRepository {
	return &GormVoucherRepository{db: db}
}

// WithTx 绑定事务
func (r *GormVoucherRepository) WithTx(tx *gorm.DB) *GormVoucherRepository {
	if tx == nil {
		return r
	}
	return &GormVoucherRepository{db: tx}
}

// GetByID 根据 ID 获取优惠券
func (r *GormVoucherRepository) GetByID(id uint) (*models.Voucher, error) {
	var voucher models.Voucher
	if err := r.db.First(&voucher, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &voucher, nil
}

// GetByCode 根据优惠码获取优惠券
func (r *GormVoucherRepository) GetByCode(code string) (*models.Voucher, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var voucher models.Voucher
	if err := r.db.Where("code = ?", code).First(&voucher).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &voucher, nil
}

// Create 创建优惠券
func (r *GormVoucherRepository) Create(voucher *models.Voucher) error {
	if voucher == nil {
		return errors.New("voucher is nil")
	}
	return r.db.Create(voucher).Error
}

// Assign 定向发放优惠券
func (r *GormVoucherRepository) Assign(voucherID, customerID uint) error {
	if voucherID == 0 || customerID == 0 {
		return errors.New("invalid voucher assignment params")
	}
	return r.db.Create(&models.VoucherAssignment{VoucherID: voucherID, CustomerID: customerID}).Error
}

// IsAssigned 判断优惠券是否发放给客户
func (r *GormVoucherRepository) IsAssigned(voucherID, customerID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.VoucherAssignment{}).
		Where("voucher_id = ? AND customer_id = ?", voucherID, customerID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
