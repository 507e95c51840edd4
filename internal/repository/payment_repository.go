package repository

import (
	"errors"
	"strings"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// PaymentRepository 支付数据访问接口
type PaymentRepository interface {
	Create(payment *models.Payment) error
	Update(payment *models.Payment) error
	GetByTxnRef(txnRef string) (*models.Payment, error)
	GetLatestByOrder(orderID uint) (*models.Payment, error)
	ListByOrderID(orderID uint) ([]models.Payment, error)
	MarkResult(id uint, status string, updates map[string]interface{}) (bool, error)
	WithTx(tx *gorm.DB) *GormPaymentRepository
}

// GormPaymentRepository GORM 实现
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建支付仓库
func NewPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPaymentRepository) WithTx(tx *gorm.DB) *GormPaymentRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentRepository{db: tx}
}

// Create 创建支付记录
func (r *GormPaymentRepository) Create(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

// Update 更新支付记录
func (r *GormPaymentRepository) Update(payment *models.Payment) error {
	return r.db.Save(payment).Error
}

// GetByTxnRef 根据商户交易号获取支付记录
func (r *GormPaymentRepository) GetByTxnRef(txnRef string) (*models.Payment, error) {
	txnRef = strings.TrimSpace(txnRef)
	if txnRef == "" {
		return nil, nil
	}
	var payment models.Payment
	if err := r.db.Where("txn_ref = ?", txnRef).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// GetLatestByOrder 获取订单最新一笔支付记录
func (r *GormPaymentRepository) GetLatestByOrder(orderID uint) (*models.Payment, error) {
	var payment models.Payment
	result := r.db.Where("order_id = ?", orderID).Order("id desc").Limit(1).Find(&payment)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &payment, nil
}

// ListByOrderID 获取订单支付记录
func (r *GormPaymentRepository) ListByOrderID(orderID uint) ([]models.Payment, error) {
	var payments []models.Payment
	if err := r.db.Where("order_id = ?", orderID).Order("id desc").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// MarkResult 仅将待支付记录落为终态，重复回调返回 false
func (r *GormPaymentRepository) MarkResult(id uint, status string, updates map[string]interface{}) (bool, error) {
	if id == 0 {
		return false, errors.New("invalid payment id")
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	result := r.db.Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, constants.PaymentStatusPending).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
