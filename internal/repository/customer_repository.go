package repository

import (
	"errors"

	"github.com/storefront-next/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CustomerRepository 客户数据访问接口
type CustomerRepository interface {
	GetByID(id uint) (*models.Customer, error)
	Create(customer *models.Customer) error
	AddSpending(id uint, amount decimal.Decimal) error
	UpdateRank(id uint, rankID *uint) error
	WithTx(tx *gorm.DB) *GormCustomerRepository
}

// GormCustomerRepository GORM 实现
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository 创建客户仓库
func NewCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCustomerRepository) WithTx(tx *gorm.DB) *GormCustomerRepository {
	if tx == nil {
		return r
	}
	return &GormCustomerRepository{db: tx}
}

// GetByID 根据 ID 获取客户（含等级）
func (r *GormCustomerRepository) GetByID(id uint) (*models.Customer, error) {
	if id == 0 {
		return nil, nil
	}
	var customer models.Customer
	if err := r.db.Preload("Rank").First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

// Create 创建客户
func (r *GormCustomerRepository) Create(customer *models.Customer) error {
	if customer == nil {
		return errors.New("customer is nil")
	}
	return r.db.Create(customer).Error
}

// AddSpending 累加消费额
func (r *GormCustomerRepository) AddSpending(id uint, amount decimal.Decimal) error {
	if id == 0 {
		return errors.New("invalid customer id")
	}
	if !amount.IsPositive() {
		return nil
	}
	return r.db.Model(&models.Customer{}).
		Where("id = ?", id).
		Update("total_spending", gorm.Expr("total_spending + ?", amount.Round(2).String())).Error
}

// UpdateRank 更新会员等级
func (r *GormCustomerRepository) UpdateRank(id uint, rankID *uint) error {
	if id == 0 {
		return errors.New("invalid customer id")
	}
	return r.db.Model(&models.Customer{}).Where("id = ?", id).Update("rank_id", rankID).Error
}
