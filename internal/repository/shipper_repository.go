package repository

import (
	"errors"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// ShipperRepository 配送员数据访问接口
type ShipperRepository interface {
	GetByID(id uint) (*models.Shipper, error)
	ListActive() ([]models.Shipper, error)
	Create(shipper *models.Shipper) error
	WithTx(tx *gorm.DB) *GormShipperRepository
}

// GormShipperRepository GORM 实现
type GormShipperRepository struct {
	db *gorm.DB
}

// NewShipperRepository 创建配送员仓库
func NewShipperRepository(db *gorm.DB) *GormShipperRepository {
	return &GormShipperRepository{db: db}
}

// WithTx 绑定事务
func (r *GormShipperRepository) WithTx(tx *gorm.DB) *GormShipperRepository {
	if tx == nil {
		return r
	}
	return &GormShipperRepository{db: tx}
}

// GetByID 根据 ID 获取配送员
func (r *GormShipperRepository) GetByID(id uint) (*models.Shipper, error) {
	var shipper models.Shipper
	if err := r.db.First(&shipper, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shipper, nil
}

// ListActive 获取在岗配送员
func (r *GormShipperRepository) ListActive() ([]models.Shipper, error) {
	var shippers []models.Shipper
	if err := r.db.Where("is_active = ?", true).Order("id asc").Find(&shippers).Error; err != nil {
		return nil, err
	}
	return shippers, nil
}

// Create 创建配送员
func (r *GormShipperRepository) Create(shipper *models.Shipper) error {
	if shipper == nil {
		return errors.New("shipper is nil")
	}
	return r.db.Create(shipper).Error
}
