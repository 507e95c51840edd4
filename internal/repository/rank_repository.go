package repository

import (
	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// RankRepository 会员等级数据访问接口
type RankRepository interface {
	ListAll() ([]models.Rank, error)
	Count() (int64, error)
	CreateBatch(ranks []models.Rank) error
	WithTx(tx *gorm.DB) *GormRankRepository
}

// GormRankRepository GORM 实现
type GormRankRepository struct {
	db *gorm.DB
}

// NewRankRepository 创建等级仓库
func NewRankRepository(db *gorm.DB) *GormRankRepository {
	return &GormRankRepository{db: db}
}

// WithTx 绑定事务
func (r *GormRankRepository) WithTx(tx *gorm.DB) *GormRankRepository {
	if tx == nil {
		return r
	}
	return &GormRankRepository{db: tx}
}

// ListAll 按门槛从高到低返回全部等级
func (r *GormRankRepository) ListAll() ([]models.Rank, error) {
	var ranks []models.Rank
	if err := r.db.Order("min_spending desc, id asc").Find(&ranks).Error; err != nil {
		return nil, err
	}
	return ranks, nil
}

// Count 统计等级数量
func (r *GormRankRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Rank{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CreateBatch 批量创建等级
func (r *GormRankRepository) CreateBatch(ranks []models.Rank) error {
	if len(ranks) == 0 {
		return nil
	}
	return r.db.Create(&ranks).Error
}
