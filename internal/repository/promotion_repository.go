package repository

import (
	"errors"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// PromotionRepository 活动数据访问接口
type PromotionRepository interface {
	GetByID(id uint) (*models.Promotion, error)
	ListActiveTargets(targetType string, targetIDs []uint, now time.Time) ([]models.PromotionTarget, error)
	ListActiveGlobal(now time.Time) ([]models.Promotion, error)
	Create(promotion *models.Promotion) error
	CreateUsages(usages []models.PromotionUsage) error
	DeleteUsagesByOrder(orderID uint) (int64, error)
	ListUsagesByOrder(orderID uint) ([]models.PromotionUsage, error)
	WithTx(tx *gorm.DB) *GormPromotionRepository
}

// GormPromotionRepository GORM 实现
type GormPromotionRepository struct {
	db *gorm.DB
}

// NewPromotionRepository 创建活动仓库
func NewPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromotionRepository) WithTx(tx *gorm.DB) *GormPromotionRepository {
	if tx == nil {
		return r
	}
	return &GormPromotionRepository{db: tx}
}

// GetByID 根据ID获取活动
func (r *GormPromotionRepository) GetByID(id uint) (*models.Promotion, error) {
	var promotion models.Promotion
	if err := r.db.Preload("Targets").First(&promotion, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promotion, nil
}

func activePromotionScope(query *gorm.DB, now time.Time) *gorm.DB {
	query = query.Where("promotions.is_active = ?", true)
	query = query.Where("(promotions.starts_at IS NULL OR promotions.starts_at <= ?)", now)
	return query.Where("(promotions.ends_at IS NULL OR promotions.ends_at >= ?)", now)
}

// ListActiveTargets 查询某一目标类型下命中指定 ID 的有效活动目标（含活动）
func (r *GormPromotionRepository) ListActiveTargets(targetType string, targetIDs []uint, now time.Time) ([]models.PromotionTarget, error) {
	if len(targetIDs) == 0 {
		return []models.PromotionTarget{}, nil
	}
	query := r.db.Model(&models.PromotionTarget{}).
		Joins("JOIN promotions ON promotions.id = promotion_targets.promotion_id AND promotions.deleted_at IS NULL").
		Where("promotion_targets.target_type = ? AND promotion_targets.target_id IN ?", targetType, targetIDs).
		Where("promotions.scope_type = ?", constants.PromotionScopeScoped)
	query = activePromotionScope(query, now)

	var targets []models.PromotionTarget
	if err := query.Preload("Promotion").Order("promotion_targets.id asc").Find(&targets).Error; err != nil {
		return nil, err
	}
	return targets, nil
}

// ListActiveGlobal 查询全场有效活动
func (r *GormPromotionRepository) ListActiveGlobal(now time.Time) ([]models.Promotion, error) {
	query := r.db.Model(&models.Promotion{}).Where("promotions.scope_type = ?", constants.PromotionScopeAll)
	query = activePromotionScope(query, now)

	var promotions []models.Promotion
	if err := query.Order("promotions.id asc").Find(&promotions).Error; err != nil {
		return nil, err
	}
	return promotions, nil
}

// Create 创建活动（含目标）
func (r *GormPromotionRepository) Create(promotion *models.Promotion) error {
	if promotion == nil {
		return errors.New("promotion is nil")
	}
	return r.db.Create(promotion).Error
}

// CreateUsages 批量写入活动使用记录
func (r *GormPromotionRepository) CreateUsages(usages []models.PromotionUsage) error {
	if len(usages) == 0 {
		return nil
	}
	return r.db.Create(&usages).Error
}

// DeleteUsagesByOrder 删除订单的活动使用记录
func (r *GormPromotionRepository) DeleteUsagesByOrder(orderID uint) (int64, error) {
	if orderID == 0 {
		return 0, errors.New("invalid order id")
	}
	result := r.db.Where("order_id = ?", orderID).Delete(&models.PromotionUsage{})
	return result.RowsAffected, result.Error
}

// ListUsagesByOrder 获取订单的活动使用记录
func (r *GormPromotionRepository) ListUsagesByOrder(orderID uint) ([]models.PromotionUsage, error) {
	var usages []models.PromotionUsage
	if err := r.db.Where("order_id = ?", orderID).Order("id asc").Find(&usages).Error; err != nil {
		return nil, err
	}
	return usages, nil
}
