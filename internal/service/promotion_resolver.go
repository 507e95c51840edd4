package service

import (
	"math"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

// PromotionScope 单个订单行的活动匹配范围
type PromotionScope struct {
	SKUID      uint
	ProductID  uint
	BrandID    uint
	CategoryID uint
}

// PromotionResolver 活动解析：为每个 SKU 选出唯一最优活动
type PromotionResolver struct {
	promotionRepo repository.PromotionRepository
	now           func() time.Time
}

// NewPromotionResolver 创建活动解析器
func NewPromotionResolver(promotionRepo repository.PromotionRepository) *PromotionResolver {
	return &PromotionResolver{
		promotionRepo: promotionRepo,
		now:           time.Now,
	}
}

// ResolveBest 解析单个范围的最优活动，没有时返回 nil
func (r *PromotionResolver) ResolveBest(scope PromotionScope) (*models.Promotion, error) {
	result, err := r.ResolveBatch([]PromotionScope{scope})
	if err != nil {
		return nil, err
	}
	return result[0], nil
}

// ResolveBatch 批量解析：每种目标类型一次查询 + 一次全场活动查询
func (r *PromotionResolver) ResolveBatch(scopes []PromotionScope) ([]*models.Promotion, error) {
	result := make([]*models.Promotion, len(scopes))
	if len(scopes) == 0 {
		return result, nil
	}
	now := r.now()

	idsByType := map[string][]uint{}
	seen := map[string]map[uint]bool{}
	collect := func(targetType string, id uint) {
		if id == 0 {
			return
		}
		if seen[targetType] == nil {
			seen[targetType] = map[uint]bool{}
		}
		if seen[targetType][id] {
			return
		}
		seen[targetType][id] = true
		idsByType[targetType] = append(idsByType[targetType], id)
	}
	for _, scope := range scopes {
		collect(constants.PromotionTargetVariant, scope.SKUID)
		collect(constants.PromotionTargetProduct, scope.ProductID)
		collect(constants.PromotionTargetBrand, scope.BrandID)
		collect(constants.PromotionTargetCategory, scope.CategoryID)
	}

	pools := map[string]map[uint][]*models.Promotion{}
	for targetType, ids := range idsByType {
		targets, err := r.promotionRepo.ListActiveTargets(targetType, ids, now)
		if err != nil {
			return nil, err
		}
		pool := map[uint][]*models.Promotion{}
		for i := range targets {
			if targets[i].Promotion == nil {
				continue
			}
			pool[targets[i].TargetID] = append(pool[targets[i].TargetID], targets[i].Promotion)
		}
		pools[targetType] = pool
	}

	globalRows, err := r.promotionRepo.ListActiveGlobal(now)
	if err != nil {
		return nil, err
	}
	global := make([]*models.Promotion, 0, len(globalRows))
	for i := range globalRows {
		global = append(global, &globalRows[i])
	}

	for i, scope := range scopes {
		var best *models.Promotion
		for _, candidates := range [][]*models.Promotion{
			pools[constants.PromotionTargetVariant][scope.SKUID],
			pools[constants.PromotionTargetProduct][scope.ProductID],
			pools[constants.PromotionTargetBrand][scope.BrandID],
			pools[constants.PromotionTargetCategory][scope.CategoryID],
			global,
		} {
			for _, candidate := range candidates {
				if !isPromotionUsable(candidate, now) {
					continue
				}
				if promotionBeats(candidate, best) {
					best = candidate
				}
			}
		}
		result[i] = best
	}
	return result, nil
}

// promotionBeats 优先级数值小者胜，相同时折扣高者胜，再相同保留先出现的
func promotionBeats(candidate, current *models.Promotion) bool {
	if current == nil {
		return true
	}
	cp, bp := promotionPriority(candidate), promotionPriority(current)
	if cp != bp {
		return cp < bp
	}
	return candidate.DiscountPercent.Decimal.GreaterThan(current.DiscountPercent.Decimal)
}

func promotionPriority(p *models.Promotion) int {
	if p.Priority == nil {
		return math.MaxInt
	}
	return *p.Priority
}

func isPromotionUsable(p *models.Promotion, now time.Time) bool {
	if p == nil || !p.IsActive || !p.DiscountPercent.Decimal.IsPositive() {
		return false
	}
	if p.StartsAt != nil && now.Before(*p.StartsAt) {
		return false
	}
	if p.EndsAt != nil && now.After(*p.EndsAt) {
		return false
	}
	return true
}
