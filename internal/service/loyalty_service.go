package service

import (
	"context"
	"time"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	rankCacheKey = "ranks:all"
	rankCacheTTL = 10 * time.Minute
)

// LoyaltyService 会员累计消费与等级
type LoyaltyService struct {
	customerRepo repository.CustomerRepository
	rankRepo     repository.RankRepository
}

// NewLoyaltyService 创建会员服务
func NewLoyaltyService(customerRepo repository.CustomerRepository, rankRepo repository.RankRepository) *LoyaltyService {
	return &LoyaltyService{
		customerRepo: customerRepo,
		rankRepo:     rankRepo,
	}
}

// InvalidateRankCache 等级表变更后清除缓存
func InvalidateRankCache(ctx context.Context) error {
	return cache.Del(ctx, rankCacheKey)
}

// listRanks 获取等级表（按门槛降序），Redis 可用时缓存
func (s *LoyaltyService) listRanks(ctx context.Context, rankRepo repository.RankRepository) ([]models.Rank, error) {
	if cache.Enabled() {
		var cached []models.Rank
		hit, err := cache.GetJSON(ctx, rankCacheKey, &cached)
		if err != nil {
			logger.Warnw("rank_cache_get_failed", "error", err)
		} else if hit {
			return cached, nil
		}
	}
	ranks, err := rankRepo.ListAll()
	if err != nil {
		return nil, err
	}
	if cache.Enabled() {
		if err := cache.SetJSON(ctx, rankCacheKey, ranks, rankCacheTTL); err != nil {
			logger.Warnw("rank_cache_set_failed", "error", err)
		}
	}
	return ranks, nil
}

// Accrue 订单完成后累加消费并重新定级（在状态流转事务内执行）
func (s *LoyaltyService) Accrue(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	if order == nil || order.CustomerID == 0 {
		return nil
	}
	var customerRepo repository.CustomerRepository = s.customerRepo
	var rankRepo repository.RankRepository = s.rankRepo
	if tx != nil {
		customerRepo = s.customerRepo.WithTx(tx)
		rankRepo = s.rankRepo.WithTx(tx)
	}
	amount := order.FinalTotalPrice.Decimal
	if amount.IsPositive() {
		if err := customerRepo.AddSpending(order.CustomerID, amount); err != nil {
			return err
		}
	}
	customer, err := customerRepo.GetByID(order.CustomerID)
	if err != nil {
		return err
	}
	if customer == nil {
		logger.Warnw("loyalty_customer_missing", "order_id", order.ID, "customer_id", order.CustomerID)
		return nil
	}
	ranks, err := s.listRanks(ctx, rankRepo)
	if err != nil {
		return err
	}
	target := pickRank(ranks, customer.TotalSpending.Decimal)
	if target == nil || (customer.RankID != nil && *customer.RankID == target.ID) {
		return nil
	}
	rankID := target.ID
	if err := customerRepo.UpdateRank(customer.ID, &rankID); err != nil {
		return err
	}
	logger.Infow("customer_rank_changed",
		"customer_id", customer.ID,
		"rank_id", rankID,
		"rank", target.Name,
		"total_spending", customer.TotalSpending.String(),
	)
	return nil
}

// pickRank 取门槛不超过累计消费的最高等级
func pickRank(ranks []models.Rank, spending decimal.Decimal) *models.Rank {
	var best *models.Rank
	for i := range ranks {
		if ranks[i].MinSpending.Decimal.GreaterThan(spending) {
			continue
		}
		if best == nil || ranks[i].MinSpending.Decimal.GreaterThan(best.MinSpending.Decimal) {
			best = &ranks[i]
		}
	}
	return best
}

// rankDiscountRate 客户当前等级折扣率
func rankDiscountRate(customer *models.Customer) decimal.Decimal {
	if customer == nil || customer.Rank == nil {
		return decimal.Zero
	}
	return customer.Rank.DiscountRate.Decimal
}
