package service

import (
	"context"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"gorm.io/gorm"
)

// CompensationEngine 订单失败 / 取消时的回滚
type CompensationEngine struct {
	ledger           *InventoryLedger
	voucherUsageRepo repository.VoucherUsageRepository
	promotionRepo    repository.PromotionRepository
}

// NewCompensationEngine 创建补偿引擎
func NewCompensationEngine(ledger *InventoryLedger, voucherUsageRepo repository.VoucherUsageRepository, promotionRepo repository.PromotionRepository) *CompensationEngine {
	return &CompensationEngine{
		ledger:           ledger,
		voucherUsageRepo: voucherUsageRepo,
		promotionRepo:    promotionRepo,
	}
}

// Compensate 归还库存并删除优惠券 / 活动使用记录。
// 本身不做幂等，仅由状态机的守卫保证每单最多执行一次。
func (e *CompensationEngine) Compensate(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	if order == nil {
		return ErrOrderNotFound
	}
	if err := e.ledger.Release(tx, stockLinesFromItems(order.Items)); err != nil {
		return err
	}

	var usageRepo repository.VoucherUsageRepository = e.voucherUsageRepo
	var promotionRepo repository.PromotionRepository = e.promotionRepo
	if tx != nil {
		usageRepo = e.voucherUsageRepo.WithTx(tx)
		promotionRepo = e.promotionRepo.WithTx(tx)
	}
	voucherRows, err := usageRepo.DeleteByOrderID(order.ID)
	if err != nil {
		return err
	}
	promotionRows, err := promotionRepo.DeleteUsagesByOrder(order.ID)
	if err != nil {
		return err
	}
	logger.ForOrder(ctx, order.ID, order.OrderNo).Infow("order_compensated",
		"lines", len(order.Items),
		"voucher_usages_deleted", voucherRows,
		"promotion_usages_deleted", promotionRows,
	)
	return nil
}
