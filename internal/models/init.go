package models

import (
	"github.com/storefront-next/internal/logger"

	"github.com/shopspring/decimal"
)

// defaultRanks 初始会员等级（累计消费门槛 / 折扣率）
var defaultRanks = []Rank{
	{Name: "member", MinSpending: NewMoneyFromInt(0), DiscountRate: NewMoneyFromInt(0)},
	{Name: "silver", MinSpending: NewMoneyFromInt(2000000), DiscountRate: NewMoneyFromDecimal(decimal.NewFromInt(2))},
	{Name: "gold", MinSpending: NewMoneyFromInt(10000000), DiscountRate: NewMoneyFromDecimal(decimal.NewFromInt(5))},
	{Name: "diamond", MinSpending: NewMoneyFromInt(50000000), DiscountRate: NewMoneyFromDecimal(decimal.NewFromInt(8))},
}

// InitDefaultRanks 初始化默认会员等级（已有等级时跳过）
func InitDefaultRanks() error {
	var count int64
	if err := DB.Model(&Rank{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	ranks := make([]Rank, len(defaultRanks))
	copy(ranks, defaultRanks)
	if err := DB.Create(&ranks).Error; err != nil {
		return err
	}
	logger.Infow("default_ranks_created", "count", len(ranks))
	return nil
}
