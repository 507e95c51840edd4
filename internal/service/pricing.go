package service

import (
	"github.com/storefront-next/internal/models"

	"github.com/shopspring/decimal"
)

// PricedLine 已定价的订单行
type PricedLine struct {
	SKU               *models.ProductSKU
	ProductName       string
	UnitPrice         decimal.Decimal
	Quantity          int
	Promotion         *models.Promotion
	PromotionDiscount decimal.Decimal
}

// Subtotal 行原价
func (l PricedLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
}

// PriceBreakdown 折扣叠加结果
type PriceBreakdown struct {
	Lines             []PricedLine
	TotalPrice        decimal.Decimal
	PromotionDiscount decimal.Decimal
	RankDiscountRate  decimal.Decimal
	RankDiscount      decimal.Decimal
	VoucherDiscount   decimal.Decimal
	TotalDiscount     decimal.Decimal
	FinalTotalPrice   decimal.Decimal
}

// voucherApplier 以剩余金额计算优惠券折扣
type voucherApplier func(baseAmount decimal.Decimal) (decimal.Decimal, error)

// priceLine 计算单行活动折扣
func priceLine(line PricedLine) PricedLine {
	line.PromotionDiscount = decimal.Zero
	if line.Promotion != nil {
		line.PromotionDiscount = models.PercentOf(line.Subtotal(), line.Promotion.DiscountPercent.Decimal)
	}
	return line
}

// applyDiscountStack 固定顺序叠加：活动 → 会员等级 → 优惠券
func applyDiscountStack(lines []PricedLine, rankRate decimal.Decimal, applyVoucher voucherApplier) (*PriceBreakdown, error) {
	breakdown := &PriceBreakdown{
		Lines:             make([]PricedLine, 0, len(lines)),
		TotalPrice:        decimal.Zero,
		PromotionDiscount: decimal.Zero,
		RankDiscountRate:  rankRate,
		RankDiscount:      decimal.Zero,
		VoucherDiscount:   decimal.Zero,
	}
	for _, line := range lines {
		line = priceLine(line)
		breakdown.Lines = append(breakdown.Lines, line)
		breakdown.TotalPrice = breakdown.TotalPrice.Add(line.Subtotal())
		breakdown.PromotionDiscount = breakdown.PromotionDiscount.Add(line.PromotionDiscount)
	}

	afterPromotion := breakdown.TotalPrice.Sub(breakdown.PromotionDiscount)
	if rankRate.IsPositive() {
		breakdown.RankDiscount = models.PercentOf(afterPromotion, rankRate)
	}
	totalDiscount := breakdown.PromotionDiscount.Add(breakdown.RankDiscount)

	if applyVoucher != nil {
		discount, err := applyVoucher(clampNonNegative(breakdown.TotalPrice.Sub(totalDiscount)))
		if err != nil {
			return nil, err
		}
		breakdown.VoucherDiscount = discount
		totalDiscount = totalDiscount.Add(discount)
	}

	breakdown.TotalDiscount = clampDiscount(totalDiscount, breakdown.TotalPrice)
	breakdown.FinalTotalPrice = breakdown.TotalPrice.Sub(breakdown.TotalDiscount)
	return breakdown, nil
}

// clampDiscount 0 ≤ discount ≤ total
func clampDiscount(discount, total decimal.Decimal) decimal.Decimal {
	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(total) {
		return total
	}
	return discount.Round(2)
}

func clampNonNegative(amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}
