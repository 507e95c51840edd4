package service

import (
	"errors"
	"testing"

	"github.com/storefront-next/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pricedLine(price int64, qty int, promotionPercent int64) PricedLine {
	line := PricedLine{
		SKU:         &models.ProductSKU{ID: uint(price)},
		ProductName: "item",
		UnitPrice:   decimal.NewFromInt(price),
		Quantity:    qty,
	}
	if promotionPercent > 0 {
		line.Promotion = &models.Promotion{ID: 1, DiscountPercent: models.NewMoneyFromInt(promotionPercent)}
	}
	return line
}

func fixedVoucher(amount string) voucherApplier {
	return func(decimal.Decimal) (decimal.Decimal, error) {
		return decimal.RequireFromString(amount), nil
	}
}

func TestApplyDiscountStackKeepsTotalsConsistent(t *testing.T) {
	tests := []struct {
		name      string
		lines     []PricedLine
		rankRate  int64
		voucher   voucherApplier
		wantTotal string
		wantFinal string
	}{
		{
			name:      "no_discount",
			lines:     []PricedLine{pricedLine(50000, 2, 0)},
			wantTotal: "100000",
			wantFinal: "100000",
		},
		{
			name:      "promotion_only",
			lines:     []PricedLine{pricedLine(100000, 1, 10), pricedLine(20000, 3, 0)},
			wantTotal: "160000",
			wantFinal: "150000",
		},
		{
			name:      "promotion_rank_voucher",
			lines:     []PricedLine{pricedLine(100000, 1, 10)},
			rankRate:  5,
			voucher:   fixedVoucher("8550"),
			wantTotal: "100000",
			wantFinal: "76950",
		},
		{
			name:      "voucher_larger_than_rest_is_clamped",
			lines:     []PricedLine{pricedLine(30000, 1, 50)},
			voucher:   fixedVoucher("99999"),
			wantTotal: "30000",
			wantFinal: "0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			breakdown, err := applyDiscountStack(tt.lines, decimal.NewFromInt(tt.rankRate), tt.voucher)
			require.NoError(t, err)

			assert.True(t, breakdown.TotalPrice.Equal(decimal.RequireFromString(tt.wantTotal)), "total=%s", breakdown.TotalPrice)
			assert.True(t, breakdown.FinalTotalPrice.Equal(decimal.RequireFromString(tt.wantFinal)), "final=%s", breakdown.FinalTotalPrice)
			assert.True(t, breakdown.FinalTotalPrice.Equal(breakdown.TotalPrice.Sub(breakdown.TotalDiscount)))
			assert.False(t, breakdown.TotalDiscount.IsNegative())
			assert.True(t, breakdown.TotalDiscount.LessThanOrEqual(breakdown.TotalPrice))
		})
	}
}

func TestApplyDiscountStackVoucherBaseExcludesEarlierDiscounts(t *testing.T) {
	var base decimal.Decimal
	applier := func(amount decimal.Decimal) (decimal.Decimal, error) {
		base = amount
		return decimal.Zero, nil
	}
	breakdown, err := applyDiscountStack([]PricedLine{pricedLine(100000, 1, 10)}, decimal.NewFromInt(5), applier)
	require.NoError(t, err)

	assert.True(t, breakdown.PromotionDiscount.Equal(decimal.NewFromInt(10000)))
	assert.True(t, breakdown.RankDiscount.Equal(decimal.NewFromInt(4500)))
	assert.True(t, base.Equal(decimal.NewFromInt(85500)), "voucher base=%s", base)
}

func TestApplyDiscountStackPropagatesVoucherRejection(t *testing.T) {
	applier := func(decimal.Decimal) (decimal.Decimal, error) {
		return decimal.Zero, ErrVoucherBelowMinimum
	}
	_, err := applyDiscountStack([]PricedLine{pricedLine(1000, 1, 0)}, decimal.Zero, applier)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVoucherRejected))
}

func TestVoucherDiscountHonoursCap(t *testing.T) {
	maxAmount := models.NewMoneyFromInt(15000)
	voucher := &models.Voucher{DiscountPercent: models.NewMoneyFromInt(20), MaxDiscountAmount: &maxAmount}

	got := voucherDiscount(voucher, decimal.NewFromInt(100000))
	assert.True(t, got.Equal(decimal.NewFromInt(15000)), "discount=%s", got)

	voucher.MaxDiscountAmount = nil
	got = voucherDiscount(voucher, decimal.NewFromInt(100000))
	assert.True(t, got.Equal(decimal.NewFromInt(20000)), "uncapped discount=%s", got)
}
