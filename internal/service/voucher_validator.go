package service

import (
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/shopspring/decimal"
)

// VoucherValidator 优惠券核验
type VoucherValidator struct {
	voucherRepo repository.VoucherRepository
	usageRepo   repository.VoucherUsageRepository
	now         func() time.Time
}

// NewVoucherValidator 创建优惠券核验器
func NewVoucherValidator(voucherRepo repository.VoucherRepository, usageRepo repository.VoucherUsageRepository) *VoucherValidator {
	return &VoucherValidator{
		voucherRepo: voucherRepo,
		usageRepo:   usageRepo,
		now:         time.Now,
	}
}

// Lookup 按 ID 获取优惠券
func (v *VoucherValidator) Lookup(voucherID uint) (*models.Voucher, error) {
	voucher, err := v.voucherRepo.GetByID(voucherID)
	if err != nil {
		return nil, err
	}
	if voucher == nil {
		return nil, ErrVoucherNotFound
	}
	return voucher, nil
}

// Validate 依次校验 定向发放 → 已使用 → 有效期 → 门槛，通过后返回优惠金额
func (v *VoucherValidator) Validate(voucher *models.Voucher, customerID uint, baseAmount decimal.Decimal) (decimal.Decimal, error) {
	if voucher == nil {
		return decimal.Zero, ErrVoucherNotFound
	}
	// 门店散客没有身份，无法记录使用
	if customerID == 0 {
		return decimal.Zero, ErrVoucherNotAssigned
	}
	if voucher.AudienceType == constants.VoucherAudienceAssigned {
		assigned, err := v.voucherRepo.IsAssigned(voucher.ID, customerID)
		if err != nil {
			return decimal.Zero, err
		}
		if !assigned {
			return decimal.Zero, ErrVoucherNotAssigned
		}
	}
	used, err := v.usageRepo.ExistsByCustomer(voucher.ID, customerID)
	if err != nil {
		return decimal.Zero, err
	}
	if used {
		return decimal.Zero, ErrVoucherAlreadyUsed
	}
	if !isVoucherActive(voucher, v.now()) {
		return decimal.Zero, ErrVoucherNotActive
	}
	if baseAmount.LessThan(voucher.MinOrderAmount.Decimal) {
		return decimal.Zero, ErrVoucherBelowMinimum
	}
	return voucherDiscount(voucher, baseAmount), nil
}

// voucherDiscount min(base*pct/100, cap)，cap 为空不封顶
func voucherDiscount(voucher *models.Voucher, baseAmount decimal.Decimal) decimal.Decimal {
	if !baseAmount.IsPositive() {
		return decimal.Zero
	}
	discount := models.PercentOf(baseAmount, voucher.DiscountPercent.Decimal)
	if voucher.MaxDiscountAmount != nil && discount.GreaterThan(voucher.MaxDiscountAmount.Decimal) {
		discount = voucher.MaxDiscountAmount.Decimal.Round(2)
	}
	return discount
}

func isVoucherActive(voucher *models.Voucher, now time.Time) bool {
	if !voucher.IsActive {
		return false
	}
	if voucher.StartsAt != nil && now.Before(*voucher.StartsAt) {
		return false
	}
	if voucher.EndsAt != nil && now.After(*voucher.EndsAt) {
		return false
	}
	return true
}
