package service

import (
	"errors"
	"testing"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/shopspring/decimal"
)

func TestVoucherValidatorRejections(t *testing.T) {
	db := openServiceTestDB(t, "voucher_validator")
	voucherRepo := repository.NewVoucherRepository(db)
	usageRepo := repository.NewVoucherUsageRepository(db)
	validator := NewVoucherValidator(voucherRepo, usageRepo)

	yesterday := time.Now().Add(-24 * time.Hour)
	assigned := &models.Voucher{Code: "VIP", DiscountPercent: models.NewMoneyFromInt(10), AudienceType: constants.VoucherAudienceAssigned, IsActive: true}
	expired := &models.Voucher{Code: "OLD", DiscountPercent: models.NewMoneyFromInt(10), AudienceType: constants.VoucherAudienceAll, EndsAt: &yesterday, IsActive: true}
	minimum := &models.Voucher{Code: "MIN", DiscountPercent: models.NewMoneyFromInt(10), MinOrderAmount: models.NewMoneyFromInt(500000), AudienceType: constants.VoucherAudienceAll, IsActive: true}
	used := &models.Voucher{Code: "USED", DiscountPercent: models.NewMoneyFromInt(10), AudienceType: constants.VoucherAudienceAll, IsActive: true}
	for _, v := range []*models.Voucher{assigned, expired, minimum, used} {
		if err := voucherRepo.Create(v); err != nil {
			t.Fatalf("create voucher failed: %v", err)
		}
	}
	if err := usageRepo.Create(&models.VoucherUsage{VoucherID: used.ID, CustomerID: 5, OrderID: 1}); err != nil {
		t.Fatalf("create usage failed: %v", err)
	}

	base := decimal.NewFromInt(100000)
	tests := []struct {
		name       string
		voucher    *models.Voucher
		customerID uint
		want       error
	}{
		{name: "walk_in", voucher: used, customerID: 0, want: ErrVoucherNotAssigned},
		{name: "not_assigned", voucher: assigned, customerID: 5, want: ErrVoucherNotAssigned},
		{name: "already_used", voucher: used, customerID: 5, want: ErrVoucherAlreadyUsed},
		{name: "expired", voucher: expired, customerID: 5, want: ErrVoucherNotActive},
		{name: "below_minimum", voucher: minimum, customerID: 5, want: ErrVoucherBelowMinimum},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validator.Validate(tt.voucher, tt.customerID, base)
			if !errors.Is(err, tt.want) {
				t.Fatalf("want %v got %v", tt.want, err)
			}
			if !errors.Is(err, ErrVoucherRejected) {
				t.Fatalf("error should be a voucher rejection: %v", err)
			}
		})
	}

	if err := voucherRepo.Assign(assigned.ID, 5); err != nil {
		t.Fatalf("assign voucher failed: %v", err)
	}
	discount, err := validator.Validate(assigned, 5, base)
	if err != nil {
		t.Fatalf("assigned voucher should pass: %v", err)
	}
	if !discount.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("discount want 10000 got %s", discount)
	}
}

func TestVoucherValidatorLookupMissing(t *testing.T) {
	db := openServiceTestDB(t, "voucher_lookup")
	validator := NewVoucherValidator(repository.NewVoucherRepository(db), repository.NewVoucherUsageRepository(db))
	if _, err := validator.Lookup(404); !errors.Is(err, ErrVoucherNotFound) {
		t.Fatalf("want ErrVoucherNotFound got %v", err)
	}
}
