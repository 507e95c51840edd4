package service

import (
	"context"
	"errors"
	"testing"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"github.com/shopspring/decimal"
)

func TestMergeStaffOrderItems(t *testing.T) {
	merged, err := mergeStaffOrderItems([]StaffOrderItem{
		{SKUID: 10, Quantity: 1},
		{SKUID: 11, Quantity: 2},
		{SKUID: 10, Quantity: 3},
	})
	if err != nil {
		t.Fatalf("mergeStaffOrderItems error: %v", err)
	}
	if len(merged) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(merged))
	}
	if merged[0].SKUID != 10 || merged[0].Quantity != 4 {
		t.Fatalf("unexpected merged line: %+v", merged[0])
	}
	if _, err := mergeStaffOrderItems([]StaffOrderItem{{SKUID: 10, Quantity: 0}}); !errors.Is(err, ErrInvalidOrderItem) {
		t.Fatalf("zero quantity should be rejected, got %v", err)
	}
}

func TestValidateReceiver(t *testing.T) {
	if err := validateReceiver(ReceiverInput{Name: "A", Phone: "1"}, false, true); !errors.Is(err, ErrReceiverRequired) {
		t.Fatalf("delivery without address should fail, got %v", err)
	}
	if err := validateReceiver(ReceiverInput{Name: "A", Phone: "1"}, true, true); err != nil {
		t.Fatalf("pickup with contact should pass, got %v", err)
	}
	if err := validateReceiver(ReceiverInput{}, true, false); err != nil {
		t.Fatalf("staff pickup for walk-in should pass, got %v", err)
	}
	if err := validateReceiver(ReceiverInput{}, true, true); !errors.Is(err, ErrReceiverRequired) {
		t.Fatalf("customer pickup without contact should fail, got %v", err)
	}
}

func TestPreviewCustomerOrderDoesNotWrite(t *testing.T) {
	env := newOrderTestEnv(t, "order_preview")
	rank := &models.Rank{Name: "Gold", MinSpending: models.NewMoneyFromInt(1000000), DiscountRate: models.NewMoneyFromInt(5)}
	customer := env.seedCustomer(t, rank)
	sku := env.seedSKU(t, "tee", 100000, 5)
	item := env.addToCart(t, customer.ID, sku.ID, 1)
	voucher := env.seedVoucher(t, 20, 0, int64Ptr(15000))

	preview, err := env.orders.PreviewCustomerOrder(CustomerOrderInput{
		CustomerID:    customer.ID,
		CartItemIDs:   []uint{item.ID},
		VoucherID:     &voucher.ID,
		PaymentMethod: constants.PaymentMethodCOD,
		Receiver:      deliveryReceiver(),
	})
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	// 会员 5% → 95000，优惠券 20% 封顶 15000
	if !preview.RankDiscount.Decimal.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("rank discount want 5000 got %s", preview.RankDiscount.String())
	}
	if !preview.VoucherDiscount.Decimal.Equal(decimal.NewFromInt(15000)) {
		t.Fatalf("voucher discount want 15000 got %s", preview.VoucherDiscount.String())
	}
	if !preview.FinalTotalPrice.Decimal.Equal(decimal.NewFromInt(80000)) {
		t.Fatalf("final want 80000 got %s", preview.FinalTotalPrice.String())
	}

	var count int64
	env.db.Model(&models.Order{}).Count(&count)
	if count != 0 {
		t.Fatalf("preview should not persist orders, got %d", count)
	}
	if got := env.stockOf(t, sku.ID); got != 5 {
		t.Fatalf("preview should not touch stock, got %d", got)
	}
}

func TestCreateCustomerOrderCOD(t *testing.T) {
	env := newOrderTestEnv(t, "order_customer_cod")
	customer := env.seedCustomer(t, nil)
	sku := env.seedSKU(t, "tee", 50000, 10)
	item := env.addToCart(t, customer.ID, sku.ID, 2)

	result, err := env.orders.CreateCustomerOrder(context.Background(), CustomerOrderInput{
		CustomerID:    customer.ID,
		CartItemIDs:   []uint{item.ID},
		PaymentMethod: constants.PaymentMethodCOD,
		Receiver:      deliveryReceiver(),
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	order := env.reloadOrder(t, result.Order.ID)
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("status want pending got %s", order.Status)
	}
	if order.Platform != constants.PlatformWeb {
		t.Fatalf("platform want web got %s", order.Platform)
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", order.Items)
	}
	if got := env.stockOf(t, sku.ID); got != 8 {
		t.Fatalf("stock want 8 got %d", got)
	}
	remaining, _ := env.cartRepo.ListByCustomer(customer.ID)
	if len(remaining) != 0 {
		t.Fatalf("cart lines should be cleared, got %d", len(remaining))
	}
	if env.notifier.count() != 1 {
		t.Fatalf("confirmation should be sent once, got %d", env.notifier.count())
	}
	if types := env.publisher.types(); len(types) != 1 || types[0] != constants.OrderEventTypeCreated {
		t.Fatalf("unexpected events: %v", types)
	}
	if env.scheduler.isScheduled(order.ID) {
		t.Fatalf("cod order should not schedule a payment timeout")
	}
}

func TestCreateStaffOrderCODStartsProcessing(t *testing.T) {
	env := newOrderTestEnv(t, "order_staff_cod")
	sku := env.seedSKU(t, "mug", 30000, 10)

	result, err := env.orders.CreateStaffOrder(context.Background(), StaffOrderInput{
		StaffID:       3,
		Items:         []StaffOrderItem{{SKUID: sku.ID, Quantity: 1}, {SKUID: sku.ID, Quantity: 2}},
		PaymentMethod: constants.PaymentMethodCOD,
		IsPickup:      true,
	})
	if err != nil {
		t.Fatalf("create staff order failed: %v", err)
	}
	if result.Order.Status != constants.OrderStatusProcessing {
		t.Fatalf("status want processing got %s", result.Order.Status)
	}
	if result.Order.CustomerID != 0 || result.Order.Platform != constants.PlatformStaff {
		t.Fatalf("unexpected walk-in order: %+v", result.Order)
	}
	if got := env.stockOf(t, sku.ID); got != 7 {
		t.Fatalf("stock want 7 got %d", got)
	}
}

func TestCreateStaffOrderWalkInRejectsVoucher(t *testing.T) {
	env := newOrderTestEnv(t, "order_staff_voucher")
	sku := env.seedSKU(t, "mug", 30000, 10)
	voucher := env.seedVoucher(t, 10, 0, nil)

	_, err := env.orders.CreateStaffOrder(context.Background(), StaffOrderInput{
		Items:         []StaffOrderItem{{SKUID: sku.ID, Quantity: 1}},
		VoucherID:     &voucher.ID,
		PaymentMethod: constants.PaymentMethodCOD,
		IsPickup:      true,
	})
	if !errors.Is(err, ErrVoucherNotAssigned) {
		t.Fatalf("want ErrVoucherNotAssigned got %v", err)
	}
}

func TestCreateOrderOutOfStockKeepsStock(t *testing.T) {
	env := newOrderTestEnv(t, "order_out_of_stock")
	sku := env.seedSKU(t, "lamp", 200000, 3)

	_, err := env.orders.CreateStaffOrder(context.Background(), StaffOrderInput{
		Items:         []StaffOrderItem{{SKUID: sku.ID, Quantity: 5}},
		PaymentMethod: constants.PaymentMethodCOD,
		IsPickup:      true,
	})
	var stockErr *OutOfStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("want OutOfStockError got %v", err)
	}
	if stockErr.Available != 3 || stockErr.Requested != 5 || stockErr.ProductName != "lamp" {
		t.Fatalf("unexpected stock error: %+v", stockErr)
	}
	if got := env.stockOf(t, sku.ID); got != 3 {
		t.Fatalf("stock want 3 got %d", got)
	}
	var count int64
	env.db.Model(&models.Order{}).Count(&count)
	if count != 0 {
		t.Fatalf("no order should be written, got %d", count)
	}
}

func TestSecondVoucherRedemptionAlreadyUsed(t *testing.T) {
	env := newOrderTestEnv(t, "order_voucher_twice")
	customer := env.seedCustomer(t, nil)
	sku := env.seedSKU(t, "tee", 100000, 10)
	voucher := env.seedVoucher(t, 10, 0, nil)

	place := func() error {
		item := env.addToCart(t, customer.ID, sku.ID, 1)
		_, err := env.orders.CreateCustomerOrder(context.Background(), CustomerOrderInput{
			CustomerID:    customer.ID,
			CartItemIDs:   []uint{item.ID},
			VoucherID:     &voucher.ID,
			PaymentMethod: constants.PaymentMethodCOD,
			Receiver:      deliveryReceiver(),
		})
		return err
	}
	if err := place(); err != nil {
		t.Fatalf("first redemption failed: %v", err)
	}
	if err := place(); !errors.Is(err, ErrVoucherAlreadyUsed) {
		t.Fatalf("want ErrVoucherAlreadyUsed got %v", err)
	}
	if got := env.stockOf(t, sku.ID); got != 9 {
		t.Fatalf("stock want 9 got %d", got)
	}
}

func TestCreateCustomerOrderRejectsEmptyCartAndBadMethod(t *testing.T) {
	env := newOrderTestEnv(t, "order_validation")
	customer := env.seedCustomer(t, nil)

	_, err := env.orders.CreateCustomerOrder(context.Background(), CustomerOrderInput{
		CustomerID:    customer.ID,
		PaymentMethod: constants.PaymentMethodCOD,
		Receiver:      deliveryReceiver(),
	})
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("want ErrEmptyCart got %v", err)
	}
	_, err = env.orders.CreateCustomerOrder(context.Background(), CustomerOrderInput{
		CustomerID:    customer.ID,
		CartItemIDs:   []uint{1},
		PaymentMethod: "paypal",
		Receiver:      deliveryReceiver(),
	})
	if !errors.Is(err, ErrPaymentMethodUnsupported) || !errors.Is(err, ErrValidation) {
		t.Fatalf("want ErrPaymentMethodUnsupported got %v", err)
	}
}
