package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/payment/momo"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MoMo 只收整数 VND：折扣后带小数的订单按取整金额扣款与核对
func TestMoMoFractionalTotalSettlesOnRoundedAmount(t *testing.T) {
	var charged float64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		charged, _ = payload["amount"].(float64)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"resultCode": 0,
			"message":    "Successful.",
			"payUrl":     "https://test-payment.momo.vn/pay/xyz",
		})
	}))
	defer server.Close()

	env := newOrderTestEnv(t, "momo_fractional")
	gatewayCfg := config.MoMoGatewayConfig{
		Enabled:     true,
		Endpoint:    server.URL,
		PartnerCode: "MOMOTEST",
		AccessKey:   "access",
		SecretKey:   "secret",
	}
	env.dispatcher.gateways[constants.PaymentMethodMoMo] = NewMoMoGateway(gatewayCfg)

	customer := env.seedCustomer(t, nil)
	sku := env.seedSKU(t, "powerbank", 99999, 5)
	voucher := env.seedVoucher(t, 10, 0, nil)
	cartItem := env.addToCart(t, customer.ID, sku.ID, 2)

	result, err := env.orders.CreateCustomerOrder(context.Background(), CustomerOrderInput{
		CustomerID:    customer.ID,
		CartItemIDs:   []uint{cartItem.ID},
		VoucherID:     &voucher.ID,
		PaymentMethod: constants.PaymentMethodMoMo,
		Platform:      constants.PlatformWeb,
		Receiver:      deliveryReceiver(),
	})
	require.NoError(t, err)
	require.NotNil(t, result.Payment)
	assert.Equal(t, "179998.20", result.Order.FinalTotalPrice.Decimal.StringFixed(2))
	assert.Equal(t, "179998", result.Payment.Amount.Decimal.String())
	assert.Equal(t, float64(179998), charged)

	ipn := &momo.CallbackData{
		PartnerCode:  "MOMOTEST",
		OrderID:      result.Payment.TxnRef,
		RequestID:    result.Payment.TxnRef,
		Amount:       179998,
		OrderInfo:    "order",
		OrderType:    "momo_wallet",
		TransID:      4012345678,
		ResultCode:   momo.ResultCodeSuccess,
		Message:      "Successful.",
		PayType:      "qr",
		ResponseTime: 1760000000000,
	}
	ipn.Signature = momo.SignCallback(&momo.Config{AccessKey: "access", SecretKey: "secret"}, ipn)
	body, err := json.Marshal(ipn)
	require.NoError(t, err)

	callback, err := env.dispatcher.HandleCallback(context.Background(), constants.PaymentMethodMoMo, url.Values{}, body)
	require.NoError(t, err)
	assert.True(t, callback.Success)

	order := env.reloadOrder(t, result.Order.ID)
	assert.Equal(t, constants.OrderStatusPending, order.Status)
	assert.Equal(t, 3, env.stockOf(t, sku.ID))
	assert.Equal(t, 1, env.voucherUsageCount(t, order.ID))

	payment, err := env.paymentRepo.GetByTxnRef(result.Payment.TxnRef)
	require.NoError(t, err)
	assert.Equal(t, constants.PaymentStatusSuccess, payment.Status)
}

func TestMoMoGatewayChargeAmountRoundsToWholeVND(t *testing.T) {
	gateway := NewMoMoGateway(config.MoMoGatewayConfig{})
	cases := map[string]string{
		"179998.20": "179998",
		"1000.50":   "1001",
		"250000":    "250000",
	}
	for in, want := range cases {
		assert.Equal(t, want, gateway.ChargeAmount(decimal.RequireFromString(in)).String(), in)
	}
}
