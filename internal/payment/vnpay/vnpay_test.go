package vnpay

import (
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func testConfig() *Config {
	return &Config{
		PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		TmnCode:    "DEMO0001",
		HashSecret: "SECRETKEY",
	}
}

func TestCreatePaymentSignsAndVerifies(t *testing.T) {
	cfg := testConfig()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	result, err := CreatePayment(cfg, CreateInput{
		TxnRef:    "01HTXNREF",
		Amount:    decimal.NewFromInt(150000),
		OrderInfo: "Thanh toan don hang SF0001",
		ReturnURL: "https://api.example.com/api/v1/payments/vnpay/callback?order_id=1&platform=web",
		IPAddr:    "10.0.0.1",
		Now:       now,
	})
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	parsed, err := url.Parse(result.PayURL)
	if err != nil {
		t.Fatalf("parse pay url failed: %v", err)
	}
	values := parsed.Query()
	if values.Get("vnp_Amount") != "15000000" {
		t.Fatalf("amount should be scaled by 100, got %s", values.Get("vnp_Amount"))
	}
	if values.Get("vnp_CreateDate") != "20260102100405" {
		t.Fatalf("create date should be GMT+7, got %s", values.Get("vnp_CreateDate"))
	}
	if err := VerifyCallback(cfg, values); err != nil {
		t.Fatalf("own signature should verify: %v", err)
	}
}

func TestVerifyCallbackIgnoresForeignParamsAndDetectsTampering(t *testing.T) {
	cfg := testConfig()
	params := map[string]string{
		"vnp_TxnRef":            "01HTXNREF",
		"vnp_Amount":            "15000000",
		"vnp_ResponseCode":      "00",
		"vnp_TransactionStatus": "00",
		"vnp_TransactionNo":     "14000001",
	}
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	values.Set(hashField, Sign(canonicalQuery(params), cfg.HashSecret))
	values.Set(hashType, "HmacSHA512")
	values.Set("order_id", "1")
	values.Set("platform", "mobile")

	if err := VerifyCallback(cfg, values); err != nil {
		t.Fatalf("valid callback rejected: %v", err)
	}

	values.Set("vnp_Amount", "100")
	if err := VerifyCallback(cfg, values); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("tampered amount must fail, got %v", err)
	}
}

func TestParseCallback(t *testing.T) {
	values := url.Values{}
	values.Set("vnp_TxnRef", "01HTXNREF")
	values.Set("vnp_Amount", "15000000")
	values.Set("vnp_ResponseCode", "24")
	data, err := ParseCallback(values)
	if err != nil {
		t.Fatalf("parse callback failed: %v", err)
	}
	if !data.Amount.Equal(decimal.NewFromInt(150000)) {
		t.Fatalf("amount want 150000 got %s", data.Amount)
	}
	if data.IsSuccess() {
		t.Fatalf("response code 24 is a customer cancel, not success")
	}

	if _, err := ParseCallback(url.Values{}); !errors.Is(err, ErrCallbackInvalid) {
		t.Fatalf("missing txn ref must be rejected, got %v", err)
	}
}

func TestValidateConfig(t *testing.T) {
	err := ValidateConfig(&Config{PayURL: "https://x"})
	if !errors.Is(err, ErrConfigInvalid) || !strings.Contains(err.Error(), "tmn_code") {
		t.Fatalf("expected tmn_code error, got %v", err)
	}
}
