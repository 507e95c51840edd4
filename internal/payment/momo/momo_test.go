package momo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
)

func testConfig(endpoint string) *Config {
	return &Config{
		Endpoint:    endpoint,
		PartnerCode: "MOMOTEST",
		AccessKey:   "access",
		SecretKey:   "secret",
	}
}

func TestCreatePaymentPostsSignedRequest(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != createPath {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"resultCode": 0,
			"message":    "Successful.",
			"payUrl":     "https://test-payment.momo.vn/pay/abc",
		})
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	result, err := CreatePayment(context.Background(), cfg, CreateInput{
		OrderID:     "01HTXN",
		Amount:      decimal.NewFromInt(250000),
		OrderInfo:   "SF0001",
		RedirectURL: "https://api.example.com/return",
		IPNURL:      "https://api.example.com/ipn",
	})
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	if result.PayURL != "https://test-payment.momo.vn/pay/abc" {
		t.Fatalf("unexpected pay url: %s", result.PayURL)
	}

	raw := "accessKey=access&amount=250000&extraData=&ipnUrl=https://api.example.com/ipn&orderId=01HTXN&orderInfo=SF0001&partnerCode=MOMOTEST&redirectUrl=https://api.example.com/return&requestId=01HTXN&requestType=captureWallet"
	if captured["signature"] != Sign(raw, "secret") {
		t.Fatalf("request signature mismatch: %v", captured["signature"])
	}
	if captured["amount"].(float64) != 250000 {
		t.Fatalf("amount mismatch: %v", captured["amount"])
	}
}

func TestCreatePaymentRejectsFailedResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"resultCode": 22, "message": "amount invalid"})
	}))
	defer server.Close()

	_, err := CreatePayment(context.Background(), testConfig(server.URL), CreateInput{
		OrderID:     "01HTXN",
		Amount:      decimal.NewFromInt(1),
		RedirectURL: "https://r",
		IPNURL:      "https://i",
	})
	if !errors.Is(err, ErrResponseInvalid) {
		t.Fatalf("expected response invalid, got %v", err)
	}
}

func TestVerifyCallbackRoundTrip(t *testing.T) {
	cfg := testConfig("https://unused")
	data := &CallbackData{
		PartnerCode:  "MOMOTEST",
		OrderID:      "01HTXN",
		RequestID:    "01HTXN",
		Amount:       250000,
		OrderInfo:    "SF0001",
		OrderType:    "momo_wallet",
		TransID:      4088878653,
		ResultCode:   0,
		Message:      "Successful.",
		PayType:      "qr",
		ResponseTime: 1700000000000,
	}
	data.Signature = SignCallback(cfg, data)

	body, _ := json.Marshal(data)
	parsed, err := ParseCallbackJSON(body)
	if err != nil {
		t.Fatalf("parse json failed: %v", err)
	}
	if err := VerifyCallback(cfg, parsed); err != nil {
		t.Fatalf("valid ipn rejected: %v", err)
	}
	if !parsed.IsSuccess() {
		t.Fatalf("result code 0 should be success")
	}

	values := url.Values{}
	values.Set("partnerCode", data.PartnerCode)
	values.Set("orderId", data.OrderID)
	values.Set("requestId", data.RequestID)
	values.Set("amount", strconv.FormatInt(data.Amount, 10))
	values.Set("orderInfo", data.OrderInfo)
	values.Set("orderType", data.OrderType)
	values.Set("transId", strconv.FormatInt(data.TransID, 10))
	values.Set("resultCode", "0")
	values.Set("message", data.Message)
	values.Set("payType", data.PayType)
	values.Set("responseTime", strconv.FormatInt(data.ResponseTime, 10))
	values.Set("signature", data.Signature)
	fromQuery, err := ParseCallbackQuery(values)
	if err != nil {
		t.Fatalf("parse query failed: %v", err)
	}
	if err := VerifyCallback(cfg, fromQuery); err != nil {
		t.Fatalf("valid redirect rejected: %v", err)
	}

	fromQuery.Amount = 1
	if err := VerifyCallback(cfg, fromQuery); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("tampered amount must fail, got %v", err)
	}
}
