package momo

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	ErrConfigInvalid    = errors.New("momo config invalid")
	ErrInputInvalid     = errors.New("momo input invalid")
	ErrRequestFailed    = errors.New("momo request failed")
	ErrResponseInvalid  = errors.New("momo response invalid")
	ErrSignatureInvalid = errors.New("momo signature invalid")
)

// ResultCodeSuccess 交易成功
const ResultCodeSuccess = 0

const createPath = "/v2/gateway/api/create"

// Config MoMo 配置
type Config struct {
	Endpoint    string        `json:"endpoint"`     // 网关地址，如 https://test-payment.momo.vn
	PartnerCode string        `json:"partner_code"` // 商户编码
	AccessKey   string        `json:"access_key"`   // Access Key
	SecretKey   string        `json:"secret_key"`   // 签名密钥
	RequestType string        `json:"request_type"` // 默认 captureWallet
	Lang        string        `json:"lang"`         // vi / en
	Timeout     time.Duration `json:"-"`            // 请求超时
}

// CreateInput 创建支付输入
type CreateInput struct {
	OrderID     string
	RequestID   string
	Amount      decimal.Decimal
	OrderInfo   string
	RedirectURL string
	IPNURL      string
	ExtraData   string
}

// CreateResult 创建支付结果
type CreateResult struct {
	PayURL     string
	Deeplink   string
	QRCodeURL  string
	ResultCode int
	Message    string
	Raw        map[string]interface{}
}

// CallbackData IPN / 浏览器跳转回调数据
type CallbackData struct {
	PartnerCode  string `json:"partnerCode"`
	OrderID      string `json:"orderId"`
	RequestID    string `json:"requestId"`
	Amount       int64  `json:"amount"`
	OrderInfo    string `json:"orderInfo"`
	OrderType    string `json:"orderType"`
	TransID      int64  `json:"transId"`
	ResultCode   int    `json:"resultCode"`
	Message      string `json:"message"`
	PayType      string `json:"payType"`
	ResponseTime int64  `json:"responseTime"`
	ExtraData    string `json:"extraData"`
	Signature    string `json:"signature"`
}

// ValidateConfig 校验配置
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return fmt.Errorf("%w: endpoint is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.PartnerCode) == "" {
		return fmt.Errorf("%w: partner_code is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.AccessKey) == "" || strings.TrimSpace(cfg.SecretKey) == "" {
		return fmt.Errorf("%w: access_key and secret_key are required", ErrConfigInvalid)
	}
	return nil
}

func (c *Config) requestType() string {
	if v := strings.TrimSpace(c.RequestType); v != "" {
		return v
	}
	return "captureWallet"
}

func (c *Config) lang() string {
	if v := strings.TrimSpace(c.Lang); v != "" {
		return v
	}
	return "vi"
}

func (c *Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return 15 * time.Second
}

// CreatePayment 调用 MoMo 创建支付，返回收银台地址
func CreatePayment(ctx context.Context, cfg *Config, input CreateInput) (*CreateResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.OrderID) == "" || strings.TrimSpace(input.RedirectURL) == "" || strings.TrimSpace(input.IPNURL) == "" {
		return nil, fmt.Errorf("%w: order_id, redirect_url and ipn_url are required", ErrInputInvalid)
	}
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInputInvalid)
	}
	requestID := strings.TrimSpace(input.RequestID)
	if requestID == "" {
		requestID = input.OrderID
	}
	amount := ChargeAmount(input.Amount)

	raw := fmt.Sprintf("accessKey=%s&amount=%d&extraData=%s&ipnUrl=%s&orderId=%s&orderInfo=%s&partnerCode=%s&redirectUrl=%s&requestId=%s&requestType=%s",
		cfg.AccessKey, amount, input.ExtraData, input.IPNURL, input.OrderID, input.OrderInfo,
		cfg.PartnerCode, input.RedirectURL, requestID, cfg.requestType())
	payload := map[string]interface{}{
		"partnerCode": cfg.PartnerCode,
		"requestId":   requestID,
		"amount":      amount,
		"orderId":     input.OrderID,
		"orderInfo":   input.OrderInfo,
		"redirectUrl": input.RedirectURL,
		"ipnUrl":      input.IPNURL,
		"requestType": cfg.requestType(),
		"extraData":   input.ExtraData,
		"lang":        cfg.lang(),
		"signature":   Sign(raw, cfg.SecretKey),
	}

	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/") + createPath
	respBytes, err := postJSON(ctx, endpoint, payload, cfg.timeout())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	var resp struct {
		ResultCode int    `json:"resultCode"`
		Message    string `json:"message"`
		PayURL     string `json:"payUrl"`
		Deeplink   string `json:"deeplink"`
		QRCodeURL  string `json:"qrCodeUrl"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if resp.ResultCode != ResultCodeSuccess || strings.TrimSpace(resp.PayURL) == "" {
		return nil, fmt.Errorf("%w: result_code=%d message=%s", ErrResponseInvalid, resp.ResultCode, resp.Message)
	}
	var rawResp map[string]interface{}
	_ = json.Unmarshal(respBytes, &rawResp)

	return &CreateResult{
		PayURL:     resp.PayURL,
		Deeplink:   resp.Deeplink,
		QRCodeURL:  resp.QRCodeURL,
		ResultCode: resp.ResultCode,
		Message:    resp.Message,
		Raw:        rawResp,
	}, nil
}

// ParseCallbackJSON 解析 IPN 请求体
func ParseCallbackJSON(body []byte) (*CallbackData, error) {
	if len(body) == 0 {
		return nil, ErrResponseInvalid
	}
	var data CallbackData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if strings.TrimSpace(data.OrderID) == "" {
		return nil, fmt.Errorf("%w: missing orderId", ErrResponseInvalid)
	}
	return &data, nil
}

// ParseCallbackQuery 解析浏览器跳转参数
func ParseCallbackQuery(values url.Values) (*CallbackData, error) {
	data := &CallbackData{
		PartnerCode: values.Get("partnerCode"),
		OrderID:     strings.TrimSpace(values.Get("orderId")),
		RequestID:   values.Get("requestId"),
		OrderInfo:   values.Get("orderInfo"),
		OrderType:   values.Get("orderType"),
		Message:     values.Get("message"),
		PayType:     values.Get("payType"),
		ExtraData:   values.Get("extraData"),
		Signature:   values.Get("signature"),
	}
	if data.OrderID == "" {
		return nil, fmt.Errorf("%w: missing orderId", ErrResponseInvalid)
	}
	var err error
	if data.Amount, err = parseInt64(values.Get("amount")); err != nil {
		return nil, fmt.Errorf("%w: invalid amount", ErrResponseInvalid)
	}
	if data.TransID, err = parseInt64(values.Get("transId")); err != nil {
		return nil, fmt.Errorf("%w: invalid transId", ErrResponseInvalid)
	}
	if data.ResponseTime, err = parseInt64(values.Get("responseTime")); err != nil {
		return nil, fmt.Errorf("%w: invalid responseTime", ErrResponseInvalid)
	}
	resultCode, err := parseInt64(values.Get("resultCode"))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid resultCode", ErrResponseInvalid)
	}
	data.ResultCode = int(resultCode)
	return data, nil
}

// VerifyCallback 校验回调签名
func VerifyCallback(cfg *Config, data *CallbackData) error {
	if cfg == nil || data == nil {
		return ErrConfigInvalid
	}
	expected := Sign(callbackRawSignature(cfg.AccessKey, data), cfg.SecretKey)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(data.Signature)))) {
		return ErrSignatureInvalid
	}
	return nil
}

// IsSuccess 判断回调是否表示支付成功
func (d *CallbackData) IsSuccess() bool {
	return d != nil && d.ResultCode == ResultCodeSuccess
}

// ToMap 转为可落库的原始数据
func (d *CallbackData) ToMap() map[string]interface{} {
	if d == nil {
		return nil
	}
	var out map[string]interface{}
	body, err := json.Marshal(d)
	if err != nil {
		return nil
	}
	_ = json.Unmarshal(body, &out)
	return out
}

// ChargeAmount MoMo 只接受整数 VND，按四舍五入取整
func ChargeAmount(amount decimal.Decimal) int64 {
	return amount.Round(0).IntPart()
}

// SignCallback 按回调字段生成签名
func SignCallback(cfg *Config, data *CallbackData) string {
	return Sign(callbackRawSignature(cfg.AccessKey, data), cfg.SecretKey)
}

func callbackRawSignature(accessKey string, data *CallbackData) string {
	return fmt.Sprintf("accessKey=%s&amount=%d&extraData=%s&message=%s&orderId=%s&orderInfo=%s&orderType=%s&partnerCode=%s&payType=%s&requestId=%s&responseTime=%d&resultCode=%d&transId=%d",
		accessKey, data.Amount, data.ExtraData, data.Message, data.OrderID, data.OrderInfo, data.OrderType,
		data.PartnerCode, data.PayType, data.RequestID, data.ResponseTime, data.ResultCode, data.TransID)
}

// Sign HMAC-SHA256 签名
func Sign(raw, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

func parseInt64(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func postJSON(ctx context.Context, endpoint string, payload map[string]interface{}, timeout time.Duration) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	client := &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}
	return respBody, nil
}
