package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrConfigInvalid    = errors.New("vnpay config invalid")
	ErrInputInvalid     = errors.New("vnpay input invalid")
	ErrCallbackInvalid  = errors.New("vnpay callback invalid")
	ErrSignatureInvalid = errors.New("vnpay signature invalid")
)

const (
	version      = "2.1.0"
	commandPay   = "pay"
	orderType    = "other"
	dateLayout   = "20060102150405"
	hashField    = "vnp_SecureHash"
	hashType     = "vnp_SecureHashType"
	fieldPrefix  = "vnp_"
	responseOK   = "00"
	txnStatusOK  = "00"
	amountFactor = 100
)

// 越南时区，VNPay 要求请求时间使用 GMT+7
var vnLocation = time.FixedZone("ICT", 7*3600)

// Config VNPay 配置
type Config struct {
	PayURL     string `json:"pay_url"`     // 支付网关地址
	TmnCode    string `json:"tmn_code"`    // 商户号
	HashSecret string `json:"hash_secret"` // 签名密钥
	Locale     string `json:"locale"`      // vn / en
	CurrCode   string `json:"curr_code"`   // 默认 VND
}

// CreateInput 创建支付输入
type CreateInput struct {
	TxnRef    string
	Amount    decimal.Decimal
	OrderInfo string
	ReturnURL string
	IPAddr    string
	Now       time.Time
	ExpireAt  time.Time
}

// CreateResult 创建支付结果
type CreateResult struct {
	PayURL string
	TxnRef string
}

// CallbackData 回调数据（浏览器跳转与 IPN 字段一致）
type CallbackData struct {
	TxnRef            string
	Amount            decimal.Decimal
	ResponseCode      string
	TransactionStatus string
	TransactionNo     string
	BankCode          string
	PayDate           string
	Raw               map[string]interface{}
}

// ValidateConfig 校验配置
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.PayURL) == "" {
		return fmt.Errorf("%w: pay_url is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.TmnCode) == "" {
		return fmt.Errorf("%w: tmn_code is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.HashSecret) == "" {
		return fmt.Errorf("%w: hash_secret is required", ErrConfigInvalid)
	}
	return nil
}

// CreatePayment 生成带签名的支付跳转地址
func CreatePayment(cfg *Config, input CreateInput) (*CreateResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.TxnRef) == "" || strings.TrimSpace(input.ReturnURL) == "" {
		return nil, fmt.Errorf("%w: txn_ref and return_url are required", ErrInputInvalid)
	}
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInputInvalid)
	}
	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}
	locale := strings.TrimSpace(cfg.Locale)
	if locale == "" {
		locale = "vn"
	}
	currCode := strings.TrimSpace(cfg.CurrCode)
	if currCode == "" {
		currCode = "VND"
	}
	ipAddr := strings.TrimSpace(input.IPAddr)
	if ipAddr == "" {
		ipAddr = "127.0.0.1"
	}

	params := map[string]string{
		"vnp_Version":    version,
		"vnp_Command":    commandPay,
		"vnp_TmnCode":    strings.TrimSpace(cfg.TmnCode),
		"vnp_Amount":     input.Amount.Mul(decimal.NewFromInt(amountFactor)).Round(0).String(),
		"vnp_CurrCode":   currCode,
		"vnp_TxnRef":     input.TxnRef,
		"vnp_OrderInfo":  strings.TrimSpace(input.OrderInfo),
		"vnp_OrderType":  orderType,
		"vnp_Locale":     locale,
		"vnp_ReturnUrl":  input.ReturnURL,
		"vnp_IpAddr":     ipAddr,
		"vnp_CreateDate": now.In(vnLocation).Format(dateLayout),
	}
	if !input.ExpireAt.IsZero() {
		params["vnp_ExpireDate"] = input.ExpireAt.In(vnLocation).Format(dateLayout)
	}

	query := canonicalQuery(params)
	signature := Sign(query, cfg.HashSecret)
	separator := "?"
	if strings.Contains(cfg.PayURL, "?") {
		separator = "&"
	}
	return &CreateResult{
		PayURL: strings.TrimSpace(cfg.PayURL) + separator + query + "&" + hashField + "=" + signature,
		TxnRef: input.TxnRef,
	}, nil
}

// VerifyCallback 校验回调签名，仅 vnp_ 前缀字段参与签名
func VerifyCallback(cfg *Config, values url.Values) error {
	if cfg == nil || strings.TrimSpace(cfg.HashSecret) == "" {
		return ErrConfigInvalid
	}
	received := strings.TrimSpace(values.Get(hashField))
	if received == "" {
		return fmt.Errorf("%w: missing secure hash", ErrSignatureInvalid)
	}
	params := make(map[string]string)
	for key := range values {
		if !strings.HasPrefix(key, fieldPrefix) || key == hashField || key == hashType {
			continue
		}
		if value := values.Get(key); value != "" {
			params[key] = value
		}
	}
	expected := Sign(canonicalQuery(params), cfg.HashSecret)
	if !hmac.Equal([]byte(strings.ToLower(expected)), []byte(strings.ToLower(received))) {
		return ErrSignatureInvalid
	}
	return nil
}

// ParseCallback 解析回调参数
func ParseCallback(values url.Values) (*CallbackData, error) {
	txnRef := strings.TrimSpace(values.Get("vnp_TxnRef"))
	if txnRef == "" {
		return nil, fmt.Errorf("%w: missing vnp_TxnRef", ErrCallbackInvalid)
	}
	amount := decimal.Zero
	if raw := strings.TrimSpace(values.Get("vnp_Amount")); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid vnp_Amount", ErrCallbackInvalid)
		}
		amount = parsed.Div(decimal.NewFromInt(amountFactor)).Round(2)
	}
	raw := make(map[string]interface{}, len(values))
	for key := range values {
		raw[key] = values.Get(key)
	}
	return &CallbackData{
		TxnRef:            txnRef,
		Amount:            amount,
		ResponseCode:      strings.TrimSpace(values.Get("vnp_ResponseCode")),
		TransactionStatus: strings.TrimSpace(values.Get("vnp_TransactionStatus")),
		TransactionNo:     strings.TrimSpace(values.Get("vnp_TransactionNo")),
		BankCode:          strings.TrimSpace(values.Get("vnp_BankCode")),
		PayDate:           strings.TrimSpace(values.Get("vnp_PayDate")),
		Raw:               raw,
	}, nil
}

// IsSuccess 判断回调是否表示支付成功
func (d *CallbackData) IsSuccess() bool {
	if d == nil {
		return false
	}
	if d.ResponseCode != responseOK {
		return false
	}
	return d.TransactionStatus == "" || d.TransactionStatus == txnStatusOK
}

// Sign 对规范化查询串做 HMAC-SHA512
func Sign(data, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// canonicalQuery 按字段名升序拼接 urlencode 后的 key=value
func canonicalQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key, value := range params {
		if value == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, url.QueryEscape(key)+"="+url.QueryEscape(params[key]))
	}
	return strings.Join(pairs, "&")
}
