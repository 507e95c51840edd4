package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/payment/momo"
	"github.com/storefront-next/internal/payment/vnpay"

	"github.com/shopspring/decimal"
)

// GatewayCreateInput 发起网关支付参数
type GatewayCreateInput struct {
	TxnRef    string
	Amount    decimal.Decimal
	OrderInfo string
	ReturnURL string
	NotifyURL string
	ClientIP  string
	ExpireAt  time.Time
}

// GatewayCreateResult 网关返回的跳转信息
type GatewayCreateResult struct {
	PayURL string
}

// GatewayCallback 归一化后的回调数据
type GatewayCallback struct {
	TxnRef      string
	Success     bool
	Code        string
	ProviderRef string
	Amount      decimal.Decimal
	Raw         map[string]interface{}
}

// PaymentGateway 支付网关适配
type PaymentGateway interface {
	Provider() string
	// ChargeAmount 网关实际扣款金额，支付记录与回调核对均以此为准
	ChargeAmount(amount decimal.Decimal) decimal.Decimal
	Create(ctx context.Context, input GatewayCreateInput) (*GatewayCreateResult, error)
	// ParseCallback 解析成功时总是返回数据，验签失败通过 error 返回，便于走失败补偿
	ParseCallback(query url.Values, body []byte) (*GatewayCallback, error)
}

// VNPayGateway VNPay 适配
type VNPayGateway struct {
	cfg vnpay.Config
}

// NewVNPayGateway 创建 VNPay 适配
func NewVNPayGateway(cfg config.VNPayGatewayConfig) *VNPayGateway {
	return &VNPayGateway{cfg: vnpay.Config{
		PayURL:     cfg.PayURL,
		TmnCode:    cfg.TmnCode,
		HashSecret: cfg.HashSecret,
		Locale:     cfg.Locale,
		CurrCode:   cfg.CurrCode,
	}}
}

// Provider 网关标识
func (g *VNPayGateway) Provider() string { return constants.PaymentMethodVNPay }

// ChargeAmount vnp_Amount 为金额 x100 的整数，保留两位小数即可原样传递
func (g *VNPayGateway) ChargeAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// Create VNPay 只需生成签名跳转地址，IPN 地址在商户后台配置
func (g *VNPayGateway) Create(_ context.Context, input GatewayCreateInput) (*GatewayCreateResult, error) {
	result, err := vnpay.CreatePayment(&g.cfg, vnpay.CreateInput{
		TxnRef:    input.TxnRef,
		Amount:    input.Amount,
		OrderInfo: input.OrderInfo,
		ReturnURL: input.ReturnURL,
		IPAddr:    input.ClientIP,
		ExpireAt:  input.ExpireAt,
	})
	if err != nil {
		return nil, err
	}
	return &GatewayCreateResult{PayURL: result.PayURL}, nil
}

// ParseCallback 解析并验签 VNPay 回调
func (g *VNPayGateway) ParseCallback(query url.Values, _ []byte) (*GatewayCallback, error) {
	data, err := vnpay.ParseCallback(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentCallbackInvalid, err)
	}
	callback := &GatewayCallback{
		TxnRef:      data.TxnRef,
		Success:     data.IsSuccess(),
		Code:        data.ResponseCode,
		ProviderRef: data.TransactionNo,
		Amount:      data.Amount,
		Raw:         data.Raw,
	}
	if err := vnpay.VerifyCallback(&g.cfg, query); err != nil {
		return callback, fmt.Errorf("%w: %v", ErrPaymentCallbackInvalid, err)
	}
	return callback, nil
}

// MoMoGateway MoMo 适配
type MoMoGateway struct {
	cfg momo.Config
}

// NewMoMoGateway 创建 MoMo 适配
func NewMoMoGateway(cfg config.MoMoGatewayConfig) *MoMoGateway {
	gateway := &MoMoGateway{cfg: momo.Config{
		Endpoint:    cfg.Endpoint,
		PartnerCode: cfg.PartnerCode,
		AccessKey:   cfg.AccessKey,
		SecretKey:   cfg.SecretKey,
		RequestType: cfg.RequestType,
	}}
	if cfg.TimeoutMS > 0 {
		gateway.cfg.Timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	}
	return gateway
}

// Provider 网关标识
func (g *MoMoGateway) Provider() string { return constants.PaymentMethodMoMo }

// ChargeAmount MoMo 按整数 VND 扣款
func (g *MoMoGateway) ChargeAmount(amount decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(momo.ChargeAmount(amount))
}

// Create 调用 MoMo 下单接口
func (g *MoMoGateway) Create(ctx context.Context, input GatewayCreateInput) (*GatewayCreateResult, error) {
	result, err := momo.CreatePayment(ctx, &g.cfg, momo.CreateInput{
		OrderID:     input.TxnRef,
		RequestID:   input.TxnRef,
		Amount:      input.Amount,
		OrderInfo:   input.OrderInfo,
		RedirectURL: input.ReturnURL,
		IPNURL:      input.NotifyURL,
	})
	if err != nil {
		return nil, err
	}
	payURL := result.PayURL
	if payURL == "" {
		payURL = result.Deeplink
	}
	return &GatewayCreateResult{PayURL: payURL}, nil
}

// ParseCallback IPN 为 JSON 请求体，浏览器跳转为查询参数
func (g *MoMoGateway) ParseCallback(query url.Values, body []byte) (*GatewayCallback, error) {
	var (
		data *momo.CallbackData
		err  error
	)
	if len(strings.TrimSpace(string(body))) > 0 {
		data, err = momo.ParseCallbackJSON(body)
	} else {
		data, err = momo.ParseCallbackQuery(query)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentCallbackInvalid, err)
	}
	callback := &GatewayCallback{
		TxnRef:      data.OrderID,
		Success:     data.IsSuccess(),
		Code:        strconv.Itoa(data.ResultCode),
		ProviderRef: strconv.FormatInt(data.TransID, 10),
		Amount:      decimal.NewFromInt(data.Amount),
		Raw:         data.ToMap(),
	}
	if err := momo.VerifyCallback(&g.cfg, data); err != nil {
		return callback, fmt.Errorf("%w: %v", ErrPaymentCallbackInvalid, err)
	}
	return callback, nil
}

// NewPaymentGateways 按配置装配已启用的网关
func NewPaymentGateways(cfg config.PaymentConfig) (map[string]PaymentGateway, error) {
	gateways := make(map[string]PaymentGateway)
	if cfg.VNPay.Enabled {
		gateway := NewVNPayGateway(cfg.VNPay)
		if err := vnpay.ValidateConfig(&gateway.cfg); err != nil {
			return nil, err
		}
		gateways[gateway.Provider()] = gateway
	}
	if cfg.MoMo.Enabled {
		gateway := NewMoMoGateway(cfg.MoMo)
		if err := momo.ValidateConfig(&gateway.cfg); err != nil {
			return nil, err
		}
		gateways[gateway.Provider()] = gateway
	}
	return gateways, nil
}

func isGatewayConfigError(err error) bool {
	return errors.Is(err, vnpay.ErrConfigInvalid) || errors.Is(err, momo.ErrConfigInvalid)
}
