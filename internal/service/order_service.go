package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/shopspring/decimal"
)

// ReceiverInput 收货信息
type ReceiverInput struct {
	Name    string
	Phone   string
	Address string
	Email   string
}

// CustomerOrderInput 客户下单输入（来源为购物车勾选项）
type CustomerOrderInput struct {
	CustomerID    uint
	CartItemIDs   []uint
	VoucherID     *uint
	PaymentMethod string
	Platform      string
	IsPickup      bool
	Receiver      ReceiverInput
	ClientIP      string
}

// StaffOrderItem 店员录入的商品行
type StaffOrderItem struct {
	SKUID    uint
	Quantity int
}

// StaffOrderInput 店员下单输入
type StaffOrderInput struct {
	StaffID       uint
	CustomerID    uint // 可选，0 表示散客
	Items         []StaffOrderItem
	VoucherID     *uint
	PaymentMethod string
	Platform      string
	IsPickup      bool
	Receiver      ReceiverInput
	ClientIP      string
}

// OrderDraft 已定价、未落库的订单
type OrderDraft struct {
	Order     *models.Order
	Breakdown *PriceBreakdown
	Voucher   *models.Voucher
	ClientIP  string
}

// OrderPreview 订单金额预览
type OrderPreview struct {
	TotalPrice        models.Money       `json:"total_price"`
	PromotionDiscount models.Money       `json:"promotion_discount"`
	RankDiscountRate  models.Money       `json:"rank_discount_rate"`
	RankDiscount      models.Money       `json:"rank_discount"`
	VoucherDiscount   models.Money       `json:"voucher_discount"`
	TotalDiscount     models.Money       `json:"total_discount"`
	FinalTotalPrice   models.Money       `json:"final_total_price"`
	Items             []OrderPreviewItem `json:"items"`
}

// OrderPreviewItem 订单项金额预览
type OrderPreviewItem struct {
	SKUID            uint         `json:"sku_id"`
	ProductID        uint         `json:"product_id"`
	ProductName      string       `json:"product_name"`
	UnitPrice        models.Money `json:"unit_price"`
	Quantity         int          `json:"quantity"`
	PromotionID      *uint        `json:"promotion_id,omitempty"`
	PromotionPercent models.Money `json:"promotion_percent"`
	DiscountAmount   models.Money `json:"discount_amount"`
	LineTotal        models.Money `json:"line_total"`
}

type lineRequest struct {
	SKUID    uint
	Quantity int
}

// OrderService 订单构建与查询
type OrderService struct {
	orderRepo     repository.OrderRepository
	skuRepo       repository.ProductSKURepository
	cartRepo      repository.CartRepository
	customerRepo  repository.CustomerRepository
	resolver      *PromotionResolver
	validator     *VoucherValidator
	dispatcher    *PaymentDispatcher
	orderNoPrefix string
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	skuRepo repository.ProductSKURepository,
	cartRepo repository.CartRepository,
	customerRepo repository.CustomerRepository,
	resolver *PromotionResolver,
	validator *VoucherValidator,
	dispatcher *PaymentDispatcher,
	orderNoPrefix string,
) *OrderService {
	if strings.TrimSpace(orderNoPrefix) == "" {
		orderNoPrefix = "SF"
	}
	return &OrderService{
		orderRepo:     orderRepo,
		skuRepo:       skuRepo,
		cartRepo:      cartRepo,
		customerRepo:  customerRepo,
		resolver:      resolver,
		validator:     validator,
		dispatcher:    dispatcher,
		orderNoPrefix: strings.TrimSpace(orderNoPrefix),
	}
}

// PreviewCustomerOrder 客户订单预览（不写库）
func (s *OrderService) PreviewCustomerOrder(input CustomerOrderInput) (*OrderPreview, error) {
	draft, err := s.BuildCustomerOrder(input)
	if err != nil {
		return nil, err
	}
	return buildOrderPreview(draft), nil
}

// PreviewStaffOrder 店员订单预览（不写库）
func (s *OrderService) PreviewStaffOrder(input StaffOrderInput) (*OrderPreview, error) {
	draft, err := s.BuildStaffOrder(input)
	if err != nil {
		return nil, err
	}
	return buildOrderPreview(draft), nil
}

// CreateCustomerOrder 客户下单
func (s *OrderService) CreateCustomerOrder(ctx context.Context, input CustomerOrderInput) (*DispatchResult, error) {
	draft, err := s.BuildCustomerOrder(input)
	if err != nil {
		return nil, err
	}
	return s.dispatcher.Dispatch(ctx, draft)
}

// CreateStaffOrder 店员下单
func (s *OrderService) CreateStaffOrder(ctx context.Context, input StaffOrderInput) (*DispatchResult, error) {
	draft, err := s.BuildStaffOrder(input)
	if err != nil {
		return nil, err
	}
	return s.dispatcher.Dispatch(ctx, draft)
}

// BuildCustomerOrder 由购物车勾选项构建订单
func (s *OrderService) BuildCustomerOrder(input CustomerOrderInput) (*OrderDraft, error) {
	if err := validatePaymentMethod(input.PaymentMethod); err != nil {
		return nil, err
	}
	platform, err := normalizePlatform(input.Platform, constants.PlatformWeb)
	if err != nil {
		return nil, err
	}
	if err := validateReceiver(input.Receiver, input.IsPickup, true); err != nil {
		return nil, err
	}
	customer, err := s.customerRepo.GetByID(input.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}

	cartIDs := uniqueIDs(input.CartItemIDs)
	if len(cartIDs) == 0 {
		return nil, ErrEmptyCart
	}
	cartItems, err := s.cartRepo.ListByIDs(customer.ID, cartIDs)
	if err != nil {
		return nil, ErrCartFetchFailed
	}
	if len(cartItems) == 0 {
		return nil, ErrEmptyCart
	}
	requests := make([]lineRequest, 0, len(cartItems))
	selected := make([]uint, 0, len(cartItems))
	for _, item := range cartItems {
		requests = append(requests, lineRequest{SKUID: item.SKUID, Quantity: item.Quantity})
		selected = append(selected, item.ID)
	}

	order := &models.Order{
		CustomerID:    customer.ID,
		Source:        constants.OrderSourceCustomer,
		PaymentMethod: strings.TrimSpace(input.PaymentMethod),
		Platform:      platform,
		IsPickup:      input.IsPickup,
		CartItemIDs:   models.UintList(selected),
	}
	applyReceiver(order, input.Receiver, customer)
	return s.buildDraft(order, requests, customer, input.VoucherID, input.ClientIP)
}

// BuildStaffOrder 由店员录入的 SKU/数量构建订单
func (s *OrderService) BuildStaffOrder(input StaffOrderInput) (*OrderDraft, error) {
	if err := validatePaymentMethod(input.PaymentMethod); err != nil {
		return nil, err
	}
	platform, err := normalizePlatform(input.Platform, constants.PlatformStaff)
	if err != nil {
		return nil, err
	}
	if err := validateReceiver(input.Receiver, input.IsPickup, false); err != nil {
		return nil, err
	}
	requests, err := mergeStaffOrderItems(input.Items)
	if err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return nil, ErrEmptyCart
	}

	var customer *models.Customer
	if input.CustomerID != 0 {
		customer, err = s.customerRepo.GetByID(input.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, ErrCustomerNotFound
		}
	}

	order := &models.Order{
		Source:        constants.OrderSourceStaff,
		PaymentMethod: strings.TrimSpace(input.PaymentMethod),
		Platform:      platform,
		IsPickup:      input.IsPickup,
		CartItemIDs:   models.UintList{},
	}
	if customer != nil {
		order.CustomerID = customer.ID
	}
	if input.StaffID != 0 {
		staffID := input.StaffID
		order.StaffID = &staffID
	}
	applyReceiver(order, input.Receiver, customer)
	return s.buildDraft(order, requests, customer, input.VoucherID, input.ClientIP)
}

// buildDraft 两种入口共用的逐行定价与折扣叠加
func (s *OrderService) buildDraft(order *models.Order, requests []lineRequest, customer *models.Customer, voucherID *uint, clientIP string) (*OrderDraft, error) {
	lines, err := s.resolveLines(requests)
	if err != nil {
		return nil, err
	}

	var voucher *models.Voucher
	var applyVoucher voucherApplier
	if voucherID != nil && *voucherID != 0 {
		voucher, err = s.validator.Lookup(*voucherID)
		if err != nil {
			return nil, err
		}
		applyVoucher = func(base decimal.Decimal) (decimal.Decimal, error) {
			return s.validator.Validate(voucher, order.CustomerID, base)
		}
	}

	breakdown, err := applyDiscountStack(lines, rankDiscountRate(customer), applyVoucher)
	if err != nil {
		return nil, err
	}

	order.OrderNo = generateOrderNo(s.orderNoPrefix)
	order.TotalPrice = models.NewMoneyFromDecimal(breakdown.TotalPrice)
	order.PromotionDiscount = models.NewMoneyFromDecimal(breakdown.PromotionDiscount)
	order.RankDiscountRate = models.NewMoneyFromDecimal(breakdown.RankDiscountRate)
	order.RankDiscount = models.NewMoneyFromDecimal(breakdown.RankDiscount)
	order.VoucherDiscount = models.NewMoneyFromDecimal(breakdown.VoucherDiscount)
	order.TotalDiscount = models.NewMoneyFromDecimal(breakdown.TotalDiscount)
	order.FinalTotalPrice = models.NewMoneyFromDecimal(breakdown.FinalTotalPrice)
	if voucher != nil {
		id := voucher.ID
		order.VoucherID = &id
	}
	order.Items = buildOrderItems(breakdown.Lines)

	return &OrderDraft{
		Order:     order,
		Breakdown: breakdown,
		Voucher:   voucher,
		ClientIP:  strings.TrimSpace(clientIP),
	}, nil
}

// resolveLines 读取 SKU、校验库存并批量解析活动（不扣减库存）
func (s *OrderService) resolveLines(requests []lineRequest) ([]PricedLine, error) {
	ids := make([]uint, 0, len(requests))
	for _, req := range requests {
		ids = append(ids, req.SKUID)
	}
	skus, err := s.skuRepo.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	skuMap := make(map[uint]*models.ProductSKU, len(skus))
	for i := range skus {
		skuMap[skus[i].ID] = &skus[i]
	}

	lines := make([]PricedLine, 0, len(requests))
	scopes := make([]PromotionScope, 0, len(requests))
	for _, req := range requests {
		sku := skuMap[req.SKUID]
		if sku == nil || !sku.IsActive || sku.Product == nil || !sku.Product.IsActive {
			return nil, ErrSKUNotFound
		}
		if sku.Stock < req.Quantity {
			return nil, &OutOfStockError{
				SKUID:       sku.ID,
				ProductName: sku.Product.Name,
				Available:   sku.Stock,
				Requested:   req.Quantity,
			}
		}
		lines = append(lines, PricedLine{
			SKU:         sku,
			ProductName: sku.Product.Name,
			UnitPrice:   sku.PriceAmount.Decimal.Round(2),
			Quantity:    req.Quantity,
		})
		scopes = append(scopes, PromotionScope{
			SKUID:      sku.ID,
			ProductID:  sku.ProductID,
			BrandID:    sku.Product.BrandID,
			CategoryID: sku.Product.CategoryID,
		})
	}

	promotions, err := s.resolver.ResolveBatch(scopes)
	if err != nil {
		return nil, err
	}
	for i := range lines {
		lines[i].Promotion = promotions[i]
	}
	return lines, nil
}

func buildOrderItems(lines []PricedLine) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		item := models.OrderItem{
			SKUID:          line.SKU.ID,
			ProductID:      line.SKU.ProductID,
			ProductName:    line.ProductName,
			SKUCode:        line.SKU.SKUCode,
			UnitPrice:      models.NewMoneyFromDecimal(line.UnitPrice),
			Quantity:       line.Quantity,
			DiscountAmount: models.NewMoneyFromDecimal(line.PromotionDiscount),
			LineTotal:      models.NewMoneyFromDecimal(line.Subtotal().Sub(line.PromotionDiscount)),
		}
		if line.Promotion != nil {
			id := line.Promotion.ID
			item.PromotionID = &id
			item.PromotionPercent = models.NewMoneyFromDecimal(line.Promotion.DiscountPercent.Decimal)
		}
		items = append(items, item)
	}
	return items
}

func buildOrderPreview(draft *OrderDraft) *OrderPreview {
	order := draft.Order
	items := make([]OrderPreviewItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderPreviewItem{
			SKUID:            item.SKUID,
			ProductID:        item.ProductID,
			ProductName:      item.ProductName,
			UnitPrice:        item.UnitPrice,
			Quantity:         item.Quantity,
			PromotionID:      item.PromotionID,
			PromotionPercent: item.PromotionPercent,
			DiscountAmount:   item.DiscountAmount,
			LineTotal:        item.LineTotal,
		})
	}
	return &OrderPreview{
		TotalPrice:        order.TotalPrice,
		PromotionDiscount: order.PromotionDiscount,
		RankDiscountRate:  order.RankDiscountRate,
		RankDiscount:      order.RankDiscount,
		VoucherDiscount:   order.VoucherDiscount,
		TotalDiscount:     order.TotalDiscount,
		FinalTotalPrice:   order.FinalTotalPrice,
		Items:             items,
	}
}

func validatePaymentMethod(method string) error {
	switch strings.TrimSpace(method) {
	case constants.PaymentMethodCOD, constants.PaymentMethodVNPay, constants.PaymentMethodMoMo:
		return nil
	default:
		return ErrPaymentMethodUnsupported
	}
}

func normalizePlatform(raw, fallback string) (string, error) {
	platform := strings.ToLower(strings.TrimSpace(raw))
	if platform == "" {
		return fallback, nil
	}
	switch platform {
	case constants.PlatformWeb, constants.PlatformStaff, constants.PlatformMobile:
		return platform, nil
	default:
		return "", ErrPlatformInvalid
	}
}

// validateReceiver 配送单需要完整收货信息；客户自提至少需要姓名和电话
func validateReceiver(receiver ReceiverInput, isPickup, requireContact bool) error {
	name := strings.TrimSpace(receiver.Name)
	phone := strings.TrimSpace(receiver.Phone)
	if !isPickup {
		if name == "" || phone == "" || strings.TrimSpace(receiver.Address) == "" {
			return ErrReceiverRequired
		}
		return nil
	}
	if requireContact && (name == "" || phone == "") {
		return ErrReceiverRequired
	}
	return nil
}

func applyReceiver(order *models.Order, receiver ReceiverInput, customer *models.Customer) {
	order.ReceiverName = strings.TrimSpace(receiver.Name)
	order.ReceiverPhone = strings.TrimSpace(receiver.Phone)
	order.ReceiverAddress = strings.TrimSpace(receiver.Address)
	order.ReceiverEmail = strings.TrimSpace(receiver.Email)
	if customer == nil {
		return
	}
	if order.ReceiverName == "" {
		order.ReceiverName = customer.FullName
	}
	if order.ReceiverPhone == "" {
		order.ReceiverPhone = customer.Phone
	}
	if order.ReceiverEmail == "" {
		order.ReceiverEmail = customer.Email
	}
}

// mergeStaffOrderItems 合并同一 SKU 的录入行
func mergeStaffOrderItems(items []StaffOrderItem) ([]lineRequest, error) {
	merged := make([]lineRequest, 0, len(items))
	index := make(map[uint]int, len(items))
	for _, item := range items {
		if item.SKUID == 0 || item.Quantity <= 0 {
			return nil, ErrInvalidOrderItem
		}
		if pos, ok := index[item.SKUID]; ok {
			merged[pos].Quantity += item.Quantity
			continue
		}
		index[item.SKUID] = len(merged)
		merged = append(merged, lineRequest{SKUID: item.SKUID, Quantity: item.Quantity})
	}
	return merged, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	result := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}

func generateOrderNo(prefix string) string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("%s%s%s", prefix, now, randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}
