package service

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/events"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func openServiceTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.MigrateAll(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	previous := models.DB
	models.DB = db
	t.Cleanup(func() { models.DB = previous })
	return db
}

type stubScheduler struct {
	mu        sync.Mutex
	scheduled map[uint]time.Duration
	canceled  []uint
	err       error
}

func newStubScheduler() *stubScheduler {
	return &stubScheduler{scheduled: make(map[uint]time.Duration)}
}

func (s *stubScheduler) Schedule(_ context.Context, orderID uint, delay time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.scheduled[orderID] = delay
	return nil
}

func (s *stubScheduler) Cancel(_ context.Context, orderID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scheduled, orderID)
	s.canceled = append(s.canceled, orderID)
	return nil
}

func (s *stubScheduler) isScheduled(orderID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.scheduled[orderID]
	return ok
}

func (s *stubScheduler) canceledCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.canceled)
}

type stubNotifier struct {
	mu       sync.Mutex
	statuses []string
}

func (n *stubNotifier) NotifyOrderStatus(_ context.Context, order *models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statuses = append(n.statuses, order.Status)
}

func (n *stubNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.statuses)
}

type stubPublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
}

func (p *stubPublisher) PublishOrderEvent(_ context.Context, event events.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *stubPublisher) Close() error { return nil }

func (p *stubPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := make([]string, 0, len(p.events))
	for _, event := range p.events {
		result = append(result, event.Type)
	}
	return result
}

type stubGateway struct {
	provider  string
	createErr error
	lastInput GatewayCreateInput
	callback  *GatewayCallback
	verifyErr error
}

func (g *stubGateway) Provider() string { return g.provider }

func (g *stubGateway) ChargeAmount(amount decimal.Decimal) decimal.Decimal { return amount.Round(2) }

func (g *stubGateway) Create(_ context.Context, input GatewayCreateInput) (*GatewayCreateResult, error) {
	g.lastInput = input
	if g.createErr != nil {
		return nil, g.createErr
	}
	return &GatewayCreateResult{PayURL: "https://pay.example/redirect?ref=" + input.TxnRef}, nil
}

func (g *stubGateway) ParseCallback(_ url.Values, _ []byte) (*GatewayCallback, error) {
	return g.callback, g.verifyErr
}

// orderTestEnv 装配真实仓库 + 桩外部依赖
type orderTestEnv struct {
	db          *gorm.DB
	skuRepo     *repository.GormProductSKURepository
	orderRepo   *repository.GormOrderRepository
	cartRepo    *repository.GormCartRepository
	paymentRepo *repository.GormPaymentRepository
	usageRepo   *repository.GormVoucherUsageRepository
	promoRepo   *repository.GormPromotionRepository
	scheduler   *stubScheduler
	notifier    *stubNotifier
	publisher   *stubPublisher
	gateway     *stubGateway
	lifecycle   *OrderLifecycleService
	dispatcher  *PaymentDispatcher
	orders      *OrderService
}

func newOrderTestEnv(t *testing.T, name string) *orderTestEnv {
	t.Helper()
	db := openServiceTestDB(t, name)
	env := &orderTestEnv{
		db:          db,
		skuRepo:     repository.NewProductSKURepository(db),
		orderRepo:   repository.NewOrderRepository(db),
		cartRepo:    repository.NewCartRepository(db),
		paymentRepo: repository.NewPaymentRepository(db),
		usageRepo:   repository.NewVoucherUsageRepository(db),
		promoRepo:   repository.NewPromotionRepository(db),
		scheduler:   newStubScheduler(),
		notifier:    &stubNotifier{},
		publisher:   &stubPublisher{},
		gateway:     &stubGateway{provider: constants.PaymentMethodVNPay},
	}
	customerRepo := repository.NewCustomerRepository(db)
	ledger := NewInventoryLedger(env.skuRepo)
	compensation := NewCompensationEngine(ledger, env.usageRepo, env.promoRepo)
	loyalty := NewLoyaltyService(customerRepo, repository.NewRankRepository(db))
	env.lifecycle = NewOrderLifecycleService(
		env.orderRepo,
		env.cartRepo,
		repository.NewShipperRepository(db),
		compensation,
		loyalty,
		NewLocalOrderLocker(time.Second),
		env.scheduler,
		env.notifier,
		env.publisher,
	)
	env.dispatcher = NewPaymentDispatcher(
		env.orderRepo,
		env.cartRepo,
		env.paymentRepo,
		env.promoRepo,
		env.usageRepo,
		ledger,
		env.lifecycle,
		env.scheduler,
		env.notifier,
		env.publisher,
		map[string]PaymentGateway{constants.PaymentMethodVNPay: env.gateway},
		PaymentDispatcherOptions{
			CallbackBaseURL: "https://api.example.com/",
			ReturnURLs:      config.PlatformReturnURLs{
				Web:    "https://shop.example.com/payment/result",
				Staff:  "https://staff.example.com/orders/payment",
				Mobile: "storefront://payment/result",
			},
			PaymentTimeout: 16 * time.Minute,
		},
	)
	env.orders = NewOrderService(
		env.orderRepo,
		env.skuRepo,
		env.cartRepo,
		customerRepo,
		NewPromotionResolver(env.promoRepo),
		NewVoucherValidator(repository.NewVoucherRepository(db), env.usageRepo),
		env.dispatcher,
		"SF",
	)
	return env
}

func (env *orderTestEnv) seedSKU(t *testing.T, name string, price int64, stock int) *models.ProductSKU {
	t.Helper()
	product := &models.Product{Name: name, BrandID: 1, CategoryID: 1, IsActive: true}
	if err := env.db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	sku := &models.ProductSKU{
		ProductID:   product.ID,
		SKUCode:     fmt.Sprintf("%s-%d", name, time.Now().UnixNano()),
		PriceAmount: models.NewMoneyFromInt(price),
		Stock:       stock,
		IsActive:    true,
	}
	if err := env.db.Create(sku).Error; err != nil {
		t.Fatalf("create sku failed: %v", err)
	}
	return sku
}

func (env *orderTestEnv) seedCustomer(t *testing.T, rank *models.Rank) *models.Customer {
	t.Helper()
	customer := &models.Customer{
		Email:    fmt.Sprintf("c%d@example.com", time.Now().UnixNano()),
		FullName: "Nguyen Van A",
		Phone:    "0900000000",
	}
	if rank != nil {
		if err := env.db.Create(rank).Error; err != nil {
			t.Fatalf("create rank failed: %v", err)
		}
		customer.RankID = &rank.ID
	}
	if err := env.db.Create(customer).Error; err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	return customer
}

func (env *orderTestEnv) seedVoucher(t *testing.T, percent int64, minAmount int64, maxDiscount *int64) *models.Voucher {
	t.Helper()
	voucher := &models.Voucher{
		Code:            fmt.Sprintf("V%d", time.Now().UnixNano()),
		DiscountPercent: models.NewMoneyFromInt(percent),
		MinOrderAmount:  models.NewMoneyFromInt(minAmount),
		AudienceType:    constants.VoucherAudienceAll,
		IsActive:        true,
	}
	if maxDiscount != nil {
		maxAmount := models.NewMoneyFromInt(*maxDiscount)
		voucher.MaxDiscountAmount = &maxAmount
	}
	if err := env.db.Create(voucher).Error; err != nil {
		t.Fatalf("create voucher failed: %v", err)
	}
	return voucher
}

func (env *orderTestEnv) addToCart(t *testing.T, customerID, skuID uint, quantity int) *models.CartItem {
	t.Helper()
	item := &models.CartItem{CustomerID: customerID, SKUID: skuID, Quantity: quantity}
	if err := env.cartRepo.Upsert(item); err != nil {
		t.Fatalf("add to cart failed: %v", err)
	}
	return item
}

func (env *orderTestEnv) stockOf(t *testing.T, skuID uint) int {
	t.Helper()
	sku, err := env.skuRepo.GetByID(skuID)
	if err != nil || sku == nil {
		t.Fatalf("reload sku failed: %v", err)
	}
	return sku.Stock
}

func (env *orderTestEnv) voucherUsageCount(t *testing.T, orderID uint) int {
	t.Helper()
	usages, err := env.usageRepo.ListByOrderID(orderID)
	if err != nil {
		t.Fatalf("list voucher usages failed: %v", err)
	}
	return len(usages)
}

func (env *orderTestEnv) reloadOrder(t *testing.T, orderID uint) *models.Order {
	t.Helper()
	order, err := env.orderRepo.GetByID(orderID)
	if err != nil || order == nil {
		t.Fatalf("reload order failed: %v", err)
	}
	return order
}

func uintPtr(v uint) *uint { return &v }

func int64Ptr(v int64) *int64 { return &v }

func boolPtr(v bool) *bool { return &v }

func deliveryReceiver() ReceiverInput {
	return ReceiverInput{Name: "Nguyen Van A", Phone: "0900000000", Address: "12 Le Loi, Q1, HCMC"}
}
