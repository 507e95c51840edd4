package provider

import (
	"context"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/events"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Publisher   events.Publisher
	Scheduler   service.PaymentTimeoutScheduler

	// Repositories
	OrderRepo        repository.OrderRepository
	PaymentRepo      repository.PaymentRepository
	CartRepo         repository.CartRepository
	SKURepo          repository.ProductSKURepository
	CustomerRepo     repository.CustomerRepository
	RankRepo         repository.RankRepository
	ShipperRepo      repository.ShipperRepository
	PromotionRepo    repository.PromotionRepository
	VoucherRepo      repository.VoucherRepository
	VoucherUsageRepo repository.VoucherUsageRepository

	// Services
	EmailService        *service.EmailService
	PushService         *service.PushService
	NotificationService *service.NotificationService
	LoyaltyService      *service.LoyaltyService
	CartService         *service.CartService
	LifecycleService    *service.OrderLifecycleService
	PaymentDispatcher   *service.PaymentDispatcher
	OrderService        *service.OrderService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) (*Container, error) {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Publisher:   events.NewPublisher(cfg.Kafka),
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	if err := c.initServices(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) initRepositories() {
	db := models.DB
	c.OrderRepo = repository.NewOrderRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.SKURepo = repository.NewProductSKURepository(db)
	c.CustomerRepo = repository.NewCustomerRepository(db)
	c.RankRepo = repository.NewRankRepository(db)
	c.ShipperRepo = repository.NewShipperRepository(db)
	c.PromotionRepo = repository.NewPromotionRepository(db)
	c.VoucherRepo = repository.NewVoucherRepository(db)
	c.VoucherUsageRepo = repository.NewVoucherUsageRepository(db)
}

func (c *Container) initServices() error {
	gateways, err := service.NewPaymentGateways(c.Config.Payment)
	if err != nil {
		logger.Errorw("provider_init_payment_gateways_failed", "error", err)
		return err
	}

	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.PushService = service.NewPushService(&c.Config.Push)
	c.NotificationService = service.NewNotificationService(c.OrderRepo, c.CustomerRepo, c.EmailService, c.PushService, c.QueueClient)
	c.LoyaltyService = service.NewLoyaltyService(c.CustomerRepo, c.RankRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.SKURepo)

	// 队列可用时超时任务走 asynq，否则使用进程内定时器
	var localScheduler *service.LocalTimeoutScheduler
	if c.QueueClient != nil && c.QueueClient.Enabled() {
		c.Scheduler = c.QueueClient
	} else {
		localScheduler = service.NewLocalTimeoutScheduler()
		c.Scheduler = localScheduler
		logger.Infow("provider_payment_timeout_local_scheduler")
	}

	ledger := service.NewInventoryLedger(c.SKURepo)
	compensation := service.NewCompensationEngine(ledger, c.VoucherUsageRepo, c.PromotionRepo)
	c.LifecycleService = service.NewOrderLifecycleService(
		c.OrderRepo,
		c.CartRepo,
		c.ShipperRepo,
		compensation,
		c.LoyaltyService,
		service.NewOrderLocker(),
		c.Scheduler,
		c.NotificationService,
		c.Publisher,
	)
	if localScheduler != nil {
		lifecycle := c.LifecycleService
		localScheduler.SetHandler(func(ctx context.Context, orderID uint) error {
			return service.RevokeUnpaidOrder(ctx, lifecycle, orderID)
		})
	}

	c.PaymentDispatcher = service.NewPaymentDispatcher(
		c.OrderRepo,
		c.CartRepo,
		c.PaymentRepo,
		c.PromotionRepo,
		c.VoucherUsageRepo,
		ledger,
		c.LifecycleService,
		c.Scheduler,
		c.NotificationService,
		c.Publisher,
		gateways,
		service.PaymentDispatcherOptions{
			CallbackBaseURL: c.Config.Payment.CallbackBaseURL,
			ReturnURLs:      c.Config.Payment.ReturnURLs,
			PaymentTimeout:  c.Config.Order.PaymentTimeout(),
		},
	)
	c.OrderService = service.NewOrderService(
		c.OrderRepo,
		c.SKURepo,
		c.CartRepo,
		c.CustomerRepo,
		service.NewPromotionResolver(c.PromotionRepo),
		service.NewVoucherValidator(c.VoucherRepo, c.VoucherUsageRepo),
		c.PaymentDispatcher,
		c.Config.Order.OrderNoPrefix,
	)
	return nil
}

// Close 释放外部连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if stopper, ok := c.Scheduler.(*service.LocalTimeoutScheduler); ok {
		stopper.Stop()
	}
	if c.Publisher != nil {
		if err := c.Publisher.Close(); err != nil {
			logger.Warnw("provider_close_publisher_failed", "error", err)
		}
	}
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			logger.Warnw("provider_close_queue_client_failed", "error", err)
		}
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
