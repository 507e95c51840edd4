package router

import (
	"fmt"
	"strings"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	adminhandlers "github.com/storefront-next/internal/http/handlers/admin"
	publichandlers "github.com/storefront-next/internal/http/handlers/public"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按顾客 / 店员分组）
	publicHandler := publichandlers.New(c)
	staffHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "sf"
	}
	orderCreateRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:order_create", redisPrefix),
		WindowSeconds: cfg.RateLimit.OrderCreate.WindowSeconds,
		MaxRequests:   cfg.RateLimit.OrderCreate.MaxRequests,
		MessageKey:    "error.rate_limited",
	}
	redisClient := cache.Client()

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(TraceMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 支付网关回调（浏览器回跳 + IPN）
		payments := apiV1.Group("/payments/:provider")
		{
			payments.GET("/callback", publicHandler.PaymentCallback)
			payments.POST("/callback", publicHandler.PaymentCallback)
			payments.GET("/return", publicHandler.PaymentReturn)
		}

		// 顾客接口
		customer := apiV1.Group("")
		customer.Use(CustomerJWTMiddleware(cfg.JWT.CustomerSecret))
		{
			customer.GET("/cart", publicHandler.GetCart)
			customer.POST("/cart/items", publicHandler.UpsertCartItem)
			customer.PUT("/cart/items/:id", publicHandler.UpdateCartItem)
			customer.DELETE("/cart/items/:id", publicHandler.DeleteCartItem)
			customer.POST("/orders/preview", publicHandler.PreviewOrder)
			customer.POST("/orders", RateLimitMiddleware(redisClient, orderCreateRule, KeyByContextUint(customerIDContextKey)), publicHandler.CreateOrder)
			customer.GET("/orders", publicHandler.ListOrders)
			customer.GET("/orders/:id", publicHandler.GetOrder)
			customer.POST("/orders/:id/cancel", publicHandler.CancelOrder)
		}

		// 店员接口
		staff := apiV1.Group("/staff")
		staff.Use(StaffJWTMiddleware(cfg.JWT.StaffSecret))
		{
			staff.GET("/shippers", staffHandler.ListShippers)
			staff.POST("/orders/preview", staffHandler.PreviewStaffOrder)
			staff.POST("/orders", RateLimitMiddleware(redisClient, orderCreateRule, KeyByContextUint(staffIDContextKey)), staffHandler.CreateStaffOrder)
			staff.GET("/orders", staffHandler.ListStaffOrders)
			staff.GET("/orders/:id", staffHandler.GetStaffOrder)
			for path, event := range staffOrderEventRoutes {
				staff.POST("/orders/:id/"+path, staffHandler.OrderEventHandler(event))
			}
		}
	}

	return r
}

// staffOrderEventRoutes 店员订单事件路由（路径片段 -> 生命周期事件）
var staffOrderEventRoutes = map[string]string{
	"confirm":           constants.OrderEventConfirm,
	"cancel":            constants.OrderEventCancel,
	"process":           constants.OrderEventProcess,
	"complete-pickup":   constants.OrderEventCompletePickup,
	"assign-shipper":    constants.OrderEventAssignShipper,
	"start-delivery":    constants.OrderEventStartDelivery,
	"complete-delivery": constants.OrderEventCompleteDelivery,
}
