package constants

// 订单状态常量
const (
	OrderStatusPendingPayment  = "pending_payment"
	OrderStatusPending         = "pending"
	OrderStatusProcessing      = "processing"
	OrderStatusReadyForPickup  = "ready_for_pickup"
	OrderStatusShipped         = "shipped"
	OrderStatusAssignedShipper = "assigned_shipper"
	OrderStatusDelivering      = "delivering"
	OrderStatusCompleted       = "completed"
	OrderStatusCanceled        = "canceled"
	OrderStatusPaymentFailed   = "payment_failed"
	OrderStatusFailed          = "failed"
)

// 订单生命周期事件
const (
	OrderEventPaymentSucceeded = "payment_succeeded"
	OrderEventPaymentFailed    = "payment_failed"
	OrderEventPaymentTimeout   = "payment_timeout"
	OrderEventConfirm          = "confirm"
	OrderEventCancel           = "cancel"
	OrderEventProcess          = "process"
	OrderEventCompletePickup   = "complete_pickup"
	OrderEventAssignShipper    = "assign_shipper"
	OrderEventStartDelivery    = "start_delivery"
	OrderEventCompleteDelivery = "complete_delivery"
)

// 订单来源
const (
	OrderSourceCustomer = "customer"
	OrderSourceStaff    = "staff"
)

// 支付方式
const (
	PaymentMethodCOD   = "cod"
	PaymentMethodVNPay = "vnpay"
	PaymentMethodMoMo  = "momo"
)

// 支付状态常量
const (
	PaymentStatusPending = "pending"
	PaymentStatusSuccess = "success"
	PaymentStatusFailed  = "failed"
)

// 客户端平台（决定支付完成后的跳转地址）
const (
	PlatformWeb    = "web"
	PlatformStaff  = "staff"
	PlatformMobile = "mobile"
)

// 活动范围常量
const (
	PromotionScopeAll    = "all"
	PromotionScopeScoped = "scoped"
)

// 活动目标类型
const (
	PromotionTargetVariant  = "variant"
	PromotionTargetProduct  = "product"
	PromotionTargetBrand    = "brand"
	PromotionTargetCategory = "category"
)

// 优惠券适用人群
const (
	VoucherAudienceAll      = "all"
	VoucherAudienceAssigned = "assigned"
)

// 队列常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型
const (
	TaskOrderPaymentTimeout = "order:payment_timeout"
	TaskOrderStatusEmail    = "order:status_email"
	TaskOrderStatusPush     = "order:status_push"
)

// 订单事件主题类型
const (
	OrderEventTypeCreated       = "order.created"
	OrderEventTypeStatusChanged = "order.status_changed"
)

// 支付回调响应
const (
	MoMoIPNSuccessCode = 0
	VNPayRspSuccess    = "00"
	VNPayRspOrderDone  = "02"
	VNPayRspChecksum   = "97"
	VNPayRspNotFound   = "01"
	VNPayRspUnknown    = "99"
)
