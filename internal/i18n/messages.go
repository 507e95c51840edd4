package i18n

var messages = map[string]map[string]string{
	LocaleZH: {
		"error.bad_request":                "请求参数错误",
		"error.unauthorized":               "未登录或登录已失效",
		"error.forbidden":                  "无权访问",
		"error.jwt_secret_missing":         "令牌密钥未配置",
		"error.auth_header_missing":        "缺少 Authorization 头",
		"error.auth_header_invalid":        "Authorization 头格式错误",
		"error.token_invalid":              "令牌无效或已过期",
		"error.internal_error":             "服务器内部错误",
		"error.rate_limited":               "请求过于频繁，请 %d 秒后再试",
		"error.rate_limit_unavailable":     "限流服务不可用",
		"error.user_id_invalid":            "用户ID无效",
		"error.staff_id_invalid":           "员工ID无效",
		"error.context_type_invalid":       "上下文数据类型错误",
		"error.order_not_found":            "订单不存在",
		"error.order_fetch_failed":         "获取订单失败",
		"error.order_create_failed":        "创建订单失败",
		"error.order_update_failed":        "更新订单失败",
		"error.order_status_invalid":       "当前订单状态不允许该操作",
		"error.order_busy":                 "订单正在处理中，请稍后重试",
		"error.order_item_invalid":         "订单商品无效",
		"error.cart_empty":                 "购物车为空",
		"error.cart_item_not_found":        "购物车商品不存在",
		"error.cart_fetch_failed":          "获取购物车失败",
		"error.cart_update_failed":         "更新购物车失败",
		"error.sku_not_found":              "商品规格不存在",
		"error.out_of_stock":               "商品 %s 库存不足（剩余 %d，需要 %d）",
		"error.voucher_not_found":          "优惠券不存在",
		"error.voucher_not_assigned":       "该优惠券不属于当前用户",
		"error.voucher_already_used":       "优惠券已使用",
		"error.voucher_not_active":         "优惠券未生效或已过期",
		"error.voucher_below_minimum":      "订单金额未达到优惠券使用门槛",
		"error.customer_not_found":         "客户不存在",
		"error.shipper_not_found":          "配送员不存在",
		"error.shipper_required":           "请选择配送员",
		"error.shipper_busy":               "配送员有未完成的配送订单",
		"error.receiver_required":          "请填写收货信息",
		"error.platform_invalid":           "客户端平台无效",
		"error.payment_method_unsupported": "不支持的支付方式",
		"error.payment_upstream_failed":    "支付网关请求失败",
		"error.payment_callback_invalid":   "支付回调校验失败",
		"order.status.pending_payment":     "待支付",
		"order.status.pending":             "待确认",
		"order.status.processing":          "处理中",
		"order.status.ready_for_pickup":    "待自提",
		"order.status.shipped":             "已出库",
		"order.status.assigned_shipper":    "已分配配送员",
		"order.status.delivering":          "配送中",
		"order.status.completed":           "已完成",
		"order.status.canceled":            "已取消",
		"order.status.payment_failed":      "支付失败",
		"order.status.failed":              "配送失败",
		"email.order_status.subject":       "订单状态更新：%s",
		"email.order_status.body":          "您的订单 %s 状态已更新为：%s\n订单金额：%s",
		"email.order_status.pickup_hint":   "订单可到店自提，请携带订单号",
		"push.order_status.title":          "订单 %s",
		"push.order_status.body":           "订单状态已更新为：%s",
	},
	LocaleEN: {
		"error.bad_request":                "Invalid request parameters",
		"error.unauthorized":               "Not signed in or session expired",
		"error.forbidden":                  "Access denied",
		"error.jwt_secret_missing":         "Token secret is not configured",
		"error.auth_header_missing":        "Authorization header is missing",
		"error.auth_header_invalid":        "Authorization header is malformed",
		"error.token_invalid":              "Token is invalid or expired",
		"error.internal_error":             "Internal server error",
		"error.rate_limited":               "Too many requests, retry in %d seconds",
		"error.rate_limit_unavailable":     "Rate limiter unavailable",
		"error.user_id_invalid":            "Invalid customer id",
		"error.staff_id_invalid":           "Invalid staff id",
		"error.context_type_invalid":       "Invalid context value type",
		"error.order_not_found":            "Order not found",
		"error.order_fetch_failed":         "Failed to load order",
		"error.order_create_failed":        "Failed to create order",
		"error.order_update_failed":        "Failed to update order",
		"error.order_status_invalid":       "Order status does not allow this action",
		"error.order_busy":                 "Order is being processed, retry shortly",
		"error.order_item_invalid":         "Invalid order item",
		"error.cart_empty":                 "Cart is empty",
		"error.cart_item_not_found":        "Cart item not found",
		"error.cart_fetch_failed":          "Failed to load cart",
		"error.cart_update_failed":         "Failed to update cart",
		"error.sku_not_found":              "Product variant not found",
		"error.out_of_stock":               "%s is out of stock (%d left, %d requested)",
		"error.voucher_not_found":          "Voucher not found",
		"error.voucher_not_assigned":       "Voucher is not assigned to you",
		"error.voucher_already_used":       "Voucher already used",
		"error.voucher_not_active":         "Voucher is not active",
		"error.voucher_below_minimum":      "Order total is below the voucher minimum",
		"error.customer_not_found":         "Customer not found",
		"error.shipper_not_found":          "Shipper not found",
		"error.shipper_required":           "Shipper is required",
		"error.shipper_busy":               "Shipper has an unfinished delivery",
		"error.receiver_required":          "Receiver information is required",
		"error.platform_invalid":           "Invalid client platform",
		"error.payment_method_unsupported": "Unsupported payment method",
		"error.payment_upstream_failed":    "Payment gateway request failed",
		"error.payment_callback_invalid":   "Payment callback verification failed",
		"order.status.pending_payment":     "Awaiting payment",
		"order.status.pending":             "Pending confirmation",
		"order.status.processing":          "Processing",
		"order.status.ready_for_pickup":    "Ready for pickup",
		"order.status.shipped":             "Shipped",
		"order.status.assigned_shipper":    "Shipper assigned",
		"order.status.delivering":          "Delivering",
		"order.status.completed":           "Completed",
		"order.status.canceled":            "Canceled",
		"order.status.payment_failed":      "Payment failed",
		"order.status.failed":              "Delivery failed",
		"email.order_status.subject":       "Order update: %s",
		"email.order_status.body":          "Your order %s is now: %s\nOrder total: %s",
		"email.order_status.pickup_hint":   "Your order is ready to pick up in store, please bring the order number",
		"push.order_status.title":          "Order %s",
		"push.order_status.body":           "Your order is now: %s",
	},
	LocaleVI: {
		"error.bad_request":                "Tham số yêu cầu không hợp lệ",
		"error.unauthorized":               "Chưa đăng nhập hoặc phiên đã hết hạn",
		"error.forbidden":                  "Không có quyền truy cập",
		"error.jwt_secret_missing":         "Chưa cấu hình khóa token",
		"error.auth_header_missing":        "Thiếu header Authorization",
		"error.auth_header_invalid":        "Header Authorization không đúng định dạng",
		"error.token_invalid":              "Token không hợp lệ hoặc đã hết hạn",
		"error.internal_error":             "Lỗi máy chủ",
		"error.rate_limited":               "Yêu cầu quá nhiều, thử lại sau %d giây",
		"error.rate_limit_unavailable":     "Dịch vụ giới hạn tần suất không khả dụng",
		"error.user_id_invalid":            "Mã khách hàng không hợp lệ",
		"error.staff_id_invalid":           "Mã nhân viên không hợp lệ",
		"error.context_type_invalid":       "Kiểu dữ liệu ngữ cảnh không hợp lệ",
		"error.order_not_found":            "Không tìm thấy đơn hàng",
		"error.order_fetch_failed":         "Không tải được đơn hàng",
		"error.order_create_failed":        "Tạo đơn hàng thất bại",
		"error.order_update_failed":        "Cập nhật đơn hàng thất bại",
		"error.order_status_invalid":       "Trạng thái đơn hàng không cho phép thao tác này",
		"error.order_busy":                 "Đơn hàng đang được xử lý, vui lòng thử lại",
		"error.order_item_invalid":         "Sản phẩm trong đơn không hợp lệ",
		"error.cart_empty":                 "Giỏ hàng trống",
		"error.cart_item_not_found":        "Không tìm thấy sản phẩm trong giỏ",
		"error.cart_fetch_failed":          "Không tải được giỏ hàng",
		"error.cart_update_failed":         "Cập nhật giỏ hàng thất bại",
		"error.sku_not_found":              "Không tìm thấy phiên bản sản phẩm",
		"error.out_of_stock":               "%s không đủ hàng (còn %d, cần %d)",
		"error.voucher_not_found":          "Không tìm thấy voucher",
		"error.voucher_not_assigned":       "Voucher không thuộc về bạn",
		"error.voucher_already_used":       "Voucher đã được sử dụng",
		"error.voucher_not_active":         "Voucher chưa hiệu lực hoặc đã hết hạn",
		"error.voucher_below_minimum":      "Giá trị đơn chưa đạt mức tối thiểu của voucher",
		"error.customer_not_found":         "Không tìm thấy khách hàng",
		"error.shipper_not_found":          "Không tìm thấy nhân viên giao hàng",
		"error.shipper_required":           "Vui lòng chọn nhân viên giao hàng",
		"error.shipper_busy":               "Nhân viên giao hàng đang có đơn chưa hoàn tất",
		"error.receiver_required":          "Vui lòng nhập thông tin người nhận",
		"error.platform_invalid":           "Nền tảng không hợp lệ",
		"error.payment_method_unsupported": "Phương thức thanh toán không được hỗ trợ",
		"error.payment_upstream_failed":    "Cổng thanh toán gặp lỗi",
		"error.payment_callback_invalid":   "Xác thực callback thanh toán thất bại",
		"order.status.pending_payment":     "Chờ thanh toán",
		"order.status.pending":             "Chờ xác nhận",
		"order.status.processing":          "Đang xử lý",
		"order.status.ready_for_pickup":    "Sẵn sàng nhận tại cửa hàng",
		"order.status.shipped":             "Đã xuất kho",
		"order.status.assigned_shipper":    "Đã phân công giao hàng",
		"order.status.delivering":          "Đang giao",
		"order.status.completed":           "Hoàn tất",
		"order.status.canceled":            "Đã hủy",
		"order.status.payment_failed":      "Thanh toán thất bại",
		"order.status.failed":              "Giao hàng thất bại",
		"email.order_status.subject":       "Cập nhật đơn hàng: %s",
		"email.order_status.body":          "Đơn hàng %s của bạn đã chuyển sang: %s\nTổng tiền: %s",
		"email.order_status.pickup_hint":   "Đơn hàng có thể nhận tại cửa hàng, vui lòng mang theo mã đơn",
		"push.order_status.title":          "Đơn hàng %s",
		"push.order_status.body":           "Đơn hàng đã chuyển sang: %s",
	},
}
