package public

import "github.com/storefront-next/internal/provider"

// Handler 顾客侧接口处理器入口
// 说明：购物车、顾客下单以及支付网关回调。
type Handler struct {
	*provider.Container
}

// New 创建顾客侧处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
