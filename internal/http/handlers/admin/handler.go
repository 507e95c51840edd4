package admin

import "github.com/storefront-next/internal/provider"

// Handler 店员后台接口处理器入口
// 说明：该处理器仅用于店员端 API（代客下单与订单流转）。
type Handler struct {
	*provider.Container
}

// New 创建店员处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
