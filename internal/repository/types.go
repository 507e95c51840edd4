package repository

import "time"

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page          int
	PageSize      int
	CustomerID    uint
	Source        string
	Status        string
	PaymentMethod string
	ShipperID     uint
	Keyword       string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}
