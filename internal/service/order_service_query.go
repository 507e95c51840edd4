package service

import (
	"strings"

	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

// OrderListQuery 订单列表查询条件
type OrderListQuery = repository.OrderListFilter

// ListCustomerOrders 客户订单列表
func (s *OrderService) ListCustomerOrders(customerID uint, filter OrderListQuery) ([]models.Order, int64, error) {
	if customerID == 0 {
		return nil, 0, ErrCustomerNotFound
	}
	filter.CustomerID = customerID
	normalizeOrderListQuery(&filter)
	orders, total, err := s.orderRepo.ListByCustomer(filter)
	if err != nil {
		return nil, 0, ErrOrderFetchFailed
	}
	return orders, total, nil
}

// GetCustomerOrder 客户订单详情，非本人订单视为不存在
func (s *OrderService) GetCustomerOrder(customerID, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndCustomer(orderID, customerID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListStaffOrders 店员订单列表（按状态 / 来源 / 订单号过滤）
func (s *OrderService) ListStaffOrders(filter OrderListQuery) ([]models.Order, int64, error) {
	normalizeOrderListQuery(&filter)
	orders, total, err := s.orderRepo.ListStaff(filter)
	if err != nil {
		return nil, 0, ErrOrderFetchFailed
	}
	return orders, total, nil
}

// GetStaffOrder 店员订单详情
func (s *OrderService) GetStaffOrder(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetStaffOrderByNo 店员按订单号查询
func (s *OrderService) GetStaffOrderByNo(orderNo string) (*models.Order, error) {
	orderNo = strings.TrimSpace(orderNo)
	if orderNo == "" {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func normalizeOrderListQuery(filter *OrderListQuery) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}
	filter.Status = strings.TrimSpace(filter.Status)
	filter.Source = strings.TrimSpace(filter.Source)
	filter.PaymentMethod = strings.TrimSpace(filter.PaymentMethod)
	filter.Keyword = strings.TrimSpace(filter.Keyword)
}
