package service

import (
	"sort"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"gorm.io/gorm"
)

// StockLine 库存变动行
type StockLine struct {
	SKUID       uint
	ProductName string
	Quantity    int
}

// InventoryLedger 库存台账（条件扣减 / 归还）
type InventoryLedger struct {
	skuRepo repository.ProductSKURepository
}

// NewInventoryLedger 创建库存台账
func NewInventoryLedger(skuRepo repository.ProductSKURepository) *InventoryLedger {
	return &InventoryLedger{skuRepo: skuRepo}
}

// Reserve 在事务内扣减库存，任一行不足即返回 OutOfStockError
func (l *InventoryLedger) Reserve(tx *gorm.DB, lines []StockLine) error {
	repo := l.skuRepo
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	for _, line := range mergeStockLines(lines) {
		affected, err := repo.DecrementStock(line.SKUID, line.Quantity)
		if err != nil {
			return err
		}
		if affected == 1 {
			continue
		}
		available := 0
		if sku, err := repo.GetByID(line.SKUID); err == nil && sku != nil {
			available = sku.Stock
		}
		logger.Debugw("inventory_reserve_insufficient",
			"sku_id", line.SKUID,
			"available", available,
			"requested", line.Quantity,
		)
		return &OutOfStockError{
			SKUID:       line.SKUID,
			ProductName: line.ProductName,
			Available:   available,
			Requested:   line.Quantity,
		}
	}
	return nil
}

// Release 在事务内归还库存
func (l *InventoryLedger) Release(tx *gorm.DB, lines []StockLine) error {
	repo := l.skuRepo
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	for _, line := range mergeStockLines(lines) {
		if _, err := repo.RestoreStock(line.SKUID, line.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// stockLinesFromItems 订单项转库存变动行
func stockLinesFromItems(items []models.OrderItem) []StockLine {
	lines := make([]StockLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, StockLine{
			SKUID:       item.SKUID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
		})
	}
	return lines
}

// mergeStockLines 按 SKU 合并并按 ID 升序，固定加锁顺序
func mergeStockLines(lines []StockLine) []StockLine {
	index := make(map[uint]int, len(lines))
	merged := make([]StockLine, 0, len(lines))
	for _, line := range lines {
		if line.SKUID == 0 || line.Quantity <= 0 {
			continue
		}
		if pos, ok := index[line.SKUID]; ok {
			merged[pos].Quantity += line.Quantity
			continue
		}
		index[line.SKUID] = len(merged)
		merged = append(merged, line)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].SKUID < merged[j].SKUID
	})
	return merged
}
