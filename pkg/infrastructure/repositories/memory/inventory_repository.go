package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/vsinha/subsidy/pkg/domain/entities"
	"github.com/vsinha/subsidy/pkg/domain/repositories"
)

// InventoryRepository provides in-memory stock records
type InventoryRepository struct {
	mu       sync.RWMutex
	items    []entities.InventoryItem
	itemsMap map[entities.InventoryID]int
}

// NewInventoryRepository creates a new in-memory inventory repository
func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{
		items:    []entities.InventoryItem{},
		itemsMap: make(map[entities.InventoryID]int),
	}
}

// Verify interface compliance
var _ repositories.InventoryRepository = (*InventoryRepository)(nil)

// LoadInventoryItems loads stock records into the repository
func (r *InventoryRepository) LoadInventoryItems(items []*entities.InventoryItem) error {
	for _, item := range items {
		r.AddInventoryItem(*item)
	}
	return nil
}

// AddInventoryItem adds or replaces a stock record
func (r *InventoryRepository) AddInventoryItem(item entities.InventoryItem) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index, exists := r.itemsMap[item.ID]; exists {
		r.items[index] = item
		return
	}
	r.itemsMap[item.ID] = len(r.items)
	r.items = append(r.items, item)
}

// ListInventoryItems returns every stock record
func (r *InventoryRepository) ListInventoryItems(ctx context.Context) ([]entities.InventoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]entities.InventoryItem, len(r.items))
	copy(items, r.items)
	return items, nil
}

// GetInventoryItem returns the stock record for an id
func (r *InventoryRepository) GetInventoryItem(id entities.InventoryID) (*entities.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index, exists := r.itemsMap[id]
	if !exists {
		return nil, fmt.Errorf("inventory item not found: %d", id)
	}
	item := r.items[index]
	return &item, nil
}

// ReserveStock reserves the required quantity of every listed record. It is
// all-or-nothing: when any record is short, nothing is reserved and the
// shortages are returned in name order.
func (r *InventoryRepository) ReserveStock(required map[entities.InventoryID]decimal.Decimal) ([]entities.InventoryConflict, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var conflicts []entities.InventoryConflict
	for id, qty := range required {
		index, exists := r.itemsMap[id]
		if !exists {
			return nil, fmt.Errorf("inventory item not found: %d", id)
		}
		item := r.items[index]
		available := item.AvailableStock()
		if qty.GreaterThan(available) {
			conflicts = append(conflicts, entities.InventoryConflict{
				ItemName:  item.ItemName,
				Unit:      item.Unit,
				Required:  qty,
				Available: available,
				Shortage:  qty.Sub(available),
			})
		}
	}
	if len(conflicts) > 0 {
		sort.Slice(conflicts, func(i, j int) bool {
			return conflicts[i].ItemName < conflicts[j].ItemName
		})
		return conflicts, nil
	}

	for id, qty := range required {
		index := r.itemsMap[id]
		r.items[index].Reserved = r.items[index].Reserved.Add(qty)
	}
	return nil, nil
}

// AdjustOnHand changes the on-hand quantity of a record, e.g. after a delivery
func (r *InventoryRepository) AdjustOnHand(id entities.InventoryID, delta decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	index, exists := r.itemsMap[id]
	if !exists {
		return fmt.Errorf("inventory item not found: %d", id)
	}
	onHand := r.items[index].OnHand.Add(delta)
	if onHand.IsNegative() {
		return fmt.Errorf("on-hand quantity cannot go negative for item %d, got %s", id, onHand)
	}
	r.items[index].OnHand = onHand
	return nil
}
