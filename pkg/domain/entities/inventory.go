package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem is a stock record as reported by the inventory service
type InventoryItem struct {
	ID       InventoryID     `json:"id"`
	ItemName string          `json:"itemName"`
	Unit     string          `json:"unit"`
	OnHand   decimal.Decimal `json:"onHand"`
	Reserved decimal.Decimal `json:"reserved"`
}

// AvailableStock returns on-hand stock not already reserved, never negative
func (i InventoryItem) AvailableStock() decimal.Decimal {
	available := i.OnHand.Sub(i.Reserved)
	if available.IsNegative() {
		return decimal.Zero
	}
	return available
}

// InventorySnapshot is a read-only view of available stock at load time.
// Snapshots are replaced wholesale, never merged.
type InventorySnapshot struct {
	items    map[InventoryID]InventoryItem
	order    []InventoryID
	LoadedAt time.Time
}

// NewInventorySnapshot captures the given inventory records
func NewInventorySnapshot(items []InventoryItem, loadedAt time.Time) InventorySnapshot {
	snap := InventorySnapshot{
		items:    make(map[InventoryID]InventoryItem, len(items)),
		order:    make([]InventoryID, 0, len(items)),
		LoadedAt: loadedAt,
	}
	for _, item := range items {
		if _, exists := snap.items[item.ID]; !exists {
			snap.order = append(snap.order, item.ID)
		}
		snap.items[item.ID] = item
	}
	return snap
}

// Loaded reports whether the snapshot was ever populated
func (s InventorySnapshot) Loaded() bool {
	return !s.LoadedAt.IsZero()
}

// Get returns the record for an inventory id
func (s InventorySnapshot) Get(id InventoryID) (InventoryItem, bool) {
	item, ok := s.items[id]
	return item, ok
}

// Available returns the available stock for an inventory id
func (s InventorySnapshot) Available(id InventoryID) (decimal.Decimal, bool) {
	item, ok := s.items[id]
	if !ok {
		return decimal.Zero, false
	}
	return item.AvailableStock(), true
}

// Items returns the records in load order
func (s InventorySnapshot) Items() []InventoryItem {
	items := make([]InventoryItem, 0, len(s.order))
	for _, id := range s.order {
		items = append(items, s.items[id])
	}
	return items
}

// Len returns the number of records
func (s InventorySnapshot) Len() int {
	return len(s.order)
}

// StockStatus classifies a projected stock level
type StockStatus int

const (
	GoodStock StockStatus = iota
	LowStock
	FullyAllocated
	OverAllocated
)

// String method for StockStatus enum
func (s StockStatus) String() string {
	switch s {
	case GoodStock:
		return "Good Stock"
	case LowStock:
		return "Low Stock"
	case FullyAllocated:
		return "Fully Allocated"
	case OverAllocated:
		return "Over-allocated"
	default:
		return "Unknown"
	}
}

// StockProjection is the simulated stock position of one inventory record
type StockProjection struct {
	InventoryID   InventoryID     `json:"inventoryId"`
	ItemName      string          `json:"itemName"`
	Unit          string          `json:"unit"`
	OriginalStock decimal.Decimal `json:"originalStock"`
	Allocated     decimal.Decimal `json:"allocated"`
	Remaining     decimal.Decimal `json:"remaining"`
}

// InventoryConflict is a server-reported shortage for one item
type InventoryConflict struct {
	ItemName  string          `json:"itemName"`
	Unit      string          `json:"unit"`
	Required  decimal.Decimal `json:"required"`
	Available decimal.Decimal `json:"available"`
	Shortage  decimal.Decimal `json:"shortage"`
}
