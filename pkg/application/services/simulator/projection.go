package simulator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vsinha/subsidy/pkg/domain/entities"
)

// lowStockRatio is the share of original stock below which remaining stock is "low"
var lowStockRatio = decimal.RequireFromString("0.2")

// Projection is the simulated stock position of every tracked inventory record
type Projection map[entities.InventoryID]entities.StockProjection

// Project recomputes the stock projection from scratch. Original stock comes
// from the snapshot when it knows the record, otherwise from the value the
// item captured when it was bound. Untracked items are ignored.
func Project(draft entities.Draft, snapshot entities.InventorySnapshot) Projection {
	projection := make(Projection)
	for _, item := range draft.Items() {
		if !item.Tracked() {
			continue
		}
		id := item.InventoryID.ID
		if _, seen := projection[id]; seen {
			continue
		}
		original := item.OriginalStock
		if available, ok := snapshot.Available(id); ok {
			original = available
		}
		projection[id] = entities.StockProjection{
			InventoryID:   id,
			ItemName:      item.ItemName,
			Unit:          item.Unit,
			OriginalStock: original,
			Allocated:     decimal.Zero,
		}
	}

	for _, alloc := range draft.Allocations() {
		for _, entry := range alloc.Entries {
			if !entry.InventoryID.Valid || !entry.Quantity.Allocating() {
				continue
			}
			p := projection[entry.InventoryID.ID]
			p.Allocated = p.Allocated.Add(entry.Quantity.Value())
			projection[entry.InventoryID.ID] = p
		}
	}

	for id, p := range projection {
		p.Remaining = p.OriginalStock.Sub(p.Allocated)
		projection[id] = p
	}
	return projection
}

// Classify derives the display status of a projected stock level
func Classify(p entities.StockProjection) entities.StockStatus {
	switch {
	case p.Remaining.IsNegative():
		return entities.OverAllocated
	case p.Remaining.IsZero():
		return entities.FullyAllocated
	case p.Remaining.LessThan(p.OriginalStock.Mul(lowStockRatio)):
		return entities.LowStock
	default:
		return entities.GoodStock
	}
}

// Get returns the projection for one inventory record
func (p Projection) Get(id entities.InventoryID) (entities.StockProjection, bool) {
	sp, ok := p[id]
	return sp, ok
}

// Sorted returns the projections ordered by item name, then id
func (p Projection) Sorted() []entities.StockProjection {
	out := make([]entities.StockProjection, 0, len(p))
	for _, sp := range p {
		out = append(out, sp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ItemName != out[j].ItemName {
			return out[i].ItemName < out[j].ItemName
		}
		return out[i].InventoryID < out[j].InventoryID
	})
	return out
}

// OverAllocated returns the projections with negative remaining stock
func (p Projection) OverAllocated() []entities.StockProjection {
	var over []entities.StockProjection
	for _, sp := range p.Sorted() {
		if sp.Remaining.IsNegative() {
			over = append(over, sp)
		}
	}
	return over
}
