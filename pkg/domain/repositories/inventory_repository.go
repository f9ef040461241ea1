package repositories

import (
	"context"

	"github.com/vsinha/subsidy/pkg/domain/entities"
)

// InventoryRepository provides the current stock records
type InventoryRepository interface {
	ListInventoryItems(ctx context.Context) ([]entities.InventoryItem, error)
}
