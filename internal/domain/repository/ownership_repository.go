package repository

import (
	"context"

	"github.com/jhoicas/relief-ledger/internal/domain/entity"
)

// OwnershipRepository define el puerto de persistencia para la relación bodega-dueño.
type OwnershipRepository interface {
	// Add registra el dueño; no falla si ya existe.
	Add(ctx context.Context, o *entity.Ownership) error
	Remove(ctx context.Context, warehouseID, userID string) error
	Exists(ctx context.Context, warehouseID, userID string) (bool, error)
	Count(ctx context.Context, warehouseID string) (int, error)
	ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.Ownership, error)
	ListWarehouseIDsByUser(ctx context.Context, userID string) ([]string, error)
	RemoveAll(ctx context.Context, warehouseID string) error
}
