package repository

import (
	"context"

	"github.com/jhoicas/relief-ledger/internal/domain/entity"
)

// PlacementRepository define el puerto para las filas del libro (bodega, ítem, estado).
// Las operaciones de escritura se usan dentro de transacciones para garantizar consistencia.
type PlacementRepository interface {
	// Get devuelve la fila o una fila con cantidad 0 si no existe.
	Get(ctx context.Context, warehouseID, itemID string, status entity.PlacementStatus) (*entity.Placement, error)
	// GetForUpdate igual que Get pero bloquea la fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, warehouseID, itemID string, status entity.PlacementStatus) (*entity.Placement, error)
	// Increment suma delta (> 0) creando la fila si no existe; devuelve la cantidad resultante.
	Increment(ctx context.Context, warehouseID, itemID string, status entity.PlacementStatus, delta int64) (int64, error)
	// Decrement resta delta (> 0) solo si la cantidad alcanza; ok=false si no alcanza (sin cambios).
	Decrement(ctx context.Context, warehouseID, itemID string, status entity.PlacementStatus, delta int64) (remaining int64, ok bool, err error)
	// DeleteIfZero elimina la fila si su cantidad es 0.
	DeleteIfZero(ctx context.Context, warehouseID, itemID string, status entity.PlacementStatus) error
	ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.Placement, error)
	ListByItem(ctx context.Context, itemID string) ([]*entity.Placement, error)
	CountByWarehouse(ctx context.Context, warehouseID string) (int, error)
}
