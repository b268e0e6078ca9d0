package repository

import (
	"context"

	"github.com/jhoicas/relief-ledger/internal/domain/entity"
)

// LendFilter criterios de listado de transacciones de préstamo. Campos vacíos no filtran.
type LendFilter struct {
	RequesterID string
	WarehouseID string // coincide con origen o destino
	ItemID      string
	Statuses    []entity.LendStatus
	Limit       int
	Offset      int
}

// LendRepository define el puerto de persistencia para LendTransaction.
type LendRepository interface {
	Create(ctx context.Context, t *entity.LendTransaction) error
	GetByID(ctx context.Context, id string) (*entity.LendTransaction, error)
	// GetForUpdate bloquea la fila de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.LendTransaction, error)
	// UpdateStatus persiste estado y marcas de tiempo de decisión/devolución.
	UpdateStatus(ctx context.Context, t *entity.LendTransaction) error
	List(ctx context.Context, f LendFilter) ([]*entity.LendTransaction, error)
	CountByWarehouse(ctx context.Context, warehouseID string) (int, error)
}
