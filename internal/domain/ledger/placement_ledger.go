package ledger

import (
	"context"
	"fmt"

	"github.com/jhoicas/relief-ledger/internal/domain"
	"github.com/jhoicas/relief-ledger/internal/domain/entity"
	"github.com/jhoicas/relief-ledger/internal/domain/repository"
)

// PlacementLedger servicio de dominio que contabiliza cantidades por (bodega, ítem, estado).
// Nunca abre transacciones: el repositorio recibido ya está atado a la transacción del caller.
type PlacementLedger struct {
	repo repository.PlacementRepository
}

// New construye el libro sobre un repositorio atado a una transacción.
func New(repo repository.PlacementRepository) *PlacementLedger {
	return &PlacementLedger{repo: repo}
}

// GetQuantity devuelve la cantidad de la fila; una fila ausente vale 0.
func (l *PlacementLedger) GetQuantity(ctx context.Context, warehouseID, itemID string, status entity.PlacementStatus) (int64, error) {
	if !status.Valid() {
		return 0, domain.ErrInvalidInput
	}
	p, err := l.repo.Get(ctx, warehouseID, itemID, status)
	if err != nil {
		return 0, err
	}
	return p.Quantity, nil
}

// LockQuantity igual que GetQuantity pero bloquea la fila hasta el fin de la transacción.
// Se usa para las verificaciones de suficiencia que condicionan una escritura.
func (l *PlacementLedger) LockQuantity(ctx context.Context, warehouseID, itemID string, status entity.PlacementStatus) (int64, error) {
	if !status.Valid() {
		return 0, domain.ErrInvalidInput
	}
	p, err := l.repo.GetForUpdate(ctx, warehouseID, itemID, status)
	if err != nil {
		return 0, err
	}
	return p.Quantity, nil
}

// Adjust aplica delta a la fila. Si el resultado fuese negativo falla con ErrInsufficientStock
// y la fila no cambia; si el resultado es 0 la fila se elimina.
func (l *PlacementLedger) Adjust(ctx context.Context, warehouseID, itemID string, status entity.PlacementStatus, delta int64) error {
	if !status.Valid() {
		return domain.ErrInvalidInput
	}
	switch {
	case delta == 0:
		return nil
	case delta > 0:
		_, err := l.repo.Increment(ctx, warehouseID, itemID, status, delta)
		return err
	}
	remaining, ok, err := l.repo.Decrement(ctx, warehouseID, itemID, status, -delta)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s/%s %s necesita %d", domain.ErrInsufficientStock, warehouseID, itemID, status, -delta)
	}
	if remaining == 0 {
		return l.repo.DeleteIfZero(ctx, warehouseID, itemID, status)
	}
	return nil
}

// Move traslada quantity entre dos estados de la misma bodega e ítem.
// Ambas mitades corren en la transacción del caller: si la segunda falla, el rollback revierte la primera.
func (l *PlacementLedger) Move(ctx context.Context, warehouseID, itemID string, from, to entity.PlacementStatus, quantity int64) error {
	if quantity <= 0 || from == to {
		return domain.ErrInvalidInput
	}
	if err := l.Adjust(ctx, warehouseID, itemID, from, -quantity); err != nil {
		return err
	}
	return l.Adjust(ctx, warehouseID, itemID, to, quantity)
}

// List devuelve las filas no nulas de una bodega.
func (l *PlacementLedger) List(ctx context.Context, warehouseID string) ([]*entity.Placement, error) {
	return l.repo.ListByWarehouse(ctx, warehouseID)
}

// TotalByItem suma la cantidad de un ítem en todas las bodegas y estados.
func (l *PlacementLedger) TotalByItem(ctx context.Context, itemID string) (int64, error) {
	rows, err := l.repo.ListByItem(ctx, itemID)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, p := range rows {
		total += p.Quantity
	}
	return total, nil
}
