package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/relief-ledger/internal/domain/entity"
	"github.com/jhoicas/relief-ledger/internal/domain/repository"
)

var _ repository.PlacementRepository = (*PlacementRepo)(nil)

// PlacementRepo implementación de PlacementRepository sobre PostgreSQL (usable con pool o tx).
type PlacementRepo struct {
	q Querier
}

// NewPlacementRepository construye el adaptador del libro. Pasar pool o tx (Querier).
func NewPlacementRepository(q Querier) *PlacementRepo {
	return &PlacementRepo{q: q}
}

const placementCols = `warehouse_id, item_id, status, quantity, updated_at`

// Get obtiene la fila; si no existe devuelve cantidad 0.
func (r *PlacementRepo) Get(ctx context.Context, warehouseID, itemID string, status entity.PlacementStatus) (*entity.Placement, error) {
	return r.get(ctx, `SELECT `+placementCols+` FROM placements
		WHERE warehouse_id = $1 AND item_id = $2 AND status = $3`, warehouseID, itemID, status)
}

// GetForUpdate obtiene la fila y la bloquea (SELECT FOR UPDATE). Una fila ausente no bloquea nada:
// el débito posterior es condicional y no puede dejar saldo negativo.
func (r *PlacementRepo) GetForUpdate(ctx context.Context, warehouseID, itemID string, status entity.PlacementStatus) (*entity.Placement, error) {
	return r.get(ctx, `SELECT `+placementCols+` FROM placements
		WHERE warehouse_id = $1 AND item_id = $2 AND status = $3
		FOR UPDATE`, warehouseID, itemID, status)
}

func (r *PlacementRepo) get(ctx context.Context, query, warehouseID, itemID string, status entity.PlacementStatus) (*entity.Placement, error) {
	var p entity.Placement
	var st string
	err := r.q.QueryRow(ctx, query, warehouseID, itemID, string(status)).Scan(
		&p.WarehouseID, &p.ItemID, &st, &p.Quantity, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.Placement{WarehouseID: warehouseID, ItemID: itemID, Status: status}, nil
		}
		return nil, fmt.Errorf("get placement: %w", err)
	}
	p.Status = entity.PlacementStatus(st)
	return &p, nil
}

// Increment suma delta creando la fila si no existe.
func (r *PlacementRepo) Increment(ctx context.Context, warehouseID, itemID string, status entity.PlacementStatus, delta int64) (int64, error) {
	query := `
		INSERT INTO placements (warehouse_id, item_id, status, quantity, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (warehouse_id, item_id, status)
		DO UPDATE SET quantity = placements.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING quantity`
	var qty int64
	if err := r.q.QueryRow(ctx, query, warehouseID, itemID, string(status), delta).Scan(&qty); err != nil {
		return 0, fmt.Errorf("increment placement: %w", err)
	}
	return qty, nil
}

// Decrement resta delta solo si alcanza (UPDATE condicional). ok=false si la fila no existe o no alcanza.
func (r *PlacementRepo) Decrement(ctx context.Context, warehouseID, itemID string, status entity.PlacementStatus, delta int64) (int64, bool, error) {
	query := `
		UPDATE placements SET quantity = quantity - $4, updated_at = now()
		WHERE warehouse_id = $1 AND item_id = $2 AND status = $3 AND quantity >= $4
		RETURNING quantity`
	var qty int64
	err := r.q.QueryRow(ctx, query, warehouseID, itemID, string(status), delta).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("decrement placement: %w", err)
	}
	return qty, true, nil
}

// DeleteIfZero elimina la fila si quedó en 0.
func (r *PlacementRepo) DeleteIfZero(ctx context.Context, warehouseID, itemID string, status entity.PlacementStatus) error {
	_, err := r.q.Exec(ctx, `DELETE FROM placements
		WHERE warehouse_id = $1 AND item_id = $2 AND status = $3 AND quantity = 0`,
		warehouseID, itemID, string(status))
	if err != nil {
		return fmt.Errorf("delete placement: %w", err)
	}
	return nil
}

// ListByWarehouse filas no nulas de una bodega.
func (r *PlacementRepo) ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.Placement, error) {
	return r.list(ctx, `SELECT `+placementCols+` FROM placements
		WHERE warehouse_id = $1 AND quantity > 0 ORDER BY item_id, status`, warehouseID)
}

// ListByItem filas no nulas de un ítem en todas las bodegas.
func (r *PlacementRepo) ListByItem(ctx context.Context, itemID string) ([]*entity.Placement, error) {
	return r.list(ctx, `SELECT `+placementCols+` FROM placements
		WHERE item_id = $1 AND quantity > 0 ORDER BY warehouse_id, status`, itemID)
}

// CountByWarehouse cantidad de filas no nulas de la bodega.
func (r *PlacementRepo) CountByWarehouse(ctx context.Context, warehouseID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT count(*) FROM placements WHERE warehouse_id = $1 AND quantity > 0`, warehouseID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count placements: %w", err)
	}
	return n, nil
}

func (r *PlacementRepo) list(ctx context.Context, query string, arg string) ([]*entity.Placement, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list placements: %w", err)
	}
	defer rows.Close()
	var list []*entity.Placement
	for rows.Next() {
		var p entity.Placement
		var st string
		if err := rows.Scan(&p.WarehouseID, &p.ItemID, &st, &p.Quantity, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan placement: %w", err)
		}
		p.Status = entity.PlacementStatus(st)
		list = append(list, &p)
	}
	return list, rows.Err()
}
