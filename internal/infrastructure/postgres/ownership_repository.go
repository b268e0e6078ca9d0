package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/relief-ledger/internal/domain/entity"
	"github.com/jhoicas/relief-ledger/internal/domain/repository"
)

var _ repository.OwnershipRepository = (*OwnershipRepo)(nil)

// OwnershipRepo relación bodega-dueño sobre PostgreSQL (usable con pool o tx).
type OwnershipRepo struct {
	q Querier
}

// NewOwnershipRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOwnershipRepository(q Querier) *OwnershipRepo {
	return &OwnershipRepo{q: q}
}

// Add registra el dueño; idempotente.
func (r *OwnershipRepo) Add(ctx context.Context, o *entity.Ownership) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO warehouse_owners (warehouse_id, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (warehouse_id, user_id) DO NOTHING`,
		o.WarehouseID, o.UserID, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert owner: %w", err)
	}
	return nil
}

// Remove quita el dueño.
func (r *OwnershipRepo) Remove(ctx context.Context, warehouseID, userID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM warehouse_owners WHERE warehouse_id = $1 AND user_id = $2`, warehouseID, userID)
	if err != nil {
		return fmt.Errorf("delete owner: %w", err)
	}
	return nil
}

// Exists indica si el usuario es dueño de la bodega.
func (r *OwnershipRepo) Exists(ctx context.Context, warehouseID, userID string) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM warehouse_owners WHERE warehouse_id = $1 AND user_id = $2)`, warehouseID, userID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("exists owner: %w", err)
	}
	return ok, nil
}

// Count cantidad de dueños de la bodega.
func (r *OwnershipRepo) Count(ctx context.Context, warehouseID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM warehouse_owners WHERE warehouse_id = $1`, warehouseID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count owners: %w", err)
	}
	return n, nil
}

// ListByWarehouse dueños por antigüedad.
func (r *OwnershipRepo) ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.Ownership, error) {
	rows, err := r.q.Query(ctx, `
		SELECT warehouse_id, user_id, created_at FROM warehouse_owners
		WHERE warehouse_id = $1 ORDER BY created_at, user_id`, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	defer rows.Close()
	var list []*entity.Ownership
	for rows.Next() {
		var o entity.Ownership
		if err := rows.Scan(&o.WarehouseID, &o.UserID, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan owner: %w", err)
		}
		list = append(list, &o)
	}
	return list, rows.Err()
}

// ListWarehouseIDsByUser bodegas del usuario.
func (r *OwnershipRepo) ListWarehouseIDsByUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT warehouse_id FROM warehouse_owners WHERE user_id = $1 ORDER BY warehouse_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list owned warehouses: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan warehouse id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RemoveAll quita todos los dueños (solo al eliminar la bodega).
func (r *OwnershipRepo) RemoveAll(ctx context.Context, warehouseID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM warehouse_owners WHERE warehouse_id = $1`, warehouseID); err != nil {
		return fmt.Errorf("delete owners: %w", err)
	}
	return nil
}
