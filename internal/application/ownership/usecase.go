package ownership

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/relief-ledger/internal/application/ports"
	"github.com/jhoicas/relief-ledger/internal/domain"
	"github.com/jhoicas/relief-ledger/internal/domain/entity"
	"github.com/jhoicas/relief-ledger/internal/domain/repository"
)

// OwnershipUseCase administra qué usuarios son dueños de qué bodegas.
// Invariante: toda bodega existente conserva al menos un dueño.
type OwnershipUseCase struct {
	txRunner   ports.TxRunner
	warehouses repository.WarehouseRepository
	owners     repository.OwnershipRepository
	identity   repository.IdentityLookup
	now        func() time.Time
}

// NewOwnershipUseCase construye el caso de uso.
func NewOwnershipUseCase(
	txRunner ports.TxRunner,
	warehouses repository.WarehouseRepository,
	owners repository.OwnershipRepository,
	identity repository.IdentityLookup,
) *OwnershipUseCase {
	return &OwnershipUseCase{
		txRunner:   txRunner,
		warehouses: warehouses,
		owners:     owners,
		identity:   identity,
		now:        time.Now,
	}
}

// AddOwner agrega un dueño. Puede hacerlo un dueño actual o un admin. Idempotente.
func (uc *OwnershipUseCase) AddOwner(ctx context.Context, actor domain.Actor, warehouseID, userID string) error {
	if warehouseID == "" || userID == "" {
		return domain.ErrInvalidInput
	}
	if err := uc.requireWarehouse(ctx, warehouseID); err != nil {
		return err
	}
	exists, err := uc.identity.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: usuario %s", domain.ErrNotFound, userID)
	}
	return uc.txRunner.Run(ctx, func(r ports.TxRepos) error {
		w, err := r.Warehouses.GetForUpdate(ctx, warehouseID)
		if err != nil {
			return err
		}
		if w == nil {
			return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, warehouseID)
		}
		if err := requireOwnerOrAdmin(ctx, r.Owners, warehouseID, actor); err != nil {
			return err
		}
		return r.Owners.Add(ctx, &entity.Ownership{WarehouseID: warehouseID, UserID: userID, CreatedAt: uc.now()})
	})
}

// RemoveOwner quita un dueño. Rechaza quitar al último (ErrLastOwner). La fila de la bodega
// se bloquea para que dos remociones concurrentes no dejen la bodega sin dueños.
func (uc *OwnershipUseCase) RemoveOwner(ctx context.Context, actor domain.Actor, warehouseID, userID string) error {
	if warehouseID == "" || userID == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(r ports.TxRepos) error {
		w, err := r.Warehouses.GetForUpdate(ctx, warehouseID)
		if err != nil {
			return err
		}
		if w == nil {
			return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, warehouseID)
		}
		if err := requireOwnerOrAdmin(ctx, r.Owners, warehouseID, actor); err != nil {
			return err
		}
		isOwner, err := r.Owners.Exists(ctx, warehouseID, userID)
		if err != nil {
			return err
		}
		if !isOwner {
			return fmt.Errorf("%w: %s no es dueño de %s", domain.ErrNotFound, userID, warehouseID)
		}
		n, err := r.Owners.Count(ctx, warehouseID)
		if err != nil {
			return err
		}
		if n <= 1 {
			return domain.ErrLastOwner
		}
		return r.Owners.Remove(ctx, warehouseID, userID)
	})
}

// IsOwner consulta pura.
func (uc *OwnershipUseCase) IsOwner(ctx context.Context, warehouseID, userID string) (bool, error) {
	if warehouseID == "" || userID == "" {
		return false, nil
	}
	return uc.owners.Exists(ctx, warehouseID, userID)
}

// GetOwners dueños de una bodega.
func (uc *OwnershipUseCase) GetOwners(ctx context.Context, warehouseID string) ([]*entity.Ownership, error) {
	if err := uc.requireWarehouse(ctx, warehouseID); err != nil {
		return nil, err
	}
	return uc.owners.ListByWarehouse(ctx, warehouseID)
}

// ListWarehousesByOwner bodegas de las que el usuario es dueño.
func (uc *OwnershipUseCase) ListWarehousesByOwner(ctx context.Context, userID string) ([]*entity.Warehouse, error) {
	ids, err := uc.owners.ListWarehouseIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Warehouse, 0, len(ids))
	for _, id := range ids {
		w, err := uc.warehouses.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if w != nil {
			out = append(out, w)
		}
	}
	return out, nil
}

func (uc *OwnershipUseCase) requireWarehouse(ctx context.Context, id string) error {
	w, err := uc.warehouses.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if w == nil {
		return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, id)
	}
	return nil
}

func requireOwnerOrAdmin(ctx context.Context, owners repository.OwnershipRepository, warehouseID string, actor domain.Actor) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.UserID == "" {
		return domain.ErrUnauthorized
	}
	ok, err := owners.Exists(ctx, warehouseID, actor.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrUnauthorized
	}
	return nil
}
