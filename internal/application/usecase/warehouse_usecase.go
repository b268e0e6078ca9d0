package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/relief-ledger/internal/application/dto"
	"github.com/jhoicas/relief-ledger/internal/application/ports"
	"github.com/jhoicas/relief-ledger/internal/domain"
	"github.com/jhoicas/relief-ledger/internal/domain/entity"
	"github.com/jhoicas/relief-ledger/internal/domain/repository"
)

// WarehouseUseCase casos de uso CRUD para bodegas.
type WarehouseUseCase struct {
	txRunner ports.TxRunner
	repo     repository.WarehouseRepository
	owners   repository.OwnershipRepository
}

// NewWarehouseUseCase construye el caso de uso.
func NewWarehouseUseCase(txRunner ports.TxRunner, repo repository.WarehouseRepository, owners repository.OwnershipRepository) *WarehouseUseCase {
	return &WarehouseUseCase{txRunner: txRunner, repo: repo, owners: owners}
}

// Create crea una nueva bodega; el creador queda como su primer dueño en la misma transacción.
func (uc *WarehouseUseCase) Create(ctx context.Context, actor domain.Actor, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	if actor.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	status := entity.WarehouseStatusPublic
	if in.Status != "" {
		status = entity.WarehouseStatus(in.Status)
		if !status.Valid() {
			return nil, domain.ErrInvalidInput
		}
	}
	now := time.Now()
	warehouse := &entity.Warehouse{
		ID:        uuid.New().String(),
		Name:      name,
		Address:   in.Address,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := uc.txRunner.Run(ctx, func(r ports.TxRepos) error {
		if err := r.Warehouses.Create(ctx, warehouse); err != nil {
			return err
		}
		return r.Owners.Add(ctx, &entity.Ownership{WarehouseID: warehouse.ID, UserID: actor.UserID, CreatedAt: now})
	})
	if err != nil {
		return nil, err
	}
	return dto.ToWarehouseResponse(warehouse), nil
}

// GetByID obtiene una bodega por ID. Las privadas solo son visibles para dueños y admins.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, actor domain.Actor, id string) (*dto.WarehouseResponse, error) {
	warehouse, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, id)
	}
	if warehouse.Status != entity.WarehouseStatusPublic && !actor.IsAdmin() {
		ok, err := uc.owners.Exists(ctx, id, actor.UserID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, id)
		}
	}
	return dto.ToWarehouseResponse(warehouse), nil
}

// Update actualiza nombre, dirección o estado; solo dueños.
func (uc *WarehouseUseCase) Update(ctx context.Context, actor domain.Actor, id string, in dto.UpdateWarehouseRequest) (*dto.WarehouseResponse, error) {
	var out *entity.Warehouse
	err := uc.txRunner.Run(ctx, func(r ports.TxRepos) error {
		warehouse, err := r.Warehouses.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if warehouse == nil {
			return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, id)
		}
		ok, err := r.Owners.Exists(ctx, id, actor.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrUnauthorized
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return domain.ErrInvalidInput
			}
			warehouse.Name = name
		}
		if in.Address != nil {
			warehouse.Address = *in.Address
		}
		if in.Status != nil {
			status := entity.WarehouseStatus(*in.Status)
			if !status.Valid() {
				return domain.ErrInvalidInput
			}
			warehouse.Status = status
		}
		warehouse.UpdatedAt = time.Now()
		out = warehouse
		return r.Warehouses.Update(ctx, warehouse)
	})
	if err != nil {
		return nil, err
	}
	return dto.ToWarehouseResponse(out), nil
}

// List lista bodegas visibles con paginación: admins ven todas, el resto las públicas y las propias.
func (uc *WarehouseUseCase) List(ctx context.Context, actor domain.Actor, limit, offset int) (*dto.WarehouseListResponse, error) {
	viewer := actor.UserID
	if actor.IsAdmin() {
		viewer = ""
	}
	list, err := uc.repo.List(ctx, viewer, limit, offset)
	if err != nil {
		return nil, err
	}
	return &dto.WarehouseListResponse{
		Items: dto.ToWarehouseResponses(list),
		Page:  dto.NewPageResponse(limit, offset, len(list)),
	}, nil
}

// Delete elimina una bodega sin stock ni historial de préstamos; solo dueños.
// Con filas en el libro o transacciones asociadas devuelve ErrConflict (usar estado Inactive).
func (uc *WarehouseUseCase) Delete(ctx context.Context, actor domain.Actor, id string) error {
	return uc.txRunner.Run(ctx, func(r ports.TxRepos) error {
		warehouse, err := r.Warehouses.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if warehouse == nil {
			return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, id)
		}
		ok, err := r.Owners.Exists(ctx, id, actor.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrUnauthorized
		}
		rows, err := r.Placements.CountByWarehouse(ctx, id)
		if err != nil {
			return err
		}
		lends, err := r.Lends.CountByWarehouse(ctx, id)
		if err != nil {
			return err
		}
		if rows > 0 || lends > 0 {
			return fmt.Errorf("%w: la bodega tiene stock o préstamos registrados", domain.ErrConflict)
		}
		if err := r.Owners.RemoveAll(ctx, id); err != nil {
			return err
		}
		return r.Warehouses.Delete(ctx, id)
	})
}
