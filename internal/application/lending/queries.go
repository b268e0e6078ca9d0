package lending

import (
	"context"
	"fmt"

	"github.com/jhoicas/relief-ledger/internal/domain"
	"github.com/jhoicas/relief-ledger/internal/domain/entity"
	"github.com/jhoicas/relief-ledger/internal/domain/repository"
)

// ListQuery paginación y filtro de estados para los listados.
type ListQuery struct {
	Statuses []entity.LendStatus
	Limit    int
	Offset   int
}

func (q ListQuery) filter() (repository.LendFilter, error) {
	for _, s := range q.Statuses {
		if !s.Valid() {
			return repository.LendFilter{}, domain.ErrInvalidInput
		}
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	return repository.LendFilter{Statuses: q.Statuses, Limit: limit, Offset: offset}, nil
}

// Get devuelve una transacción visible para el solicitante, los dueños de origen o destino y admins.
func (uc *LendUseCase) Get(ctx context.Context, id string, actor domain.Actor) (*entity.LendTransaction, error) {
	t, err := uc.lends.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: transacción %s", domain.ErrNotFound, id)
	}
	if actor.IsAdmin() || t.RequesterID == actor.UserID {
		return t, nil
	}
	for _, w := range []string{t.SourceWarehouseID, t.DestinationWarehouseID} {
		if w == "" {
			continue
		}
		ok, err := uc.owners.Exists(ctx, w, actor.UserID)
		if err != nil {
			return nil, err
		}
		if ok {
			return t, nil
		}
	}
	return nil, domain.ErrUnauthorized
}

// ListMine historial de solicitudes del actor, más recientes primero.
func (uc *LendUseCase) ListMine(ctx context.Context, actor domain.Actor, q ListQuery) ([]*entity.LendTransaction, error) {
	if actor.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	f, err := q.filter()
	if err != nil {
		return nil, err
	}
	f.RequesterID = actor.UserID
	return uc.lends.List(ctx, f)
}

// ListByWarehouse transacciones donde la bodega es origen o destino; solo dueños o admins.
func (uc *LendUseCase) ListByWarehouse(ctx context.Context, warehouseID string, actor domain.Actor, q ListQuery) ([]*entity.LendTransaction, error) {
	if !actor.IsAdmin() {
		ok, err := uc.owners.Exists(ctx, warehouseID, actor.UserID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrUnauthorized
		}
	}
	f, err := q.filter()
	if err != nil {
		return nil, err
	}
	f.WarehouseID = warehouseID
	return uc.lends.List(ctx, f)
}

// ListOutstanding préstamos activos (no devueltos) de todo el sistema; solo admins.
func (uc *LendUseCase) ListOutstanding(ctx context.Context, actor domain.Actor, limit, offset int) ([]*entity.LendTransaction, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrUnauthorized
	}
	f, err := ListQuery{Statuses: []entity.LendStatus{entity.LendStatusActive}, Limit: limit, Offset: offset}.filter()
	if err != nil {
		return nil, err
	}
	return uc.lends.List(ctx, f)
}
