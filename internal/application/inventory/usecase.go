package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/relief-ledger/internal/application/ports"
	"github.com/jhoicas/relief-ledger/internal/domain"
	"github.com/jhoicas/relief-ledger/internal/domain/entity"
	"github.com/jhoicas/relief-ledger/internal/domain/ledger"
	"github.com/jhoicas/relief-ledger/internal/domain/repository"
)

// TransferUseCase movimientos administrativos de stock hechos por un dueño, sin solicitud ni aprobación:
// traslados entre bodegas, ingresos de donaciones y cambios Available <-> Unavailable.
type TransferUseCase struct {
	txRunner   ports.TxRunner
	warehouses repository.WarehouseRepository
	items      repository.ItemRepository
	placements repository.PlacementRepository
	owners     repository.OwnershipRepository
}

// NewTransferUseCase construye el caso de uso.
func NewTransferUseCase(
	txRunner ports.TxRunner,
	warehouses repository.WarehouseRepository,
	items repository.ItemRepository,
	placements repository.PlacementRepository,
	owners repository.OwnershipRepository,
) *TransferUseCase {
	return &TransferUseCase{
		txRunner:   txRunner,
		warehouses: warehouses,
		items:      items,
		placements: placements,
		owners:     owners,
	}
}

// TransferInput entrada para un traslado directo entre bodegas.
type TransferInput struct {
	SourceWarehouseID      string
	DestinationWarehouseID string
	ItemID                 string
	Quantity               int64
}

// TransferResult cantidades Available resultantes en origen y destino.
type TransferResult struct {
	SourceAvailable      int64
	DestinationAvailable int64
}

// Transfer resta de Available en origen y suma en Available de destino, misma transacción.
// Bodegas e ítem se validan antes de cualquier ajuste: un destino inexistente no muta nada.
func (uc *TransferUseCase) Transfer(ctx context.Context, actor domain.Actor, in TransferInput) (*TransferResult, error) {
	if in.SourceWarehouseID == "" || in.DestinationWarehouseID == "" || in.ItemID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Quantity <= 0 || in.SourceWarehouseID == in.DestinationWarehouseID {
		return nil, domain.ErrInvalidInput
	}
	if _, err := uc.requireWarehouse(ctx, in.SourceWarehouseID); err != nil {
		return nil, err
	}
	dest, err := uc.requireWarehouse(ctx, in.DestinationWarehouseID)
	if err != nil {
		return nil, err
	}
	if !dest.Active() {
		return nil, domain.ErrWarehouseInactive
	}
	if err := uc.requireItem(ctx, in.ItemID); err != nil {
		return nil, err
	}

	var res TransferResult
	err = uc.txRunner.Run(ctx, func(r ports.TxRepos) error {
		if err := requireOwner(ctx, r, in.SourceWarehouseID, actor); err != nil {
			return err
		}
		l := ledger.New(r.Placements)
		debit := func() error {
			return l.Adjust(ctx, in.SourceWarehouseID, in.ItemID, entity.PlacementAvailable, -in.Quantity)
		}
		credit := func() error {
			return l.Adjust(ctx, in.DestinationWarehouseID, in.ItemID, entity.PlacementAvailable, in.Quantity)
		}
		// Orden de bloqueo determinista por id de bodega: traslados cruzados A->B y B->A
		// toman las filas en el mismo orden.
		steps := []func() error{debit, credit}
		if in.DestinationWarehouseID < in.SourceWarehouseID {
			steps = []func() error{credit, debit}
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}
		var err error
		if res.SourceAvailable, err = l.GetQuantity(ctx, in.SourceWarehouseID, in.ItemID, entity.PlacementAvailable); err != nil {
			return err
		}
		res.DestinationAvailable, err = l.GetQuantity(ctx, in.DestinationWarehouseID, in.ItemID, entity.PlacementAvailable)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ReceiveInput ingreso de stock (donación) a una bodega.
type ReceiveInput struct {
	WarehouseID string
	ItemID      string
	Quantity    int64
}

// ReceiveStock suma a Available de la bodega; solo dueños. Es una de las dos operaciones
// que agregan stock al sistema (la otra es la aprobación de un LEND).
func (uc *TransferUseCase) ReceiveStock(ctx context.Context, actor domain.Actor, in ReceiveInput) (int64, error) {
	if in.WarehouseID == "" || in.ItemID == "" || in.Quantity <= 0 {
		return 0, domain.ErrInvalidInput
	}
	w, err := uc.requireWarehouse(ctx, in.WarehouseID)
	if err != nil {
		return 0, err
	}
	if !w.Active() {
		return 0, domain.ErrWarehouseInactive
	}
	if err := uc.requireItem(ctx, in.ItemID); err != nil {
		return 0, err
	}
	var qty int64
	err = uc.txRunner.Run(ctx, func(r ports.TxRepos) error {
		if err := requireOwner(ctx, r, in.WarehouseID, actor); err != nil {
			return err
		}
		l := ledger.New(r.Placements)
		if err := l.Adjust(ctx, in.WarehouseID, in.ItemID, entity.PlacementAvailable, in.Quantity); err != nil {
			return err
		}
		var err error
		qty, err = l.GetQuantity(ctx, in.WarehouseID, in.ItemID, entity.PlacementAvailable)
		return err
	})
	return qty, err
}

// ChangeStatusInput cambio de estado dentro de una bodega.
type ChangeStatusInput struct {
	WarehouseID string
	ItemID      string
	From        entity.PlacementStatus
	To          entity.PlacementStatus
	Quantity    int64
}

// ChangeStatus mueve cantidad entre Available y Unavailable (daños, cuarentena, reparación).
// Lent y Borrowed pertenecen al flujo de préstamos y no se tocan aquí.
func (uc *TransferUseCase) ChangeStatus(ctx context.Context, actor domain.Actor, in ChangeStatusInput) error {
	if in.WarehouseID == "" || in.ItemID == "" || in.Quantity <= 0 || !adminStatusPair(in.From, in.To) {
		return domain.ErrInvalidInput
	}
	if _, err := uc.requireWarehouse(ctx, in.WarehouseID); err != nil {
		return err
	}
	return uc.txRunner.Run(ctx, func(r ports.TxRepos) error {
		if err := requireOwner(ctx, r, in.WarehouseID, actor); err != nil {
			return err
		}
		return ledger.New(r.Placements).Move(ctx, in.WarehouseID, in.ItemID, in.From, in.To, in.Quantity)
	})
}

func adminStatusPair(from, to entity.PlacementStatus) bool {
	return (from == entity.PlacementAvailable && to == entity.PlacementUnavailable) ||
		(from == entity.PlacementUnavailable && to == entity.PlacementAvailable)
}

// ListPlacements filas no nulas de una bodega. Las bodegas públicas son visibles para todos;
// para el resto, una bodega privada o inactiva ajena no existe.
func (uc *TransferUseCase) ListPlacements(ctx context.Context, actor domain.Actor, warehouseID string) ([]*entity.Placement, error) {
	w, err := uc.requireWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	visible, err := uc.visible(ctx, actor, w)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, warehouseID)
	}
	return ledger.New(uc.placements).List(ctx, warehouseID)
}

// Distribution filas de un ítem en las bodegas visibles para el actor y su total.
// Admins ven todas; el resto, las públicas y las propias.
func (uc *TransferUseCase) Distribution(ctx context.Context, actor domain.Actor, itemID string) ([]*entity.Placement, int64, error) {
	if err := uc.requireItem(ctx, itemID); err != nil {
		return nil, 0, err
	}
	rows, err := uc.placements.ListByItem(ctx, itemID)
	if err != nil {
		return nil, 0, err
	}
	seen := map[string]bool{}
	out := make([]*entity.Placement, 0, len(rows))
	var total int64
	for _, p := range rows {
		ok, checked := seen[p.WarehouseID]
		if !checked {
			w, err := uc.warehouses.GetByID(ctx, p.WarehouseID)
			if err != nil {
				return nil, 0, err
			}
			if w != nil {
				if ok, err = uc.visible(ctx, actor, w); err != nil {
					return nil, 0, err
				}
			}
			seen[p.WarehouseID] = ok
		}
		if !ok {
			continue
		}
		out = append(out, p)
		total += p.Quantity
	}
	return out, total, nil
}

func (uc *TransferUseCase) visible(ctx context.Context, actor domain.Actor, w *entity.Warehouse) (bool, error) {
	if w.Status == entity.WarehouseStatusPublic || actor.IsAdmin() {
		return true, nil
	}
	if actor.UserID == "" {
		return false, nil
	}
	return uc.owners.Exists(ctx, w.ID, actor.UserID)
}

func (uc *TransferUseCase) requireWarehouse(ctx context.Context, id string) (*entity.Warehouse, error) {
	w, err := uc.warehouses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, id)
	}
	return w, nil
}

func (uc *TransferUseCase) requireItem(ctx context.Context, id string) error {
	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("%w: ítem %s", domain.ErrNotFound, id)
	}
	return nil
}

func requireOwner(ctx context.Context, r ports.TxRepos, warehouseID string, actor domain.Actor) error {
	if actor.UserID == "" {
		return domain.ErrUnauthorized
	}
	ok, err := r.Owners.Exists(ctx, warehouseID, actor.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s no es dueño de la bodega %s", domain.ErrUnauthorized, actor.UserID, warehouseID)
	}
	return nil
}
