package lending

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/relief-ledger/internal/application/ports"
	"github.com/jhoicas/relief-ledger/internal/domain"
	"github.com/jhoicas/relief-ledger/internal/domain/entity"
	"github.com/jhoicas/relief-ledger/internal/domain/ledger"
	"github.com/jhoicas/relief-ledger/internal/domain/repository"
)

// LendUseCase máquina de estados de préstamos (BORROW) y depósitos (LEND).
// Cada transición corre en una sola transacción junto con sus efectos en el libro.
type LendUseCase struct {
	txRunner   ports.TxRunner
	warehouses repository.WarehouseRepository
	items      repository.ItemRepository
	lends      repository.LendRepository
	owners     repository.OwnershipRepository
	policy     *ActivationPolicy
	idem       ports.IdempotencyGuard
	now        func() time.Time
}

// NewLendUseCase construye el caso de uso. policy nil usa DefaultActivationExpr; idem nil desactiva la idempotencia.
func NewLendUseCase(
	txRunner ports.TxRunner,
	warehouses repository.WarehouseRepository,
	items repository.ItemRepository,
	lends repository.LendRepository,
	owners repository.OwnershipRepository,
	policy *ActivationPolicy,
	idem ports.IdempotencyGuard,
) *LendUseCase {
	if policy == nil {
		policy = MustActivationPolicy(DefaultActivationExpr)
	}
	if idem == nil {
		idem = ports.NoopIdempotency{}
	}
	return &LendUseCase{
		txRunner:   txRunner,
		warehouses: warehouses,
		items:      items,
		lends:      lends,
		owners:     owners,
		policy:     policy,
		idem:       idem,
		now:        time.Now,
	}
}

// CreateLendInput entrada para crear una solicitud.
// DestinationWarehouseID solo aplica a BORROW (depositar lo prestado en una bodega propia).
type CreateLendInput struct {
	Kind                   entity.LendKind
	SourceWarehouseID      string
	DestinationWarehouseID string
	ItemID                 string
	Quantity               int64
	Note                   string
	IdempotencyKey         string
}

// Create registra la solicitud. No reserva stock: la suficiencia se verifica al aprobar.
// Si la política de activación aplica (solo dueños de la bodega origen), la transacción
// nace en Active y el efecto de aprobación se aplica en la misma transacción.
func (uc *LendUseCase) Create(ctx context.Context, actor domain.Actor, in CreateLendInput) (*entity.LendTransaction, error) {
	if actor.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	if !in.Kind.Valid() || in.Quantity <= 0 || in.SourceWarehouseID == "" || in.ItemID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.DestinationWarehouseID != "" {
		if in.Kind != entity.LendKindBorrow || in.DestinationWarehouseID == in.SourceWarehouseID {
			return nil, domain.ErrInvalidInput
		}
	}

	if err := uc.requireActiveWarehouse(ctx, in.SourceWarehouseID); err != nil {
		return nil, err
	}
	if in.DestinationWarehouseID != "" {
		if err := uc.requireActiveWarehouse(ctx, in.DestinationWarehouseID); err != nil {
			return nil, err
		}
	}
	item, err := uc.items.GetByID(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: ítem %s", domain.ErrNotFound, in.ItemID)
	}

	idemKey := ""
	if in.IdempotencyKey != "" {
		idemKey = "lend:" + actor.UserID + ":" + in.IdempotencyKey
		ok, err := uc.idem.Claim(ctx, idemKey)
		if err != nil {
			return nil, fmt.Errorf("verificar idempotencia: %w", err)
		}
		if !ok {
			return nil, domain.ErrDuplicateRequest
		}
	}

	now := uc.now()
	t := &entity.LendTransaction{
		ID:                     uuid.New().String(),
		RequesterID:            actor.UserID,
		Kind:                   in.Kind,
		SourceWarehouseID:      in.SourceWarehouseID,
		DestinationWarehouseID: in.DestinationWarehouseID,
		ItemID:                 in.ItemID,
		Quantity:               in.Quantity,
		Note:                   in.Note,
		CreatedAt:              now,
	}

	err = uc.txRunner.Run(ctx, func(r ports.TxRepos) error {
		// Estado inicial recalculado en cada intento.
		t.Status, t.DecidedAt, t.DecidedBy = entity.LendStatusPending, nil, ""

		if t.HasDestination() {
			ownsDest, err := r.Owners.Exists(ctx, t.DestinationWarehouseID, actor.UserID)
			if err != nil {
				return err
			}
			if !ownsDest {
				return fmt.Errorf("%w: el destino debe ser una bodega propia", domain.ErrUnauthorized)
			}
		}
		isOwner, err := r.Owners.Exists(ctx, t.SourceWarehouseID, actor.UserID)
		if err != nil {
			return err
		}
		auto, err := uc.policy.AutoActivate(t.Kind, isOwner, t.HasDestination(), t.Quantity)
		if err != nil {
			return err
		}
		if auto {
			if err := applyApproval(ctx, ledger.New(r.Placements), t); err != nil {
				return err
			}
			t.Status, t.DecidedAt, t.DecidedBy = entity.LendStatusActive, &now, actor.UserID
		}
		return r.Lends.Create(ctx, t)
	})
	if err != nil {
		if idemKey != "" {
			_ = uc.idem.Release(ctx, idemKey)
		}
		return nil, err
	}
	return t, nil
}

// Approve Pending -> Active. Solo un dueño de la bodega origen. La suficiencia de stock
// se verifica aquí, con la fila bloqueada, en la misma transacción que el cambio de estado.
// Con stock insuficiente la transacción sigue en Pending.
func (uc *LendUseCase) Approve(ctx context.Context, id string, actor domain.Actor) (*entity.LendTransaction, error) {
	return uc.transition(ctx, id, func(r ports.TxRepos, t *entity.LendTransaction) error {
		if err := requireOwner(ctx, r, t.SourceWarehouseID, actor); err != nil {
			return err
		}
		if err := requireTransition(t, entity.LendStatusActive); err != nil {
			return err
		}
		if err := applyApproval(ctx, ledger.New(r.Placements), t); err != nil {
			return err
		}
		now := uc.now()
		t.Status, t.DecidedAt, t.DecidedBy = entity.LendStatusActive, &now, actor.UserID
		return nil
	})
}

// Reject Pending -> Rejected por un dueño de la bodega origen; sin efecto en el libro.
func (uc *LendUseCase) Reject(ctx context.Context, id string, actor domain.Actor) (*entity.LendTransaction, error) {
	return uc.transition(ctx, id, func(r ports.TxRepos, t *entity.LendTransaction) error {
		if err := requireOwner(ctx, r, t.SourceWarehouseID, actor); err != nil {
			return err
		}
		if err := requireTransition(t, entity.LendStatusRejected); err != nil {
			return err
		}
		now := uc.now()
		t.Status, t.DecidedAt, t.DecidedBy = entity.LendStatusRejected, &now, actor.UserID
		return nil
	})
}

// Cancel el solicitante abandona su propia solicitud Pending (queda Rejected).
func (uc *LendUseCase) Cancel(ctx context.Context, id string, actor domain.Actor) (*entity.LendTransaction, error) {
	return uc.transition(ctx, id, func(_ ports.TxRepos, t *entity.LendTransaction) error {
		if actor.UserID == "" || t.RequesterID != actor.UserID {
			return domain.ErrUnauthorized
		}
		if err := requireTransition(t, entity.LendStatusRejected); err != nil {
			return err
		}
		now := uc.now()
		t.Status, t.DecidedAt, t.DecidedBy = entity.LendStatusRejected, &now, actor.UserID
		return nil
	})
}

// Return Active -> Returned por el solicitante o un dueño de la bodega origen.
// Revierte el movimiento aplicado en la aprobación.
func (uc *LendUseCase) Return(ctx context.Context, id string, actor domain.Actor) (*entity.LendTransaction, error) {
	return uc.transition(ctx, id, func(r ports.TxRepos, t *entity.LendTransaction) error {
		if actor.UserID == "" {
			return domain.ErrUnauthorized
		}
		if t.RequesterID != actor.UserID {
			if err := requireOwner(ctx, r, t.SourceWarehouseID, actor); err != nil {
				return err
			}
		}
		if err := requireTransition(t, entity.LendStatusReturned); err != nil {
			return err
		}
		if err := applyReturn(ctx, ledger.New(r.Placements), t); err != nil {
			return err
		}
		now := uc.now()
		t.Status, t.ReturnedAt = entity.LendStatusReturned, &now
		return nil
	})
}

// transition bloquea la fila de la transacción, aplica fn y persiste el nuevo estado.
func (uc *LendUseCase) transition(ctx context.Context, id string, fn func(r ports.TxRepos, t *entity.LendTransaction) error) (*entity.LendTransaction, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.LendTransaction
	err := uc.txRunner.Run(ctx, func(r ports.TxRepos) error {
		t, err := r.Lends.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("%w: transacción %s", domain.ErrNotFound, id)
		}
		if err := fn(r, t); err != nil {
			return err
		}
		if err := r.Lends.UpdateStatus(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// applyApproval BORROW: origen Available -> Lent y, si hay destino, destino Borrowed += q.
// LEND: el solicitante deposita en origen, Available += q.
func applyApproval(ctx context.Context, l *ledger.PlacementLedger, t *entity.LendTransaction) error {
	switch t.Kind {
	case entity.LendKindBorrow:
		available, err := l.LockQuantity(ctx, t.SourceWarehouseID, t.ItemID, entity.PlacementAvailable)
		if err != nil {
			return err
		}
		if available < t.Quantity {
			return fmt.Errorf("%w: disponible %d, solicitado %d", domain.ErrInsufficientStock, available, t.Quantity)
		}
		if err := l.Move(ctx, t.SourceWarehouseID, t.ItemID, entity.PlacementAvailable, entity.PlacementLent, t.Quantity); err != nil {
			return err
		}
		if t.HasDestination() {
			return l.Adjust(ctx, t.DestinationWarehouseID, t.ItemID, entity.PlacementBorrowed, t.Quantity)
		}
		return nil
	case entity.LendKindLend:
		return l.Adjust(ctx, t.SourceWarehouseID, t.ItemID, entity.PlacementAvailable, t.Quantity)
	}
	return domain.ErrInvalidInput
}

// applyReturn inverso exacto de applyApproval.
func applyReturn(ctx context.Context, l *ledger.PlacementLedger, t *entity.LendTransaction) error {
	switch t.Kind {
	case entity.LendKindBorrow:
		if err := l.Move(ctx, t.SourceWarehouseID, t.ItemID, entity.PlacementLent, entity.PlacementAvailable, t.Quantity); err != nil {
			return err
		}
		if t.HasDestination() {
			return l.Adjust(ctx, t.DestinationWarehouseID, t.ItemID, entity.PlacementBorrowed, -t.Quantity)
		}
		return nil
	case entity.LendKindLend:
		return l.Adjust(ctx, t.SourceWarehouseID, t.ItemID, entity.PlacementAvailable, -t.Quantity)
	}
	return domain.ErrInvalidInput
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

func requireTransition(t *entity.LendTransaction, next entity.LendStatus) error {
	if !t.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, t.Status, next)
	}
	return nil
}

func (uc *LendUseCase) requireActiveWarehouse(ctx context.Context, id string) error {
	w, err := uc.warehouses.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if w == nil {
		return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, id)
	}
	if !w.Active() {
		return domain.ErrWarehouseInactive
	}
	return nil
}
