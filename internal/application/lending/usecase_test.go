package lending_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/relief-ledger/internal/application/lending"
	"github.com/jhoicas/relief-ledger/internal/domain"
	"github.com/jhoicas/relief-ledger/internal/domain/entity"
	"github.com/jhoicas/relief-ledger/internal/infrastructure/memory"
)

var (
	owner     = domain.Actor{UserID: "owner-w1", Role: domain.RoleUser}
	requester = domain.Actor{UserID: "u", Role: domain.RoleUser}
	admin     = domain.Actor{UserID: "root", Role: domain.RoleAdmin}
)

const (
	w1     = "w1"
	w2     = "w2" // bodega propia del solicitante
	closed = "w-closed"
	itemID = "carpa"
)

type fixture struct {
	store *memory.Store
	uc    *lending.LendUseCase
}

func newFixture(t *testing.T, available int64, policy *lending.ActivationPolicy) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Now()

	for _, w := range []entity.Warehouse{
		{ID: w1, Name: "W1", Status: entity.WarehouseStatusPublic, CreatedAt: now},
		{ID: w2, Name: "W2", Status: entity.WarehouseStatusPrivate, CreatedAt: now},
		{ID: closed, Name: "Cerrada", Status: entity.WarehouseStatusInactive, CreatedAt: now},
	} {
		w := w
		require.NoError(t, store.Warehouses().Create(ctx, &w))
	}
	require.NoError(t, store.Owners().Add(ctx, &entity.Ownership{WarehouseID: w1, UserID: owner.UserID, CreatedAt: now}))
	require.NoError(t, store.Owners().Add(ctx, &entity.Ownership{WarehouseID: w2, UserID: requester.UserID, CreatedAt: now}))
	require.NoError(t, store.Owners().Add(ctx, &entity.Ownership{WarehouseID: closed, UserID: owner.UserID, CreatedAt: now}))
	require.NoError(t, store.Items().Create(ctx, &entity.ItemType{ID: itemID, Name: "Carpa", Unit: "unidad", CreatedAt: now}))
	if available > 0 {
		_, err := store.Placements().Increment(ctx, w1, itemID, entity.PlacementAvailable, available)
		require.NoError(t, err)
	}

	uc := lending.NewLendUseCase(store, store.Warehouses(), store.Items(), store.Lends(), store.Owners(),
		policy, memory.NewIdempotencyGuard(time.Hour))
	return &fixture{store: store, uc: uc}
}

func (f *fixture) qty(t *testing.T, warehouseID string, status entity.PlacementStatus) int64 {
	t.Helper()
	p, err := f.store.Placements().Get(context.Background(), warehouseID, itemID, status)
	require.NoError(t, err)
	return p.Quantity
}

func (f *fixture) borrow(t *testing.T, qty int64) *entity.LendTransaction {
	t.Helper()
	tx, err := f.uc.Create(context.Background(), requester, lending.CreateLendInput{
		Kind: entity.LendKindBorrow, SourceWarehouseID: w1, ItemID: itemID, Quantity: qty,
	})
	require.NoError(t, err)
	require.Equal(t, entity.LendStatusPending, tx.Status)
	return tx
}

func TestLend_FlujoCompleto_W1(t *testing.T) {
	f := newFixture(t, 20, nil)
	ctx := context.Background()

	tx := f.borrow(t, 5)
	assert.Equal(t, int64(20), f.qty(t, w1, entity.PlacementAvailable), "crear no reserva stock")

	approved, err := f.uc.Approve(ctx, tx.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, entity.LendStatusActive, approved.Status)
	assert.Equal(t, owner.UserID, approved.DecidedBy)
	assert.NotNil(t, approved.DecidedAt)
	assert.Equal(t, int64(15), f.qty(t, w1, entity.PlacementAvailable))
	assert.Equal(t, int64(5), f.qty(t, w1, entity.PlacementLent))

	returned, err := f.uc.Return(ctx, tx.ID, requester)
	require.NoError(t, err)
	assert.Equal(t, entity.LendStatusReturned, returned.Status)
	assert.NotNil(t, returned.ReturnedAt)
	assert.Equal(t, int64(20), f.qty(t, w1, entity.PlacementAvailable))
	assert.Zero(t, f.qty(t, w1, entity.PlacementLent))

	rows, err := f.store.Placements().ListByWarehouse(ctx, w1)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "la fila Lent en cero se elimina")
}

func TestLend_EstadosTerminalesNoCambian(t *testing.T) {
	f := newFixture(t, 10, nil)
	ctx := context.Background()

	rejected := f.borrow(t, 1)
	_, err := f.uc.Reject(ctx, rejected.ID, owner)
	require.NoError(t, err)

	returned := f.borrow(t, 1)
	_, err = f.uc.Approve(ctx, returned.ID, owner)
	require.NoError(t, err)
	_, err = f.uc.Return(ctx, returned.ID, owner)
	require.NoError(t, err)

	ops := map[string]func(id string) (*entity.LendTransaction, error){
		"approve": func(id string) (*entity.LendTransaction, error) { return f.uc.Approve(ctx, id, owner) },
		"reject":  func(id string) (*entity.LendTransaction, error) { return f.uc.Reject(ctx, id, owner) },
		"cancel":  func(id string) (*entity.LendTransaction, error) { return f.uc.Cancel(ctx, id, requester) },
		"return":  func(id string) (*entity.LendTransaction, error) { return f.uc.Return(ctx, id, requester) },
	}
	for name, op := range ops {
		for _, id := range []string{rejected.ID, returned.ID} {
			_, err := op(id)
			assert.ErrorIs(t, err, domain.ErrInvalidTransition, name)
		}
	}
	assert.Equal(t, int64(10), f.qty(t, w1, entity.PlacementAvailable))

	got, err := f.uc.Get(ctx, rejected.ID, requester)
	require.NoError(t, err)
	assert.Equal(t, entity.LendStatusRejected, got.Status)
}

func TestLend_ReturnDesdePendingEsInvalido(t *testing.T) {
	f := newFixture(t, 10, nil)
	tx := f.borrow(t, 2)

	_, err := f.uc.Return(context.Background(), tx.ID, requester)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, int64(10), f.qty(t, w1, entity.PlacementAvailable))
}

func TestLend_AprobacionesConcurrentes_NoSobrevende(t *testing.T) {
	f := newFixture(t, 10, nil)
	ctx := context.Background()
	a := f.borrow(t, 6)
	b := f.borrow(t, 6)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{a.ID, b.ID} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = f.uc.Approve(ctx, id, owner)
		}(i, id)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, domain.ErrInsufficientStock):
			insufficient++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, int64(4), f.qty(t, w1, entity.PlacementAvailable))
	assert.Equal(t, int64(6), f.qty(t, w1, entity.PlacementLent))

	statuses := map[entity.LendStatus]int{}
	for _, id := range []string{a.ID, b.ID} {
		got, err := f.uc.Get(ctx, id, requester)
		require.NoError(t, err)
		statuses[got.Status]++
	}
	assert.Equal(t, map[entity.LendStatus]int{entity.LendStatusActive: 1, entity.LendStatusPending: 1}, statuses)
}

func TestLend_AprobarSinSerDueno(t *testing.T) {
	f := newFixture(t, 10, nil)
	tx := f.borrow(t, 1)

	_, err := f.uc.Approve(context.Background(), tx.ID, requester)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.uc.Reject(context.Background(), tx.ID, admin)
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "admin no es dueño de la bodega")
}

func TestLend_CancelSoloSolicitante(t *testing.T) {
	f := newFixture(t, 10, nil)
	ctx := context.Background()
	tx := f.borrow(t, 1)

	_, err := f.uc.Cancel(ctx, tx.ID, owner)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	cancelled, err := f.uc.Cancel(ctx, tx.ID, requester)
	require.NoError(t, err)
	assert.Equal(t, entity.LendStatusRejected, cancelled.Status)
	assert.Equal(t, requester.UserID, cancelled.DecidedBy)
}

func TestLend_ReturnPorTercero(t *testing.T) {
	f := newFixture(t, 10, nil)
	ctx := context.Background()
	tx := f.borrow(t, 1)
	_, err := f.uc.Approve(ctx, tx.ID, owner)
	require.NoError(t, err)

	_, err = f.uc.Return(ctx, tx.ID, domain.Actor{UserID: "otro"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, int64(1), f.qty(t, w1, entity.PlacementLent))
}

func TestLend_BorrowConDestino(t *testing.T) {
	f := newFixture(t, 10, nil)
	ctx := context.Background()

	tx, err := f.uc.Create(ctx, requester, lending.CreateLendInput{
		Kind: entity.LendKindBorrow, SourceWarehouseID: w1, DestinationWarehouseID: w2, ItemID: itemID, Quantity: 3,
	})
	require.NoError(t, err)
	_, err = f.uc.Approve(ctx, tx.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(7), f.qty(t, w1, entity.PlacementAvailable))
	assert.Equal(t, int64(3), f.qty(t, w1, entity.PlacementLent))
	assert.Equal(t, int64(3), f.qty(t, w2, entity.PlacementBorrowed))

	_, err = f.uc.Return(ctx, tx.ID, requester)
	require.NoError(t, err)
	assert.Equal(t, int64(10), f.qty(t, w1, entity.PlacementAvailable))
	assert.Zero(t, f.qty(t, w2, entity.PlacementBorrowed))
}

func TestLend_BorrowConDestinoAjeno(t *testing.T) {
	f := newFixture(t, 10, nil)
	_, err := f.uc.Create(context.Background(), owner, lending.CreateLendInput{
		Kind: entity.LendKindBorrow, SourceWarehouseID: w1, DestinationWarehouseID: w2, ItemID: itemID, Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLend_LendAutoActivoParaDueno(t *testing.T) {
	f := newFixture(t, 0, nil)
	ctx := context.Background()

	tx, err := f.uc.Create(ctx, owner, lending.CreateLendInput{
		Kind: entity.LendKindLend, SourceWarehouseID: w1, ItemID: itemID, Quantity: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.LendStatusActive, tx.Status)
	assert.Equal(t, int64(5), f.qty(t, w1, entity.PlacementAvailable))

	_, err = f.uc.Return(ctx, tx.ID, owner)
	require.NoError(t, err)
	assert.Zero(t, f.qty(t, w1, entity.PlacementAvailable))
}

func TestLend_LendDeNoDuenoQuedaPending(t *testing.T) {
	f := newFixture(t, 0, nil)
	ctx := context.Background()

	tx, err := f.uc.Create(ctx, requester, lending.CreateLendInput{
		Kind: entity.LendKindLend, SourceWarehouseID: w1, ItemID: itemID, Quantity: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.LendStatusPending, tx.Status)
	assert.Zero(t, f.qty(t, w1, entity.PlacementAvailable))

	_, err = f.uc.Approve(ctx, tx.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(5), f.qty(t, w1, entity.PlacementAvailable))
}

func TestLend_ReturnDeLendSinDisponible(t *testing.T) {
	f := newFixture(t, 0, nil)
	ctx := context.Background()

	deposit, err := f.uc.Create(ctx, owner, lending.CreateLendInput{
		Kind: entity.LendKindLend, SourceWarehouseID: w1, ItemID: itemID, Quantity: 5,
	})
	require.NoError(t, err)

	loan := f.borrow(t, 4)
	_, err = f.uc.Approve(ctx, loan.ID, owner)
	require.NoError(t, err)

	_, err = f.uc.Return(ctx, deposit.ID, owner)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, err := f.uc.Get(ctx, deposit.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, entity.LendStatusActive, got.Status)
	assert.Equal(t, int64(1), f.qty(t, w1, entity.PlacementAvailable))
}

func TestLend_PoliticaPersonalizada(t *testing.T) {
	policy, err := lending.NewActivationPolicy(`requester_is_owner && quantity <= 3`)
	require.NoError(t, err)
	f := newFixture(t, 10, policy)
	ctx := context.Background()

	small, err := f.uc.Create(ctx, owner, lending.CreateLendInput{
		Kind: entity.LendKindBorrow, SourceWarehouseID: w1, ItemID: itemID, Quantity: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.LendStatusActive, small.Status)
	assert.Equal(t, int64(3), f.qty(t, w1, entity.PlacementLent))

	big, err := f.uc.Create(ctx, owner, lending.CreateLendInput{
		Kind: entity.LendKindBorrow, SourceWarehouseID: w1, ItemID: itemID, Quantity: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.LendStatusPending, big.Status)
}

func TestLend_AutoActivacionSinStockNoCrea(t *testing.T) {
	policy, err := lending.NewActivationPolicy(`requester_is_owner`)
	require.NoError(t, err)
	f := newFixture(t, 2, policy)
	ctx := context.Background()

	_, err = f.uc.Create(ctx, owner, lending.CreateLendInput{
		Kind: entity.LendKindBorrow, SourceWarehouseID: w1, ItemID: itemID, Quantity: 3,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	list, err := f.uc.ListMine(ctx, owner, lending.ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLend_Create_Validaciones(t *testing.T) {
	f := newFixture(t, 10, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		actor   domain.Actor
		in      lending.CreateLendInput
		wantErr error
	}{
		{"sin actor", domain.Actor{}, lending.CreateLendInput{Kind: entity.LendKindBorrow, SourceWarehouseID: w1, ItemID: itemID, Quantity: 1}, domain.ErrUnauthorized},
		{"tipo inválido", requester, lending.CreateLendInput{Kind: "GIFT", SourceWarehouseID: w1, ItemID: itemID, Quantity: 1}, domain.ErrInvalidInput},
		{"cantidad cero", requester, lending.CreateLendInput{Kind: entity.LendKindBorrow, SourceWarehouseID: w1, ItemID: itemID}, domain.ErrInvalidInput},
		{"destino en LEND", requester, lending.CreateLendInput{Kind: entity.LendKindLend, SourceWarehouseID: w1, DestinationWarehouseID: w2, ItemID: itemID, Quantity: 1}, domain.ErrInvalidInput},
		{"destino igual a origen", requester, lending.CreateLendInput{Kind: entity.LendKindBorrow, SourceWarehouseID: w1, DestinationWarehouseID: w1, ItemID: itemID, Quantity: 1}, domain.ErrInvalidInput},
		{"bodega inexistente", requester, lending.CreateLendInput{Kind: entity.LendKindBorrow, SourceWarehouseID: "nada", ItemID: itemID, Quantity: 1}, domain.ErrNotFound},
		{"bodega inactiva", requester, lending.CreateLendInput{Kind: entity.LendKindBorrow, SourceWarehouseID: closed, ItemID: itemID, Quantity: 1}, domain.ErrWarehouseInactive},
		{"ítem inexistente", requester, lending.CreateLendInput{Kind: entity.LendKindBorrow, SourceWarehouseID: w1, ItemID: "nada", Quantity: 1}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Create(ctx, tt.actor, tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLend_IdempotencyKey(t *testing.T) {
	f := newFixture(t, 10, nil)
	ctx := context.Background()

	// Un intento fallido dentro de la transacción libera la clave.
	_, err := f.uc.Create(ctx, requester, lending.CreateLendInput{
		Kind: entity.LendKindBorrow, SourceWarehouseID: w2, DestinationWarehouseID: w1, ItemID: itemID, Quantity: 1,
		IdempotencyKey: "k1",
	})
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	in := lending.CreateLendInput{Kind: entity.LendKindBorrow, SourceWarehouseID: w1, ItemID: itemID, Quantity: 1, IdempotencyKey: "k1"}
	_, err = f.uc.Create(ctx, requester, in)
	require.NoError(t, err)

	_, err = f.uc.Create(ctx, requester, in)
	assert.ErrorIs(t, err, domain.ErrDuplicateRequest)

	// La clave es por usuario.
	_, err = f.uc.Create(ctx, owner, in)
	assert.NoError(t, err)
}

func TestLend_Listados(t *testing.T) {
	f := newFixture(t, 10, nil)
	ctx := context.Background()

	a := f.borrow(t, 1)
	f.borrow(t, 2)
	_, err := f.uc.Approve(ctx, a.ID, owner)
	require.NoError(t, err)

	mine, err := f.uc.ListMine(ctx, requester, lending.ListQuery{})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	pending, err := f.uc.ListMine(ctx, requester, lending.ListQuery{Statuses: []entity.LendStatus{entity.LendStatusPending}})
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = f.uc.ListMine(ctx, requester, lending.ListQuery{Statuses: []entity.LendStatus{"Perdido"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	byWarehouse, err := f.uc.ListByWarehouse(ctx, w1, owner, lending.ListQuery{})
	require.NoError(t, err)
	assert.Len(t, byWarehouse, 2)

	_, err = f.uc.ListByWarehouse(ctx, w1, requester, lending.ListQuery{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.uc.ListOutstanding(ctx, owner, 0, 0)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	outstanding, err := f.uc.ListOutstanding(ctx, admin, 0, 0)
	require.NoError(t, err)
	require.Len(t, outstanding, 1)
	assert.Equal(t, a.ID, outstanding[0].ID)
}

func TestLend_GetVisibilidad(t *testing.T) {
	f := newFixture(t, 10, nil)
	ctx := context.Background()
	tx := f.borrow(t, 1)

	for _, actor := range []domain.Actor{requester, owner, admin} {
		_, err := f.uc.Get(ctx, tx.ID, actor)
		assert.NoError(t, err, actor.UserID)
	}
	_, err := f.uc.Get(ctx, tx.ID, domain.Actor{UserID: "otro"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.uc.Get(ctx, "no-existe", admin)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
