package ports

import (
	"context"

	"github.com/jhoicas/relief-ledger/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción de BD.
type TxRepos struct {
	Placements repository.PlacementRepository
	Lends      repository.LendRepository
	Owners     repository.OwnershipRepository
	Warehouses repository.WarehouseRepository
}

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Commit si fn devuelve nil, Rollback en cualquier otro caso. Los conflictos de concurrencia
// se reintentan re-ejecutando fn completa; agotados los reintentos devuelve
// domain.ErrConcurrentModification.
type TxRunner interface {
	Run(ctx context.Context, fn func(r TxRepos) error) error
}
