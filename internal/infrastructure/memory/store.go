// Package memory implementa los puertos de persistencia en memoria.
// Se usa en pruebas y con STORE_DRIVER=memory para desarrollo local sin PostgreSQL.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/relief-ledger/internal/application/ports"
	"github.com/jhoicas/relief-ledger/internal/domain/entity"
)

var _ ports.TxRunner = (*Store)(nil)

type placementKey struct {
	warehouseID string
	itemID      string
	status      entity.PlacementStatus
}

type state struct {
	warehouses map[string]entity.Warehouse
	categories map[string]entity.Category
	items      map[string]entity.ItemType
	placements map[placementKey]entity.Placement
	lends      map[string]entity.LendTransaction
	owners     map[string]map[string]time.Time
	users      map[string]struct{}
}

func newState() *state {
	return &state{
		warehouses: map[string]entity.Warehouse{},
		categories: map[string]entity.Category{},
		items:      map[string]entity.ItemType{},
		placements: map[placementKey]entity.Placement{},
		lends:      map[string]entity.LendTransaction{},
		owners:     map[string]map[string]time.Time{},
		users:      map[string]struct{}{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.placements {
		c.placements[k] = v
	}
	for k, v := range s.lends {
		c.lends[k] = v
	}
	for w, users := range s.owners {
		m := make(map[string]time.Time, len(users))
		for u, t := range users {
			m[u] = t
		}
		c.owners[w] = m
	}
	for k := range s.users {
		c.users[k] = struct{}{}
	}
	return c
}

// Store estado en memoria protegido por un mutex. Las transacciones se serializan:
// Run trabaja sobre una copia y solo la publica si fn termina sin error.
type Store struct {
	mu    sync.Mutex
	state *state
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{state: newState()}
}

// Run implementa ports.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(r ports.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	acc := direct(work)
	if err := fn(ports.TxRepos{
		Placements: &PlacementRepo{acc: acc},
		Lends:      &LendRepo{acc: acc},
		Owners:     &OwnershipRepo{acc: acc},
		Warehouses: &WarehouseRepo{acc: acc},
	}); err != nil {
		return err
	}
	s.state = work
	return nil
}

// AddUser registra un usuario conocido por el colaborador de identidad.
func (s *Store) AddUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.users[userID] = struct{}{}
}

// Upsert implementa repository.UserRegistry.
func (s *Store) Upsert(_ context.Context, userID string) error {
	s.AddUser(userID)
	return nil
}

// UserExists implementa repository.IdentityLookup.
func (s *Store) UserExists(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.state.users[userID]
	return ok, nil
}

// Placements repositorio fuera de transacción (lecturas y escrituras sueltas).
func (s *Store) Placements() *PlacementRepo { return &PlacementRepo{acc: s.locked} }

// Lends repositorio de préstamos fuera de transacción.
func (s *Store) Lends() *LendRepo { return &LendRepo{acc: s.locked} }

// Owners repositorio de dueños fuera de transacción.
func (s *Store) Owners() *OwnershipRepo { return &OwnershipRepo{acc: s.locked} }

// Warehouses repositorio de bodegas fuera de transacción.
func (s *Store) Warehouses() *WarehouseRepo { return &WarehouseRepo{acc: s.locked} }

// Items repositorio del catálogo.
func (s *Store) Items() *ItemRepo { return &ItemRepo{acc: s.locked} }

// Categories repositorio de categorías.
func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{acc: s.locked} }

// accessor da acceso exclusivo al estado durante f.
type accessor func(f func(st *state) error) error

func (s *Store) locked(f func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return f(s.state)
}

func direct(st *state) accessor {
	return func(f func(st *state) error) error { return f(st) }
}
