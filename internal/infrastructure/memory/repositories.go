package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/relief-ledger/internal/domain"
	"github.com/jhoicas/relief-ledger/internal/domain/entity"
	"github.com/jhoicas/relief-ledger/internal/domain/repository"
)

var (
	_ repository.PlacementRepository = (*PlacementRepo)(nil)
	_ repository.LendRepository      = (*LendRepo)(nil)
	_ repository.OwnershipRepository = (*OwnershipRepo)(nil)
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
	_ repository.ItemRepository      = (*ItemRepo)(nil)
	_ repository.CategoryRepository  = (*CategoryRepo)(nil)
	_ repository.IdentityLookup      = (*Store)(nil)
	_ repository.UserRegistry        = (*Store)(nil)
)

// PlacementRepo filas del libro en memoria.
type PlacementRepo struct{ acc accessor }

func (r *PlacementRepo) Get(_ context.Context, warehouseID, itemID string, status entity.PlacementStatus) (*entity.Placement, error) {
	var out entity.Placement
	err := r.acc(func(st *state) error {
		p, ok := st.placements[placementKey{warehouseID, itemID, status}]
		if !ok {
			p = entity.Placement{WarehouseID: warehouseID, ItemID: itemID, Status: status}
		}
		out = p
		return nil
	})
	return &out, err
}

// GetForUpdate no necesita bloqueo propio: las transacciones en memoria ya son exclusivas.
func (r *PlacementRepo) GetForUpdate(ctx context.Context, warehouseID, itemID string, status entity.PlacementStatus) (*entity.Placement, error) {
	return r.Get(ctx, warehouseID, itemID, status)
}

func (r *PlacementRepo) Increment(_ context.Context, warehouseID, itemID string, status entity.PlacementStatus, delta int64) (int64, error) {
	if delta <= 0 {
		return 0, domain.ErrInvalidInput
	}
	var qty int64
	err := r.acc(func(st *state) error {
		k := placementKey{warehouseID, itemID, status}
		p := st.placements[k]
		p.WarehouseID, p.ItemID, p.Status = warehouseID, itemID, status
		p.Quantity += delta
		p.UpdatedAt = time.Now()
		st.placements[k] = p
		qty = p.Quantity
		return nil
	})
	return qty, err
}

func (r *PlacementRepo) Decrement(_ context.Context, warehouseID, itemID string, status entity.PlacementStatus, delta int64) (int64, bool, error) {
	if delta <= 0 {
		return 0, false, domain.ErrInvalidInput
	}
	var (
		qty int64
		ok  bool
	)
	err := r.acc(func(st *state) error {
		k := placementKey{warehouseID, itemID, status}
		p, exists := st.placements[k]
		if !exists || p.Quantity < delta {
			qty = p.Quantity
			return nil
		}
		p.Quantity -= delta
		p.UpdatedAt = time.Now()
		st.placements[k] = p
		qty, ok = p.Quantity, true
		return nil
	})
	return qty, ok, err
}

func (r *PlacementRepo) DeleteIfZero(_ context.Context, warehouseID, itemID string, status entity.PlacementStatus) error {
	return r.acc(func(st *state) error {
		k := placementKey{warehouseID, itemID, status}
		if p, ok := st.placements[k]; ok && p.Quantity == 0 {
			delete(st.placements, k)
		}
		return nil
	})
}

func (r *PlacementRepo) ListByWarehouse(_ context.Context, warehouseID string) ([]*entity.Placement, error) {
	return r.list(func(p entity.Placement) bool { return p.WarehouseID == warehouseID })
}

func (r *PlacementRepo) ListByItem(_ context.Context, itemID string) ([]*entity.Placement, error) {
	return r.list(func(p entity.Placement) bool { return p.ItemID == itemID })
}

func (r *PlacementRepo) CountByWarehouse(ctx context.Context, warehouseID string) (int, error) {
	list, err := r.ListByWarehouse(ctx, warehouseID)
	return len(list), err
}

func (r *PlacementRepo) list(match func(entity.Placement) bool) ([]*entity.Placement, error) {
	var out []*entity.Placement
	err := r.acc(func(st *state) error {
		for _, p := range st.placements {
			if p.Quantity > 0 && match(p) {
				p := p
				out = append(out, &p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.WarehouseID != b.WarehouseID {
			return a.WarehouseID < b.WarehouseID
		}
		if a.ItemID != b.ItemID {
			return a.ItemID < b.ItemID
		}
		return a.Status < b.Status
	})
	return out, err
}

// LendRepo transacciones de préstamo en memoria.
type LendRepo struct{ acc accessor }

func (r *LendRepo) Create(_ context.Context, t *entity.LendTransaction) error {
	return r.acc(func(st *state) error {
		if _, ok := st.lends[t.ID]; ok {
			return domain.ErrDuplicate
		}
		st.lends[t.ID] = *t
		return nil
	})
}

func (r *LendRepo) GetByID(_ context.Context, id string) (*entity.LendTransaction, error) {
	var out *entity.LendTransaction
	err := r.acc(func(st *state) error {
		if t, ok := st.lends[id]; ok {
			out = &t
		}
		return nil
	})
	return out, err
}

func (r *LendRepo) GetForUpdate(ctx context.Context, id string) (*entity.LendTransaction, error) {
	return r.GetByID(ctx, id)
}

func (r *LendRepo) UpdateStatus(_ context.Context, t *entity.LendTransaction) error {
	return r.acc(func(st *state) error {
		cur, ok := st.lends[t.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Status = t.Status
		cur.DecidedAt = t.DecidedAt
		cur.DecidedBy = t.DecidedBy
		cur.ReturnedAt = t.ReturnedAt
		st.lends[t.ID] = cur
		return nil
	})
}

func (r *LendRepo) List(_ context.Context, f repository.LendFilter) ([]*entity.LendTransaction, error) {
	var out []*entity.LendTransaction
	err := r.acc(func(st *state) error {
		for _, t := range st.lends {
			if f.RequesterID != "" && t.RequesterID != f.RequesterID {
				continue
			}
			if f.WarehouseID != "" && t.SourceWarehouseID != f.WarehouseID && t.DestinationWarehouseID != f.WarehouseID {
				continue
			}
			if f.ItemID != "" && t.ItemID != f.ItemID {
				continue
			}
			if len(f.Statuses) > 0 && !containsStatus(f.Statuses, t.Status) {
				continue
			}
			t := t
			out = append(out, &t)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return paginate(out, f.Limit, f.Offset), err
}

func (r *LendRepo) CountByWarehouse(ctx context.Context, warehouseID string) (int, error) {
	list, err := r.List(ctx, repository.LendFilter{WarehouseID: warehouseID})
	return len(list), err
}

func containsStatus(list []entity.LendStatus, s entity.LendStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(list) {
			return nil
		}
		list = list[offset:]
	}
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// OwnershipRepo relación bodega-dueño en memoria.
type OwnershipRepo struct{ acc accessor }

func (r *OwnershipRepo) Add(_ context.Context, o *entity.Ownership) error {
	return r.acc(func(st *state) error {
		m, ok := st.owners[o.WarehouseID]
		if !ok {
			m = map[string]time.Time{}
			st.owners[o.WarehouseID] = m
		}
		if _, exists := m[o.UserID]; !exists {
			m[o.UserID] = o.CreatedAt
		}
		return nil
	})
}

func (r *OwnershipRepo) Remove(_ context.Context, warehouseID, userID string) error {
	return r.acc(func(st *state) error {
		delete(st.owners[warehouseID], userID)
		return nil
	})
}

func (r *OwnershipRepo) Exists(_ context.Context, warehouseID, userID string) (bool, error) {
	var ok bool
	err := r.acc(func(st *state) error {
		_, ok = st.owners[warehouseID][userID]
		return nil
	})
	return ok, err
}

func (r *OwnershipRepo) Count(_ context.Context, warehouseID string) (int, error) {
	var n int
	err := r.acc(func(st *state) error {
		n = len(st.owners[warehouseID])
		return nil
	})
	return n, err
}

func (r *OwnershipRepo) ListByWarehouse(_ context.Context, warehouseID string) ([]*entity.Ownership, error) {
	var out []*entity.Ownership
	err := r.acc(func(st *state) error {
		for u, t := range st.owners[warehouseID] {
			out = append(out, &entity.Ownership{WarehouseID: warehouseID, UserID: u, CreatedAt: t})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, err
}

func (r *OwnershipRepo) ListWarehouseIDsByUser(_ context.Context, userID string) ([]string, error) {
	var out []string
	err := r.acc(func(st *state) error {
		for w, users := range st.owners {
			if _, ok := users[userID]; ok {
				out = append(out, w)
			}
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}

func (r *OwnershipRepo) RemoveAll(_ context.Context, warehouseID string) error {
	return r.acc(func(st *state) error {
		delete(st.owners, warehouseID)
		return nil
	})
}

// WarehouseRepo bodegas en memoria.
type WarehouseRepo struct{ acc accessor }

func (r *WarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	return r.acc(func(st *state) error {
		if _, ok := st.warehouses[w.ID]; ok {
			return domain.ErrDuplicate
		}
		st.warehouses[w.ID] = *w
		return nil
	})
}

func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	err := r.acc(func(st *state) error {
		if w, ok := st.warehouses[id]; ok {
			out = &w
		}
		return nil
	})
	return out, err
}

func (r *WarehouseRepo) GetForUpdate(ctx context.Context, id string) (*entity.Warehouse, error) {
	return r.GetByID(ctx, id)
}

func (r *WarehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	return r.acc(func(st *state) error {
		if _, ok := st.warehouses[w.ID]; !ok {
			return domain.ErrNotFound
		}
		st.warehouses[w.ID] = *w
		return nil
	})
}

func (r *WarehouseRepo) List(_ context.Context, viewerID string, limit, offset int) ([]*entity.Warehouse, error) {
	var out []*entity.Warehouse
	err := r.acc(func(st *state) error {
		for id, w := range st.warehouses {
			if viewerID != "" && w.Status != entity.WarehouseStatusPublic {
				if _, owns := st.owners[id][viewerID]; !owns {
					continue
				}
			}
			w := w
			out = append(out, &w)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return paginate(out, limit, offset), err
}

func (r *WarehouseRepo) Delete(_ context.Context, id string) error {
	return r.acc(func(st *state) error {
		delete(st.warehouses, id)
		return nil
	})
}

// ItemRepo catálogo de tipos de ítem en memoria.
type ItemRepo struct{ acc accessor }

func (r *ItemRepo) Create(_ context.Context, item *entity.ItemType) error {
	return r.acc(func(st *state) error {
		for _, it := range st.items {
			if strings.EqualFold(it.Name, item.Name) {
				return domain.ErrDuplicate
			}
		}
		st.items[item.ID] = *item
		return nil
	})
}

func (r *ItemRepo) GetByID(_ context.Context, id string) (*entity.ItemType, error) {
	var out *entity.ItemType
	err := r.acc(func(st *state) error {
		if it, ok := st.items[id]; ok {
			out = &it
		}
		return nil
	})
	return out, err
}

func (r *ItemRepo) List(_ context.Context, categoryID string, limit, offset int) ([]*entity.ItemType, error) {
	var out []*entity.ItemType
	err := r.acc(func(st *state) error {
		for _, it := range st.items {
			if categoryID != "" && it.CategoryID != categoryID {
				continue
			}
			it := it
			out = append(out, &it)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, limit, offset), err
}

// CategoryRepo categorías en memoria.
type CategoryRepo struct{ acc accessor }

func (r *CategoryRepo) Create(_ context.Context, c *entity.Category) error {
	return r.acc(func(st *state) error {
		for _, cur := range st.categories {
			if strings.EqualFold(cur.Name, c.Name) {
				return domain.ErrDuplicate
			}
		}
		st.categories[c.ID] = *c
		return nil
	})
}

func (r *CategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	var out *entity.Category
	err := r.acc(func(st *state) error {
		if c, ok := st.categories[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *CategoryRepo) List(_ context.Context) ([]*entity.Category, error) {
	var out []*entity.Category
	err := r.acc(func(st *state) error {
		for _, c := range st.categories {
			c := c
			out = append(out, &c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}
