package repository

import (
	"context"

	"github.com/jhoicas/relief-ledger/internal/domain/entity"
)

// ItemRepository define el puerto de persistencia del catálogo de tipos de ítem.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.ItemType) error
	GetByID(ctx context.Context, id string) (*entity.ItemType, error)
	List(ctx context.Context, categoryID string, limit, offset int) ([]*entity.ItemType, error)
}

// CategoryRepository define el puerto de persistencia para Category.
type CategoryRepository interface {
	Create(ctx context.Context, c *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	List(ctx context.Context) ([]*entity.Category, error)
}
