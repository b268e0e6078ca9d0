package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/relief-ledger/internal/application/dto"
	"github.com/jhoicas/relief-ledger/internal/domain"
	"github.com/jhoicas/relief-ledger/internal/domain/entity"
	"github.com/jhoicas/relief-ledger/internal/domain/repository"
)

// CatalogUseCase registro de tipos de ítem y categorías. El alta queda reservada a admins.
type CatalogUseCase struct {
	items      repository.ItemRepository
	categories repository.CategoryRepository
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(items repository.ItemRepository, categories repository.CategoryRepository) *CatalogUseCase {
	return &CatalogUseCase{items: items, categories: categories}
}

// CreateCategory crea una categoría; nombres únicos sin distinguir mayúsculas.
func (uc *CatalogUseCase) CreateCategory(ctx context.Context, actor domain.Actor, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrUnauthorized
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	c := &entity.Category{ID: uuid.New().String(), Name: name, CreatedAt: time.Now()}
	if err := uc.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return dto.ToCategoryResponse(c), nil
}

// ListCategories todas las categorías por nombre.
func (uc *CatalogUseCase) ListCategories(ctx context.Context) ([]dto.CategoryResponse, error) {
	list, err := uc.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *dto.ToCategoryResponse(c))
	}
	return out, nil
}

// CreateItem registra un tipo de ítem. Unit vacío = "unidad".
func (uc *CatalogUseCase) CreateItem(ctx context.Context, actor domain.Actor, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrUnauthorized
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.CategoryID != "" {
		c, err := uc.categories.GetByID(ctx, in.CategoryID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, fmt.Errorf("%w: categoría %s", domain.ErrNotFound, in.CategoryID)
		}
	}
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = "unidad"
	}
	item := &entity.ItemType{
		ID:         uuid.New().String(),
		Name:       name,
		CategoryID: in.CategoryID,
		Unit:       unit,
		CreatedAt:  time.Now(),
	}
	if err := uc.items.Create(ctx, item); err != nil {
		return nil, err
	}
	return dto.ToItemResponse(item), nil
}

// GetItem obtiene un tipo de ítem.
func (uc *CatalogUseCase) GetItem(ctx context.Context, id string) (*dto.ItemResponse, error) {
	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: ítem %s", domain.ErrNotFound, id)
	}
	return dto.ToItemResponse(item), nil
}

// ListItems lista ítems, opcionalmente por categoría.
func (uc *CatalogUseCase) ListItems(ctx context.Context, categoryID string, limit, offset int) (*dto.ItemListResponse, error) {
	list, err := uc.items.List(ctx, categoryID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, *dto.ToItemResponse(it))
	}
	return &dto.ItemListResponse{Items: items, Page: dto.NewPageResponse(limit, offset, len(items))}, nil
}
