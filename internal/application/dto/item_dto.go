package dto

import (
	"time"

	"github.com/jhoicas/relief-ledger/internal/domain/entity"
)

// CreateCategoryRequest entrada para crear una categoría.
type CreateCategoryRequest struct {
	Name string `json:"name"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateItemRequest entrada para registrar un tipo de ítem (carpa, botiquín, bidón...).
type CreateItemRequest struct {
	Name       string `json:"name"`
	CategoryID string `json:"category_id"`
	Unit       string `json:"unit"`
}

// ItemResponse salida de un tipo de ítem.
type ItemResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CategoryID string    `json:"category_id,omitempty"`
	Unit       string    `json:"unit"`
	CreatedAt  time.Time `json:"created_at"`
}

// ItemListResponse lista paginada de ítems.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// ToCategoryResponse convierte la entidad.
func ToCategoryResponse(c *entity.Category) *CategoryResponse {
	if c == nil {
		return nil
	}
	return &CategoryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
}

// ToItemResponse convierte la entidad.
func ToItemResponse(i *entity.ItemType) *ItemResponse {
	if i == nil {
		return nil
	}
	return &ItemResponse{ID: i.ID, Name: i.Name, CategoryID: i.CategoryID, Unit: i.Unit, CreatedAt: i.CreatedAt}
}
