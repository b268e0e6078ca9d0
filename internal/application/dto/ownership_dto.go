package dto

import (
	"time"

	"github.com/jhoicas/relief-ledger/internal/domain/entity"
)

// AddOwnerRequest body para POST /api/warehouses/:id/owners.
type AddOwnerRequest struct {
	UserID string `json:"user_id"`
}

// OwnerResponse un dueño de bodega.
type OwnerResponse struct {
	WarehouseID string    `json:"warehouse_id"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToOwnerResponses convierte la relación bodega-dueño.
func ToOwnerResponses(list []*entity.Ownership) []OwnerResponse {
	out := make([]OwnerResponse, 0, len(list))
	for _, o := range list {
		out = append(out, OwnerResponse{WarehouseID: o.WarehouseID, UserID: o.UserID, CreatedAt: o.CreatedAt})
	}
	return out
}
