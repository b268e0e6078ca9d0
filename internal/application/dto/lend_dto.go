package dto

import (
	"time"

	"github.com/jhoicas/relief-ledger/internal/domain/entity"
)

// CreateLendRequest body para POST /api/lends.
type CreateLendRequest struct {
	Kind                   string `json:"kind"`
	SourceWarehouseID      string `json:"source_warehouse_id"`
	DestinationWarehouseID string `json:"destination_warehouse_id,omitempty"`
	ItemID                 string `json:"item_id"`
	Quantity               int64  `json:"quantity"`
	Note                   string `json:"note,omitempty"`
}

// LendResponse salida de una transacción de préstamo.
type LendResponse struct {
	ID                     string     `json:"id"`
	RequesterID            string     `json:"requester_id"`
	Kind                   string     `json:"kind"`
	SourceWarehouseID      string     `json:"source_warehouse_id"`
	DestinationWarehouseID string     `json:"destination_warehouse_id,omitempty"`
	ItemID                 string     `json:"item_id"`
	Quantity               int64      `json:"quantity"`
	Status                 string     `json:"status"`
	Note                   string     `json:"note,omitempty"`
	DecidedBy              string     `json:"decided_by,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	DecidedAt              *time.Time `json:"decided_at,omitempty"`
	ReturnedAt             *time.Time `json:"returned_at,omitempty"`
}

// LendListResponse lista paginada de transacciones.
type LendListResponse struct {
	Items []LendResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// ToLendResponse convierte la entidad.
func ToLendResponse(t *entity.LendTransaction) *LendResponse {
	if t == nil {
		return nil
	}
	return &LendResponse{
		ID:                     t.ID,
		RequesterID:            t.RequesterID,
		Kind:                   string(t.Kind),
		SourceWarehouseID:      t.SourceWarehouseID,
		DestinationWarehouseID: t.DestinationWarehouseID,
		ItemID:                 t.ItemID,
		Quantity:               t.Quantity,
		Status:                 string(t.Status),
		Note:                   t.Note,
		DecidedBy:              t.DecidedBy,
		CreatedAt:              t.CreatedAt,
		DecidedAt:              t.DecidedAt,
		ReturnedAt:             t.ReturnedAt,
	}
}

// ToLendListResponse convierte una página de transacciones.
func ToLendListResponse(list []*entity.LendTransaction, limit, offset int) *LendListResponse {
	items := make([]LendResponse, 0, len(list))
	for _, t := range list {
		items = append(items, *ToLendResponse(t))
	}
	return &LendListResponse{Items: items, Page: NewPageResponse(limit, offset, len(items))}
}
