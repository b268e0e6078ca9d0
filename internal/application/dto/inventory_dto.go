package dto

import (
	"time"

	"github.com/jhoicas/relief-ledger/internal/domain/entity"
)

// TransferRequest body para POST /api/inventory/transfers.
type TransferRequest struct {
	SourceWarehouseID      string `json:"source_warehouse_id"`
	DestinationWarehouseID string `json:"destination_warehouse_id"`
	ItemID                 string `json:"item_id"`
	Quantity               int64  `json:"quantity"`
}

// TransferResponse cantidades Available resultantes.
type TransferResponse struct {
	SourceAvailable      int64 `json:"source_available"`
	DestinationAvailable int64 `json:"destination_available"`
}

// ReceiveStockRequest body para POST /api/inventory/receipts.
type ReceiveStockRequest struct {
	WarehouseID string `json:"warehouse_id"`
	ItemID      string `json:"item_id"`
	Quantity    int64  `json:"quantity"`
}

// ReceiveStockResponse cantidad Available tras el ingreso.
type ReceiveStockResponse struct {
	WarehouseID string `json:"warehouse_id"`
	ItemID      string `json:"item_id"`
	Available   int64  `json:"available"`
}

// ChangeStatusRequest body para POST /api/inventory/status-changes.
type ChangeStatusRequest struct {
	WarehouseID string `json:"warehouse_id"`
	ItemID      string `json:"item_id"`
	From        string `json:"from"`
	To          string `json:"to"`
	Quantity    int64  `json:"quantity"`
}

// PlacementResponse una fila del libro.
type PlacementResponse struct {
	WarehouseID string    `json:"warehouse_id"`
	ItemID      string    `json:"item_id"`
	Status      string    `json:"status"`
	Quantity    int64     `json:"quantity"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DistributionResponse filas de un ítem en todas las bodegas.
type DistributionResponse struct {
	ItemID string              `json:"item_id"`
	Total  int64               `json:"total"`
	Rows   []PlacementResponse `json:"rows"`
}

// ToPlacementResponses convierte filas del libro.
func ToPlacementResponses(list []*entity.Placement) []PlacementResponse {
	out := make([]PlacementResponse, 0, len(list))
	for _, p := range list {
		out = append(out, PlacementResponse{
			WarehouseID: p.WarehouseID,
			ItemID:      p.ItemID,
			Status:      string(p.Status),
			Quantity:    p.Quantity,
			UpdatedAt:   p.UpdatedAt,
		})
	}
	return out
}
