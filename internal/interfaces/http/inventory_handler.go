package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/relief-ledger/internal/application/dto"
	"github.com/jhoicas/relief-ledger/internal/application/inventory"
	"github.com/jhoicas/relief-ledger/internal/domain/entity"
)

// InventoryHandler maneja traslados, ingresos y consultas del libro (protegido).
type InventoryHandler struct {
	uc *inventory.TransferUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.TransferUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// Transfer godoc
// @Summary      Trasladar stock Available entre bodegas
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "source_warehouse_id, destination_warehouse_id, item_id, quantity"
// @Success      200   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.uc.Transfer(c.UserContext(), GetActor(c), inventory.TransferInput{
		SourceWarehouseID:      in.SourceWarehouseID,
		DestinationWarehouseID: in.DestinationWarehouseID,
		ItemID:                 in.ItemID,
		Quantity:               in.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.TransferResponse{SourceAvailable: res.SourceAvailable, DestinationAvailable: res.DestinationAvailable})
}

// ReceiveStock godoc
// @Summary      Ingresar stock (donación) a una bodega propia
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveStockRequest  true  "warehouse_id, item_id, quantity"
// @Success      201   {object}  dto.ReceiveStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/inventory/receipts [post]
func (h *InventoryHandler) ReceiveStock(c *fiber.Ctx) error {
	var in dto.ReceiveStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	qty, err := h.uc.ReceiveStock(c.UserContext(), GetActor(c), inventory.ReceiveInput{
		WarehouseID: in.WarehouseID,
		ItemID:      in.ItemID,
		Quantity:    in.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ReceiveStockResponse{WarehouseID: in.WarehouseID, ItemID: in.ItemID, Available: qty})
}

// ChangeStatus godoc
// @Summary      Mover cantidad entre Available y Unavailable
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ChangeStatusRequest  true  "warehouse_id, item_id, from, to, quantity"
// @Success      204
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/status-changes [post]
func (h *InventoryHandler) ChangeStatus(c *fiber.Ctx) error {
	var in dto.ChangeStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	err := h.uc.ChangeStatus(c.UserContext(), GetActor(c), inventory.ChangeStatusInput{
		WarehouseID: in.WarehouseID,
		ItemID:      in.ItemID,
		From:        entity.PlacementStatus(in.From),
		To:          entity.PlacementStatus(in.To),
		Quantity:    in.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListPlacements godoc
// @Summary      Filas del libro de una bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la bodega"
// @Success      200  {array}   dto.PlacementResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/warehouses/{id}/placements [get]
func (h *InventoryHandler) ListPlacements(c *fiber.Ctx) error {
	list, err := h.uc.ListPlacements(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToPlacementResponses(list))
}

// Distribution godoc
// @Summary      Distribución de un ítem por bodega y estado (solo bodegas visibles)
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {object}  dto.DistributionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/distribution [get]
func (h *InventoryHandler) Distribution(c *fiber.Ctx) error {
	itemID := c.Params("id")
	rows, total, err := h.uc.Distribution(c.UserContext(), GetActor(c), itemID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.DistributionResponse{ItemID: itemID, Total: total, Rows: dto.ToPlacementResponses(rows)})
}
