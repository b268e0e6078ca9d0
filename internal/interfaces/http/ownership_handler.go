package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/relief-ledger/internal/application/dto"
	"github.com/jhoicas/relief-ledger/internal/application/ownership"
)

// OwnershipHandler dueños de bodegas (protegido).
type OwnershipHandler struct {
	uc *ownership.OwnershipUseCase
}

// NewOwnershipHandler construye el handler.
func NewOwnershipHandler(uc *ownership.OwnershipUseCase) *OwnershipHandler {
	return &OwnershipHandler{uc: uc}
}

// List godoc
// @Summary      Dueños de una bodega
// @Tags         owners
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la bodega"
// @Success      200  {array}   dto.OwnerResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/warehouses/{id}/owners [get]
func (h *OwnershipHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.GetOwners(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToOwnerResponses(list))
}

// Add godoc
// @Summary      Agregar dueño
// @Tags         owners
// @Security     Bearer
// @Accept       json
// @Param        id    path  string               true  "ID de la bodega"
// @Param        body  body  dto.AddOwnerRequest  true  "user_id"
// @Success      204
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/warehouses/{id}/owners [post]
func (h *OwnershipHandler) Add(c *fiber.Ctx) error {
	var in dto.AddOwnerRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.uc.AddOwner(c.UserContext(), GetActor(c), c.Params("id"), in.UserID); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Remove godoc
// @Summary      Quitar dueño
// @Tags         owners
// @Security     Bearer
// @Param        id      path  string  true  "ID de la bodega"
// @Param        userId  path  string  true  "ID del usuario"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/warehouses/{id}/owners/{userId} [delete]
func (h *OwnershipHandler) Remove(c *fiber.Ctx) error {
	if err := h.uc.RemoveOwner(c.UserContext(), GetActor(c), c.Params("id"), c.Params("userId")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Mine godoc
// @Summary      Bodegas de las que soy dueño
// @Tags         owners
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.WarehouseResponse
// @Router       /api/me/warehouses [get]
func (h *OwnershipHandler) Mine(c *fiber.Ctx) error {
	list, err := h.uc.ListWarehousesByOwner(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToWarehouseResponses(list))
}
