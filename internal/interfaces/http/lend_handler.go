package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/relief-ledger/internal/application/dto"
	"github.com/jhoicas/relief-ledger/internal/application/lending"
	"github.com/jhoicas/relief-ledger/internal/domain/entity"
)

// LendHandler maneja las solicitudes de préstamo y depósito (protegido).
type LendHandler struct {
	uc *lending.LendUseCase
}

// NewLendHandler construye el handler.
func NewLendHandler(uc *lending.LendUseCase) *LendHandler {
	return &LendHandler{uc: uc}
}

// Create godoc
// @Summary      Crear solicitud de préstamo (BORROW) o depósito (LEND)
// @Description  Nace en Pending; un LEND de un dueño de la bodega origen puede activarse de inmediato.
// @Tags         lends
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                  false  "Clave para reintentos seguros"
// @Param        body             body    dto.CreateLendRequest   true   "kind, source_warehouse_id, item_id, quantity"
// @Success      201   {object}  dto.LendResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lends [post]
func (h *LendHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLendRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	t, err := h.uc.Create(c.UserContext(), GetActor(c), lending.CreateLendInput{
		Kind:                   entity.LendKind(strings.ToUpper(in.Kind)),
		SourceWarehouseID:      in.SourceWarehouseID,
		DestinationWarehouseID: in.DestinationWarehouseID,
		ItemID:                 in.ItemID,
		Quantity:               in.Quantity,
		Note:                   in.Note,
		IdempotencyKey:         c.Get("Idempotency-Key"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToLendResponse(t))
}

// GetByID godoc
// @Summary      Obtener solicitud
// @Tags         lends
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la transacción"
// @Success      200  {object}  dto.LendResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lends/{id} [get]
func (h *LendHandler) GetByID(c *fiber.Ctx) error {
	t, err := h.uc.Get(c.UserContext(), c.Params("id"), GetActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToLendResponse(t))
}

// Approve godoc
// @Summary      Aprobar solicitud (Pending -> Active)
// @Tags         lends
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la transacción"
// @Success      200  {object}  dto.LendResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/lends/{id}/approve [put]
func (h *LendHandler) Approve(c *fiber.Ctx) error {
	t, err := h.uc.Approve(c.UserContext(), c.Params("id"), GetActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToLendResponse(t))
}

// Reject godoc
// @Summary      Rechazar solicitud (Pending -> Rejected)
// @Tags         lends
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la transacción"
// @Success      200  {object}  dto.LendResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/lends/{id}/reject [put]
func (h *LendHandler) Reject(c *fiber.Ctx) error {
	t, err := h.uc.Reject(c.UserContext(), c.Params("id"), GetActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToLendResponse(t))
}

// Cancel godoc
// @Summary      Cancelar solicitud propia (Pending -> Rejected)
// @Tags         lends
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la transacción"
// @Success      200  {object}  dto.LendResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/lends/{id}/cancel [put]
func (h *LendHandler) Cancel(c *fiber.Ctx) error {
	t, err := h.uc.Cancel(c.UserContext(), c.Params("id"), GetActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToLendResponse(t))
}

// Return godoc
// @Summary      Devolver (Active -> Returned)
// @Tags         lends
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la transacción"
// @Success      200  {object}  dto.LendResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/lends/{id}/return [put]
func (h *LendHandler) Return(c *fiber.Ctx) error {
	t, err := h.uc.Return(c.UserContext(), c.Params("id"), GetActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToLendResponse(t))
}

// ListMine godoc
// @Summary      Mis solicitudes
// @Tags         lends
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "Estados separados por coma (Pending,Active,...)"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.LendListResponse
// @Router       /api/lends/mine [get]
func (h *LendHandler) ListMine(c *fiber.Ctx) error {
	q := listQuery(c)
	list, err := h.uc.ListMine(c.UserContext(), GetActor(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToLendListResponse(list, q.Limit, q.Offset))
}

// ListByWarehouse godoc
// @Summary      Solicitudes de una bodega (origen o destino)
// @Tags         lends
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID de la bodega"
// @Param        status  query  string  false  "Estados separados por coma"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.LendListResponse
// @Failure      403     {object}  dto.ErrorResponse
// @Router       /api/warehouses/{id}/lends [get]
func (h *LendHandler) ListByWarehouse(c *fiber.Ctx) error {
	q := listQuery(c)
	list, err := h.uc.ListByWarehouse(c.UserContext(), c.Params("id"), GetActor(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToLendListResponse(list, q.Limit, q.Offset))
}

// ListOutstanding godoc
// @Summary      Préstamos activos sin devolver (admin)
// @Tags         lends
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.LendListResponse
// @Failure      403     {object}  dto.ErrorResponse
// @Router       /api/lends/outstanding [get]
func (h *LendHandler) ListOutstanding(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	list, err := h.uc.ListOutstanding(c.UserContext(), GetActor(c), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToLendListResponse(list, limit, offset))
}

func listQuery(c *fiber.Ctx) lending.ListQuery {
	limit, offset := pageParams(c)
	q := lending.ListQuery{Limit: limit, Offset: offset}
	for _, s := range strings.Split(c.Query("status"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			q.Statuses = append(q.Statuses, entity.LendStatus(s))
		}
	}
	return q
}
