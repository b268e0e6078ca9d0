package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/relief-ledger/internal/application/dto"
	"github.com/jhoicas/relief-ledger/internal/domain"
)

// ownerChecker es el contrato mínimo que necesita el middleware para verificar dueños.
// Lo implementa *ownership.OwnershipUseCase; el uso de interfaz evita el import circular.
type ownerChecker interface {
	IsOwner(ctx context.Context, warehouseID, userID string) (bool, error)
}

// RequireWarehouseOwner verifica que el actor sea dueño de la bodega :id (los admins pasan).
// Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 403 Forbidden → el actor no es dueño.
//   - 503 Service Unavailable → fallo de infraestructura al consultar la DB.
func RequireWarehouseOwner(checker ownerChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetRole(c) == domain.RoleAdmin {
			return c.Next()
		}
		userID := GetUserID(c)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "usuario no encontrado en el token"})
		}
		ok, err := checker.IsOwner(c.UserContext(), c.Params("id"), userID)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "OWNER_CHECK_FAILED",
				Message: "no se pudo verificar la propiedad de la bodega, intente más tarde",
			})
		}
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "solo los dueños de la bodega"})
		}
		return c.Next()
	}
}
