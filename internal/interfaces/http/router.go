package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/relief-ledger/internal/application/inventory"
	"github.com/jhoicas/relief-ledger/internal/application/lending"
	"github.com/jhoicas/relief-ledger/internal/application/ownership"
	"github.com/jhoicas/relief-ledger/internal/application/usecase"
	"github.com/jhoicas/relief-ledger/internal/domain"
	"github.com/jhoicas/relief-ledger/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LendUC      *lending.LendUseCase
	TransferUC  *inventory.TransferUseCase
	OwnershipUC *ownership.OwnershipUseCase
	WarehouseUC *usecase.WarehouseUseCase
	CatalogUC   *usecase.CatalogUseCase
	Users       repository.UserRegistry // opcional: registra a cada usuario autenticado
	JWTSecret   string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	if deps.Users != nil {
		api.Use(TrackUsers(deps.Users))
	}

	lendHandler := NewLendHandler(deps.LendUC)
	inventoryHandler := NewInventoryHandler(deps.TransferUC)
	ownershipHandler := NewOwnershipHandler(deps.OwnershipUC)
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	itemHandler := NewItemHandler(deps.CatalogUC)
	adminOnly := RequireRole(domain.RoleAdmin)
	ownerOnly := RequireWarehouseOwner(deps.OwnershipUC)

	// Lends: rutas fijas antes de /:id
	lends := api.Group("/lends")
	lends.Post("/", lendHandler.Create)
	lends.Get("/mine", lendHandler.ListMine)
	lends.Get("/outstanding", adminOnly, lendHandler.ListOutstanding)
	lends.Get("/:id", lendHandler.GetByID)
	lends.Put("/:id/approve", lendHandler.Approve)
	lends.Put("/:id/reject", lendHandler.Reject)
	lends.Put("/:id/cancel", lendHandler.Cancel)
	lends.Put("/:id/return", lendHandler.Return)

	inv := api.Group("/inventory")
	inv.Post("/transfers", inventoryHandler.Transfer)
	inv.Post("/receipts", inventoryHandler.ReceiveStock)
	inv.Post("/status-changes", inventoryHandler.ChangeStatus)

	warehouses := api.Group("/warehouses")
	warehouses.Post("/", warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Put("/:id", warehouseHandler.Update)
	warehouses.Delete("/:id", warehouseHandler.Delete)
	warehouses.Get("/:id/placements", inventoryHandler.ListPlacements)
	warehouses.Get("/:id/lends", lendHandler.ListByWarehouse)
	warehouses.Get("/:id/owners", ownerOnly, ownershipHandler.List)
	warehouses.Post("/:id/owners", ownershipHandler.Add)
	warehouses.Delete("/:id/owners/:userId", ownershipHandler.Remove)

	api.Get("/me/warehouses", ownershipHandler.Mine)

	items := api.Group("/items")
	items.Post("/", adminOnly, itemHandler.Create)
	items.Get("/", itemHandler.List)
	items.Get("/:id", itemHandler.GetByID)
	items.Get("/:id/distribution", inventoryHandler.Distribution)

	categories := api.Group("/categories")
	categories.Post("/", adminOnly, itemHandler.CreateCategory)
	categories.Get("/", itemHandler.ListCategories)
}
