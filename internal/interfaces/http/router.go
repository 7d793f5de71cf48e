package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jmrobles/ventas-api/internal/application/catalog"
	"github.com/jmrobles/ventas-api/internal/application/movements"
	"github.com/jmrobles/ventas-api/internal/application/purchases"
	"github.com/jmrobles/ventas-api/internal/application/sales"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	SalesUC     *sales.UseCase
	PurchasesUC *purchases.UseCase
	MovementsUC *movements.UseCase
	CatalogUC   *catalog.UseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Sales
	salesGroup := api.Group("/sales")
	saleHandler := NewSaleHandler(deps.SalesUC)
	salesGroup.Get("/daily-totals", saleHandler.DailyTotals)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Put("/:id", saleHandler.Update)
	salesGroup.Delete("/:id", saleHandler.Delete)

	// Purchases
	purchasesGroup := api.Group("/purchases")
	purchaseHandler := NewPurchaseHandler(deps.PurchasesUC)
	purchasesGroup.Post("/", purchaseHandler.Create)
	purchasesGroup.Get("/", purchaseHandler.List)
	purchasesGroup.Get("/:id", purchaseHandler.GetByID)
	purchasesGroup.Put("/:id", purchaseHandler.Update)
	purchasesGroup.Delete("/:id", purchaseHandler.Delete)

	// Inventory movements
	movementsGroup := api.Group("/movements")
	movementHandler := NewMovementHandler(deps.MovementsUC)
	movementsGroup.Post("/", movementHandler.Create)
	movementsGroup.Get("/", movementHandler.List)
	movementsGroup.Get("/:id", movementHandler.GetByID)
	movementsGroup.Put("/:id", movementHandler.Update)
	movementsGroup.Delete("/:id", movementHandler.Delete)

	// Products (solo lectura)
	productsGroup := api.Group("/products")
	productHandler := NewProductHandler(deps.CatalogUC)
	productsGroup.Get("/low-stock", productHandler.ListLowStock)
	productsGroup.Get("/", productHandler.List)
	productsGroup.Get("/:id", productHandler.GetByID)
}
