package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/distribucion-api/internal/application/inventory"
	"github.com/jhoicas/distribucion-api/internal/application/purchasing"
	"github.com/jhoicas/distribucion-api/internal/application/receiving"
	"github.com/jhoicas/distribucion-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Products     *inventory.ProductCatalog
	Ledger       *inventory.LotLedger
	Reservations *inventory.ReservationManager
	Orders       *purchasing.OrderUseCase
	Receiving    *receiving.Processor
	JWTSecret    string
	Log          zerolog.Logger
}

// Router registra las rutas de la API. Todas las rutas bajo /api requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log.With().Str("component", "http").Logger()
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	stockRoles := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)
	adminOnly := RequireRole(jwt.RoleAdmin)

	// Products
	productHandler := NewProductHandler(deps.Products, log)
	lotHandler := NewLotHandler(deps.Ledger, deps.Reservations, log)
	products := api.Group("/products")
	products.Post("/", adminOnly, productHandler.Create)
	products.Get("/:id", productHandler.GetByID)
	products.Get("/:id/lots", lotHandler.ListByProduct)
	products.Get("/:id/availability", lotHandler.Availability)

	// Lots
	lots := api.Group("/lots")
	lots.Post("/", stockRoles, lotHandler.FindOrCreate)
	lots.Get("/:id", lotHandler.GetByID)
	lots.Post("/:id/increment", stockRoles, lotHandler.Increment)
	lots.Post("/:id/decrement", stockRoles, lotHandler.Decrement)

	// Reservations (/expire antes de /:id)
	reservationHandler := NewReservationHandler(deps.Reservations, log)
	reservations := api.Group("/reservations")
	reservations.Post("/expire", adminOnly, reservationHandler.ExpireDue)
	reservations.Post("/", reservationHandler.Create)
	reservations.Get("/", reservationHandler.ListByDemand)
	reservations.Get("/:id", reservationHandler.GetByID)
	reservations.Post("/:id/liberate", reservationHandler.Liberate)
	reservations.Post("/:id/utilize", stockRoles, reservationHandler.Utilize)

	// Purchase orders y recepciones
	orderHandler := NewPurchaseOrderHandler(deps.Orders, log)
	receivingHandler := NewReceivingHandler(deps.Receiving, log)
	orders := api.Group("/purchase-orders")
	orders.Post("/", stockRoles, orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Get("/:id/summary", orderHandler.Summary)
	orders.Post("/:id/submit", stockRoles, orderHandler.Submit)
	orders.Post("/:id/confirm", stockRoles, orderHandler.Confirm)
	orders.Post("/:id/cancel", stockRoles, orderHandler.Cancel)
	orders.Post("/:id/lines/:lineId/cancel", stockRoles, orderHandler.CancelLine)
	orders.Post("/:id/receipts", stockRoles, receivingHandler.Receive)
	orders.Get("/:id/receipts", receivingHandler.ListByOrder)
	orders.Get("/:id/lines/:lineId/receipts", receivingHandler.ListByLine)
}
