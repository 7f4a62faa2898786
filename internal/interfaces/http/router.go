package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/manufactura-erp/internal/application/accounting"
	"github.com/jhoicas/manufactura-erp/internal/application/inventory"
	"github.com/jhoicas/manufactura-erp/internal/application/usecase"
	"github.com/rs/zerolog"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC        *usecase.ProductUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	Reservations     *inventory.ReservationManager
	Consumption      *inventory.ConsumptionAnalysisUseCase
	Journal          *accounting.JournalEngine
	Chart            *accounting.ChartOfAccounts
	Periods          *accounting.PeriodGate
	Log              zerolog.Logger
}

// Router registra las rutas de la API. Las lecturas aceptan peticiones sin usuario;
// toda escritura exige X-User-ID.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", UserMiddleware(false))
	write := UserMiddleware(true)

	// Products
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.Log)
	products.Post("/", write, productHandler.Create)
	products.Get("/:id", productHandler.GetByID)
	products.Get("/:id/stock", productHandler.Stock)

	// Inventory
	invGroup := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement, deps.Consumption, deps.Log)
	invGroup.Post("/movements", write, inventoryHandler.RegisterMovement)
	invGroup.Post("/movements/:id/void", write, inventoryHandler.VoidMovement)
	invGroup.Post("/issues", write, inventoryHandler.Issue)
	invGroup.Post("/production", write, inventoryHandler.CompleteProduction)
	invGroup.Get("/availability", inventoryHandler.Availability)
	invGroup.Get("/stock-at", inventoryHandler.StockAt)
	invGroup.Get("/abc", inventoryHandler.ABCClassification)

	// Reservations
	reservations := api.Group("/reservations")
	reservationHandler := NewReservationHandler(deps.Reservations, deps.Log)
	reservations.Post("/", write, reservationHandler.Reserve)
	reservations.Post("/:id/fulfill", write, reservationHandler.Fulfill)
	reservations.Post("/:id/cancel", write, reservationHandler.Cancel)

	// Journals
	journals := api.Group("/journals")
	journalHandler := NewJournalHandler(deps.Journal, deps.Log)
	journals.Post("/", write, journalHandler.Create)
	journals.Get("/:id", journalHandler.GetByID)
	journals.Post("/:id/post", write, journalHandler.Post)
	journals.Post("/:id/void", write, journalHandler.Void)
	journals.Post("/:id/reverse", write, journalHandler.Reverse)

	// Accounts
	accounts := api.Group("/accounts")
	accountHandler := NewAccountHandler(deps.Chart, deps.Journal, deps.Periods, deps.Log)
	accounts.Get("/", accountHandler.List)
	accounts.Post("/", write, accountHandler.Create)
	accounts.Put("/:id", write, accountHandler.Rename)
	accounts.Put("/:id/code", write, accountHandler.ChangeCode)
	accounts.Delete("/:id", write, accountHandler.Delete)
	accounts.Get("/:id/balance", accountHandler.Balance)

	// Fiscal periods
	periods := api.Group("/periods")
	periods.Post("/open", write, accountHandler.OpenPeriod)
	periods.Post("/close", write, accountHandler.ClosePeriod)

	// Reports
	reports := api.Group("/reports")
	reports.Get("/trial-balance", journalHandler.TrialBalance)
	reports.Get("/income-statement", journalHandler.IncomeStatement)
	reports.Get("/balance-sheet", journalHandler.BalanceSheet)
}
