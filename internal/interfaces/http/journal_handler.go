package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/manufactura-erp/internal/application/accounting"
	"github.com/jhoicas/manufactura-erp/internal/application/dto"
	"github.com/rs/zerolog"
)

// JournalHandler asientos contables y reportes financieros.
type JournalHandler struct {
	engine *accounting.JournalEngine
	log    zerolog.Logger
}

// NewJournalHandler construye el handler.
func NewJournalHandler(engine *accounting.JournalEngine, log zerolog.Logger) *JournalHandler {
	return &JournalHandler{engine: engine, log: log}
}

// Create godoc
// @Summary      Crear asiento manual
// @Description  Queda en DRAFT salvo que post=true. Débitos y créditos deben cuadrar.
// @Tags         journals
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateJournalRequest  true  "Fecha, descripción y líneas"
// @Success      201   {object}  dto.JournalEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/journals [post]
func (h *JournalHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateJournalRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	entry, err := h.engine.CreateFromRequest(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(accounting.ToJournalResponse(entry))
}

// GetByID godoc
// @Summary      Obtener asiento con sus líneas
// @Tags         journals
// @Produce      json
// @Param        id  path  string  true  "Journal entry ID"
// @Success      200  {object}  dto.JournalEntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/journals/{id} [get]
func (h *JournalHandler) GetByID(c *fiber.Ctx) error {
	entry, err := h.engine.GetEntry(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(accounting.ToJournalResponse(entry))
}

// Post godoc
// @Summary      Contabilizar un asiento en borrador
// @Tags         journals
// @Produce      json
// @Param        id  path  string  true  "Journal entry ID"
// @Success      200  {object}  dto.JournalEntryResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/journals/{id}/post [post]
func (h *JournalHandler) Post(c *fiber.Ctx) error {
	entry, err := h.engine.PostJournal(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(accounting.ToJournalResponse(entry))
}

// Void godoc
// @Summary      Anular un asiento contabilizado
// @Tags         journals
// @Produce      json
// @Param        id  path  string  true  "Journal entry ID"
// @Success      200  {object}  dto.JournalEntryResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/journals/{id}/void [post]
func (h *JournalHandler) Void(c *fiber.Ctx) error {
	entry, err := h.engine.VoidJournal(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(accounting.ToJournalResponse(entry))
}

// Reverse godoc
// @Summary      Reversar un asiento contabilizado
// @Description  Crea un asiento nuevo con débitos y créditos invertidos; el original no cambia.
// @Tags         journals
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true   "Journal entry ID"
// @Param        body  body  dto.ReverseJournalRequest  false  "Fecha del reverso"
// @Success      201   {object}  dto.JournalEntryResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/journals/{id}/reverse [post]
func (h *JournalHandler) Reverse(c *fiber.Ctx) error {
	var in dto.ReverseJournalRequest
	if len(c.Body()) > 0 {
		if ok, err := parseBody(c, &in); !ok {
			return err
		}
	}
	entry, err := h.engine.ReverseJournal(c.UserContext(), c.Params("id"), in.EntryDate, GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(accounting.ToJournalResponse(entry))
}

// TrialBalance godoc
// @Summary      Balance de prueba
// @Tags         reports
// @Produce      json
// @Param        from  query  string  false  "YYYY-MM-DD"
// @Param        to    query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  dto.TrialBalanceResponse
// @Router       /api/reports/trial-balance [get]
func (h *JournalHandler) TrialBalance(c *fiber.Ctx) error {
	var q dto.DateRangeQuery
	if ok, err := parseQuery(c, &q); !ok {
		return err
	}
	tb, err := h.engine.TrialBalance(c.UserContext(), toDateRange(q))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(accounting.ToTrialBalanceResponse(tb))
}

// IncomeStatement godoc
// @Summary      Estado de resultados
// @Tags         reports
// @Produce      json
// @Param        from  query  string  false  "YYYY-MM-DD"
// @Param        to    query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  dto.IncomeStatementResponse
// @Router       /api/reports/income-statement [get]
func (h *JournalHandler) IncomeStatement(c *fiber.Ctx) error {
	var q dto.DateRangeQuery
	if ok, err := parseQuery(c, &q); !ok {
		return err
	}
	is, err := h.engine.IncomeStatement(c.UserContext(), toDateRange(q))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(accounting.ToIncomeStatementResponse(is))
}

// BalanceSheet godoc
// @Summary      Balance general a una fecha
// @Tags         reports
// @Produce      json
// @Param        as_of  query  string  false  "YYYY-MM-DD; vacío = hoy"
// @Success      200  {object}  dto.BalanceSheetResponse
// @Router       /api/reports/balance-sheet [get]
func (h *JournalHandler) BalanceSheet(c *fiber.Ctx) error {
	var q dto.AsOfQuery
	if ok, err := parseQuery(c, &q); !ok {
		return err
	}
	asOf := time.Now().UTC()
	if q.AsOf != "" {
		day, _ := time.Parse(dateLayout, q.AsOf)
		asOf = day.Add(24*time.Hour - time.Nanosecond)
	}
	bs, err := h.engine.BalanceSheet(c.UserContext(), asOf)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(accounting.ToBalanceSheetResponse(asOf, bs))
}
