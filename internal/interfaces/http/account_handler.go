package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/manufactura-erp/internal/application/accounting"
	"github.com/jhoicas/manufactura-erp/internal/application/dto"
	"github.com/rs/zerolog"
)

// AccountHandler plan de cuentas, saldos por cuenta y períodos fiscales.
type AccountHandler struct {
	chart   *accounting.ChartOfAccounts
	engine  *accounting.JournalEngine
	periods *accounting.PeriodGate
	log     zerolog.Logger
}

// NewAccountHandler construye el handler.
func NewAccountHandler(chart *accounting.ChartOfAccounts, engine *accounting.JournalEngine, periods *accounting.PeriodGate, log zerolog.Logger) *AccountHandler {
	return &AccountHandler{chart: chart, engine: engine, periods: periods, log: log}
}

// List godoc
// @Summary      Plan de cuentas ordenado por código
// @Tags         accounts
// @Produce      json
// @Success      200  {array}  dto.AccountResponse
// @Router       /api/accounts [get]
func (h *AccountHandler) List(c *fiber.Ctx) error {
	list, err := h.chart.List(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.AccountResponse, 0, len(list))
	for _, a := range list {
		out = append(out, accounting.ToAccountResponse(a))
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear cuenta
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AccountRequest  true  "code, name, type, category"
// @Success      201   {object}  dto.AccountResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/accounts [post]
func (h *AccountHandler) Create(c *fiber.Ctx) error {
	var in dto.AccountRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	acc, err := h.chart.Create(c.UserContext(), accounting.AccountSeed{
		Code:     in.Code,
		Name:     in.Name,
		Type:     in.Type,
		Category: in.Category,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(accounting.ToAccountResponse(acc))
}

// Rename godoc
// @Summary      Cambiar nombre y categoría
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "Account ID"
// @Param        body  body  dto.RenameAccountRequest  true  "name, category"
// @Success      200   {object}  dto.AccountResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/accounts/{id} [put]
func (h *AccountHandler) Rename(c *fiber.Ctx) error {
	var in dto.RenameAccountRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	acc, err := h.chart.Rename(c.UserContext(), c.Params("id"), in.Name, in.Category)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(accounting.ToAccountResponse(acc))
}

// ChangeCode godoc
// @Summary      Cambiar código de cuenta
// @Description  Rechazado cuando la cuenta ya tiene líneas contabilizadas.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "Account ID"
// @Param        body  body  dto.ChangeAccountCodeRequest  true  "code"
// @Success      200   {object}  dto.AccountResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/accounts/{id}/code [put]
func (h *AccountHandler) ChangeCode(c *fiber.Ctx) error {
	var in dto.ChangeAccountCodeRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	acc, err := h.chart.ChangeCode(c.UserContext(), c.Params("id"), in.Code)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(accounting.ToAccountResponse(acc))
}

// Delete godoc
// @Summary      Eliminar cuenta sin movimientos
// @Tags         accounts
// @Param        id  path  string  true  "Account ID"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/accounts/{id} [delete]
func (h *AccountHandler) Delete(c *fiber.Ctx) error {
	if err := h.chart.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Balance godoc
// @Summary      Saldo de una cuenta según su naturaleza
// @Tags         accounts
// @Produce      json
// @Param        id    path   string  true   "Account ID"
// @Param        from  query  string  false  "YYYY-MM-DD"
// @Param        to    query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  dto.AccountBalanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/accounts/{id}/balance [get]
func (h *AccountHandler) Balance(c *fiber.Ctx) error {
	var q dto.DateRangeQuery
	if ok, err := parseQuery(c, &q); !ok {
		return err
	}
	r := toDateRange(q)
	bal, err := h.engine.AccountBalance(c.UserContext(), c.Params("id"), r)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.AccountBalanceResponse{
		AccountID: c.Params("id"),
		Balance:   bal,
		From:      r.From,
		To:        r.To,
	})
}

// OpenPeriod godoc
// @Summary      Abrir (o reabrir) un mes fiscal
// @Tags         periods
// @Accept       json
// @Param        body  body  dto.PeriodRequest  true  "year, month"
// @Success      204
// @Router       /api/periods/open [post]
func (h *AccountHandler) OpenPeriod(c *fiber.Ctx) error {
	var in dto.PeriodRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	if err := h.periods.OpenPeriod(c.UserContext(), in.Year, in.Month); err != nil {
		return writeError(c, h.log, err)
	}
	h.log.Info().Int("year", in.Year).Int("month", in.Month).Str("user_id", GetUserID(c)).Msg("período abierto")
	return c.SendStatus(fiber.StatusNoContent)
}

// ClosePeriod godoc
// @Summary      Cerrar un mes fiscal
// @Description  Con el período cerrado se rechaza crear, contabilizar, anular o reversar asientos fechados en él.
// @Tags         periods
// @Accept       json
// @Param        body  body  dto.PeriodRequest  true  "year, month"
// @Success      204
// @Router       /api/periods/close [post]
func (h *AccountHandler) ClosePeriod(c *fiber.Ctx) error {
	var in dto.PeriodRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	if err := h.periods.ClosePeriod(c.UserContext(), in.Year, in.Month); err != nil {
		return writeError(c, h.log, err)
	}
	h.log.Info().Int("year", in.Year).Int("month", in.Month).Str("user_id", GetUserID(c)).Msg("período cerrado")
	return c.SendStatus(fiber.StatusNoContent)
}
