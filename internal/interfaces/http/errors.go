package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/manufactura-erp/internal/application/dto"
	"github.com/jhoicas/manufactura-erp/internal/domain"
	"github.com/rs/zerolog"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// Orden relevante: los faltantes de stock se revisan antes que los genéricos.
var errorMappings = []errorMapping{
	{domain.ErrInsufficientAvailableStock, fiber.StatusUnprocessableEntity, "INSUFFICIENT_AVAILABLE_STOCK"},
	{domain.ErrInsufficientPhysicalStock, fiber.StatusUnprocessableEntity, "INSUFFICIENT_STOCK"},
	{domain.ErrUnbalancedEntry, fiber.StatusUnprocessableEntity, "UNBALANCED_ENTRY"},
	{domain.ErrClosedPeriod, fiber.StatusUnprocessableEntity, "CLOSED_PERIOD"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrAlreadyReversed, fiber.StatusConflict, "ALREADY_REVERSED"},
	{domain.ErrInvalidStatus, fiber.StatusConflict, "INVALID_STATUS"},
	{domain.ErrAccountInUse, fiber.StatusConflict, "ACCOUNT_IN_USE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrContention, fiber.StatusServiceUnavailable, "CONTENTION"},
}

// writeError traduce errores de dominio a status HTTP. Los defectos de configuración
// (código de cuenta faltante, fila de saldo ausente) salen como 500 y se registran.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			if m.status == fiber.StatusServiceUnavailable {
				c.Set(fiber.HeaderRetryAfter, "1")
			}
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	code := "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrAccountCodeMissing):
		code = "ACCOUNT_CODE_MISSING"
	case errors.Is(err, domain.ErrBalanceRowMissing):
		code = "BALANCE_ROW_MISSING"
	}
	log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}
