package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/manufactura-erp/internal/application/dto"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
)

const dateLayout = "2006-01-02"

// parseQuery decodifica y valida la query string. Si falla ya escribió la respuesta 400.
func parseQuery(c *fiber.Ctx, out interface{}) (ok bool, err error) {
	if err := c.QueryParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	if fields := validateStruct(out); len(fields) > 0 {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros inválidos", Fields: fields})
	}
	return true, nil
}

// toDateRange convierte from/to (YYYY-MM-DD, ya validados) en un rango inclusivo por día completo.
func toDateRange(q dto.DateRangeQuery) repository.DateRange {
	var r repository.DateRange
	if q.From != "" {
		from, _ := time.Parse(dateLayout, q.From)
		r.From = &from
	}
	if q.To != "" {
		to, _ := time.Parse(dateLayout, q.To)
		to = to.Add(24*time.Hour - time.Nanosecond)
		r.To = &to
	}
	return r
}
