package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/manufactura-erp/internal/application/dto"
	"github.com/jhoicas/manufactura-erp/internal/application/inventory"
	"github.com/rs/zerolog"
)

// InventoryHandler maneja las peticiones HTTP de movimientos y saldos de inventario.
type InventoryHandler struct {
	uc          *inventory.RegisterMovementUseCase
	consumption *inventory.ConsumptionAnalysisUseCase
	log         zerolog.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.RegisterMovementUseCase, consumption *inventory.ConsumptionAnalysisUseCase, log zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{uc: uc, consumption: consumption, log: log}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        X-User-ID  header  string  true  "Usuario que registra"
// @Param        body  body  dto.RegisterMovementRequest  true  "type, product_variant_id, location_id (o from/to para TRANSFER), quantity, unit_cost (entradas)"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.uc.RegisterMovementFromRequest(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inventory.ToResultResponse(res))
}

// Issue godoc
// @Summary      Salida de inventario por venta o consumo de producción
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IssueStockRequest  true  "Líneas y documento origen"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/issues [post]
func (h *InventoryHandler) Issue(c *fiber.Ctx) error {
	var in dto.IssueStockRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.uc.IssueFromRequest(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inventory.ToResultResponse(res))
}

// CompleteProduction godoc
// @Summary      Cerrar un lote de producción
// @Description  Consume materiales y da entrada al producto terminado al costo de manufactura.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProductionRequest  true  "Materiales, producto y rendimiento"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/production [post]
func (h *InventoryHandler) CompleteProduction(c *fiber.Ctx) error {
	var in dto.ProductionRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.uc.ProductionFromRequest(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inventory.ToResultResponse(res))
}

// VoidMovement godoc
// @Summary      Anular un movimiento
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "Movement ID"
// @Param        body  body  dto.VoidMovementRequest  false "Motivo"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id}/void [post]
func (h *InventoryHandler) VoidMovement(c *fiber.Ctx) error {
	var in dto.VoidMovementRequest
	if len(c.Body()) > 0 {
		if ok, err := parseBody(c, &in); !ok {
			return err
		}
	}
	res, err := h.uc.VoidMovement(c.UserContext(), inventory.VoidInput{
		MovementID: c.Params("id"),
		Reason:     in.Reason,
		UserID:     GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inventory.ToResultResponse(res))
}

// Availability godoc
// @Summary      Stock físico, reservado y disponible
// @Tags         inventory
// @Produce      json
// @Param        location_id         query  string  true  "Ubicación"
// @Param        product_variant_id  query  string  true  "Variante"
// @Success      200  {object}  dto.AvailabilityResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/availability [get]
func (h *InventoryHandler) Availability(c *fiber.Ctx) error {
	var q dto.StockQuery
	if ok, err := parseQuery(c, &q); !ok {
		return err
	}
	av, err := h.uc.Availability(c.UserContext(), q.LocationID, q.ProductVariantID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.AvailabilityResponse{
		LocationID:       q.LocationID,
		ProductVariantID: q.ProductVariantID,
		Physical:         av.Physical,
		Reserved:         av.Reserved,
		Available:        av.Available,
		AverageCost:      av.AverageCost,
	})
}

// StockAt godoc
// @Summary      Stock a una fecha, recalculado desde el log de movimientos
// @Tags         inventory
// @Produce      json
// @Param        location_id         query  string  true   "Ubicación"
// @Param        product_variant_id  query  string  true   "Variante"
// @Param        as_of               query  string  false  "RFC3339; vacío = ahora"
// @Success      200  {object}  dto.StockAtResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock-at [get]
func (h *InventoryHandler) StockAt(c *fiber.Ctx) error {
	var q dto.StockQuery
	if ok, err := parseQuery(c, &q); !ok {
		return err
	}
	asOf := time.Now().UTC()
	if q.AsOf != "" {
		asOf, _ = time.Parse(time.RFC3339, q.AsOf)
	}
	qty, err := h.uc.StockAt(c.UserContext(), q.LocationID, q.ProductVariantID, asOf)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.StockAtResponse{
		LocationID:       q.LocationID,
		ProductVariantID: q.ProductVariantID,
		AsOf:             asOf,
		Quantity:         qty,
	})
}

// ABCClassification godoc
// @Summary      Clasificación ABC por valor consumido
// @Tags         inventory
// @Produce      json
// @Param        from  query  string  false  "YYYY-MM-DD"
// @Param        to    query  string  false  "YYYY-MM-DD"
// @Success      200  {array}   dto.ABCItemResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/abc [get]
func (h *InventoryHandler) ABCClassification(c *fiber.Ctx) error {
	var q dto.DateRangeQuery
	if ok, err := parseQuery(c, &q); !ok {
		return err
	}
	r := toDateRange(q)
	from, to := time.Time{}, time.Now().UTC()
	if r.From != nil {
		from = *r.From
	}
	if r.To != nil {
		to = *r.To
	}
	items, err := h.consumption.ClassifyConsumption(c.UserContext(), from, to)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.ABCItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.ABCItemResponse{
			ProductVariantID: it.ProductVariantID,
			Value:            it.Value,
			SharePct:         it.SharePct,
			CumulativePct:    it.CumulativePct,
			Class:            it.Class,
		})
	}
	return c.JSON(out)
}
