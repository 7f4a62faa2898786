package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/manufactura-erp/internal/application/dto"
	"github.com/jhoicas/manufactura-erp/internal/application/inventory"
	"github.com/rs/zerolog"
)

// ReservationHandler maneja las reservas de stock.
type ReservationHandler struct {
	rm  *inventory.ReservationManager
	log zerolog.Logger
}

// NewReservationHandler construye el handler.
func NewReservationHandler(rm *inventory.ReservationManager, log zerolog.Logger) *ReservationHandler {
	return &ReservationHandler{rm: rm, log: log}
}

// Reserve godoc
// @Summary      Reservar stock disponible
// @Description  Con allow_partial reserva lo disponible y devuelve el faltante; sin él falla si no alcanza.
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReserveRequest  true  "Variante, ubicación, cantidad y documento"
// @Success      201   {object}  dto.ReserveResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/reservations [post]
func (h *ReservationHandler) Reserve(c *fiber.Ctx) error {
	var in dto.ReserveRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	input := inventory.ReserveInput{
		ProductVariantID: in.ProductVariantID,
		LocationID:       in.LocationID,
		Quantity:         in.Quantity,
		ReservedFor:      in.ReservedFor,
		ReferenceID:      in.ReferenceID,
		ReservedUntil:    in.ReservedUntil,
	}
	if in.AllowPartial {
		res, shortfall, err := h.rm.ReserveUpTo(c.UserContext(), input)
		if err != nil {
			return writeError(c, h.log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(dto.ReserveResponse{
			Reservation: inventory.ToReservationResponse(res),
			Shortfall:   shortfall,
		})
	}
	res, err := h.rm.Reserve(c.UserContext(), input)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ReserveResponse{Reservation: inventory.ToReservationResponse(res)})
}

// Fulfill godoc
// @Summary      Consumir (parcial o total) una reserva activa
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        id    path  string                          true  "Reservation ID"
// @Param        body  body  dto.FulfillReservationRequest   true  "Cantidad"
// @Success      200   {object}  dto.ReservationResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reservations/{id}/fulfill [post]
func (h *ReservationHandler) Fulfill(c *fiber.Ctx) error {
	var in dto.FulfillReservationRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.rm.Fulfill(c.UserContext(), c.Params("id"), in.Quantity)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(inventory.ToReservationResponse(res))
}

// Cancel godoc
// @Summary      Cancelar una reserva activa
// @Tags         reservations
// @Produce      json
// @Param        id  path  string  true  "Reservation ID"
// @Success      200  {object}  dto.ReservationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(c *fiber.Ctx) error {
	res, err := h.rm.Cancel(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(inventory.ToReservationResponse(res))
}
