package http

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/manufactura-erp/internal/application/dto"
)

var validate = validator.New()

// validateStruct aplica las etiquetas validate del DTO y devuelve los campos que fallaron.
func validateStruct(v interface{}) []dto.FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return []dto.FieldError{{Field: "", Tag: err.Error()}}
	}
	out := make([]dto.FieldError, 0, len(errs))
	for _, fe := range errs {
		out = append(out, dto.FieldError{
			Field: fe.StructNamespace(),
			Tag:   fe.Tag(),
			Value: fmt.Sprint(fe.Value()),
		})
	}
	return out
}

// parseBody decodifica y valida el cuerpo. Si falla ya escribió la respuesta 400 y ok es false.
func parseBody(c *fiber.Ctx, out interface{}) (ok bool, err error) {
	if err := c.BodyParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if fields := validateStruct(out); len(fields) > 0 {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Fields: fields})
	}
	return true, nil
}
