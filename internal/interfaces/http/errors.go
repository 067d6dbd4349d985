package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/merch-stock/internal/application/dto"
	"github.com/jhoicas/merch-stock/internal/domain"
	"github.com/jhoicas/merch-stock/pkg/logger"
)

// Códigos de error de la API (campo "code" del cuerpo).
const (
	CodeInvalidBody       = "INVALID_BODY"
	CodeInvalidID         = "INVALID_ID"
	CodeValidation        = "VALIDATION"
	CodeDuplicate         = "DUPLICATE"
	CodeNotFound          = "NOT_FOUND"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInternal          = "INTERNAL"
)

// respondError traduce un error de dominio a status + ErrorResponse.
// Errores inesperados se registran y se responden con un mensaje genérico.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	var (
		ise  *domain.InsufficientStockError
		fErr *fiber.Error
	)
	switch {
	case errors.As(err, &ise):
		stock := ise.Stock
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: CodeInsufficientStock, Message: err.Error(), Stock: &stock})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: CodeValidation, Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: CodeNotFound, Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: CodeDuplicate, Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: CodeUnauthorized, Message: "credenciales inválidas"})
	case errors.As(err, &fErr):
		return c.Status(fErr.Code).JSON(dto.ErrorResponse{Code: codeForStatus(fErr.Code), Message: fErr.Message})
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: CodeInternal, Message: "error interno del servidor"})
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return CodeNotFound
	case fiber.StatusUnauthorized:
		return CodeUnauthorized
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return CodeInvalidBody
	}
	if status >= fiber.StatusInternalServerError {
		return CodeInternal
	}
	return "HTTP_" + strconv.Itoa(status)
}

// ErrorHandler manejador global de Fiber: rutas inexistentes, panics recuperados y errores no mapeados.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return respondError(c, log, err)
	}
}

var errInvalidBody = fiber.NewError(fiber.StatusBadRequest, "cuerpo inválido")

// parseBody decodifica el JSON del cuerpo; cuerpo vacío equivale a {}.
func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return errInvalidBody
	}
	return nil
}
