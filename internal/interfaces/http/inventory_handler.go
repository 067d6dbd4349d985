package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/merch-stock/internal/application/dto"
	"github.com/jhoicas/merch-stock/internal/application/inventory"
	"github.com/jhoicas/merch-stock/pkg/logger"
)

// InventoryHandler salidas, reposiciones y libro de movimientos.
type InventoryHandler struct {
	uc  *inventory.StockUseCase
	log *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.StockUseCase, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{uc: uc, log: log}
}

// Consume godoc
// @Summary      Registrar salida
// @Description  Descuenta qty (por defecto 1) del producto. 409 con el stock actual si no alcanza.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockChangeRequest  true  "sku, qty, reason, note"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/consume [post]
func (h *InventoryHandler) Consume(c *fiber.Ctx) error {
	var in dto.StockChangeRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.Consume(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	h.audit(c, out, "salida registrada")
	return c.JSON(out)
}

// Restock godoc
// @Summary      Registrar reposición
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockChangeRequest  true  "sku, qty, reason, note"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/restock [post]
func (h *InventoryHandler) Restock(c *fiber.Ctx) error {
	var in dto.StockChangeRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.Restock(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	h.audit(c, out, "reposición registrada")
	return c.JSON(out)
}

// audit deja constancia de qué operador hizo el cambio ("" con la auth desactivada).
func (h *InventoryHandler) audit(c *fiber.Ctx, out *dto.ProductResponse, msg string) {
	h.log.Info().
		Str("operator", GetOperator(c)).
		Str("sku", out.SKU).
		Int("stock", out.Stock).
		Str("request_id", c.GetRespHeader(HeaderRequestID)).
		Msg(msg)
}

// ListMovements godoc
// @Summary      Últimos movimientos
// @Description  Hasta 200 movimientos, el más nuevo primero, con nombre y SKU del producto.
// @Tags         inventory
// @Produce      json
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	out, err := h.uc.ListMovements(c.UserContext(), 0)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
