package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/merch-stock/internal/application/dto"
	"github.com/jhoicas/merch-stock/internal/application/labels"
	"github.com/jhoicas/merch-stock/pkg/logger"
)

// LabelHandler imagen QR por producto y hoja de etiquetas en PDF.
type LabelHandler struct {
	uc  *labels.LabelUseCase
	log *logger.Logger
}

// NewLabelHandler construye el handler.
func NewLabelHandler(uc *labels.LabelUseCase, log *logger.Logger) *LabelHandler {
	return &LabelHandler{uc: uc, log: log}
}

// CodePNG godoc
// @Summary      Código QR del producto
// @Tags         labels
// @Produce      png
// @Param        id    path   int  true   "ID del producto"
// @Param        size  query  int  false  "Lado en píxeles (64..1024)"  default(256)
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/code.png [get]
func (h *LabelHandler) CodePNG(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: CodeInvalidID, Message: "id inválido"})
	}
	img, err := h.uc.CodePNG(c.UserContext(), int64(id), c.QueryInt("size", labels.DefaultImageSize))
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(img)
}

// Sheet godoc
// @Summary      Hoja de etiquetas imprimible
// @Description  PDF A4 con una etiqueta QR por producto; sin ids incluye todos.
// @Tags         labels
// @Produce      application/pdf
// @Param        ids  query  string  false  "IDs separados por coma, p. ej. 1,2,3"
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/labels.pdf [get]
func (h *LabelHandler) Sheet(c *fiber.Ctx) error {
	ids, err := parseIDs(c.Query("ids"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: CodeInvalidID, Message: "ids inválidos"})
	}
	doc, err := h.uc.Sheet(c.UserContext(), ids)
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="etiquetas.pdf"`)
	return c.Send(doc)
}

// parseIDs "1, 2,3" -> [1 2 3]; vacío -> nil.
func parseIDs(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil || id <= 0 {
			return nil, fiber.ErrBadRequest
		}
		ids = append(ids, id)
	}
	return ids, nil
}
