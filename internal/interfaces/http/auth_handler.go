package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/merch-stock/internal/application/auth"
	"github.com/jhoicas/merch-stock/internal/application/dto"
	"github.com/jhoicas/merch-stock/pkg/logger"
)

// AuthHandler login del operador.
type AuthHandler struct {
	uc  *auth.AuthUseCase
	log *logger.Logger
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase, log *logger.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, log: log}
}

// Login godoc
// @Summary      Iniciar sesión del operador
// @Description  Solo disponible con JWT_SECRET configurado.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "username, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	if in.Username == "" || in.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: CodeValidation, Message: "username y password son requeridos"})
	}
	out, err := h.uc.Login(in)
	if err != nil {
		h.log.Warn().Str("username", in.Username).Msg("login rechazado")
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
