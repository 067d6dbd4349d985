package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/merch-stock/pkg/logger"
)

// HeaderRequestID header de correlación; se respeta el del cliente si viene.
const HeaderRequestID = "X-Request-ID"

// LocalRequestID key de c.Locals con el ID de la petición.
const LocalRequestID = "request_id"

// HTTPObserver recibe una observación por petición respondida (métricas).
type HTTPObserver interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
}

// RequestLogger asigna el X-Request-ID y registra cada petición (método, ruta, estado, duración).
// observer puede ser nil.
func RequestLogger(log *logger.Logger, observer HTTPObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqID := c.Get(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Locals(LocalRequestID, reqID)
		c.Set(HeaderRequestID, reqID)

		chainErr := c.Next()
		if chainErr != nil {
			// El ErrorHandler escribe la respuesta; el estado se lee después.
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		elapsed := time.Since(start)
		status := c.Response().StatusCode()
		route := c.Route().Path

		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		} else if status >= fiber.StatusBadRequest {
			ev = log.Warn()
		}
		ev.Str("request_id", reqID).
			Str("method", c.Method()).
			Str("route", route).
			Str("path", c.Path()).
			Int("status", status).
			Dur("elapsed", elapsed).
			Msg("petición")

		if observer != nil {
			observer.ObserveHTTP(c.Method(), route, status, elapsed)
		}
		return nil
	}
}
