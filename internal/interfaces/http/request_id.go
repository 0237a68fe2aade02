package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/pkg/id"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// HeaderRequestID cabecera de trazabilidad de la petición.
const (
	HeaderRequestID = "X-Request-ID"
	LocalRequestID  = "request_id"
)

// RequestIDMiddleware reutiliza el X-Request-ID entrante o genera uno ("req_...") y lo devuelve
// en la respuesta. Las respuestas 5xx se registran con ese ID.
func RequestIDMiddleware(log *logger.Logger) fiber.Handler {
	log = logger.OrNop(log)
	return func(c *fiber.Ctx) error {
		reqID := strings.TrimSpace(c.Get(HeaderRequestID))
		if reqID == "" || len(reqID) > 128 {
			reqID = id.NewRequestID()
		}
		c.Locals(LocalRequestID, reqID)
		c.Set(HeaderRequestID, reqID)

		err := c.Next()
		if status := c.Response().StatusCode(); err != nil || status >= fiber.StatusInternalServerError {
			log.Error().Err(err).
				Str("request_id", reqID).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Int("status", status).
				Msg("petición fallida")
		}
		return err
	}
}
