package middleware

import (
	"time"

	"flowpulse/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

// RequestID returns the request-id middleware.
func RequestID() fiber.Handler {
	return requestid.New()
}

// Logger returns a middleware that logs every request with zap.
func Logger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()),
		}
		if rid, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok && rid != "" {
			fields = append(fields, zap.String("request_id", rid))
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
			logger.Error("request", fields...)
			return err
		}

		logger.Info("request", fields...)
		return nil
	}
}
