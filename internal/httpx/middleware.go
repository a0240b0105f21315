package httpx

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// merchantLocal is the fiber local the auth middleware stores the tenant id under.
const merchantLocal = "merchant_id"

// RequestLogger logs one line per request after the error handler has set the final status.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// let the app error handler write the envelope before logging the status
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		}
		if rid, ok := c.Locals("requestid").(string); ok {
			fields = append(fields, zap.String("request_id", rid))
		}
		if mid, ok := c.Locals(merchantLocal).(*uint); ok && mid != nil {
			fields = append(fields, zap.Uint("merchant_id", *mid))
		}
		zap.L().Info("http request", fields...)
		return nil
	}
}
