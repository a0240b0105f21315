package admin

import (
	"restoran-pos/internal/cache"
	"restoran-pos/internal/httpx"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ClearCacheRequest struct {
	MerchantID *uint `json:"merchant_id"`
}

// POST /api/admin/cache/clear
// Without merchant_id every key of the service is dropped.
func ClearCacheHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ClearCacheRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return httpx.BadRequest("invalid request body")
			}
		}

		prefix := cache.Prefix
		if body.MerchantID != nil {
			if *body.MerchantID == 0 {
				return httpx.BadRequest("merchant_id is invalid")
			}
			prefix = cache.MerchantPrefix(*body.MerchantID)
		}

		n, err := cache.Default.DeletePrefix(c.UserContext(), prefix)
		if err != nil {
			return err
		}
		zap.L().Info("cache cleared", zap.String("prefix", prefix), zap.Int("keys", n))
		return httpx.OK(c, fiber.StatusOK, fiber.Map{"prefix": prefix, "deleted": n})
	}
}
