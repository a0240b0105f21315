package idempotency

import (
	"time"

	"restoran-pos/internal/auth"
	"restoran-pos/internal/httpx"
	"restoran-pos/internal/metrics"
	"restoran-pos/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	HeaderKey      = "Idempotency-Key"
	HeaderReplayed = "Idempotent-Replayed"
)

type Config struct {
	// DB is called per request so the global handle can be swapped in tests.
	DB  func() *gorm.DB
	TTL time.Duration
	Now func() time.Time
}

// Middleware deduplicates POS writes on (merchant, Idempotency-Key).
// Must run after auth.MerchantScope.
func Middleware(cfg Config) fiber.Handler {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}

	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderKey)
		if key == "" {
			return httpx.NewError(fiber.StatusBadRequest, "IDEMPOTENCY_KEY_REQUIRED", "Idempotency-Key header is required")
		}
		if len(key) > MaxKeyLength {
			return httpx.NewError(fiber.StatusBadRequest, "IDEMPOTENCY_KEY_INVALID", "Idempotency-Key is too long")
		}

		db := cfg.DB()
		merchantID := auth.MerchantID(c)
		now := cfg.Now()
		hash := HashRequest(c.Method(), c.Path(), c.Body())

		existing, err := Lookup(db, merchantID, key, now)
		if err != nil {
			return err
		}
		if existing != nil {
			return replay(c, existing, hash)
		}

		rec := &models.IdempotencyKey{
			MerchantID:  merchantID,
			Key:         key,
			RequestHash: hash,
			Method:      c.Method(),
			Path:        c.Path(),
			CreatedAt:   now,
			ExpiresAt:   now.Add(cfg.TTL),
		}
		reserved, err := Reserve(db, rec)
		if err != nil {
			return err
		}
		if !reserved {
			return httpx.NewError(fiber.StatusConflict, "IDEMPOTENCY_IN_PROGRESS", "a request with this Idempotency-Key is already being processed")
		}

		if err := c.Next(); err != nil {
			if relErr := Release(db, rec.ID); relErr != nil {
				zap.L().Warn("idempotency key could not be released", zap.String("key", key), zap.Error(relErr))
			}
			return err
		}

		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError {
			if relErr := Release(db, rec.ID); relErr != nil {
				zap.L().Warn("idempotency key could not be released", zap.String("key", key), zap.Error(relErr))
			}
			return nil
		}
		if err := Complete(db, rec.ID, status, c.Response().Body()); err != nil {
			zap.L().Error("idempotency response could not be stored", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
}

func replay(c *fiber.Ctx, rec *models.IdempotencyKey, hash string) error {
	if rec.RequestHash != hash {
		return httpx.NewError(fiber.StatusUnprocessableEntity, "IDEMPOTENCY_KEY_MISMATCH", "Idempotency-Key was already used with a different request")
	}
	if rec.StatusCode == 0 {
		return httpx.NewError(fiber.StatusConflict, "IDEMPOTENCY_IN_PROGRESS", "a request with this Idempotency-Key is already being processed")
	}

	metrics.IdempotentReplays.Inc()
	c.Set(HeaderReplayed, "true")
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(rec.StatusCode).SendString(rec.ResponseBody)
}
