package kitchen

import (
	"time"

	"restoran-pos/internal/auth"
	"restoran-pos/internal/database"
	"restoran-pos/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

// GET /api/kitchen/board?location_id=
func BoardHandler(fallback time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		loc, err := auth.LocationID(c)
		if err != nil {
			return err
		}
		view, err := Board(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), loc, time.Now(), fallback)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, view)
	}
}

// POST /api/kitchen/orders/:id/bump
func BumpHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		order, err := Bump(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), id, auth.UserID(c))
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, order)
	}
}

// POST /api/kitchen/items/:id/bump
func BumpItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		item, err := BumpItem(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), id, auth.UserID(c))
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, item)
	}
}
