package waitlist

import (
	"restoran-pos/internal/auth"
	"restoran-pos/internal/database"
	"restoran-pos/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

// GET /api/waitlist?location_id=
func ListHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		loc, err := auth.LocationID(c)
		if err != nil {
			return err
		}
		entries, err := ListActive(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), loc)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, entries)
	}
}

// POST /api/waitlist
func AddHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AddInput
		if err := c.BodyParser(&body); err != nil {
			return httpx.BadRequest("invalid request body")
		}
		if body.LocationID == 0 {
			loc, err := auth.LocationID(c)
			if err != nil {
				return err
			}
			body.LocationID = loc
		}
		entry, err := Add(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), body)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusCreated, entry)
	}
}

// POST /api/waitlist/:id/notify
func NotifyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		entry, err := Notify(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), id)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, entry)
	}
}

// POST /api/waitlist/:id/seat
func SeatHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body SeatInput
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return httpx.BadRequest("invalid request body")
			}
		}
		entry, session, err := Seat(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), id, auth.UserID(c), body)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, fiber.Map{"entry": entry, "session": session})
	}
}

// POST /api/waitlist/:id/cancel
func CancelHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		entry, err := Cancel(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), id)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, entry)
	}
}
