package reservations

import (
	"restoran-pos/internal/auth"
	"restoran-pos/internal/database"
	"restoran-pos/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

// GET /api/reservations?location_id=&date=YYYY-MM-DD
func ListHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		loc, err := auth.LocationID(c)
		if err != nil {
			return err
		}
		db := database.DB.WithContext(c.UserContext())
		tz := database.MerchantTimezone(db, auth.MerchantID(c))
		day, ok, err := httpx.QueryDate(c, "date", tz)
		if err != nil {
			return err
		}
		if !ok {
			day = now()
		}
		out, err := ListForDay(db, auth.MerchantID(c), loc, day, tz)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, out)
	}
}

// POST /api/reservations
func CreateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateInput
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
		r, err := Create(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), body)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusCreated, r)
	}
}

// POST /api/reservations/:id/cancel
func CancelHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		r, err := Cancel(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), id)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, r)
	}
}

// POST /api/reservations/:id/no-show
func NoShowHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		r, err := MarkNoShow(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), id)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, r)
	}
}

// POST /api/reservations/:id/seat
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
		r, session, err := Seat(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), id, auth.UserID(c), body)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, fiber.Map{"reservation": r, "session": session})
	}
}
