package tags

import (
	"restoran-pos/internal/auth"
	"restoran-pos/internal/database"
	"restoran-pos/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

// GET /api/tags
func ListHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tags, err := List(database.DB.WithContext(c.UserContext()), auth.MerchantID(c))
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, tags)
	}
}

// POST /api/tags
func CreateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body TagInput
		if err := c.BodyParser(&body); err != nil {
			return httpx.BadRequest("invalid request body")
		}
		tag, err := Create(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), body)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusCreated, tag)
	}
}

// PUT /api/tags/:id
func UpdateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body TagInput
		if err := c.BodyParser(&body); err != nil {
			return httpx.BadRequest("invalid request body")
		}
		tag, err := Update(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), id, body)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, tag)
	}
}

// DELETE /api/tags/:id
func DeleteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		if err := Delete(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), id); err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, fiber.Map{"deleted": id})
	}
}

func sessionTagIDs(c *fiber.Ctx) (uint, uint, error) {
	sessionID, err := httpx.ParamID(c, "id")
	if err != nil {
		return 0, 0, err
	}
	tagID, err := httpx.ParamID(c, "tag_id")
	if err != nil {
		return 0, 0, err
	}
	return sessionID, tagID, nil
}

// POST /api/sessions/:id/tags/:tag_id
func AttachHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID, tagID, err := sessionTagIDs(c)
		if err != nil {
			return err
		}
		if err := Attach(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), sessionID, tagID, auth.UserID(c)); err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, fiber.Map{"session_id": sessionID, "tag_id": tagID})
	}
}

// DELETE /api/sessions/:id/tags/:tag_id
func DetachHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID, tagID, err := sessionTagIDs(c)
		if err != nil {
			return err
		}
		if err := Detach(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), sessionID, tagID, auth.UserID(c)); err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, fiber.Map{"session_id": sessionID, "tag_id": tagID})
	}
}
