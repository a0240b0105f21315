package menu

import (
	"strings"
	"time"

	"restoran-pos/internal/auth"
	"restoran-pos/internal/database"
	"restoran-pos/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

type ReorderRequest struct {
	IDs []uint `json:"ids"`
}

// GET /api/menu/categories
func ListCategoriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		cats, err := ListCategories(database.DB.WithContext(c.UserContext()), auth.MerchantID(c))
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, cats)
	}
}

// POST /api/menu/categories
func CreateCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CategoryInput
		if err := c.BodyParser(&body); err != nil {
			return httpx.BadRequest("invalid request body")
		}
		cat, err := CreateCategory(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), body)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusCreated, cat)
	}
}

// PUT /api/menu/categories/:id
func UpdateCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body CategoryInput
		if err := c.BodyParser(&body); err != nil {
			return httpx.BadRequest("invalid request body")
		}
		cat, err := UpdateCategory(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), id, body)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, cat)
	}
}

// DELETE /api/menu/categories/:id
func DeleteCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		if err := DeleteCategory(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), id); err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, fiber.Map{"deleted": id})
	}
}

// PUT /api/menu/categories/reorder
func ReorderCategoriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ReorderRequest
		if err := c.BodyParser(&body); err != nil {
			return httpx.BadRequest("invalid request body")
		}
		if err := ReorderCategories(c.UserContext(), database.DB, auth.MerchantID(c), body.IDs); err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, fiber.Map{"reordered": len(body.IDs)})
	}
}

// GET /api/menu/items?category_id=&available=true
func ListItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		categoryID, err := httpx.QueryUint(c, "category_id")
		if err != nil {
			return err
		}
		items, err := ListItems(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), categoryID, c.QueryBool("available"))
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, items)
	}
}

// POST /api/menu/items
func CreateItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ItemInput
		if err := c.BodyParser(&body); err != nil {
			return httpx.BadRequest("invalid request body")
		}
		item, err := CreateItem(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), body)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusCreated, item)
	}
}

// PUT /api/menu/items/:id
func UpdateItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body ItemInput
		if err := c.BodyParser(&body); err != nil {
			return httpx.BadRequest("invalid request body")
		}
		item, err := UpdateItem(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), id, body)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, item)
	}
}

// DELETE /api/menu/items/:id
func DeleteItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		if err := DeleteItem(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), id); err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, fiber.Map{"deleted": id})
	}
}

// PUT /api/menu/items/reorder
func ReorderItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ReorderRequest
		if err := c.BodyParser(&body); err != nil {
			return httpx.BadRequest("invalid request body")
		}
		if err := ReorderItems(c.UserContext(), database.DB, auth.MerchantID(c), body.IDs); err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, fiber.Map{"reordered": len(body.IDs)})
	}
}

// POST /api/menu/import (multipart, field "file")
func ImportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return httpx.BadRequest("file is required")
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return httpx.BadRequest("only .xlsx files can be imported")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return err
		}
		defer file.Close()

		rows, parsed, err := ParseSheet(file)
		if err != nil {
			return err
		}
		res, err := Import(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), rows, parsed)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, res)
	}
}

// GET /api/menu/public/:merchant_id
func PublicMenuHandler(ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "merchant_id")
		if err != nil {
			return err
		}
		m, err := LoadPublicMenu(c.UserContext(), database.DB, id, ttl)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, m)
	}
}
