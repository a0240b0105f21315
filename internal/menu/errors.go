package menu

import (
	"errors"

	"restoran-pos/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrCategoryNotFound = errors.New("menu category not found")
	ErrItemNotFound     = errors.New("menu item not found")
	ErrCategoryNotEmpty = errors.New("category still has items, move or delete them first")
	ErrInvalidSheet     = errors.New("spreadsheet could not be read")
)

func RegisterErrors(m *httpx.ErrorMapper) {
	m.Register(ErrCategoryNotFound, fiber.StatusNotFound, "CATEGORY_NOT_FOUND").
		Register(ErrItemNotFound, fiber.StatusNotFound, "MENU_ITEM_NOT_FOUND").
		Register(ErrCategoryNotEmpty, fiber.StatusConflict, "CATEGORY_NOT_EMPTY").
		Register(ErrInvalidSheet, fiber.StatusBadRequest, "INVALID_SHEET").
		Register(ErrMerchantNotFound, fiber.StatusNotFound, "MERCHANT_NOT_FOUND")
}
