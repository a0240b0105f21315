package admin

import (
	"restoran-pos/internal/auth"
	"restoran-pos/internal/database"
	"restoran-pos/internal/httpx"
	"restoran-pos/internal/models"

	"github.com/gofiber/fiber/v2"
)

type StaffMember struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Role       models.UserRole `json:"role"`
	LocationID *uint           `json:"location_id"`
	Active     bool            `json:"active"`
}

// GET /api/staff?location_id=
func ListStaffHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		locationID, err := httpx.QueryUint(c, "location_id")
		if err != nil {
			return err
		}

		q := database.DB.WithContext(c.UserContext()).
			Model(&models.User{}).
			Where("merchant_id = ?", auth.MerchantID(c))
		if locationID != 0 {
			q = q.Where("location_id = ?", locationID)
		}

		var out []StaffMember
		if err := q.Select("id, name, email, role, location_id, active").
			Order("name ASC").
			Scan(&out).Error; err != nil {
			return err
		}
		if out == nil {
			out = []StaffMember{}
		}
		return httpx.OK(c, fiber.StatusOK, out)
	}
}
