package admin

import (
	"errors"
	"strings"

	"restoran-pos/internal/auth"
	"restoran-pos/internal/database"
	"restoran-pos/internal/httpx"
	"restoran-pos/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TableRequest struct {
	LocationID *uint   `json:"location_id"`
	Label      *string `json:"label"`
	Capacity   *int    `json:"capacity"`
	Area       *string `json:"area"`
	Active     *bool   `json:"active"`
}

func applyTable(t *models.DiningTable, body TableRequest) error {
	if body.Label != nil {
		label := strings.TrimSpace(*body.Label)
		if label == "" || len(label) > 30 {
			return httpx.BadRequest("label must be 1 to 30 characters")
		}
		t.Label = label
	}
	if body.Capacity != nil {
		if *body.Capacity < 1 || *body.Capacity > 50 {
			return httpx.BadRequest("capacity must be between 1 and 50")
		}
		t.Capacity = *body.Capacity
	}
	if body.Area != nil {
		t.Area = strings.TrimSpace(*body.Area)
	}
	if body.Active != nil {
		t.Active = *body.Active
	}
	return nil
}

func labelTaken(db *gorm.DB, locationID uint, label string, exceptID uint) (bool, error) {
	var n int64
	err := db.Model(&models.DiningTable{}).
		Where("location_id = ? AND LOWER(label) = LOWER(?) AND id <> ?", locationID, label, exceptID).
		Count(&n).Error
	return n > 0, err
}

func findTable(db *gorm.DB, merchantID, id uint) (*models.DiningTable, error) {
	var t models.DiningTable
	if err := db.Where("id = ? AND merchant_id = ?", id, merchantID).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return &t, nil
}

func CreateTable(db *gorm.DB, merchantID uint, body TableRequest) (*models.DiningTable, error) {
	if body.LocationID == nil || body.Label == nil {
		return nil, httpx.BadRequest("location_id and label are required")
	}
	var n int64
	if err := db.Model(&models.Location{}).
		Where("id = ? AND merchant_id = ?", *body.LocationID, merchantID).
		Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrLocationNotFound
	}

	t := models.DiningTable{MerchantID: merchantID, LocationID: *body.LocationID, Capacity: 2, Active: true}
	if err := applyTable(&t, body); err != nil {
		return nil, err
	}
	taken, err := labelTaken(db, t.LocationID, t.Label, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrTableLabelTaken
	}
	if err := db.Create(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func UpdateTable(db *gorm.DB, merchantID, id uint, body TableRequest) (*models.DiningTable, error) {
	t, err := findTable(db, merchantID, id)
	if err != nil {
		return nil, err
	}
	if body.LocationID != nil && *body.LocationID != t.LocationID {
		return nil, httpx.BadRequest("a table cannot move to another location")
	}
	if err := applyTable(t, body); err != nil {
		return nil, err
	}
	if body.Label != nil {
		taken, err := labelTaken(db, t.LocationID, t.Label, t.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrTableLabelTaken
		}
	}
	if err := db.Save(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTable refuses while a session is open on the table.
func DeleteTable(db *gorm.DB, merchantID, id uint) error {
	t, err := findTable(db, merchantID, id)
	if err != nil {
		return err
	}
	var open int64
	if err := db.Model(&models.DiningSession{}).
		Where("table_id = ? AND status = ?", t.ID, models.SessionStatusOpen).
		Count(&open).Error; err != nil {
		return err
	}
	if open > 0 {
		return ErrTableInUse
	}
	return db.Delete(t).Error
}

// GET /api/tables?location_id=
func ListTablesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		locationID, err := auth.LocationID(c)
		if err != nil {
			return err
		}
		var tables []models.DiningTable
		if err := database.DB.WithContext(c.UserContext()).
			Where("merchant_id = ? AND location_id = ?", auth.MerchantID(c), locationID).
			Order("label ASC").
			Find(&tables).Error; err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, tables)
	}
}

// POST /api/tables
func CreateTableHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body TableRequest
		if err := c.BodyParser(&body); err != nil {
			return httpx.BadRequest("invalid request body")
		}
		t, err := CreateTable(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), body)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusCreated, t)
	}
}

// PUT /api/tables/:id
func UpdateTableHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body TableRequest
		if err := c.BodyParser(&body); err != nil {
			return httpx.BadRequest("invalid request body")
		}
		t, err := UpdateTable(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), id, body)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, t)
	}
}

// DELETE /api/tables/:id
func DeleteTableHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		if err := DeleteTable(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), id); err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, fiber.Map{"deleted": id})
	}
}
