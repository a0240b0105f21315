package admin

import (
	"context"
	"errors"
	"strings"
	"time"

	"restoran-pos/internal/cache"
	"restoran-pos/internal/database"
	"restoran-pos/internal/httpx"
	"restoran-pos/internal/models"
	"restoran-pos/internal/normalize"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateMerchantRequest struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Currency string `json:"currency"`
	Timezone string `json:"timezone"`
}

type UpdateMerchantRequest struct {
	Name     *string                `json:"name"`
	Currency *string                `json:"currency"`
	Timezone *string                `json:"timezone"`
	Status   *models.MerchantStatus `json:"status"`
}

type LocationRequest struct {
	Name                *string `json:"name"`
	Address             *string `json:"address"`
	Phone               *string `json:"phone"`
	TaxRateBps          *int    `json:"tax_rate_bps"`
	KitchenDelayMinutes *int    `json:"kitchen_delay_minutes"`
}

type MerchantPage struct {
	Items    []models.Merchant `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func validTimezone(tz string) bool {
	_, err := time.LoadLocation(tz)
	return err == nil
}

func normalizeCurrency(raw string) (string, error) {
	cur := strings.ToUpper(strings.TrimSpace(raw))
	if len(cur) != 3 {
		return "", httpx.BadRequest("currency must be a 3 letter ISO code")
	}
	return cur, nil
}

func findMerchant(db *gorm.DB, id uint) (*models.Merchant, error) {
	var m models.Merchant
	if err := db.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, err
	}
	return &m, nil
}

func CreateMerchant(db *gorm.DB, body CreateMerchantRequest) (*models.Merchant, error) {
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return nil, httpx.BadRequest("name is required")
	}
	slug := normalize.Slug(body.Slug)
	if slug == "" {
		slug = normalize.Slug(name)
	}
	if slug == "" {
		return nil, httpx.BadRequest("slug could not be derived from name")
	}

	m := models.Merchant{Name: name, Slug: slug, Currency: "USD", Timezone: "UTC", Status: models.MerchantStatusActive}
	if body.Currency != "" {
		cur, err := normalizeCurrency(body.Currency)
		if err != nil {
			return nil, err
		}
		m.Currency = cur
	}
	if body.Timezone != "" {
		if !validTimezone(body.Timezone) {
			return nil, httpx.BadRequest("timezone is not a valid IANA zone")
		}
		m.Timezone = body.Timezone
	}

	var n int64
	if err := db.Model(&models.Merchant{}).Where("slug = ?", slug).Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, ErrSlugTaken
	}
	if err := db.Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// SearchMerchants matches name or slug case-insensitively. page starts at 1.
func SearchMerchants(db *gorm.DB, q string, status models.MerchantStatus, page, pageSize int) (*MerchantPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	query := db.Model(&models.Merchant{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + escapeLike(q) + "%"
		query = query.Where("name ILIKE ? OR slug ILIKE ?", like, like)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	out := &MerchantPage{Items: []models.Merchant{}, Page: page, PageSize: pageSize}
	if err := query.Count(&out.Total).Error; err != nil {
		return nil, err
	}
	if out.Total == 0 {
		return out, nil
	}
	if err := query.Order("name ASC").Limit(pageSize).Offset((page - 1) * pageSize).
		Find(&out.Items).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// POST /api/admin/merchants
func CreateMerchantHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateMerchantRequest
		if err := c.BodyParser(&body); err != nil {
			return httpx.BadRequest("invalid request body")
		}
		m, err := CreateMerchant(database.DB.WithContext(c.UserContext()), body)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusCreated, m)
	}
}

// GET /api/admin/merchants?status=&page=&page_size=
func ListMerchantsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := SearchMerchants(database.DB.WithContext(c.UserContext()), "",
			models.MerchantStatus(c.Query("status")), c.QueryInt("page", 1), c.QueryInt("page_size", defaultPageSize))
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, page)
	}
}

// GET /api/admin/merchants/search?q=&page=&page_size=
func SearchMerchantsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := c.Query("q")
		if len(q) > 100 {
			return httpx.BadRequest("q is too long")
		}
		page, err := SearchMerchants(database.DB.WithContext(c.UserContext()), q,
			models.MerchantStatus(c.Query("status")), c.QueryInt("page", 1), c.QueryInt("page_size", defaultPageSize))
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, page)
	}
}

// GET /api/admin/merchants/:id
func GetMerchantHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var m models.Merchant
		if err := database.DB.WithContext(c.UserContext()).
			Preload("Locations", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
			First(&m, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMerchantNotFound
			}
			return err
		}
		return httpx.OK(c, fiber.StatusOK, m)
	}
}

// PUT /api/admin/merchants/:id
// UpdateMerchant applies the set fields and drops every cached entry of the tenant.
func UpdateMerchant(ctx context.Context, db *gorm.DB, id uint, body UpdateMerchantRequest) (*models.Merchant, error) {
	m, err := findMerchant(db, id)
	if err != nil {
		return nil, err
	}
	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" {
			return nil, httpx.BadRequest("name cannot be empty")
		}
		m.Name = name
	}
	if body.Currency != nil {
		cur, err := normalizeCurrency(*body.Currency)
		if err != nil {
			return nil, err
		}
		m.Currency = cur
	}
	if body.Timezone != nil {
		if !validTimezone(*body.Timezone) {
			return nil, httpx.BadRequest("timezone is not a valid IANA zone")
		}
		m.Timezone = *body.Timezone
	}
	if body.Status != nil {
		switch *body.Status {
		case models.MerchantStatusActive, models.MerchantStatusSuspended:
			m.Status = *body.Status
		default:
			return nil, httpx.BadRequest("status must be active or suspended")
		}
	}

	if err := db.Save(m).Error; err != nil {
		return nil, err
	}
	if _, err := cache.Default.DeletePrefix(ctx, cache.MerchantPrefix(m.ID)); err != nil {
		zap.L().Warn("merchant cache could not be invalidated", zap.Uint("merchant_id", m.ID), zap.Error(err))
	}
	return m, nil
}

func UpdateMerchantHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body UpdateMerchantRequest
		if err := c.BodyParser(&body); err != nil {
			return httpx.BadRequest("invalid request body")
		}
		m, err := UpdateMerchant(c.UserContext(), database.DB.WithContext(c.UserContext()), id, body)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, m)
	}
}

func applyLocation(loc *models.Location, body LocationRequest) error {
	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" {
			return httpx.BadRequest("name cannot be empty")
		}
		loc.Name = name
	}
	if body.Address != nil {
		loc.Address = strings.TrimSpace(*body.Address)
	}
	if body.Phone != nil {
		loc.Phone = strings.TrimSpace(*body.Phone)
	}
	if body.TaxRateBps != nil {
		if *body.TaxRateBps < 0 || *body.TaxRateBps > 10000 {
			return httpx.BadRequest("tax_rate_bps must be between 0 and 10000")
		}
		loc.TaxRateBps = *body.TaxRateBps
	}
	if body.KitchenDelayMinutes != nil {
		if *body.KitchenDelayMinutes < 0 || *body.KitchenDelayMinutes > 240 {
			return httpx.BadRequest("kitchen_delay_minutes must be between 0 and 240")
		}
		loc.KitchenDelayMinutes = *body.KitchenDelayMinutes
	}
	return nil
}

// POST /api/admin/merchants/:id/locations
func CreateLocationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		db := database.DB.WithContext(c.UserContext())
		if _, err := findMerchant(db, id); err != nil {
			return err
		}

		var body LocationRequest
		if err := c.BodyParser(&body); err != nil {
			return httpx.BadRequest("invalid request body")
		}
		if body.Name == nil {
			return httpx.BadRequest("name is required")
		}
		loc := models.Location{MerchantID: id}
		if err := applyLocation(&loc, body); err != nil {
			return err
		}
		if err := db.Create(&loc).Error; err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusCreated, loc)
	}
}

// GET /api/admin/merchants/:id/locations
func ListLocationsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var locs []models.Location
		if err := database.DB.WithContext(c.UserContext()).
			Where("merchant_id = ?", id).Order("name ASC").Find(&locs).Error; err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, locs)
	}
}

// PUT /api/admin/locations/:id
func UpdateLocationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		db := database.DB.WithContext(c.UserContext())

		var loc models.Location
		if err := db.First(&loc, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLocationNotFound
			}
			return err
		}

		var body LocationRequest
		if err := c.BodyParser(&body); err != nil {
			return httpx.BadRequest("invalid request body")
		}
		if err := applyLocation(&loc, body); err != nil {
			return err
		}
		if err := db.Save(&loc).Error; err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, loc)
	}
}
