package menu

import (
	"context"
	"errors"
	"strings"

	"restoran-pos/internal/cache"
	"restoran-pos/internal/httpx"
	"restoran-pos/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CategoryInput struct {
	Name      *string `json:"name"`
	SortOrder *int    `json:"sort_order"`
}

type ItemInput struct {
	CategoryID  *uint   `json:"category_id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *int64  `json:"price"`
	Station     *string `json:"station"`
	Available   *bool   `json:"available"`
	SortOrder   *int    `json:"sort_order"`
}

// Invalidate drops every cached menu view of the merchant.
func Invalidate(ctx context.Context, merchantID uint) {
	if _, err := cache.Default.DeletePrefix(ctx, cache.MenuKey(merchantID)); err != nil {
		zap.L().Warn("menu cache could not be invalidated", zap.Uint("merchant_id", merchantID), zap.Error(err))
	}
}

func ListCategories(db *gorm.DB, merchantID uint) ([]models.MenuCategory, error) {
	var cats []models.MenuCategory
	err := db.Where("merchant_id = ?", merchantID).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, name ASC") }).
		Order("sort_order ASC, name ASC").
		Find(&cats).Error
	return cats, err
}

func CreateCategory(db *gorm.DB, merchantID uint, in CategoryInput) (*models.MenuCategory, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, httpx.BadRequest("name is required")
	}
	cat := models.MenuCategory{MerchantID: merchantID, Name: strings.TrimSpace(*in.Name)}
	if in.SortOrder != nil {
		cat.SortOrder = *in.SortOrder
	} else {
		if err := db.Model(&models.MenuCategory{}).Where("merchant_id = ?", merchantID).
			Select("COALESCE(MAX(sort_order), -1) + 1").Scan(&cat.SortOrder).Error; err != nil {
			return nil, err
		}
	}
	if err := db.Create(&cat).Error; err != nil {
		return nil, err
	}
	Invalidate(db.Statement.Context, merchantID)
	return &cat, nil
}

func findCategory(db *gorm.DB, merchantID, id uint) (*models.MenuCategory, error) {
	var cat models.MenuCategory
	if err := db.Where("id = ? AND merchant_id = ?", id, merchantID).First(&cat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &cat, nil
}

func UpdateCategory(db *gorm.DB, merchantID, id uint, in CategoryInput) (*models.MenuCategory, error) {
	cat, err := findCategory(db, merchantID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, httpx.BadRequest("name cannot be empty")
		}
		cat.Name = name
	}
	if in.SortOrder != nil {
		cat.SortOrder = *in.SortOrder
	}
	if err := db.Save(cat).Error; err != nil {
		return nil, err
	}
	Invalidate(db.Statement.Context, merchantID)
	return cat, nil
}

func DeleteCategory(db *gorm.DB, merchantID, id uint) error {
	if _, err := findCategory(db, merchantID, id); err != nil {
		return err
	}
	var count int64
	if err := db.Model(&models.MenuItem{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryNotEmpty
	}
	if err := db.Delete(&models.MenuCategory{}, id).Error; err != nil {
		return err
	}
	Invalidate(db.Statement.Context, merchantID)
	return nil
}

func ListItems(db *gorm.DB, merchantID, categoryID uint, onlyAvailable bool) ([]models.MenuItem, error) {
	q := db.Where("merchant_id = ?", merchantID)
	if categoryID != 0 {
		q = q.Where("category_id = ?", categoryID)
	}
	if onlyAvailable {
		q = q.Where("available = ?", true)
	}
	var items []models.MenuItem
	err := q.Order("category_id ASC, sort_order ASC, name ASC").Find(&items).Error
	return items, err
}

func validateItem(item *models.MenuItem) error {
	if item.Name == "" {
		return httpx.BadRequest("name is required")
	}
	if item.Price < 0 {
		return httpx.BadRequest("price cannot be negative")
	}
	if item.CategoryID == 0 {
		return httpx.BadRequest("category_id is required")
	}
	return nil
}

func applyItem(item *models.MenuItem, in ItemInput) {
	if in.CategoryID != nil {
		item.CategoryID = *in.CategoryID
	}
	if in.Name != nil {
		item.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		item.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		item.Price = *in.Price
	}
	if in.Station != nil {
		item.Station = strings.ToLower(strings.TrimSpace(*in.Station))
	}
	if in.Available != nil {
		item.Available = *in.Available
	}
	if in.SortOrder != nil {
		item.SortOrder = *in.SortOrder
	}
}

func CreateItem(db *gorm.DB, merchantID uint, in ItemInput) (*models.MenuItem, error) {
	item := models.MenuItem{MerchantID: merchantID, Available: true}
	applyItem(&item, in)
	if err := validateItem(&item); err != nil {
		return nil, err
	}
	if _, err := findCategory(db, merchantID, item.CategoryID); err != nil {
		return nil, err
	}
	if err := db.Create(&item).Error; err != nil {
		return nil, err
	}
	Invalidate(db.Statement.Context, merchantID)
	return &item, nil
}

func UpdateItem(db *gorm.DB, merchantID, id uint, in ItemInput) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := db.Where("id = ? AND merchant_id = ?", id, merchantID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	prevCategory := item.CategoryID
	applyItem(&item, in)
	if err := validateItem(&item); err != nil {
		return nil, err
	}
	if item.CategoryID != prevCategory {
		if _, err := findCategory(db, merchantID, item.CategoryID); err != nil {
			return nil, err
		}
	}
	if err := db.Save(&item).Error; err != nil {
		return nil, err
	}
	Invalidate(db.Statement.Context, merchantID)
	return &item, nil
}

// DeleteItem removes the menu entry. Order items keep their own snapshot of name and price.
func DeleteItem(db *gorm.DB, merchantID, id uint) error {
	res := db.Where("id = ? AND merchant_id = ?", id, merchantID).Delete(&models.MenuItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrItemNotFound
	}
	Invalidate(db.Statement.Context, merchantID)
	return nil
}
