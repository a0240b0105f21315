package menu

import (
	"context"
	"errors"
	"time"

	"restoran-pos/internal/cache"
	"restoran-pos/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrMerchantNotFound = errors.New("merchant not found")

type PublicItem struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
}

type PublicCategory struct {
	ID    uint         `json:"id"`
	Name  string       `json:"name"`
	Items []PublicItem `json:"items"`
}

type PublicMenu struct {
	MerchantID uint             `json:"merchant_id"`
	Name       string           `json:"name"`
	Currency   string           `json:"currency"`
	Categories []PublicCategory `json:"categories"`
}

// LoadPublicMenu serves available items of an active merchant, read through the cache.
func LoadPublicMenu(ctx context.Context, db *gorm.DB, merchantID uint, ttl time.Duration) (*PublicMenu, error) {
	key := cache.MenuKey(merchantID)

	var cached PublicMenu
	err := cache.Default.GetJSON(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		zap.L().Warn("menu cache read failed", zap.String("key", key), zap.Error(err))
	}

	var merchant models.Merchant
	if err := db.WithContext(ctx).Where("id = ? AND status = ?", merchantID, models.MerchantStatusActive).
		First(&merchant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, err
	}

	var cats []models.MenuCategory
	if err := db.WithContext(ctx).Where("merchant_id = ?", merchantID).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Where("available = ?", true).Order("sort_order ASC, name ASC")
		}).
		Order("sort_order ASC, name ASC").
		Find(&cats).Error; err != nil {
		return nil, err
	}

	out := buildPublicMenu(merchant, cats)
	if err := cache.Default.SetJSON(ctx, key, out, ttl); err != nil {
		zap.L().Warn("menu cache write failed", zap.String("key", key), zap.Error(err))
	}
	return out, nil
}

// empty categories are hidden
func buildPublicMenu(m models.Merchant, cats []models.MenuCategory) *PublicMenu {
	out := &PublicMenu{
		MerchantID: m.ID,
		Name:       m.Name,
		Currency:   m.Currency,
		Categories: make([]PublicCategory, 0, len(cats)),
	}
	for _, c := range cats {
		if len(c.Items) == 0 {
			continue
		}
		pc := PublicCategory{ID: c.ID, Name: c.Name, Items: make([]PublicItem, 0, len(c.Items))}
		for _, it := range c.Items {
			pc.Items = append(pc.Items, PublicItem{ID: it.ID, Name: it.Name, Description: it.Description, Price: it.Price})
		}
		out.Categories = append(out.Categories, pc)
	}
	return out
}
