package database

import (
	"time"

	"restoran-pos/internal/models"

	"gorm.io/gorm"
)

// MerchantTimezone loads the merchant's IANA zone, falling back to the server zone.
func MerchantTimezone(db *gorm.DB, merchantID uint) *time.Location {
	var tz string
	if err := db.Model(&models.Merchant{}).Where("id = ?", merchantID).
		Select("timezone").Scan(&tz).Error; err != nil || tz == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Local
	}
	return loc
}
