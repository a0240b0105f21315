package models

import "time"

type MerchantStatus string

const (
	MerchantStatusActive    MerchantStatus = "active"
	MerchantStatusSuspended MerchantStatus = "suspended"
)

type Merchant struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:150;not null" json:"name"`
	Slug      string         `gorm:"size:80;uniqueIndex;not null" json:"slug"`
	Currency  string         `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Timezone  string         `gorm:"size:64;not null;default:'UTC'" json:"timezone"`
	Status    MerchantStatus `gorm:"size:20;not null;default:'active'" json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	Locations []Location `json:"locations,omitempty"`
}

// Location: a single restaurant of a merchant
type Location struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MerchantID uint      `gorm:"index;not null" json:"merchant_id"`
	Merchant   *Merchant `json:"-"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Address    string    `gorm:"size:255" json:"address"`
	Phone      string    `gorm:"size:50" json:"phone"`
	// basis points, 825 = 8.25%
	TaxRateBps int `gorm:"not null;default:0" json:"tax_rate_bps"`
	// 0 means the service default applies
	KitchenDelayMinutes int       `gorm:"not null;default:0" json:"kitchen_delay_minutes"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}
