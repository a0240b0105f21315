package models

import "time"

// DiningTable: physical table on the floor plan of a location
type DiningTable struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MerchantID uint      `gorm:"index;not null" json:"merchant_id"`
	LocationID uint      `gorm:"index;not null;uniqueIndex:ux_location_table_label,priority:1" json:"location_id"`
	Label      string    `gorm:"size:30;not null;uniqueIndex:ux_location_table_label,priority:2" json:"label"`
	Capacity   int       `gorm:"not null;default:2" json:"capacity"`
	Area       string    `gorm:"size:50" json:"area"`
	Active     bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
