package models

import "time"

type MenuCategory struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	MerchantID uint       `gorm:"index;not null" json:"merchant_id"`
	Name       string     `gorm:"size:100;not null" json:"name"`
	SortOrder  int        `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Items      []MenuItem `gorm:"foreignKey:CategoryID" json:"items,omitempty"`
}

type MenuItem struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	MerchantID  uint   `gorm:"index;not null" json:"merchant_id"`
	CategoryID  uint   `gorm:"index;not null" json:"category_id"`
	Name        string `gorm:"size:150;not null" json:"name"`
	Description string `gorm:"size:500" json:"description"`
	Price       int64  `gorm:"not null" json:"price"`
	// kitchen station the ticket is routed to (grill, bar, ...)
	Station   string    `gorm:"size:50" json:"station"`
	Available bool      `gorm:"not null;default:true" json:"available"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
