package models

import "time"

type Tag struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MerchantID uint      `gorm:"not null;uniqueIndex:ux_merchant_tag,priority:1" json:"merchant_id"`
	Name       string    `gorm:"size:50;not null;uniqueIndex:ux_merchant_tag,priority:2" json:"name"`
	Color      string    `gorm:"size:20" json:"color"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type SessionTag struct {
	SessionID uint `gorm:"primaryKey"`
	TagID     uint `gorm:"primaryKey;index"`
	CreatedAt time.Time
}
