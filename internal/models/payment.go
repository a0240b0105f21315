package models

import "time"

type PaymentMethod string

const (
	PaymentMethodCash  PaymentMethod = "cash"
	PaymentMethodCard  PaymentMethod = "card"
	PaymentMethodOther PaymentMethod = "other"
)

type Payment struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	MerchantID uint          `gorm:"index;not null" json:"merchant_id"`
	LocationID uint          `gorm:"index;not null" json:"location_id"`
	SessionID  uint          `gorm:"index;not null" json:"session_id"`
	Method     PaymentMethod `gorm:"size:20;not null" json:"method"`
	Amount     int64         `gorm:"not null" json:"amount"`
	Tip        int64         `gorm:"not null;default:0" json:"tip"`
	Reference  string        `gorm:"size:100" json:"reference"`
	TakenBy    uint          `gorm:"not null" json:"taken_by"`
	CreatedAt  time.Time     `gorm:"index" json:"created_at"`
}
