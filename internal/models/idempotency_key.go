package models

import "time"

// IdempotencyKey stores the outcome of a POS write keyed by the client supplied header.
// StatusCode 0 means the request is still being processed.
type IdempotencyKey struct {
	ID           uint      `gorm:"primaryKey"`
	MerchantID   uint      `gorm:"not null;uniqueIndex:ux_idempotency_scope,priority:1"`
	Key          string    `gorm:"size:128;not null;uniqueIndex:ux_idempotency_scope,priority:2"`
	RequestHash  string    `gorm:"size:64;not null"`
	Method       string    `gorm:"size:10;not null"`
	Path         string    `gorm:"size:255;not null"`
	StatusCode   int       `gorm:"not null;default:0"`
	ResponseBody string    `gorm:"type:jsonb"`
	CreatedAt    time.Time `gorm:"not null"`
	ExpiresAt    time.Time `gorm:"not null;index"`
}

func (IdempotencyKey) TableName() string { return "pos_idempotency_keys" }
