package models

import "time"

type WaitlistStatus string

const (
	WaitlistWaiting   WaitlistStatus = "waiting"
	WaitlistNotified  WaitlistStatus = "notified"
	WaitlistSeated    WaitlistStatus = "seated"
	WaitlistCancelled WaitlistStatus = "cancelled"
)

type WaitlistEntry struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	MerchantID    uint           `gorm:"index;not null" json:"merchant_id"`
	LocationID    uint           `gorm:"index;not null" json:"location_id"`
	GuestName     string         `gorm:"size:100;not null" json:"guest_name"`
	Phone         string         `gorm:"size:50" json:"phone"`
	PartySize     int            `gorm:"not null" json:"party_size"`
	QuotedMinutes int            `gorm:"not null;default:0" json:"quoted_minutes"`
	Status        WaitlistStatus `gorm:"size:20;not null;index" json:"status"`
	Note          string         `gorm:"size:255" json:"note"`
	NotifiedAt    *time.Time     `json:"notified_at"`
	SeatedAt      *time.Time     `json:"seated_at"`
	SessionID     *uint          `json:"session_id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (WaitlistEntry) TableName() string { return "waitlist" }
