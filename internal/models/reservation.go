package models

import "time"

type ReservationStatus string

const (
	ReservationBooked    ReservationStatus = "booked"
	ReservationSeated    ReservationStatus = "seated"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationNoShow    ReservationStatus = "no_show"
)

type Reservation struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	MerchantID  uint              `gorm:"index;not null" json:"merchant_id"`
	LocationID  uint              `gorm:"index;not null" json:"location_id"`
	TableID     *uint             `json:"table_id"`
	GuestName   string            `gorm:"size:100;not null" json:"guest_name"`
	Phone       string            `gorm:"size:50" json:"phone"`
	PartySize   int               `gorm:"not null" json:"party_size"`
	ReservedFor time.Time         `gorm:"index;not null" json:"reserved_for"`
	Status      ReservationStatus `gorm:"size:20;not null;index" json:"status"`
	Note        string            `gorm:"size:255" json:"note"`
	SessionID   *uint             `json:"session_id"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
