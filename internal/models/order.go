package models

import "time"

// WaveStatus: held -> sent -> cooking -> ready -> served
type WaveStatus string

const (
	WaveHeld    WaveStatus = "held"
	WaveSent    WaveStatus = "sent"
	WaveCooking WaveStatus = "cooking"
	WaveReady   WaveStatus = "ready"
	WaveServed  WaveStatus = "served"
)

// Order: one wave of a session
type Order struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	MerchantID uint       `gorm:"index;not null" json:"merchant_id"`
	SessionID  uint       `gorm:"not null;uniqueIndex:ux_session_wave,priority:1" json:"session_id"`
	Wave       int        `gorm:"not null;uniqueIndex:ux_session_wave,priority:2" json:"wave"`
	Status     WaveStatus `gorm:"size:20;not null;index" json:"status"`

	FiredAt        *time.Time `json:"fired_at"`
	CookingAt      *time.Time `json:"cooking_at"`
	ReadyAt        *time.Time `json:"ready_at"`
	ServedAt       *time.Time `json:"served_at"`
	DelayFlaggedAt *time.Time `json:"delay_flagged_at"`

	Subtotal int64 `gorm:"not null;default:0" json:"subtotal"`
	Tax      int64 `gorm:"not null;default:0" json:"tax"`
	Total    int64 `gorm:"not null;default:0" json:"total"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

type OrderItem struct {
	ID         uint  `gorm:"primaryKey" json:"id"`
	MerchantID uint  `gorm:"index;not null" json:"merchant_id"`
	OrderID    uint  `gorm:"index;not null" json:"order_id"`
	SessionID  uint  `gorm:"index;not null" json:"session_id"`
	SeatID     *uint `gorm:"index" json:"seat_id"`
	MenuItemID *uint `json:"menu_item_id"`

	// snapshot of the menu at add time
	Name      string `gorm:"size:150;not null" json:"name"`
	Station   string `gorm:"size:50" json:"station"`
	Quantity  int    `gorm:"not null" json:"quantity"`
	UnitPrice int64  `gorm:"not null" json:"unit_price"`
	LineTotal int64  `gorm:"not null" json:"line_total"`
	Notes     string `gorm:"size:255" json:"notes"`

	Status      WaveStatus `gorm:"size:20;not null" json:"status"`
	RefireCount int        `gorm:"not null;default:0" json:"refire_count"`
	LastFiredAt *time.Time `json:"last_fired_at"`

	Voided     bool       `gorm:"not null;default:false;index" json:"voided"`
	VoidReason string     `gorm:"size:255" json:"void_reason,omitempty"`
	VoidedAt   *time.Time `json:"voided_at,omitempty"`
	VoidedBy   *uint      `json:"voided_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
