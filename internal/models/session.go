package models

import "time"

type SessionStatus string

const (
	SessionStatusOpen      SessionStatus = "open"
	SessionStatusClosed    SessionStatus = "closed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

// DiningSession: one occupancy of a table, groups every wave of the party
type DiningSession struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	PublicID   string        `gorm:"size:36;uniqueIndex;not null" json:"public_id"`
	MerchantID uint          `gorm:"index;not null" json:"merchant_id"`
	LocationID uint          `gorm:"index;not null" json:"location_id"`
	TableID    *uint         `gorm:"index" json:"table_id"`
	Table      *DiningTable  `json:"table,omitempty"`
	ServerID   *uint         `json:"server_id"`
	GuestCount int           `gorm:"not null;default:1" json:"guest_count"`
	Status     SessionStatus `gorm:"size:20;not null;index" json:"status"`
	Note       string        `gorm:"size:255" json:"note"`
	OpenedAt   time.Time     `gorm:"not null" json:"opened_at"`
	ClosedAt   *time.Time    `json:"closed_at"`

	// always derived from orders and payments
	Subtotal int64 `gorm:"not null;default:0" json:"subtotal"`
	Tax      int64 `gorm:"not null;default:0" json:"tax"`
	Total    int64 `gorm:"not null;default:0" json:"total"`
	Paid     int64 `gorm:"not null;default:0" json:"paid"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Seats    []Seat    `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"seats,omitempty"`
	Orders   []Order   `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"orders,omitempty"`
	Payments []Payment `gorm:"foreignKey:SessionID" json:"payments,omitempty"`
	Tags     []Tag     `gorm:"many2many:session_tags;joinForeignKey:SessionID;joinReferences:TagID" json:"tags,omitempty"`
}

func (DiningSession) TableName() string { return "sessions" }

func (s DiningSession) BalanceDue() int64 {
	return s.Total - s.Paid
}

type Seat struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID uint      `gorm:"not null;uniqueIndex:ux_session_seat,priority:1" json:"session_id"`
	Number    int       `gorm:"not null;uniqueIndex:ux_session_seat,priority:2" json:"number"`
	Label     string    `gorm:"size:50" json:"label"`
	CreatedAt time.Time `json:"created_at"`
}
