package models

import "time"

type SessionEventType string

const (
	EventSessionOpened      SessionEventType = "session_opened"
	EventSessionClosed      SessionEventType = "session_closed"
	EventSessionTransferred SessionEventType = "session_transferred"
	EventSeatAdded          SessionEventType = "seat_added"
	EventSeatRemoved        SessionEventType = "seat_removed"
	EventWaveCreated        SessionEventType = "wave_created"
	EventItemsAdded         SessionEventType = "items_added"
	EventWaveFired          SessionEventType = "wave_fired"
	EventWaveAdvanced       SessionEventType = "wave_advanced"
	EventWaveDelayed        SessionEventType = "wave_delayed"
	EventItemVoided         SessionEventType = "item_voided"
	EventItemRefired        SessionEventType = "item_refired"
	EventItemBumped         SessionEventType = "item_bumped"
	EventPaymentRecorded    SessionEventType = "payment_recorded"
	EventTagAttached        SessionEventType = "tag_attached"
	EventTagDetached        SessionEventType = "tag_detached"
)

// SessionEvent: audit trail of everything that happened to a session
type SessionEvent struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	MerchantID  uint             `gorm:"index;not null" json:"merchant_id"`
	SessionID   uint             `gorm:"index;not null" json:"session_id"`
	OrderID     *uint            `json:"order_id"`
	UserID      *uint            `json:"user_id"`
	Type        SessionEventType `gorm:"size:40;not null;index" json:"type"`
	Description string           `gorm:"size:255" json:"description"`
	Data        string           `gorm:"type:jsonb" json:"data"`
	CreatedAt   time.Time        `gorm:"index" json:"created_at"`
}
