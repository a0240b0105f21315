package pos

import (
	"encoding/json"
	"fmt"

	"restoran-pos/internal/models"

	"gorm.io/gorm"
)

type EventOptions struct {
	MerchantID  uint
	SessionID   uint
	OrderID     *uint
	UserID      uint
	Type        models.SessionEventType
	Description string
	Data        any
}

func RecordEvent(db *gorm.DB, opts EventOptions) error {
	// jsonb column: an empty string is not valid json
	data := "null"
	if opts.Data != nil {
		b, err := json.Marshal(opts.Data)
		if err != nil {
			return fmt.Errorf("session event data: %w", err)
		}
		data = string(b)
	}

	ev := models.SessionEvent{
		MerchantID:  opts.MerchantID,
		SessionID:   opts.SessionID,
		OrderID:     opts.OrderID,
		Type:        opts.Type,
		Description: opts.Description,
		Data:        data,
	}
	if opts.UserID != 0 {
		uid := opts.UserID
		ev.UserID = &uid
	}

	if err := db.Create(&ev).Error; err != nil {
		return fmt.Errorf("session event could not be recorded: %w", err)
	}
	return nil
}

func ListEvents(db *gorm.DB, merchantID, sessionID uint) ([]models.SessionEvent, error) {
	var events []models.SessionEvent
	err := db.Where("merchant_id = ? AND session_id = ?", merchantID, sessionID).
		Order("created_at ASC, id ASC").
		Find(&events).Error
	return events, err
}
