package kitchen

import (
	"errors"
	"fmt"

	"restoran-pos/internal/database"
	"restoran-pos/internal/models"
	"restoran-pos/internal/pos"

	"gorm.io/gorm"
)

// Bump moves a wave to its next status.
func Bump(db *gorm.DB, merchantID, orderID, userID uint) (*models.Order, error) {
	var order models.Order
	if err := db.Select("id", "status").Where("id = ? AND merchant_id = ?", orderID, merchantID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pos.ErrWaveNotFound
		}
		return nil, err
	}
	next, ok := pos.NextWaveStatus(order.Status)
	if !ok || order.Status == models.WaveHeld {
		return nil, pos.ErrInvalidTransition
	}
	return pos.AdvanceWave(db, merchantID, orderID, next, userID)
}

// BumpItem moves a single refired item forward; its wave keeps its own status.
func BumpItem(db *gorm.DB, merchantID, itemID, userID uint) (*models.OrderItem, error) {
	var item models.OrderItem
	err := database.WithTx(db, func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND merchant_id = ?", itemID, merchantID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pos.ErrItemNotFound
			}
			return err
		}
		if _, err := pos.LockOpenSession(tx, merchantID, item.SessionID); err != nil {
			return err
		}
		if item.Voided {
			return pos.ErrItemVoided
		}
		next, ok := pos.NextWaveStatus(item.Status)
		if !ok || item.Status == models.WaveHeld {
			return pos.ErrInvalidTransition
		}

		res := tx.Model(&models.OrderItem{}).
			Where("id = ? AND status = ?", item.ID, item.Status).
			Update("status", next)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return pos.ErrInvalidTransition
		}

		from := item.Status
		item.Status = next
		orderID := item.OrderID
		return pos.RecordEvent(tx, pos.EventOptions{
			MerchantID:  merchantID,
			SessionID:   item.SessionID,
			OrderID:     &orderID,
			UserID:      userID,
			Type:        models.EventItemBumped,
			Description: fmt.Sprintf("%s bumped to %s", item.Name, next),
			Data:        map[string]any{"item_id": item.ID, "from": from, "to": next},
		})
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}
