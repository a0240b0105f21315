package pos

import (
	"errors"
	"fmt"
	"strings"

	"restoran-pos/internal/database"
	"restoran-pos/internal/models"

	"gorm.io/gorm"
)

// AddSeat appends the next seat number and bumps the guest count.
func AddSeat(db *gorm.DB, merchantID, sessionID, userID uint, label string) (*models.Seat, error) {
	var seat models.Seat
	err := database.WithTx(db, func(tx *gorm.DB) error {
		if _, err := LockOpenSession(tx, merchantID, sessionID); err != nil {
			return err
		}

		var maxNumber int
		if err := tx.Model(&models.Seat{}).
			Where("session_id = ?", sessionID).
			Select("COALESCE(MAX(number), 0)").
			Scan(&maxNumber).Error; err != nil {
			return err
		}

		seat = models.Seat{SessionID: sessionID, Number: maxNumber + 1, Label: strings.TrimSpace(label)}
		if err := tx.Create(&seat).Error; err != nil {
			return err
		}
		if err := syncGuestCount(tx, sessionID); err != nil {
			return err
		}

		return RecordEvent(tx, EventOptions{
			MerchantID:  merchantID,
			SessionID:   sessionID,
			UserID:      userID,
			Type:        models.EventSeatAdded,
			Description: fmt.Sprintf("Seat %d added", seat.Number),
			Data:        map[string]any{"seat_id": seat.ID, "number": seat.Number},
		})
	})
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

// RemoveSeat refuses seats referenced by any order item, voided ones included.
func RemoveSeat(db *gorm.DB, merchantID, sessionID, seatID, userID uint) error {
	return database.WithTx(db, func(tx *gorm.DB) error {
		if _, err := LockOpenSession(tx, merchantID, sessionID); err != nil {
			return err
		}

		var seat models.Seat
		if err := tx.Where("id = ? AND session_id = ?", seatID, sessionID).First(&seat).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSeatNotFound
			}
			return err
		}

		var refs int64
		if err := tx.Model(&models.OrderItem{}).Where("seat_id = ?", seatID).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return ErrSeatHasItems
		}

		if err := tx.Delete(&models.Seat{}, seatID).Error; err != nil {
			return err
		}
		if err := syncGuestCount(tx, sessionID); err != nil {
			return err
		}

		return RecordEvent(tx, EventOptions{
			MerchantID:  merchantID,
			SessionID:   sessionID,
			UserID:      userID,
			Type:        models.EventSeatRemoved,
			Description: fmt.Sprintf("Seat %d removed", seat.Number),
			Data:        map[string]any{"seat_id": seat.ID, "number": seat.Number},
		})
	})
}

// guest count follows the seat count, never below one
func syncGuestCount(tx *gorm.DB, sessionID uint) error {
	var n int64
	if err := tx.Model(&models.Seat{}).Where("session_id = ?", sessionID).Count(&n).Error; err != nil {
		return err
	}
	if n < 1 {
		n = 1
	}
	return tx.Model(&models.DiningSession{}).Where("id = ?", sessionID).Update("guest_count", n).Error
}
