package pos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"restoran-pos/internal/broker"
	"restoran-pos/internal/database"
	"restoran-pos/internal/metrics"
	"restoran-pos/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// KitchenTicket is what the kitchen receives when a wave is fired.
type KitchenTicket struct {
	SessionID uint         `json:"session_id"`
	OrderID   uint         `json:"order_id"`
	Wave      int          `json:"wave"`
	TableID   *uint        `json:"table_id"`
	FiredAt   time.Time    `json:"fired_at"`
	Items     []TicketItem `json:"items"`
}

type TicketItem struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Station  string `json:"station"`
	Quantity int    `json:"quantity"`
	SeatID   *uint  `json:"seat_id"`
	Notes    string `json:"notes"`
}

// CreateWave opens the next held wave; several held waves may coexist.
func CreateWave(db *gorm.DB, merchantID, sessionID, userID uint) (*models.Order, error) {
	var order models.Order
	err := database.WithTx(db, func(tx *gorm.DB) error {
		if _, err := LockOpenSession(tx, merchantID, sessionID); err != nil {
			return err
		}
		created, err := createNextWave(tx, merchantID, sessionID, userID)
		if err != nil {
			return err
		}
		order = *created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// createNextWave expects the session row to be locked by the caller.
func createNextWave(tx *gorm.DB, merchantID, sessionID, userID uint) (*models.Order, error) {
	var maxWave int
	if err := tx.Model(&models.Order{}).
		Where("session_id = ?", sessionID).
		Select("COALESCE(MAX(wave), 0)").
		Scan(&maxWave).Error; err != nil {
		return nil, err
	}

	order := models.Order{
		MerchantID: merchantID,
		SessionID:  sessionID,
		Wave:       maxWave + 1,
		Status:     models.WaveHeld,
	}
	if err := tx.Create(&order).Error; err != nil {
		return nil, err
	}

	oid := order.ID
	if err := RecordEvent(tx, EventOptions{
		MerchantID:  merchantID,
		SessionID:   sessionID,
		OrderID:     &oid,
		UserID:      userID,
		Type:        models.EventWaveCreated,
		Description: fmt.Sprintf("Wave %d created", order.Wave),
	}); err != nil {
		return nil, err
	}
	return &order, nil
}

func findWave(tx *gorm.DB, sessionID uint, wave int) (*models.Order, error) {
	var order models.Order
	if err := tx.Where("session_id = ? AND wave = ?", sessionID, wave).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWaveNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FireWave sends a held wave and its live items to the kitchen.
func FireWave(db *gorm.DB, merchantID, sessionID uint, wave int, userID uint) (*models.Order, error) {
	var (
		order   *models.Order
		session *models.DiningSession
		items   []models.OrderItem
		firedAt = now()
	)

	err := database.WithTx(db, func(tx *gorm.DB) error {
		var err error
		if session, err = LockOpenSession(tx, merchantID, sessionID); err != nil {
			return err
		}
		if order, err = findWave(tx, sessionID, wave); err != nil {
			return err
		}
		if order.Status != models.WaveHeld {
			return ErrWaveNotHeld
		}

		if err := tx.Where("order_id = ? AND voided = ?", order.ID, false).
			Order("id ASC").Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyWave
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.WaveHeld).
			Updates(map[string]interface{}{
				"status":   models.WaveSent,
				"fired_at": firedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrWaveNotHeld
		}

		if err := tx.Model(&models.OrderItem{}).
			Where("order_id = ? AND voided = ?", order.ID, false).
			Updates(map[string]interface{}{
				"status":        models.WaveSent,
				"last_fired_at": firedAt,
			}).Error; err != nil {
			return err
		}

		order.Status = models.WaveSent
		order.FiredAt = &firedAt
		oid := order.ID
		return RecordEvent(tx, EventOptions{
			MerchantID:  merchantID,
			SessionID:   sessionID,
			OrderID:     &oid,
			UserID:      userID,
			Type:        models.EventWaveFired,
			Description: fmt.Sprintf("Wave %d fired with %d items", order.Wave, len(items)),
			Data:        map[string]any{"wave": order.Wave, "items": len(items)},
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.WavesFired.Inc()

	ticket := KitchenTicket{
		SessionID: sessionID,
		OrderID:   order.ID,
		Wave:      order.Wave,
		TableID:   session.TableID,
		FiredAt:   firedAt,
		Items:     make([]TicketItem, 0, len(items)),
	}
	for i := range items {
		items[i].Status = models.WaveSent
		items[i].LastFiredAt = &firedAt
		ticket.Items = append(ticket.Items, TicketItem{
			ID:       items[i].ID,
			Name:     items[i].Name,
			Station:  items[i].Station,
			Quantity: items[i].Quantity,
			SeatID:   items[i].SeatID,
			Notes:    items[i].Notes,
		})
	}
	publish(session.LocationID, broker.EventWaveFired, ticket)

	order.Items = items
	return order, nil
}

// AdvanceWave moves a fired wave exactly one step forward and stamps the step time.
func AdvanceWave(db *gorm.DB, merchantID, orderID uint, to models.WaveStatus, userID uint) (*models.Order, error) {
	var (
		order models.Order
		loc   uint
	)
	err := database.WithTx(db, func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND merchant_id = ?", orderID, merchantID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWaveNotFound
			}
			return err
		}
		from := order.Status
		if !CanAdvance(from, to) {
			return ErrInvalidTransition
		}

		var session models.DiningSession
		if err := tx.Select("id", "location_id", "status").First(&session, order.SessionID).Error; err != nil {
			return err
		}
		if session.Status == models.SessionStatusCancelled {
			return ErrSessionNotOpen
		}
		loc = session.LocationID

		at := now()
		updates := map[string]interface{}{"status": to}
		switch to {
		case models.WaveCooking:
			updates["cooking_at"] = at
			order.CookingAt = &at
		case models.WaveReady:
			updates["ready_at"] = at
			order.ReadyAt = &at
		case models.WaveServed:
			updates["served_at"] = at
			order.ServedAt = &at
		}

		res := tx.Model(&models.Order{}).Where("id = ? AND status = ?", order.ID, from).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}

		// items trailing the wave catch up; refired items further along are left alone
		if err := tx.Model(&models.OrderItem{}).
			Where("order_id = ? AND voided = ? AND status IN ?", order.ID, false, statusesBefore(to)).
			Update("status", to).Error; err != nil {
			return err
		}

		order.Status = to
		oid := order.ID
		return RecordEvent(tx, EventOptions{
			MerchantID:  merchantID,
			SessionID:   order.SessionID,
			OrderID:     &oid,
			UserID:      userID,
			Type:        models.EventWaveAdvanced,
			Description: fmt.Sprintf("Wave %d is %s", order.Wave, to),
			Data:        map[string]any{"from": from, "to": to},
		})
	})
	if err != nil {
		return nil, err
	}

	publish(loc, broker.EventWaveBumped, map[string]any{
		"session_id": order.SessionID,
		"order_id":   order.ID,
		"wave":       order.Wave,
		"status":     order.Status,
	})
	return &order, nil
}

// publish never fails the request; the database row is the source of truth.
func publish(locationID uint, event string, payload any) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := broker.Default.Publish(ctx, locationID, event, payload); err != nil {
		zap.L().Warn("kitchen event could not be published",
			zap.String("event", event),
			zap.Uint("location_id", locationID),
			zap.Error(err),
		)
	}
}
