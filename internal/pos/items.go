package pos

import (
	"errors"
	"fmt"
	"strings"

	"restoran-pos/internal/broker"
	"restoran-pos/internal/database"
	"restoran-pos/internal/metrics"
	"restoran-pos/internal/models"

	"gorm.io/gorm"
)

type ItemInput struct {
	MenuItemID uint   `json:"menu_item_id"`
	SeatID     *uint  `json:"seat_id"`
	Quantity   int    `json:"quantity"`
	Notes      string `json:"notes"`
}

type AddItemsInput struct {
	MerchantID uint
	SessionID  uint
	UserID     uint
	// Wave nil targets the latest held wave, creating one when none is held.
	Wave  *int
	Items []ItemInput
}

func validateItems(items []ItemInput) error {
	if len(items) == 0 {
		return invalid("at least one item is required")
	}
	for i, it := range items {
		if it.MenuItemID == 0 {
			return invalid(fmt.Sprintf("items[%d].menu_item_id is required", i))
		}
		if it.Quantity < 1 || it.Quantity > 99 {
			return invalid(fmt.Sprintf("items[%d].quantity must be between 1 and 99", i))
		}
		if len(it.Notes) > 255 {
			return invalid(fmt.Sprintf("items[%d].notes is too long", i))
		}
	}
	return nil
}

// AddItems snapshots menu items into a held wave. All items are added or none.
func AddItems(db *gorm.DB, in AddItemsInput) (*models.Order, error) {
	if err := validateItems(in.Items); err != nil {
		return nil, err
	}

	var orderID uint
	err := database.WithTx(db, func(tx *gorm.DB) error {
		if _, err := LockOpenSession(tx, in.MerchantID, in.SessionID); err != nil {
			return err
		}

		order, err := targetWave(tx, in)
		if err != nil {
			return err
		}
		orderID = order.ID

		menu, err := loadMenuItems(tx, in.MerchantID, in.Items)
		if err != nil {
			return err
		}
		if err := ensureSeats(tx, in.SessionID, in.Items); err != nil {
			return err
		}

		rows := make([]models.OrderItem, 0, len(in.Items))
		for _, it := range in.Items {
			rows = append(rows, snapshotItem(in.MerchantID, in.SessionID, order.ID, it, menu[it.MenuItemID]))
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}

		if err := RecalculateTotals(tx, in.SessionID); err != nil {
			return err
		}

		ids := make([]uint, len(rows))
		for i := range rows {
			ids[i] = rows[i].ID
		}
		oid := order.ID
		return RecordEvent(tx, EventOptions{
			MerchantID:  in.MerchantID,
			SessionID:   in.SessionID,
			OrderID:     &oid,
			UserID:      in.UserID,
			Type:        models.EventItemsAdded,
			Description: fmt.Sprintf("%d items added to wave %d", len(rows), order.Wave),
			Data:        map[string]any{"wave": order.Wave, "item_ids": ids},
		})
	})
	if err != nil {
		return nil, err
	}
	return loadOrder(db, in.MerchantID, orderID)
}

// snapshotItem copies name, station and price from the menu as they are at add time.
func snapshotItem(merchantID, sessionID, orderID uint, it ItemInput, mi models.MenuItem) models.OrderItem {
	menuID := mi.ID
	return models.OrderItem{
		MerchantID: merchantID,
		OrderID:    orderID,
		SessionID:  sessionID,
		SeatID:     it.SeatID,
		MenuItemID: &menuID,
		Name:       mi.Name,
		Station:    mi.Station,
		Quantity:   it.Quantity,
		UnitPrice:  mi.Price,
		LineTotal:  LineTotal(it.Quantity, mi.Price),
		Notes:      strings.TrimSpace(it.Notes),
		Status:     models.WaveHeld,
	}
}

func targetWave(tx *gorm.DB, in AddItemsInput) (*models.Order, error) {
	if in.Wave != nil {
		order, err := findWave(tx, in.SessionID, *in.Wave)
		if err != nil {
			return nil, err
		}
		if order.Status != models.WaveHeld {
			return nil, ErrWaveNotHeld
		}
		return order, nil
	}

	var order models.Order
	err := tx.Where("session_id = ? AND status = ?", in.SessionID, models.WaveHeld).
		Order("wave DESC").First(&order).Error
	if err == nil {
		return &order, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return createNextWave(tx, in.MerchantID, in.SessionID, in.UserID)
}

func loadMenuItems(tx *gorm.DB, merchantID uint, items []ItemInput) (map[uint]models.MenuItem, error) {
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.MenuItemID)
	}

	var found []models.MenuItem
	if err := tx.Where("merchant_id = ? AND id IN ?", merchantID, ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.MenuItem, len(found))
	for _, mi := range found {
		byID[mi.ID] = mi
	}
	for _, id := range ids {
		mi, ok := byID[id]
		if !ok || !mi.Available {
			return nil, fmt.Errorf("%w (id %d)", ErrMenuItemUnavailable, id)
		}
	}
	return byID, nil
}

func ensureSeats(tx *gorm.DB, sessionID uint, items []ItemInput) error {
	want := map[uint]struct{}{}
	for _, it := range items {
		if it.SeatID != nil {
			want[*it.SeatID] = struct{}{}
		}
	}
	if len(want) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(want))
	for id := range want {
		ids = append(ids, id)
	}

	var n int64
	if err := tx.Model(&models.Seat{}).Where("session_id = ? AND id IN ?", sessionID, ids).
		Count(&n).Error; err != nil {
		return err
	}
	if int(n) != len(ids) {
		return ErrSeatNotFound
	}
	return nil
}

func loadOrder(db *gorm.DB, merchantID, orderID uint) (*models.Order, error) {
	var order models.Order
	err := db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("id = ? AND merchant_id = ?", orderID, merchantID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWaveNotFound
		}
		return nil, err
	}
	return &order, nil
}

func findItem(tx *gorm.DB, merchantID, itemID uint) (*models.OrderItem, error) {
	var item models.OrderItem
	if err := tx.Where("id = ? AND merchant_id = ?", itemID, merchantID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// VoidItem takes an item off the bill. The row stays for the audit trail.
func VoidItem(db *gorm.DB, merchantID, itemID, userID uint, reason string) (*models.OrderItem, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, invalid("reason is required")
	}

	var item *models.OrderItem
	err := database.WithTx(db, func(tx *gorm.DB) error {
		var err error
		if item, err = findItem(tx, merchantID, itemID); err != nil {
			return err
		}
		if _, err := LockOpenSession(tx, merchantID, item.SessionID); err != nil {
			return err
		}
		if item.Voided {
			return ErrItemAlreadyVoided
		}

		at := now()
		res := tx.Model(&models.OrderItem{}).
			Where("id = ? AND voided = ?", item.ID, false).
			Updates(map[string]interface{}{
				"voided":      true,
				"void_reason": reason,
				"voided_at":   at,
				"voided_by":   userID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrItemAlreadyVoided
		}
		item.Voided = true
		item.VoidReason = reason
		item.VoidedAt = &at
		item.VoidedBy = &userID

		if err := RecalculateTotals(tx, item.SessionID); err != nil {
			return err
		}

		oid := item.OrderID
		return RecordEvent(tx, EventOptions{
			MerchantID:  merchantID,
			SessionID:   item.SessionID,
			OrderID:     &oid,
			UserID:      userID,
			Type:        models.EventItemVoided,
			Description: fmt.Sprintf("%s voided", item.Name),
			Data:        map[string]any{"item_id": item.ID, "reason": reason, "line_total": item.LineTotal},
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.ItemsVoided.Inc()
	return item, nil
}

// RefireItem sends one already fired item to the kitchen again. The wave status is not touched.
func RefireItem(db *gorm.DB, merchantID, itemID, userID uint, reason string) (*models.OrderItem, error) {
	var (
		item  *models.OrderItem
		order models.Order
		loc   uint
		at    = now()
	)
	err := database.WithTx(db, func(tx *gorm.DB) error {
		var err error
		if item, err = findItem(tx, merchantID, itemID); err != nil {
			return err
		}
		session, err := LockOpenSession(tx, merchantID, item.SessionID)
		if err != nil {
			return err
		}
		loc = session.LocationID

		if item.Voided {
			return ErrItemVoided
		}
		if err := tx.First(&order, item.OrderID).Error; err != nil {
			return err
		}
		if order.Status == models.WaveHeld || item.LastFiredAt == nil {
			return ErrItemNotFired
		}

		if err := tx.Model(&models.OrderItem{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
			"status":        models.WaveSent,
			"refire_count":  gorm.Expr("refire_count + 1"),
			"last_fired_at": at,
		}).Error; err != nil {
			return err
		}
		item.Status = models.WaveSent
		item.RefireCount++
		item.LastFiredAt = &at

		oid := order.ID
		return RecordEvent(tx, EventOptions{
			MerchantID:  merchantID,
			SessionID:   item.SessionID,
			OrderID:     &oid,
			UserID:      userID,
			Type:        models.EventItemRefired,
			Description: fmt.Sprintf("%s refired", item.Name),
			Data:        map[string]any{"item_id": item.ID, "reason": strings.TrimSpace(reason), "refire_count": item.RefireCount},
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.ItemsRefired.Inc()
	publish(loc, broker.EventItemRefired, map[string]any{
		"session_id":   item.SessionID,
		"order_id":     item.OrderID,
		"wave":         order.Wave,
		"item_id":      item.ID,
		"name":         item.Name,
		"station":      item.Station,
		"quantity":     item.Quantity,
		"notes":        item.Notes,
		"refire_count": item.RefireCount,
		"reason":       strings.TrimSpace(reason),
	})
	return item, nil
}
