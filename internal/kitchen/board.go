package kitchen

import (
	"errors"
	"time"

	"restoran-pos/internal/models"
	"restoran-pos/internal/pos"

	"gorm.io/gorm"
)

type Ticket struct {
	OrderID        uint               `json:"order_id"`
	SessionID      uint               `json:"session_id"`
	Wave           int                `json:"wave"`
	Table          string             `json:"table"`
	Status         models.WaveStatus  `json:"status"`
	FiredAt        *time.Time         `json:"fired_at"`
	ElapsedMinutes int                `json:"elapsed_minutes"`
	Delayed        bool               `json:"delayed"`
	Items          []models.OrderItem `json:"items"`
}

// RefireTicket is a single refired item whose wave already left the kitchen.
type RefireTicket struct {
	Item           models.OrderItem `json:"item"`
	Wave           int              `json:"wave"`
	Table          string           `json:"table"`
	ElapsedMinutes int              `json:"elapsed_minutes"`
}

type BoardView struct {
	LocationID   uint           `json:"location_id"`
	ThresholdMin int            `json:"threshold_minutes"`
	Tickets      []Ticket       `json:"tickets"`
	Refires      []RefireTicket `json:"refires"`
	GeneratedAt  time.Time      `json:"generated_at"`
}

var boardStatuses = []models.WaveStatus{models.WaveSent, models.WaveCooking, models.WaveReady}

// Board lists fired waves the kitchen still owns, oldest first.
func Board(db *gorm.DB, merchantID, locationID uint, now time.Time, fallback time.Duration) (*BoardView, error) {
	var location models.Location
	if err := db.Where("id = ? AND merchant_id = ?", locationID, merchantID).First(&location).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pos.ErrLocationNotFound
		}
		return nil, err
	}
	threshold := Threshold(location, fallback)

	var orders []models.Order
	if err := db.Model(&models.Order{}).
		Joins("JOIN sessions ON sessions.id = orders.session_id").
		Where("orders.merchant_id = ? AND sessions.location_id = ? AND orders.status IN ?",
			merchantID, locationID, boardStatuses).
		Preload("Items", "voided = ?", false).
		Order("orders.fired_at ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}

	var refired []models.OrderItem
	if err := db.Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN sessions ON sessions.id = orders.session_id").
		Where("order_items.merchant_id = ? AND sessions.location_id = ? AND orders.status = ?",
			merchantID, locationID, models.WaveServed).
		Where("order_items.refire_count > 0 AND order_items.voided = ? AND order_items.status IN ?",
			false, boardStatuses).
		Order("order_items.last_fired_at ASC").
		Find(&refired).Error; err != nil {
		return nil, err
	}

	labels, waves, err := sessionLabels(db, orders, refired)
	if err != nil {
		return nil, err
	}

	view := &BoardView{
		LocationID:   locationID,
		ThresholdMin: int(threshold / time.Minute),
		Tickets:      make([]Ticket, 0, len(orders)),
		Refires:      make([]RefireTicket, 0, len(refired)),
		GeneratedAt:  now,
	}
	for _, o := range orders {
		view.Tickets = append(view.Tickets, Ticket{
			OrderID:        o.ID,
			SessionID:      o.SessionID,
			Wave:           o.Wave,
			Table:          labels[o.SessionID],
			Status:         o.Status,
			FiredAt:        o.FiredAt,
			ElapsedMinutes: elapsedMinutes(o.FiredAt, now),
			Delayed:        IsDelayed(o, now, threshold),
			Items:          o.Items,
		})
	}
	for _, it := range refired {
		view.Refires = append(view.Refires, RefireTicket{
			Item:           it,
			Wave:           waves[it.OrderID],
			Table:          labels[it.SessionID],
			ElapsedMinutes: elapsedMinutes(it.LastFiredAt, now),
		})
	}
	return view, nil
}

// sessionLabels resolves table labels per session and wave numbers per refired order.
func sessionLabels(db *gorm.DB, orders []models.Order, refired []models.OrderItem) (map[uint]string, map[uint]int, error) {
	labels := map[uint]string{}
	waves := map[uint]int{}

	ids := map[uint]struct{}{}
	for _, o := range orders {
		ids[o.SessionID] = struct{}{}
	}
	orderIDs := make([]uint, 0, len(refired))
	for _, it := range refired {
		ids[it.SessionID] = struct{}{}
		orderIDs = append(orderIDs, it.OrderID)
	}
	if len(ids) == 0 {
		return labels, waves, nil
	}

	sessionIDs := make([]uint, 0, len(ids))
	for id := range ids {
		sessionIDs = append(sessionIDs, id)
	}
	var sessions []models.DiningSession
	if err := db.Preload("Table").Where("id IN ?", sessionIDs).Find(&sessions).Error; err != nil {
		return nil, nil, err
	}
	for _, s := range sessions {
		if s.Table != nil {
			labels[s.ID] = s.Table.Label
		}
	}

	if len(orderIDs) > 0 {
		var parents []models.Order
		if err := db.Select("id", "wave").Where("id IN ?", orderIDs).Find(&parents).Error; err != nil {
			return nil, nil, err
		}
		for _, o := range parents {
			waves[o.ID] = o.Wave
		}
	}
	return labels, waves, nil
}
