package kitchen

import (
	"context"
	"fmt"
	"time"

	"restoran-pos/internal/broker"
	"restoran-pos/internal/metrics"
	"restoran-pos/internal/models"
	"restoran-pos/internal/pos"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DelayScanner flags late waves once per wave. Run is called by the scheduler.
type DelayScanner struct {
	DB       func() *gorm.DB
	Fallback time.Duration
	Now      func() time.Time
}

type DelayedWave struct {
	MerchantID uint      `json:"merchant_id"`
	LocationID uint      `json:"location_id"`
	SessionID  uint      `json:"session_id"`
	OrderID    uint      `json:"order_id"`
	Wave       int       `json:"wave"`
	FiredAt    time.Time `json:"fired_at"`
	Minutes    int       `json:"minutes"`
}

// Run returns how many waves were newly flagged.
func (s *DelayScanner) Run(ctx context.Context) (int, error) {
	nowFn := s.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	db := s.DB().WithContext(ctx)

	var locations []models.Location
	if err := db.Select("id", "merchant_id", "kitchen_delay_minutes").Find(&locations).Error; err != nil {
		return 0, err
	}

	flagged := 0
	for _, loc := range locations {
		n, err := s.scanLocation(db, loc, nowFn())
		if err != nil {
			return flagged, fmt.Errorf("location %d: %w", loc.ID, err)
		}
		flagged += n
	}
	return flagged, nil
}

func (s *DelayScanner) scanLocation(db *gorm.DB, loc models.Location, now time.Time) (int, error) {
	threshold := Threshold(loc, s.Fallback)

	var orders []models.Order
	if err := db.Model(&models.Order{}).
		Joins("JOIN sessions ON sessions.id = orders.session_id").
		Where("sessions.location_id = ? AND orders.status IN ?", loc.ID,
			[]models.WaveStatus{models.WaveSent, models.WaveCooking}).
		Find(&orders).Error; err != nil {
		return 0, err
	}

	delayed := DetectDelays(orders, now, threshold)
	metrics.SetDelayedWaves(loc.ID, len(delayed))

	flagged := 0
	for _, o := range delayed {
		if o.DelayFlaggedAt != nil {
			continue
		}
		ok, err := flag(db, o, now)
		if err != nil {
			return flagged, err
		}
		if !ok {
			continue
		}
		flagged++

		ev := DelayedWave{
			MerchantID: o.MerchantID,
			LocationID: loc.ID,
			SessionID:  o.SessionID,
			OrderID:    o.ID,
			Wave:       o.Wave,
			FiredAt:    *o.FiredAt,
			Minutes:    elapsedMinutes(o.FiredAt, now),
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := broker.Default.Publish(ctx, loc.ID, broker.EventWaveDelayed, ev); err != nil {
			zap.L().Warn("wave delay could not be published", zap.Uint("order_id", o.ID), zap.Error(err))
		}
		cancel()
	}
	return flagged, nil
}

// flag stamps delay_flagged_at and records the session event in one transaction.
func flag(db *gorm.DB, o models.Order, now time.Time) (bool, error) {
	flagged := false
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND delay_flagged_at IS NULL", o.ID).
			Update("delay_flagged_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		flagged = true

		oid := o.ID
		return pos.RecordEvent(tx, pos.EventOptions{
			MerchantID:  o.MerchantID,
			SessionID:   o.SessionID,
			OrderID:     &oid,
			Type:        models.EventWaveDelayed,
			Description: fmt.Sprintf("Wave %d is running late (%d min)", o.Wave, elapsedMinutes(o.FiredAt, now)),
			Data:        map[string]any{"fired_at": o.FiredAt, "status": o.Status},
		})
	})
	return flagged, err
}
