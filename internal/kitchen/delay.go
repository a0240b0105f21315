package kitchen

import (
	"time"

	"restoran-pos/internal/models"
	"restoran-pos/internal/pos"
)

// DetectDelays returns the waves still in the kitchen whose fired_at + threshold is before now.
func DetectDelays(orders []models.Order, now time.Time, threshold time.Duration) []models.Order {
	var delayed []models.Order
	for _, o := range orders {
		if IsDelayed(o, now, threshold) {
			delayed = append(delayed, o)
		}
	}
	return delayed
}

func IsDelayed(o models.Order, now time.Time, threshold time.Duration) bool {
	if !pos.IsInKitchen(o.Status) || o.FiredAt == nil {
		return false
	}
	return o.FiredAt.Add(threshold).Before(now)
}

// Threshold is the location override, or fallback when the location has none.
func Threshold(loc models.Location, fallback time.Duration) time.Duration {
	if loc.KitchenDelayMinutes > 0 {
		return time.Duration(loc.KitchenDelayMinutes) * time.Minute
	}
	return fallback
}

func elapsedMinutes(since *time.Time, now time.Time) int {
	if since == nil || now.Before(*since) {
		return 0
	}
	return int(now.Sub(*since) / time.Minute)
}
