package pos

import (
	"restoran-pos/internal/models"

	"gorm.io/gorm"
)

type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

func LineTotal(quantity int, unitPrice int64) int64 {
	return int64(quantity) * unitPrice
}

// TaxFor rounds half up. bps is basis points (825 = 8.25%).
func TaxFor(subtotal int64, bps int) int64 {
	if subtotal <= 0 || bps <= 0 {
		return 0
	}
	return (subtotal*int64(bps) + 5000) / 10000
}

// ComputeOrderTotals sums non-voided line totals.
func ComputeOrderTotals(items []models.OrderItem, bps int) Totals {
	var t Totals
	for _, it := range items {
		if it.Voided {
			continue
		}
		t.Subtotal += it.LineTotal
	}
	t.Tax = TaxFor(t.Subtotal, bps)
	t.Total = t.Subtotal + t.Tax
	return t
}

func SumOrders(orders []models.Order) Totals {
	var t Totals
	for _, o := range orders {
		t.Subtotal += o.Subtotal
		t.Tax += o.Tax
		t.Total += o.Total
	}
	return t
}

// RecalculateTotals rebuilds every order total of the session from its items, then rolls
// the orders and payments up into the session row. Totals are never edited any other way.
func RecalculateTotals(tx *gorm.DB, sessionID uint) error {
	var session models.DiningSession
	if err := tx.Select("id", "location_id").First(&session, sessionID).Error; err != nil {
		return err
	}

	var location models.Location
	if err := tx.Select("id", "tax_rate_bps").First(&location, session.LocationID).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := tx.Preload("Items").Where("session_id = ?", sessionID).Find(&orders).Error; err != nil {
		return err
	}

	for i := range orders {
		t := ComputeOrderTotals(orders[i].Items, location.TaxRateBps)
		if t.Subtotal == orders[i].Subtotal && t.Tax == orders[i].Tax && t.Total == orders[i].Total {
			continue
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", orders[i].ID).Updates(map[string]interface{}{
			"subtotal": t.Subtotal,
			"tax":      t.Tax,
			"total":    t.Total,
		}).Error; err != nil {
			return err
		}
		orders[i].Subtotal, orders[i].Tax, orders[i].Total = t.Subtotal, t.Tax, t.Total
	}

	sum := SumOrders(orders)

	var paid int64
	if err := tx.Model(&models.Payment{}).
		Where("session_id = ?", sessionID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&paid).Error; err != nil {
		return err
	}

	return tx.Model(&models.DiningSession{}).Where("id = ?", sessionID).Updates(map[string]interface{}{
		"subtotal": sum.Subtotal,
		"tax":      sum.Tax,
		"total":    sum.Total,
		"paid":     paid,
	}).Error
}
