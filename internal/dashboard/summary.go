package dashboard

import (
	"time"

	"restoran-pos/internal/auth"
	"restoran-pos/internal/database"
	"restoran-pos/internal/httpx"
	"restoran-pos/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type DaySummary struct {
	LocationID     uint   `json:"location_id"`
	Date           string `json:"date"`
	OpenSessions   int64  `json:"open_sessions"`
	ClosedSessions int64  `json:"closed_sessions"`
	Covers         int64  `json:"covers"`
	GrossSales     int64  `json:"gross_sales"`
	VoidedAmount   int64  `json:"voided_amount"`
	AverageCheck   int64  `json:"average_check"`
}

func averageCheck(gross, closed int64) int64 {
	if closed == 0 {
		return 0
	}
	return gross / closed
}

// Summarize reports one business day of a location. day is midnight in the merchant timezone.
func Summarize(db *gorm.DB, merchantID, locationID uint, day time.Time) (*DaySummary, error) {
	start := day
	end := day.AddDate(0, 0, 1)
	out := &DaySummary{LocationID: locationID, Date: day.Format("2006-01-02")}

	if err := db.Model(&models.DiningSession{}).
		Where("merchant_id = ? AND location_id = ? AND status = ?", merchantID, locationID, models.SessionStatusOpen).
		Count(&out.OpenSessions).Error; err != nil {
		return nil, err
	}

	var closed struct {
		Sessions int64
		Covers   int64
		Gross    int64
	}
	if err := db.Raw(`
		SELECT COUNT(*) AS sessions,
		       COALESCE(SUM(guest_count), 0) AS covers,
		       COALESCE(SUM(total), 0) AS gross
		FROM sessions
		WHERE merchant_id = ? AND location_id = ? AND status = ? AND closed_at >= ? AND closed_at < ?`,
		merchantID, locationID, models.SessionStatusClosed, start, end).
		Scan(&closed).Error; err != nil {
		return nil, err
	}

	if err := db.Raw(`
		SELECT COALESCE(SUM(oi.line_total), 0)
		FROM order_items oi
		JOIN sessions s ON s.id = oi.session_id
		WHERE oi.merchant_id = ? AND s.location_id = ? AND oi.voided = true
		  AND oi.voided_at >= ? AND oi.voided_at < ?`,
		merchantID, locationID, start, end).
		Scan(&out.VoidedAmount).Error; err != nil {
		return nil, err
	}

	out.ClosedSessions = closed.Sessions
	out.Covers = closed.Covers
	out.GrossSales = closed.Gross
	out.AverageCheck = averageCheck(closed.Gross, closed.Sessions)
	return out, nil
}

// GET /api/dashboard/summary?date=YYYY-MM-DD&location_id=
func SummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		locationID, err := auth.LocationID(c)
		if err != nil {
			return err
		}
		merchantID := auth.MerchantID(c)
		db := database.DB.WithContext(c.UserContext())
		tz := database.MerchantTimezone(db, merchantID)

		day, ok, err := httpx.QueryDate(c, "date", tz)
		if err != nil {
			return err
		}
		if !ok {
			n := time.Now().In(tz)
			day = time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, tz)
		}

		s, err := Summarize(db, merchantID, locationID, day)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, s)
	}
}
