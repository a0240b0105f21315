package dashboard

import (
	"sort"
	"time"

	"restoran-pos/internal/auth"
	"restoran-pos/internal/database"
	"restoran-pos/internal/httpx"
	"restoran-pos/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

const maxBuckets = 366

type ChartPoint struct {
	Label string `json:"label"` // bucket start, YYYY-MM-DD
	Cash  int64  `json:"cash"`
	Card  int64  `json:"card"`
	Other int64  `json:"other"`
	Tips  int64  `json:"tips"`
	Total int64  `json:"total"`
}

type ChartTotals struct {
	Cash  int64 `json:"cash"`
	Card  int64 `json:"card"`
	Other int64 `json:"other"`
	Tips  int64 `json:"tips"`
	Total int64 `json:"total"`
}

type SalesChart struct {
	LocationID  uint         `json:"location_id"`
	Period      Period       `json:"period"`
	From        string       `json:"from"`
	To          string       `json:"to"`
	Points      []ChartPoint `json:"points"`
	GrandTotals ChartTotals  `json:"grand_totals"`
}

// bucketRow is one (bucket, method) aggregate of payments.
type bucketRow struct {
	Bucket time.Time `gorm:"column:bucket"`
	Method string    `gorm:"column:method"`
	Amount int64     `gorm:"column:amount"`
	Tips   int64     `gorm:"column:tips"`
}

func defaultCount(p Period) int {
	switch p {
	case PeriodWeekly:
		return 8
	case PeriodMonthly:
		return 12
	}
	return 7
}

// Window returns [start, end) covering count buckets ending with the one that contains now.
func Window(p Period, count int, now time.Time) (time.Time, time.Time) {
	loc := now.Location()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	switch p {
	case PeriodWeekly:
		// weeks start on Monday, like date_trunc('week')
		offset := (int(day.Weekday()) + 6) % 7
		week := day.AddDate(0, 0, -offset)
		return week.AddDate(0, 0, -7*(count-1)), week.AddDate(0, 0, 7)
	case PeriodMonthly:
		month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return month.AddDate(0, -(count - 1), 0), month.AddDate(0, 1, 0)
	}
	return day.AddDate(0, 0, -(count - 1)), day.AddDate(0, 0, 1)
}

func truncUnit(p Period) string {
	switch p {
	case PeriodWeekly:
		return "week"
	case PeriodMonthly:
		return "month"
	}
	return "day"
}

// Aggregate folds per-method rows into ordered points and grand totals.
func Aggregate(rows []bucketRow) ([]ChartPoint, ChartTotals) {
	byLabel := make(map[string]*ChartPoint)
	for _, r := range rows {
		label := r.Bucket.Format("2006-01-02")
		p, ok := byLabel[label]
		if !ok {
			p = &ChartPoint{Label: label}
			byLabel[label] = p
		}
		switch models.PaymentMethod(r.Method) {
		case models.PaymentMethodCash:
			p.Cash += r.Amount
		case models.PaymentMethodCard:
			p.Card += r.Amount
		default:
			p.Other += r.Amount
		}
		p.Tips += r.Tips
		p.Total += r.Amount
	}

	points := make([]ChartPoint, 0, len(byLabel))
	for _, p := range byLabel {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Label < points[j].Label })

	var grand ChartTotals
	for _, p := range points {
		grand.Cash += p.Cash
		grand.Card += p.Card
		grand.Other += p.Other
		grand.Tips += p.Tips
		grand.Total += p.Total
	}
	return points, grand
}

func BuildSalesChart(db *gorm.DB, merchantID, locationID uint, p Period, count int, now time.Time) (*SalesChart, error) {
	start, end := Window(p, count, now)
	tz := now.Location().String()

	var rows []bucketRow
	err := db.Raw(`
		SELECT date_trunc(?, created_at AT TIME ZONE ?) AS bucket,
		       method,
		       SUM(amount) AS amount,
		       SUM(tip) AS tips
		FROM payments
		WHERE merchant_id = ? AND location_id = ? AND created_at >= ? AND created_at < ?
		GROUP BY bucket, method
		ORDER BY bucket ASC`,
		truncUnit(p), tz, merchantID, locationID, start, end).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	points, grand := Aggregate(rows)
	return &SalesChart{
		LocationID:  locationID,
		Period:      p,
		From:        start.Format("2006-01-02"),
		To:          end.AddDate(0, 0, -1).Format("2006-01-02"),
		Points:      points,
		GrandTotals: grand,
	}, nil
}

// GET /api/dashboard/sales-chart?period=daily&count=7&location_id=1
func SalesChartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		locationID, err := auth.LocationID(c)
		if err != nil {
			return err
		}

		p := Period(c.Query("period", string(PeriodDaily)))
		switch p {
		case PeriodDaily, PeriodWeekly, PeriodMonthly:
		default:
			return httpx.BadRequest("period must be daily, weekly or monthly")
		}
		count := c.QueryInt("count", defaultCount(p))
		if count <= 0 || count > maxBuckets {
			return httpx.BadRequest("count is invalid")
		}

		merchantID := auth.MerchantID(c)
		db := database.DB.WithContext(c.UserContext())
		tz := database.MerchantTimezone(db, merchantID)

		chart, err := BuildSalesChart(db, merchantID, locationID, p, count, time.Now().In(tz))
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, chart)
	}
}
