package dashboard

import (
	"testing"
	"time"

	"restoran-pos/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow(t *testing.T) {
	// Thursday
	now := time.Date(2026, 3, 12, 15, 30, 0, 0, time.UTC)

	start, end := Window(PeriodDaily, 7, now)
	assert.Equal(t, time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC), end)

	start, end = Window(PeriodWeekly, 2, now)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), end)

	start, end = Window(PeriodMonthly, 3, now)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestWindowSundayBelongsToPreviousWeek(t *testing.T) {
	sunday := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	start, _ := Window(PeriodWeekly, 1, sunday)
	assert.Equal(t, time.Monday, start.Weekday())
	assert.Equal(t, 9, start.Day())
}

func TestAggregate(t *testing.T) {
	d1 := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)

	points, grand := Aggregate([]bucketRow{
		{Bucket: d2, Method: "card", Amount: 4000, Tips: 500},
		{Bucket: d1, Method: "cash", Amount: 1500},
		{Bucket: d1, Method: "card", Amount: 2500, Tips: 300},
		{Bucket: d2, Method: "other", Amount: 100},
	})

	require.Len(t, points, 2)
	assert.Equal(t, ChartPoint{Label: "2026-03-11", Cash: 1500, Card: 2500, Tips: 300, Total: 4000}, points[0])
	assert.Equal(t, ChartPoint{Label: "2026-03-12", Card: 4000, Other: 100, Tips: 500, Total: 4100}, points[1])
	assert.Equal(t, ChartTotals{Cash: 1500, Card: 6500, Other: 100, Tips: 800, Total: 8100}, grand)
}

func TestAggregateEmpty(t *testing.T) {
	points, grand := Aggregate(nil)
	assert.NotNil(t, points)
	assert.Empty(t, points)
	assert.Zero(t, grand.Total)
}

func TestSummarize(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	day := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`FROM sessions`).
		WithArgs(7, 2, "closed", day, day.AddDate(0, 0, 1)).
		WillReturnRows(sqlmock.NewRows([]string{"sessions", "covers", "gross"}).AddRow(4, 11, 25000))
	mock.ExpectQuery(`FROM order_items oi`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(900))

	s, err := Summarize(db, 7, 2, day)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-12", s.Date)
	assert.EqualValues(t, 3, s.OpenSessions)
	assert.EqualValues(t, 4, s.ClosedSessions)
	assert.EqualValues(t, 11, s.Covers)
	assert.EqualValues(t, 25000, s.GrossSales)
	assert.EqualValues(t, 900, s.VoidedAmount)
	assert.EqualValues(t, 6250, s.AverageCheck)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAverageCheckWithoutClosedSessions(t *testing.T) {
	assert.Zero(t, averageCheck(0, 0))
	assert.EqualValues(t, 333, averageCheck(1000, 3))
}
