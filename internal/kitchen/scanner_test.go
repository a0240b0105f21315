package kitchen

import (
	"context"
	"sync"
	"testing"
	"time"

	"restoran-pos/internal/broker"
	"restoran-pos/internal/metrics"
	"restoran-pos/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, _ uint, event string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func TestScannerFlagsNewDelaysOnce(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	pub := &recordingPublisher{}
	prev := broker.Default
	broker.Default = pub
	t.Cleanup(func() { broker.Default = prev })

	orderCols := []string{"id", "merchant_id", "session_id", "wave", "status", "fired_at", "delay_flagged_at"}
	flaggedAt := now.Add(-time.Minute)

	mock.ExpectQuery(`SELECT "id","merchant_id","kitchen_delay_minutes" FROM "locations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "merchant_id", "kitchen_delay_minutes"}).AddRow(3, 7, 10))
	mock.ExpectQuery(`SELECT .* FROM "orders" JOIN sessions`).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow(20, 7, 1, 1, "sent", now.Add(-30*time.Minute), nil).
			AddRow(21, 7, 2, 1, "cooking", now.Add(-25*time.Minute), flaggedAt).
			AddRow(22, 7, 2, 2, "sent", now.Add(-2*time.Minute), nil))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "orders" SET "delay_flagged_at"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "session_events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(100))
	mock.ExpectCommit()

	s := &DelayScanner{
		DB:       func() *gorm.DB { return db },
		Fallback: 15 * time.Minute,
		Now:      func() time.Time { return now },
	}
	n, err := s.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{broker.EventWaveDelayed}, pub.events)
	assert.Equal(t, float64(2), promtest.ToFloat64(metrics.DelayedWaves.WithLabelValues("3")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScannerSkipsWaveFlaggedConcurrently(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	pub := &recordingPublisher{}
	prev := broker.Default
	broker.Default = pub
	t.Cleanup(func() { broker.Default = prev })

	mock.ExpectQuery(`FROM "locations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "merchant_id", "kitchen_delay_minutes"}).AddRow(4, 7, 0))
	mock.ExpectQuery(`FROM "orders" JOIN sessions`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "merchant_id", "session_id", "wave", "status", "fired_at"}).
			AddRow(30, 7, 5, 1, "sent", now.Add(-time.Hour)))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "orders" SET "delay_flagged_at"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	s := &DelayScanner{DB: func() *gorm.DB { return db }, Fallback: 15 * time.Minute, Now: func() time.Time { return now }}
	n, err := s.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, pub.events)
	assert.NoError(t, mock.ExpectationsWereMet())
}
