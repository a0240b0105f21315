package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"restoran-pos/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestAddRejectsBadSpec(t *testing.T) {
	s := New(nil)
	err := s.Add(Job{Name: "broken", Spec: "every tuesday", Run: func(context.Context) error { return nil }})
	assert.ErrorContains(t, err, "broken")
	assert.Error(t, s.Add(Job{Name: "empty", Spec: "@every 1m"}))
	assert.Zero(t, s.Len())
}

func TestJobRunsAndStops(t *testing.T) {
	s := New(zap.NewNop())
	var runs atomic.Int32
	require.NoError(t, s.Add(Job{Name: "tick", Spec: "@every 1s", Run: func(context.Context) error {
		runs.Add(1)
		return errors.New("logged, not fatal")
	}}))
	assert.Equal(t, 1, s.Len())

	s.Start()
	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestIdempotencyPurgeJob(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	mock.ExpectExec(`DELETE FROM "pos_idempotency_keys" WHERE expires_at`).
		WillReturnResult(sqlmock.NewResult(0, 4))

	job := IdempotencyPurge(func() *gorm.DB { return db }, "@every 1h", zap.NewNop())
	assert.Equal(t, "idempotency_purge", job.Name)
	require.NoError(t, job.Run(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
