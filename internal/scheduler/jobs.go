package scheduler

import (
	"context"
	"time"

	"restoran-pos/internal/idempotency"
	"restoran-pos/internal/kitchen"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IdempotencyPurge drops expired idempotency rows.
func IdempotencyPurge(db func() *gorm.DB, spec string, log *zap.Logger) Job {
	return Job{
		Name:    "idempotency_purge",
		Spec:    spec,
		Timeout: 2 * time.Minute,
		Run: func(ctx context.Context) error {
			n, err := idempotency.PurgeExpired(db().WithContext(ctx), time.Now())
			if err != nil {
				return err
			}
			if n > 0 {
				log.Info("expired idempotency keys purged", zap.Int64("rows", n))
			}
			return nil
		},
	}
}

func KitchenDelayScan(scanner *kitchen.DelayScanner, spec string, log *zap.Logger) Job {
	return Job{
		Name:    "kitchen_delay_scan",
		Spec:    spec,
		Timeout: 45 * time.Second,
		Run: func(ctx context.Context) error {
			n, err := scanner.Run(ctx)
			if err != nil {
				return err
			}
			if n > 0 {
				log.Info("delayed waves flagged", zap.Int("waves", n))
			}
			return nil
		},
	}
}
