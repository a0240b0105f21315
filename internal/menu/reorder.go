package menu

import (
	"context"

	"restoran-pos/internal/httpx"
	"restoran-pos/internal/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const reorderParallelism = 8

// Reorder sets sort_order to the position of each id. Updates run in parallel without a
// transaction; a failure leaves the rows written so far and the first error is returned.
// newModel is called per update since gorm writes updated_at back into the model.
func Reorder(ctx context.Context, db *gorm.DB, newModel func() any, merchantID uint, ids []uint) error {
	if len(ids) == 0 {
		return httpx.BadRequest("ids is required")
	}
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup || id == 0 {
			return httpx.BadRequest("ids must be unique and non-zero")
		}
		seen[id] = struct{}{}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reorderParallelism)
	for pos, id := range ids {
		pos, id := pos, id
		g.Go(func() error {
			return db.WithContext(gctx).Model(newModel()).
				Where("id = ? AND merchant_id = ?", id, merchantID).
				Update("sort_order", pos).Error
		})
	}
	err := g.Wait()
	// rows written before a failure are already visible
	Invalidate(ctx, merchantID)
	return err
}

func ReorderCategories(ctx context.Context, db *gorm.DB, merchantID uint, ids []uint) error {
	return Reorder(ctx, db, func() any { return &models.MenuCategory{} }, merchantID, ids)
}

func ReorderItems(ctx context.Context, db *gorm.DB, merchantID uint, ids []uint) error {
	return Reorder(ctx, db, func() any { return &models.MenuItem{} }, merchantID, ids)
}
