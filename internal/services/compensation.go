package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"renovirt-backend/internal/models"
	"renovirt-backend/internal/supabase"
)

// orderCleaner undoes a partially created order: stored objects first, then
// the order row with its satellites and the credit deduction.
type orderCleaner struct {
	orders OrderStore
	files  FileStore
	bucket string
	logger *zap.Logger
}

func newOrderCleaner(orders OrderStore, files FileStore, bucket string, logger *zap.Logger) *orderCleaner {
	return &orderCleaner{orders: orders, files: files, bucket: bucket, logger: logger}
}

// Compensate removes known paths plus whatever is found under the order
// folder. Both steps are idempotent, so it can run again after a crash.
func (c *orderCleaner) Compensate(ctx context.Context, order *models.Order, known []string) error {
	paths := make(map[string]struct{}, len(known))
	for _, p := range known {
		paths[p] = struct{}{}
	}

	prefix := supabase.OrderPrefix(order.UserID, order.ID)
	for _, dir := range []string{prefix, prefix + "watermark/"} {
		found, err := c.files.ListFiles(c.bucket, dir)
		if err != nil {
			c.logger.Warn("listing order files failed", zap.String("prefix", dir), zap.Error(err))
			continue
		}
		for _, p := range found {
			paths[p] = struct{}{}
		}
	}

	if len(paths) > 0 {
		list := make([]string, 0, len(paths))
		for p := range paths {
			list = append(list, p)
		}
		if err := c.files.RemoveFiles(c.bucket, list); err != nil {
			return fmt.Errorf("failed to remove order files: %w", err)
		}
	}

	if err := c.orders.CompensateOrder(ctx, order.ID); err != nil {
		return fmt.Errorf("failed to roll back order: %w", err)
	}
	return nil
}
