package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Reconciler periodically rolls back orders whose upload never finished,
// for example because the process died mid-request.
type Reconciler struct {
	orders    OrderStore
	cleaner   *orderCleaner
	interval  time.Duration
	staleAge  time.Duration
	batchSize int
	now       func() time.Time
	logger    *zap.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

func NewReconciler(orders OrderStore, files FileStore, bucket string, interval, staleAge time.Duration, logger *zap.Logger) *Reconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Reconciler{
		orders:    orders,
		cleaner:   newOrderCleaner(orders, files, bucket, logger),
		interval:  interval,
		staleAge:  staleAge,
		batchSize: 50,
		now:       time.Now,
		logger:    logger,
	}
}

func (r *Reconciler) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go r.loop(runCtx)
}

// Stop cancels the loop and waits for the current pass to finish.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Reconciler) loop(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce compensates one batch of stale uploads and returns how many were
// rolled back.
func (r *Reconciler) RunOnce(ctx context.Context) int {
	stale, err := r.orders.StaleUploads(ctx, r.now().Add(-r.staleAge), r.batchSize)
	if err != nil {
		r.logger.Error("fetch stale uploads failed", zap.Error(err))
		return 0
	}

	repaired := 0
	for i := range stale {
		order := &stale[i]
		if err := r.cleaner.Compensate(ctx, order, nil); err != nil {
			r.logger.Error("reconcile order failed",
				zap.String("order_number", order.OrderNumber),
				zap.Error(err))
			continue
		}
		r.logger.Info("rolled back stale upload", zap.String("order_number", order.OrderNumber))
		repaired++
	}
	return repaired
}
