package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"renovirt-backend/internal/models"
)

// UploadJob is one object to store together with the metadata row that
// records it.
type UploadJob struct {
	Image       models.OrderImage
	Data        []byte
	ContentType string
}

// Uploader stores order files concurrently. Each file is retried on its
// own; the first file that still fails cancels the rest.
type Uploader struct {
	files       FileStore
	orders      OrderStore
	bucket      string
	concurrency int
	attempts    int
	backoff     time.Duration
	logger      *zap.Logger
}

func NewUploader(files FileStore, orders OrderStore, bucket string, concurrency, attempts int, logger *zap.Logger) *Uploader {
	if attempts <= 0 {
		attempts = 1
	}
	return &Uploader{
		files:       files,
		orders:      orders,
		bucket:      bucket,
		concurrency: concurrency,
		attempts:    attempts,
		backoff:     200 * time.Millisecond,
		logger:      logger,
	}
}

// WithBackoff returns a copy of u using base as the first retry delay.
// A non-positive base keeps the current delay.
func (u *Uploader) WithBackoff(base time.Duration) *Uploader {
	cp := *u
	if base > 0 {
		cp.backoff = base
	}
	return &cp
}

func (u *Uploader) Upload(ctx context.Context, jobs []UploadJob) error {
	g, gctx := errgroup.WithContext(ctx)
	if u.concurrency > 0 {
		g.SetLimit(u.concurrency)
	}

	for i := range jobs {
		job := &jobs[i]
		g.Go(func() error {
			return u.uploadOne(gctx, job)
		})
	}
	return g.Wait()
}

func (u *Uploader) uploadOne(ctx context.Context, job *UploadJob) error {
	backoff := retry.WithMaxRetries(uint64(u.attempts-1), retry.NewExponential(u.backoff))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := u.files.UploadFile(u.bucket, job.Image.StoragePath, job.Data, job.ContentType); err != nil {
			u.logger.Warn("upload attempt failed",
				zap.String("path", job.Image.StoragePath),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return retry.RetryableError(err)
		}
		if err := u.orders.CreateOrderImage(ctx, &job.Image); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", job.Image.FileName, err)
	}
	return nil
}
