package services

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"renovirt-backend/internal/models"
	"renovirt-backend/internal/supabase"
)

type DownloadService struct {
	orders             OrderStore
	files              FileStore
	deliverablesBucket string
	invoicesBucket     string
	ttl                time.Duration
	logger             *zap.Logger
}

func NewDownloadService(orders OrderStore, files FileStore, deliverablesBucket, invoicesBucket string, ttl time.Duration, logger *zap.Logger) *DownloadService {
	return &DownloadService{
		orders:             orders,
		files:              files,
		deliverablesBucket: deliverablesBucket,
		invoicesBucket:     invoicesBucket,
		ttl:                ttl,
		logger:             logger,
	}
}

func (s *DownloadService) ownedOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID, userID)
	if errors.Is(err, supabase.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

// DeliverablePaths lists the finished files of an order.
func (s *DownloadService) DeliverablePaths(ctx context.Context, userID, orderID uuid.UUID) ([]string, error) {
	if _, err := s.ownedOrder(ctx, userID, orderID); err != nil {
		return nil, err
	}
	return s.files.ListFiles(s.deliverablesBucket, supabase.OrderPrefix(userID, orderID))
}

func (s *DownloadService) Deliverables(ctx context.Context, userID, orderID uuid.UUID) ([]models.DeliverableResponse, error) {
	paths, err := s.DeliverablePaths(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	out := make([]models.DeliverableResponse, 0, len(paths))
	for _, p := range paths {
		url, err := s.files.SignedURL(s.deliverablesBucket, p, s.ttl)
		if err != nil {
			return nil, err
		}
		out = append(out, models.DeliverableResponse{FileName: path.Base(p), SignedURL: url})
	}
	return out, nil
}

// WriteBundle streams the given deliverables into w as a ZIP archive.
func (s *DownloadService) WriteBundle(ctx context.Context, paths []string, w io.Writer) error {
	if len(paths) == 0 {
		return ErrNoDeliverables
	}

	zw := zip.NewWriter(w)
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := s.files.DownloadFile(s.deliverablesBucket, p)
		if err != nil {
			return err
		}
		entry, err := zw.Create(path.Base(p))
		if err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", p, err)
		}
		if _, err := entry.Write(data); err != nil {
			return fmt.Errorf("failed to write %s to archive: %w", p, err)
		}
	}
	return zw.Close()
}

func (s *DownloadService) Invoice(ctx context.Context, userID, orderID uuid.UUID) (*models.InvoiceResponse, error) {
	if _, err := s.ownedOrder(ctx, userID, orderID); err != nil {
		return nil, err
	}

	inv, err := s.orders.GetLatestInvoice(ctx, orderID)
	if errors.Is(err, supabase.ErrNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}

	url, err := s.files.SignedURL(s.invoicesBucket, inv.StoragePath, s.ttl)
	if err != nil {
		return nil, err
	}
	return &models.InvoiceResponse{InvoiceNumber: inv.InvoiceNumber, SignedURL: url}, nil
}
