package supabase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"renovirt-backend/internal/models"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrOrderNumberTaken    = errors.New("order number already taken")
	ErrInsufficientCredits = errors.New("insufficient credits")
)

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// DatabaseClient talks to the Supabase Postgres instance directly.
type DatabaseClient struct {
	pool pgxPool
}

func NewDatabaseClient(ctx context.Context, connectionString string) (*DatabaseClient, error) {
	pool, err := pgxpool.New(ctx, connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{pool: pool}, nil
}

func (d *DatabaseClient) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

func (d *DatabaseClient) Close() {
	d.pool.Close()
}

func (d *DatabaseClient) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Catalog

func (d *DatabaseClient) ListPackages(ctx context.Context) ([]models.Package, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, base_price::text
		FROM packages
		WHERE is_active
		ORDER BY base_price
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	defer rows.Close()

	var packages []models.Package
	for rows.Next() {
		var (
			pkg   models.Package
			price string
		)
		if err := rows.Scan(&pkg.ID, &pkg.Name, &price); err != nil {
			return nil, fmt.Errorf("failed to scan package: %w", err)
		}
		if pkg.BasePrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("invalid base price for package %s: %w", pkg.Name, err)
		}
		packages = append(packages, pkg)
	}
	return packages, rows.Err()
}

func (d *DatabaseClient) ListAddOns(ctx context.Context) ([]models.AddOn, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, price::text, is_free
		FROM add_ons
		WHERE is_active
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list add-ons: %w", err)
	}
	defer rows.Close()

	var addOns []models.AddOn
	for rows.Next() {
		var (
			addOn models.AddOn
			price string
		)
		if err := rows.Scan(&addOn.ID, &addOn.Name, &price, &addOn.IsFree); err != nil {
			return nil, fmt.Errorf("failed to scan add-on: %w", err)
		}
		if addOn.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("invalid price for add-on %s: %w", addOn.Name, err)
		}
		addOns = append(addOns, addOn)
	}
	return addOns, rows.Err()
}

// Orders

const orderColumns = `id, order_number, user_id, package_id, photo_type, image_count,
	total_price::text, credits_used, final_price::text, status, payment_flow_status,
	payment_method, terms_accepted, email, COALESCE(company, ''), COALESCE(object_reference, ''),
	COALESCE(special_requests, ''), upload_state, created_at, updated_at`

func scanOrder(row pgx.Row) (*models.Order, error) {
	var (
		o                                            models.Order
		total, final                                 string
		photoType, status, flow, method, uploadState string
	)
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.PackageID, &photoType, &o.ImageCount,
		&total, &o.CreditsUsed, &final, &status, &flow,
		&method, &o.TermsAccepted, &o.Email, &o.Company, &o.ObjectReference,
		&o.SpecialRequests, &uploadState, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if o.TotalPrice, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("invalid total_price: %w", err)
	}
	if o.FinalPrice, err = decimal.NewFromString(final); err != nil {
		return nil, fmt.Errorf("invalid final_price: %w", err)
	}
	o.PhotoType = models.PhotoType(photoType)
	o.Status = models.OrderStatus(status)
	o.PaymentFlowStatus = models.PaymentFlowStatus(flow)
	o.PaymentMethod = models.PaymentMethod(method)
	o.UploadState = models.UploadState(uploadState)
	return &o, nil
}

func collectOrders(rows pgx.Rows) ([]models.Order, error) {
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (d *DatabaseClient) OrderNumberExists(ctx context.Context, orderNumber string) (bool, error) {
	var exists bool
	err := d.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE order_number = $1)`, orderNumber).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check order number: %w", err)
	}
	return exists, nil
}

// CreateOrder inserts the order row, its add-on links and the credit
// deduction in one transaction. CreatedAt and UpdatedAt are filled in from
// the database.
func (d *DatabaseClient) CreateOrder(ctx context.Context, order *models.Order, addOns []models.OrderAddOn) error {
	return d.inTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO orders (
				id, order_number, user_id, package_id, photo_type, image_count,
				total_price, credits_used, final_price, status, payment_flow_status,
				payment_method, terms_accepted, email, company, object_reference,
				special_requests, upload_state
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9::numeric, $10, $11, $12, $13, $14,
				NULLIF($15, ''), NULLIF($16, ''), NULLIF($17, ''), $18)
			RETURNING created_at, updated_at
		`,
			order.ID, order.OrderNumber, order.UserID, order.PackageID, string(order.PhotoType), order.ImageCount,
			order.TotalPrice.String(), order.CreditsUsed, order.FinalPrice.String(), string(order.Status),
			string(order.PaymentFlowStatus), string(order.PaymentMethod), order.TermsAccepted, order.Email,
			order.Company, order.ObjectReference, order.SpecialRequests, string(order.UploadState),
		).Scan(&order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			if isOrderNumberConflict(err) {
				return ErrOrderNumberTaken
			}
			return fmt.Errorf("failed to insert order: %w", err)
		}

		for _, a := range addOns {
			_, err := tx.Exec(ctx, `
				INSERT INTO order_add_ons (order_id, add_on_id, price)
				VALUES ($1, $2, $3::numeric)
			`, order.ID, a.AddOnID, a.Price.String())
			if err != nil {
				return fmt.Errorf("failed to link add-on %s: %w", a.AddOnID, err)
			}
		}

		if order.CreditsUsed > 0 {
			tag, err := tx.Exec(ctx, `
				UPDATE user_credits
				SET balance = balance - $1, updated_at = NOW()
				WHERE user_id = $2 AND balance >= $1
			`, order.CreditsUsed, order.UserID)
			if err != nil {
				return fmt.Errorf("failed to deduct credits: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return ErrInsufficientCredits
			}
		}
		return nil
	})
}

func isOrderNumberConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "order_number")
}

// CreateOrderImage records one uploaded object. Recording the same file of
// an order twice is a no-op.
func (d *DatabaseClient) CreateOrderImage(ctx context.Context, img *models.OrderImage) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO order_images (id, order_id, user_id, file_name, storage_path, file_size, mime_type, bracket_group, is_watermark)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9)
		ON CONFLICT (order_id, file_name) DO NOTHING
	`, img.ID, img.OrderID, img.UserID, img.FileName, img.StoragePath, img.FileSize, img.MimeType, img.BracketGroup, img.IsWatermark)
	if err != nil {
		return fmt.Errorf("failed to record image %s: %w", img.FileName, err)
	}
	return nil
}

// MarkUploadComplete flips the order to upload_state=complete and writes the
// first status history entry.
func (d *DatabaseClient) MarkUploadComplete(ctx context.Context, orderID, userID uuid.UUID) error {
	return d.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE orders
			SET upload_state = 'complete', updated_at = NOW()
			WHERE id = $1 AND upload_state = 'uploading'
		`, orderID)
		if err != nil {
			return fmt.Errorf("failed to mark upload complete: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO order_status_history (order_id, status, changed_by, note)
			VALUES ($1, 'pending', $2, 'order created')
		`, orderID, userID)
		if err != nil {
			return fmt.Errorf("failed to write status history: %w", err)
		}
		return nil
	})
}

// CompensateOrder deletes an order, cascading to its satellite rows, and
// gives its credits back. A missing order is not an error.
func (d *DatabaseClient) CompensateOrder(ctx context.Context, orderID uuid.UUID) error {
	return d.inTx(ctx, func(tx pgx.Tx) error {
		var (
			userID  uuid.UUID
			credits int
		)
		err := tx.QueryRow(ctx, `SELECT user_id, credits_used FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&userID, &credits)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to lock order: %w", err)
		}

		if credits > 0 {
			_, err = tx.Exec(ctx, `
				INSERT INTO user_credits (user_id, balance)
				VALUES ($1, $2)
				ON CONFLICT (user_id) DO UPDATE
				SET balance = user_credits.balance + EXCLUDED.balance, updated_at = NOW()
			`, userID, credits)
			if err != nil {
				return fmt.Errorf("failed to refund credits: %w", err)
			}
		}

		if _, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID); err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}
		return nil
	})
}

func (d *DatabaseClient) GetOrder(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	order, err := scanOrder(d.pool.QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1 AND user_id = $2 AND upload_state = 'complete'
	`, orderID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// GetOrderByID is the admin lookup. Like ListAllOrders it only sees
// completed uploads; in-flight orders belong to the reconciler.
func (d *DatabaseClient) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := scanOrder(d.pool.QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1 AND upload_state = 'complete'
	`, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

func (d *DatabaseClient) ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1 AND upload_state = 'complete'
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return collectOrders(rows)
}

// ListAllOrders is the admin view. An empty status lists every status.
func (d *DatabaseClient) ListAllOrders(ctx context.Context, status models.OrderStatus, limit, offset int) ([]models.Order, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE upload_state = 'complete' AND ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return collectOrders(rows)
}

// StaleUploads returns orders still uploading that were created before the
// given time, oldest first.
func (d *DatabaseClient) StaleUploads(ctx context.Context, before time.Time, limit int) ([]models.Order, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE upload_state = 'uploading' AND created_at < $1
		ORDER BY created_at
		LIMIT $2
	`, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale uploads: %w", err)
	}
	return collectOrders(rows)
}

func (d *DatabaseClient) ListOrderImages(ctx context.Context, orderID uuid.UUID) ([]models.OrderImage, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, order_id, user_id, file_name, storage_path, file_size,
			COALESCE(mime_type, ''), COALESCE(bracket_group, ''), is_watermark, created_at
		FROM order_images
		WHERE order_id = $1
		ORDER BY is_watermark, file_name
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order images: %w", err)
	}
	defer rows.Close()

	var images []models.OrderImage
	for rows.Next() {
		var img models.OrderImage
		if err := rows.Scan(&img.ID, &img.OrderID, &img.UserID, &img.FileName, &img.StoragePath, &img.FileSize,
			&img.MimeType, &img.BracketGroup, &img.IsWatermark, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (d *DatabaseClient) GetLatestInvoice(ctx context.Context, orderID uuid.UUID) (*models.OrderInvoice, error) {
	var inv models.OrderInvoice
	err := d.pool.QueryRow(ctx, `
		SELECT id, order_id, invoice_number, storage_path, created_at
		FROM order_invoices
		WHERE order_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, orderID).Scan(&inv.ID, &inv.OrderID, &inv.InvoiceNumber, &inv.StoragePath, &inv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return &inv, nil
}

// Credits and referrals

func (d *DatabaseClient) AvailableCredits(ctx context.Context, userID uuid.UUID) (int, error) {
	var balance int
	err := d.pool.QueryRow(ctx, `SELECT balance FROM user_credits WHERE user_id = $1`, userID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get credits: %w", err)
	}
	return balance, nil
}

func (d *DatabaseClient) GetReferralCode(ctx context.Context, code string) (*models.ReferralCode, error) {
	var rc models.ReferralCode
	err := d.pool.QueryRow(ctx, `
		SELECT id, code, owner_id, is_active, COALESCE(max_uses, 0), uses, created_at
		FROM referral_codes
		WHERE code = $1
	`, code).Scan(&rc.ID, &rc.Code, &rc.OwnerID, &rc.IsActive, &rc.MaxUses, &rc.Uses, &rc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get referral code: %w", err)
	}
	return &rc, nil
}
