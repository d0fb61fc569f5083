package supabase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renovirt-backend/internal/models"
)

func newMockClient(t *testing.T) (*DatabaseClient, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &DatabaseClient{pool: mock}, mock
}

func sampleOrder() *models.Order {
	return &models.Order{
		ID:                uuid.New(),
		OrderNumber:       "RVABCD2345",
		UserID:            uuid.New(),
		PackageID:         uuid.New(),
		PhotoType:         models.PhotoTypePlainPhone,
		ImageCount:        4,
		TotalPrice:        decimal.RequireFromString("48"),
		CreditsUsed:       2,
		FinalPrice:        decimal.RequireFromString("46"),
		Status:            models.OrderStatusPending,
		PaymentFlowStatus: models.PaymentFlowCompleted,
		PaymentMethod:     models.PaymentMethodInvoice,
		TermsAccepted:     true,
		Email:             "jane@example.com",
		UploadState:       models.UploadStateUploading,
	}
}

func expectOrderInsert(mock pgxmock.PgxPoolIface, o *models.Order) *pgxmock.ExpectedQuery {
	return mock.ExpectQuery("INSERT INTO orders").WithArgs(
		o.ID, o.OrderNumber, o.UserID, o.PackageID, "plain-phone", 4,
		"48", 2, "46", "pending",
		"payment_completed", "invoice", true, "jane@example.com",
		"", "", "", "uploading",
	)
}

func TestCreateOrder_CommitsOrderAddOnsAndCredits(t *testing.T) {
	db, mock := newMockClient(t)
	o := sampleOrder()
	addOnID := uuid.New()
	createdAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	expectOrderInsert(mock, o).WillReturnRows(
		pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(createdAt, createdAt))
	mock.ExpectExec("INSERT INTO order_add_ons").WithArgs(o.ID, addOnID, "3").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE user_credits").WithArgs(2, o.UserID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := db.CreateOrder(context.Background(), o, []models.OrderAddOn{
		{OrderID: o.ID, AddOnID: addOnID, Price: decimal.RequireFromString("3")},
	})

	require.NoError(t, err)
	assert.Equal(t, createdAt, o.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrder_InsufficientCreditsRollsBack(t *testing.T) {
	db, mock := newMockClient(t)
	o := sampleOrder()
	now := time.Now()

	mock.ExpectBegin()
	expectOrderInsert(mock, o).WillReturnRows(
		pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectExec("UPDATE user_credits").WithArgs(2, o.UserID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := db.CreateOrder(context.Background(), o, nil)

	assert.ErrorIs(t, err, ErrInsufficientCredits)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrder_OrderNumberConflict(t *testing.T) {
	db, mock := newMockClient(t)
	o := sampleOrder()

	mock.ExpectBegin()
	expectOrderInsert(mock, o).WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "orders_order_number_key"})
	mock.ExpectRollback()

	err := db.CreateOrder(context.Background(), o, nil)

	assert.ErrorIs(t, err, ErrOrderNumberTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrder_OtherUniqueViolationIsNotRetried(t *testing.T) {
	db, mock := newMockClient(t)
	o := sampleOrder()

	mock.ExpectBegin()
	expectOrderInsert(mock, o).WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "orders_pkey"})
	mock.ExpectRollback()

	err := db.CreateOrder(context.Background(), o, nil)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrOrderNumberTaken)
}

func TestMarkUploadComplete(t *testing.T) {
	db, mock := newMockClient(t)
	orderID, userID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders").WithArgs(orderID).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO order_status_history").WithArgs(orderID, userID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, db.MarkUploadComplete(context.Background(), orderID, userID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkUploadComplete_AlreadyComplete(t *testing.T) {
	db, mock := newMockClient(t)
	orderID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders").WithArgs(orderID).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, db.MarkUploadComplete(context.Background(), orderID, uuid.New()), ErrNotFound)
}

func TestCompensateOrder_RefundsAndDeletes(t *testing.T) {
	db, mock := newMockClient(t)
	orderID, userID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id, credits_used FROM orders").WithArgs(orderID).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "credits_used"}).AddRow(userID, 3))
	mock.ExpectExec("INSERT INTO user_credits").WithArgs(userID, 3).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("DELETE FROM orders").WithArgs(orderID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	require.NoError(t, db.CompensateOrder(context.Background(), orderID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompensateOrder_MissingOrderIsNoop(t *testing.T) {
	db, mock := newMockClient(t)
	orderID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id, credits_used FROM orders").WithArgs(orderID).WillReturnError(pgx.ErrNoRows)
	mock.ExpectCommit()

	require.NoError(t, db.CompensateOrder(context.Background(), orderID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func orderRow(o *models.Order) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "order_number", "user_id", "package_id", "photo_type", "image_count",
		"total_price", "credits_used", "final_price", "status", "payment_flow_status",
		"payment_method", "terms_accepted", "email", "company", "object_reference",
		"special_requests", "upload_state", "created_at", "updated_at",
	}).AddRow(
		o.ID, o.OrderNumber, o.UserID, o.PackageID, "bracketing-3", 2,
		"14.00", 0, "14.00", "in_progress", "payment_completed",
		"invoice", true, "jane@example.com", "ACME GmbH", "Musterstr. 1",
		"", "complete", o.CreatedAt, o.UpdatedAt,
	)
}

func TestGetOrder(t *testing.T) {
	db, mock := newMockClient(t)
	o := sampleOrder()
	o.CreatedAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	o.UpdatedAt = o.CreatedAt

	mock.ExpectQuery("FROM orders").WithArgs(o.ID, o.UserID).WillReturnRows(orderRow(o))

	got, err := db.GetOrder(context.Background(), o.ID, o.UserID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, models.PhotoTypeBracketing3, got.PhotoType)
	assert.Equal(t, models.OrderStatusInProgress, got.Status)
	assert.True(t, decimal.RequireFromString("14").Equal(got.TotalPrice))
	assert.Equal(t, "ACME GmbH", got.Company)
	assert.Equal(t, models.UploadStateComplete, got.UploadState)
}

func TestGetOrder_NotFound(t *testing.T) {
	db, mock := newMockClient(t)
	orderID, userID := uuid.New(), uuid.New()

	mock.ExpectQuery("FROM orders").WithArgs(orderID, userID).WillReturnError(pgx.ErrNoRows)

	_, err := db.GetOrder(context.Background(), orderID, userID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetOrderByID_SkipsUploadsInFlight(t *testing.T) {
	db, mock := newMockClient(t)
	o := sampleOrder()

	mock.ExpectQuery(`WHERE id = \$1 AND upload_state = 'complete'`).
		WithArgs(o.ID).
		WillReturnError(pgx.ErrNoRows)

	_, err := db.GetOrderByID(context.Background(), o.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPackages(t *testing.T) {
	db, mock := newMockClient(t)
	basic, premium := uuid.New(), uuid.New()

	mock.ExpectQuery("FROM packages").WillReturnRows(
		pgxmock.NewRows([]string{"id", "name", "base_price"}).
			AddRow(basic, "Basic", "12.00").
			AddRow(premium, "Premium", "19.50"))

	pkgs, err := db.ListPackages(context.Background())
	require.NoError(t, err)
	require.Len(t, pkgs, 2)
	assert.Equal(t, "Premium", pkgs[1].Name)
	assert.True(t, decimal.RequireFromString("19.5").Equal(pkgs[1].BasePrice))
}

func TestListAddOns(t *testing.T) {
	db, mock := newMockClient(t)

	mock.ExpectQuery("FROM add_ons").WillReturnRows(
		pgxmock.NewRows([]string{"id", "name", "price", "is_free"}).
			AddRow(uuid.New(), "Express", "3.00", false).
			AddRow(uuid.New(), "Watermark", "0", true))

	addOns, err := db.ListAddOns(context.Background())
	require.NoError(t, err)
	require.Len(t, addOns, 2)
	assert.Equal(t, models.AddOnWatermark, addOns[1].Key())
	assert.True(t, addOns[1].IsFree)
}

func TestAvailableCredits_NoRow(t *testing.T) {
	db, mock := newMockClient(t)
	userID := uuid.New()

	mock.ExpectQuery("FROM user_credits").WithArgs(userID).WillReturnError(pgx.ErrNoRows)

	credits, err := db.AvailableCredits(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 0, credits)
}

func TestOrderNumberExists(t *testing.T) {
	db, mock := newMockClient(t)

	mock.ExpectQuery("SELECT EXISTS").WithArgs("RVABCD2345").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := db.OrderNumberExists(context.Background(), "RVABCD2345")
	require.NoError(t, err)
	assert.True(t, exists)
}
