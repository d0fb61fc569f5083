package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"renovirt-backend/internal/models"
	"renovirt-backend/internal/supabase"
)

type mockStore struct {
	mu sync.Mutex

	Packages []models.Package
	AddOns   []models.AddOn
	Balance  int

	OrderNumberExistsFunc  func(ctx context.Context, number string) (bool, error)
	CreateOrderFunc        func(ctx context.Context, order *models.Order, addOns []models.OrderAddOn) error
	CreateOrderImageFunc   func(ctx context.Context, img *models.OrderImage) error
	MarkUploadCompleteFunc func(ctx context.Context, orderID, userID uuid.UUID) error
	CompensateOrderFunc    func(ctx context.Context, orderID uuid.UUID) error
	GetOrderFunc           func(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	GetOrderByIDFunc       func(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListAllOrdersFunc      func(ctx context.Context, status models.OrderStatus, limit, offset int) ([]models.Order, error)
	StaleUploadsFunc       func(ctx context.Context, before time.Time, limit int) ([]models.Order, error)
	GetLatestInvoiceFunc   func(ctx context.Context, orderID uuid.UUID) (*models.OrderInvoice, error)
	GetReferralCodeFunc    func(ctx context.Context, code string) (*models.ReferralCode, error)

	Created     []*models.Order
	CreatedAdds []models.OrderAddOn
	Images      []models.OrderImage
	Completed   []uuid.UUID
	Compensated []uuid.UUID
}

func (m *mockStore) ListPackages(ctx context.Context) ([]models.Package, error) {
	return m.Packages, nil
}

func (m *mockStore) ListAddOns(ctx context.Context) ([]models.AddOn, error) {
	return m.AddOns, nil
}

func (m *mockStore) AvailableCredits(ctx context.Context, userID uuid.UUID) (int, error) {
	return m.Balance, nil
}

func (m *mockStore) OrderNumberExists(ctx context.Context, number string) (bool, error) {
	if m.OrderNumberExistsFunc != nil {
		return m.OrderNumberExistsFunc(ctx, number)
	}
	return false, nil
}

func (m *mockStore) CreateOrder(ctx context.Context, order *models.Order, addOns []models.OrderAddOn) error {
	if m.CreateOrderFunc != nil {
		if err := m.CreateOrderFunc(ctx, order, addOns); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Created = append(m.Created, order)
	m.CreatedAdds = append(m.CreatedAdds, addOns...)
	return nil
}

func (m *mockStore) CreateOrderImage(ctx context.Context, img *models.OrderImage) error {
	if m.CreateOrderImageFunc != nil {
		if err := m.CreateOrderImageFunc(ctx, img); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Images = append(m.Images, *img)
	return nil
}

func (m *mockStore) MarkUploadComplete(ctx context.Context, orderID, userID uuid.UUID) error {
	if m.MarkUploadCompleteFunc != nil {
		if err := m.MarkUploadCompleteFunc(ctx, orderID, userID); err != nil {
			return err
		}
	}
	m.Completed = append(m.Completed, orderID)
	return nil
}

func (m *mockStore) CompensateOrder(ctx context.Context, orderID uuid.UUID) error {
	if m.CompensateOrderFunc != nil {
		if err := m.CompensateOrderFunc(ctx, orderID); err != nil {
			return err
		}
	}
	m.Compensated = append(m.Compensated, orderID)
	return nil
}

func (m *mockStore) GetOrder(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	if m.GetOrderFunc != nil {
		return m.GetOrderFunc(ctx, orderID, userID)
	}
	return nil, supabase.ErrNotFound
}

func (m *mockStore) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if m.GetOrderByIDFunc != nil {
		return m.GetOrderByIDFunc(ctx, orderID)
	}
	return nil, supabase.ErrNotFound
}

func (m *mockStore) ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var out []models.Order
	for _, o := range m.Created {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockStore) ListAllOrders(ctx context.Context, status models.OrderStatus, limit, offset int) ([]models.Order, error) {
	if m.ListAllOrdersFunc != nil {
		return m.ListAllOrdersFunc(ctx, status, limit, offset)
	}
	return nil, nil
}

func (m *mockStore) StaleUploads(ctx context.Context, before time.Time, limit int) ([]models.Order, error) {
	if m.StaleUploadsFunc != nil {
		return m.StaleUploadsFunc(ctx, before, limit)
	}
	return nil, nil
}

func (m *mockStore) ListOrderImages(ctx context.Context, orderID uuid.UUID) ([]models.OrderImage, error) {
	var out []models.OrderImage
	for _, img := range m.Images {
		if img.OrderID == orderID {
			out = append(out, img)
		}
	}
	return out, nil
}

func (m *mockStore) GetLatestInvoice(ctx context.Context, orderID uuid.UUID) (*models.OrderInvoice, error) {
	if m.GetLatestInvoiceFunc != nil {
		return m.GetLatestInvoiceFunc(ctx, orderID)
	}
	return nil, supabase.ErrNotFound
}

func (m *mockStore) GetReferralCode(ctx context.Context, code string) (*models.ReferralCode, error) {
	if m.GetReferralCodeFunc != nil {
		return m.GetReferralCodeFunc(ctx, code)
	}
	return nil, supabase.ErrNotFound
}

type mockFiles struct {
	mu sync.Mutex

	UploadFunc func(bucket, objectPath string) error
	Objects    map[string][]byte
	Removed    []string
	Uploads    int
}

func newMockFiles() *mockFiles {
	return &mockFiles{Objects: map[string][]byte{}}
}

func (m *mockFiles) UploadFile(bucket, objectPath string, data []byte, contentType string) error {
	m.mu.Lock()
	m.Uploads++
	m.mu.Unlock()
	if m.UploadFunc != nil {
		if err := m.UploadFunc(bucket, objectPath); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[bucket+":"+objectPath] = data
	return nil
}

func (m *mockFiles) ListFiles(bucket, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for key := range m.Objects {
		p, ok := strings.CutPrefix(key, bucket+":")
		if !ok || !strings.HasPrefix(p, prefix) || strings.Contains(p[len(prefix):], "/") {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *mockFiles) RemoveFiles(bucket string, paths []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range paths {
		delete(m.Objects, bucket+":"+p)
		m.Removed = append(m.Removed, p)
	}
	return nil
}

func (m *mockFiles) DownloadFile(bucket, objectPath string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Objects[bucket+":"+objectPath]
	if !ok {
		return nil, supabase.ErrNotFound
	}
	return data, nil
}

func (m *mockFiles) SignedURL(bucket, objectPath string, ttl time.Duration) (string, error) {
	return "https://signed.example/" + bucket + "/" + objectPath, nil
}

type publishedEvent struct {
	Channel string
	Event   string
	Payload map[string]any
}

type mockEvents struct {
	mu     sync.Mutex
	Events []publishedEvent
}

func (m *mockEvents) PublishUserEvent(ctx context.Context, userID uuid.UUID, event string, payload map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, publishedEvent{Channel: supabase.UserChannel(userID), Event: event, Payload: payload})
	return nil
}

func (m *mockEvents) PublishAdminEvent(ctx context.Context, event string, payload map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, publishedEvent{Channel: supabase.AdminOrdersChannel, Event: event, Payload: payload})
	return nil
}

func (m *mockEvents) names() []string {
	out := make([]string, len(m.Events))
	for i, e := range m.Events {
		out[i] = e.Channel + " " + e.Event
	}
	return out
}

type mockRPC struct {
	CallFunc func(ctx context.Context, fn string, params any, out any) error
	Calls    []string
	Params   []any
}

func (m *mockRPC) Call(ctx context.Context, fn string, params any, out any) error {
	m.Calls = append(m.Calls, fn)
	m.Params = append(m.Params, params)
	if m.CallFunc != nil {
		return m.CallFunc(ctx, fn, params, out)
	}
	return nil
}

func testCatalog() ([]models.Package, []models.AddOn) {
	return []models.Package{
			{ID: uuid.New(), Name: "Basic", BasePrice: decimal.NewFromInt(7)},
			{ID: uuid.New(), Name: "Premium", BasePrice: decimal.NewFromInt(10)},
		}, []models.AddOn{
			{ID: uuid.New(), Name: "Express", Price: decimal.NewFromInt(3)},
			{ID: uuid.New(), Name: "Upscale", Price: decimal.NewFromInt(2)},
			{ID: uuid.New(), Name: "Watermark", Price: decimal.NewFromInt(5), IsFree: true},
		}
}
