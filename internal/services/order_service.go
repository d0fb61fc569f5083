package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"renovirt-backend/internal/models"
	"renovirt-backend/internal/ordernumber"
	"renovirt-backend/internal/pricing"
	"renovirt-backend/internal/supabase"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type OrderServiceDeps struct {
	Catalog    CatalogStore
	Credits    CreditStore
	Orders     OrderStore
	Files      FileStore
	Events     EventPublisher
	Calculator *pricing.Calculator
	Numbers    *ordernumber.Generator
	Uploader   *Uploader
	Bucket     string
	Logger     *zap.Logger
}

type OrderService struct {
	catalog  CatalogStore
	credits  CreditStore
	orders   OrderStore
	events   EventPublisher
	calc     *pricing.Calculator
	numbers  *ordernumber.Generator
	uploader *Uploader
	cleaner  *orderCleaner
	logger   *zap.Logger
}

func NewOrderService(deps OrderServiceDeps) *OrderService {
	return &OrderService{
		catalog:  deps.Catalog,
		credits:  deps.Credits,
		orders:   deps.Orders,
		events:   deps.Events,
		calc:     deps.Calculator,
		numbers:  deps.Numbers,
		uploader: deps.Uploader,
		cleaner:  newOrderCleaner(deps.Orders, deps.Files, deps.Bucket, deps.Logger),
		logger:   deps.Logger,
	}
}

type CreatedOrder struct {
	Order *models.Order
	Quote pricing.Quote
}

// CreateOrder turns a draft into a persisted order with all its files
// uploaded. Nothing is written when validation or number allocation fails.
// When an upload step fails, the order, its files and the credit deduction
// are rolled back and ErrUploadFailed is returned.
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, data *models.OrderData) (*CreatedOrder, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	packages, addOns, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	pkg, err := validateDraft(data, packages)
	if err != nil {
		return nil, err
	}

	available, err := s.credits.AvailableCredits(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load credits: %w", err)
	}

	// Billing and the stored bracket groups must see the same names.
	quote := s.calc.QuoteNames(cleanFileNames(data.FileNames()), data.PhotoType, data.Package, data.Extras,
		data.CreditsToUse, packages, addOns, available)
	method := data.PaymentMethod
	if method == "" {
		method = models.PaymentMethodInvoice
	}

	order := &models.Order{
		ID:                uuid.New(),
		UserID:            userID,
		PackageID:         pkg.ID,
		PhotoType:         data.PhotoType,
		ImageCount:        quote.ImageCount,
		TotalPrice:        quote.Gross,
		CreditsUsed:       quote.CreditsUsed,
		FinalPrice:        quote.FinalPrice,
		Status:            models.OrderStatusPending,
		PaymentFlowStatus: method.InitialPaymentFlow(),
		PaymentMethod:     method,
		TermsAccepted:     data.AcceptedTerms,
		Email:             strings.TrimSpace(data.Email),
		Company:           data.Company,
		ObjectReference:   data.ObjectReference,
		SpecialRequests:   data.SpecialRequests,
		UploadState:       models.UploadStateUploading,
	}

	var links []models.OrderAddOn
	for _, a := range pricing.SelectedAddOns(data.Extras, addOns) {
		links = append(links, models.OrderAddOn{OrderID: order.ID, AddOnID: a.ID, Price: a.Price})
	}

	if err := s.insertOrder(ctx, order, links); err != nil {
		return nil, err
	}

	log := s.logger.With(zap.String("order_number", order.OrderNumber), zap.String("order_id", order.ID.String()))

	imageJobs, watermarkJobs := s.uploadJobs(order, data)
	err = s.uploader.Upload(ctx, imageJobs)
	if err == nil && len(watermarkJobs) > 0 {
		err = s.uploader.Upload(ctx, watermarkJobs)
	}
	if err == nil {
		err = s.orders.MarkUploadComplete(ctx, order.ID, userID)
	}
	if err != nil {
		log.Error("order upload failed, compensating", zap.Error(err))

		// The request may already be cancelled; the rollback must still run.
		cleanupCtx := context.WithoutCancel(ctx)
		planned := make([]string, 0, len(imageJobs)+len(watermarkJobs))
		for _, j := range append(imageJobs, watermarkJobs...) {
			planned = append(planned, j.Image.StoragePath)
		}
		if cerr := s.cleaner.Compensate(cleanupCtx, order, planned); cerr != nil {
			log.Error("compensation failed, left for reconciler", zap.Error(cerr))
		}
		s.publish(cleanupCtx, func(ctx context.Context) error {
			return s.events.PublishUserEvent(ctx, userID, supabase.EventUploadFailed,
				supabase.UploadFailedPayload(order.OrderNumber, err.Error()))
		})
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	order.UploadState = models.UploadStateComplete

	log.Info("order created",
		zap.Int("image_count", order.ImageCount),
		zap.String("final_price", order.FinalPrice.StringFixed(2)),
		zap.Int("credits_used", order.CreditsUsed))

	s.publish(ctx, func(ctx context.Context) error {
		return s.events.PublishUserEvent(ctx, userID, supabase.EventOrderCreated, supabase.OrderCreatedPayload(order))
	})
	s.publish(ctx, func(ctx context.Context) error {
		return s.events.PublishAdminEvent(ctx, supabase.EventOrdersChanged, supabase.OrdersChangedPayload(userID))
	})

	return &CreatedOrder{Order: order, Quote: quote}, nil
}

// insertOrder allocates an order number and writes the order. A number that
// loses the race against a concurrent insert is replaced once.
func (s *OrderService) insertOrder(ctx context.Context, order *models.Order, links []models.OrderAddOn) error {
	for attempt := 0; ; attempt++ {
		number, err := s.numbers.Unique(ctx, s.orders.OrderNumberExists)
		if err != nil {
			return fmt.Errorf("failed to allocate order number: %w", err)
		}
		order.OrderNumber = number

		err = s.orders.CreateOrder(ctx, order, links)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, supabase.ErrOrderNumberTaken) && attempt == 0:
			s.logger.Warn("order number taken at insert, reallocating", zap.String("order_number", number))
			continue
		case errors.Is(err, supabase.ErrInsufficientCredits):
			return ErrInsufficientCredits
		default:
			return fmt.Errorf("failed to create order: %w", err)
		}
	}
}

func (s *OrderService) uploadJobs(order *models.Order, data *models.OrderData) (images, watermark []UploadJob) {
	for _, f := range data.Files {
		name := cleanFileName(f.Name)
		img := models.OrderImage{
			ID:          uuid.New(),
			OrderID:     order.ID,
			UserID:      order.UserID,
			FileName:    name,
			StoragePath: supabase.ObjectPath(order.UserID, order.ID, name),
			FileSize:    f.Size(),
			MimeType:    f.ContentType,
		}
		if order.PhotoType.IsBracketing() {
			img.BracketGroup = pricing.GroupOf(name)
		}
		images = append(images, UploadJob{Image: img, Data: f.Data, ContentType: f.ContentType})
	}

	if data.Extras.Watermark && data.WatermarkFile != nil {
		name := cleanFileName(data.WatermarkFile.Name)
		watermark = append(watermark, UploadJob{
			Image: models.OrderImage{
				ID:          uuid.New(),
				OrderID:     order.ID,
				UserID:      order.UserID,
				FileName:    "watermark/" + name,
				StoragePath: supabase.ObjectPath(order.UserID, order.ID, "watermark", name),
				FileSize:    data.WatermarkFile.Size(),
				MimeType:    data.WatermarkFile.ContentType,
				IsWatermark: true,
			},
			Data:        data.WatermarkFile.Data,
			ContentType: data.WatermarkFile.ContentType,
		})
	}
	return images, watermark
}

// publish sends a realtime event. Delivery is best effort.
func (s *OrderService) publish(ctx context.Context, send func(ctx context.Context) error) {
	if s.events == nil {
		return
	}
	if err := send(ctx); err != nil {
		s.logger.Warn("realtime publish failed", zap.Error(err))
	}
}

func validateDraft(data *models.OrderData, packages []models.Package) (models.Package, error) {
	if !data.PhotoType.Valid() {
		return models.Package{}, invalid(ErrInvalidPhotoType)
	}
	pkg, ok := models.FindPackage(packages, data.Package)
	if !ok {
		return models.Package{}, invalid(ErrPackageNotFound)
	}
	if !data.AcceptedTerms {
		return models.Package{}, invalid(ErrTermsNotAccepted)
	}
	if !emailPattern.MatchString(strings.TrimSpace(data.Email)) {
		return models.Package{}, invalid(ErrInvalidEmail)
	}
	if len(data.Files) == 0 {
		return models.Package{}, invalid(ErrNoFiles)
	}
	seen := make(map[string]struct{}, len(data.Files))
	for _, f := range data.Files {
		name := cleanFileName(f.Name)
		if _, dup := seen[name]; dup {
			return models.Package{}, invalid(fmt.Errorf("%w: %s", ErrDuplicateFile, name))
		}
		seen[name] = struct{}{}
	}
	if data.PaymentMethod != "" && !data.PaymentMethod.Valid() {
		return models.Package{}, invalid(ErrInvalidPaymentMethod)
	}
	if data.WatermarkFile != nil && !data.Extras.Watermark {
		return models.Package{}, invalid(ErrUnexpectedWatermark)
	}
	return pkg, nil
}

func cleanFileName(name string) string {
	return path.Base(strings.ReplaceAll(name, "\\", "/"))
}

func cleanFileNames(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = cleanFileName(n)
	}
	return out
}

// Quote prices a draft known only by its file names. The credit clamp uses
// the caller's balance.
func (s *OrderService) Quote(ctx context.Context, userID uuid.UUID, req *models.QuoteRequest) (pricing.Quote, error) {
	if !req.PhotoType.Valid() {
		return pricing.Quote{}, invalid(ErrInvalidPhotoType)
	}

	packages, addOns, err := s.Catalog(ctx)
	if err != nil {
		return pricing.Quote{}, err
	}

	available := 0
	if userID != uuid.Nil {
		if available, err = s.credits.AvailableCredits(ctx, userID); err != nil {
			return pricing.Quote{}, fmt.Errorf("failed to load credits: %w", err)
		}
	}

	return s.calc.QuoteNames(cleanFileNames(req.FileNames), req.PhotoType, req.Package, req.Extras, req.CreditsToUse,
		packages, addOns, available), nil
}

func (s *OrderService) Catalog(ctx context.Context) ([]models.Package, []models.AddOn, error) {
	packages, err := s.catalog.ListPackages(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load packages: %w", err)
	}
	addOns, err := s.catalog.ListAddOns(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load add-ons: %w", err)
	}
	return packages, addOns, nil
}

func (s *OrderService) Credits(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.credits.AvailableCredits(ctx, userID)
}

func (s *OrderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return s.orders.ListOrders(ctx, userID)
}

func (s *OrderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID, userID)
	if errors.Is(err, supabase.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

func (s *OrderService) ListFiles(ctx context.Context, userID, orderID uuid.UUID) ([]models.OrderImage, error) {
	if _, err := s.GetOrder(ctx, userID, orderID); err != nil {
		return nil, err
	}
	return s.orders.ListOrderImages(ctx, orderID)
}
