package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"renovirt-backend/internal/models"
	"renovirt-backend/internal/supabase"
)

const (
	defaultAdminPageSize = 50
	maxAdminPageSize     = 200
)

type AdminService struct {
	orders OrderStore
	rpc    RPCCaller
	events EventPublisher
	now    func() time.Time
	logger *zap.Logger
}

func NewAdminService(orders OrderStore, rpc RPCCaller, events EventPublisher, logger *zap.Logger) *AdminService {
	return &AdminService{
		orders: orders,
		rpc:    rpc,
		events: events,
		now:    time.Now,
		logger: logger,
	}
}

// ListOrders lists completed uploads, optionally filtered by status.
func (s *AdminService) ListOrders(ctx context.Context, status models.OrderStatus, limit, offset int) ([]models.Order, error) {
	if status != "" && !status.Valid() {
		return nil, invalid(ErrInvalidStatus)
	}
	if limit <= 0 {
		limit = defaultAdminPageSize
	}
	limit = min(limit, maxAdminPageSize)
	offset = max(offset, 0)
	return s.orders.ListAllOrders(ctx, status, limit, offset)
}

type statusChange struct {
	OrderID        string `json:"order_id"`
	PreviousStatus string `json:"previous_status"`
	Status         string `json:"status"`
}

// UpdateStatus moves an order along its state machine and notifies the
// owner.
func (s *AdminService) UpdateStatus(ctx context.Context, adminID, orderID uuid.UUID, next models.OrderStatus, note string) (*models.Order, error) {
	if !next.Valid() {
		return nil, invalid(ErrInvalidStatus)
	}

	order, err := s.orders.GetOrderByID(ctx, orderID)
	if errors.Is(err, supabase.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, order.Status, next)
	}

	var change statusChange
	err = s.rpc.Call(ctx, "update_order_status", map[string]any{
		"p_order_id":   orderID.String(),
		"p_status":     string(next),
		"p_changed_by": adminID.String(),
		"p_note":       note,
	}, &change)
	if err != nil {
		var rpcErr *supabase.RPCError
		if errors.As(err, &rpcErr) {
			switch rpcErr.Code {
			case "P0001":
				return nil, fmt.Errorf("%w: %s", ErrInvalidTransition, rpcErr.Message)
			case "P0002":
				return nil, ErrOrderNotFound
			}
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	previous := order.Status
	order.Status = next
	order.UpdatedAt = s.now()

	s.logger.Info("order status changed",
		zap.String("order_number", order.OrderNumber),
		zap.String("from", string(previous)),
		zap.String("to", string(next)),
		zap.String("admin_id", adminID.String()))

	if s.events != nil {
		payload := supabase.OrderStatusChangedPayload(order.ID, previous, next)
		if err := s.events.PublishUserEvent(ctx, order.UserID, supabase.EventOrderStatusChanged, payload); err != nil {
			s.logger.Warn("realtime publish failed", zap.Error(err))
		}
		if err := s.events.PublishAdminEvent(ctx, supabase.EventOrdersChanged, supabase.OrdersChangedPayload(order.UserID)); err != nil {
			s.logger.Warn("realtime publish failed", zap.Error(err))
		}
	}
	return order, nil
}

func (s *AdminService) HelpAnalytics(ctx context.Context, days int) (*models.HelpAnalytics, error) {
	if days <= 0 {
		days = 30
	}
	var out models.HelpAnalytics
	if err := s.rpc.Call(ctx, "get_help_analytics", map[string]any{"p_days": days}, &out); err != nil {
		return nil, fmt.Errorf("failed to load help analytics: %w", err)
	}
	if out.ByCategory == nil {
		out.ByCategory = map[string]int{}
	}
	return &out, nil
}
