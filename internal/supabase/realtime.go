package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"renovirt-backend/internal/models"
)

const (
	EventOrderCreated       = "order_created"
	EventOrdersChanged      = "orders_changed"
	EventOrderStatusChanged = "order_status_changed"
	EventUploadFailed       = "upload_failed"

	AdminOrdersChannel = "admin:orders"
)

// RealtimeClient sends broadcast messages through the Realtime REST
// endpoint.
type RealtimeClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

func NewRealtimeClient(supabaseURL, serviceRoleKey string) *RealtimeClient {
	return &RealtimeClient{
		endpoint: strings.TrimSuffix(supabaseURL, "/") + "/realtime/v1/api/broadcast",
		apiKey:   serviceRoleKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type broadcastMessage struct {
	Topic   string         `json:"topic"`
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload"`
}

func (r *RealtimeClient) PublishEvent(ctx context.Context, channel string, event string, payload map[string]any) error {
	body, err := json.Marshal(map[string][]broadcastMessage{
		"messages": {{Topic: channel, Event: event, Payload: payload}},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal broadcast: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send broadcast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("broadcast %s on %s returned %d: %s", event, channel, resp.StatusCode, string(msg))
	}
	return nil
}

func UserChannel(userID uuid.UUID) string {
	return fmt.Sprintf("user:%s", userID.String())
}

func (r *RealtimeClient) PublishUserEvent(ctx context.Context, userID uuid.UUID, event string, payload map[string]any) error {
	return r.PublishEvent(ctx, UserChannel(userID), event, payload)
}

func (r *RealtimeClient) PublishAdminEvent(ctx context.Context, event string, payload map[string]any) error {
	return r.PublishEvent(ctx, AdminOrdersChannel, event, payload)
}

// Event payloads
func OrderCreatedPayload(order *models.Order) map[string]any {
	return map[string]any{
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
		"status":       string(order.Status),
		"image_count":  order.ImageCount,
		"final_price":  order.FinalPrice.StringFixed(2),
	}
}

func OrdersChangedPayload(userID uuid.UUID) map[string]any {
	return map[string]any{
		"user_id": userID.String(),
	}
}

func OrderStatusChangedPayload(orderID uuid.UUID, from, to models.OrderStatus) map[string]any {
	return map[string]any{
		"order_id":        orderID.String(),
		"previous_status": string(from),
		"status":          string(to),
	}
}

func UploadFailedPayload(orderNumber string, errorMsg string) map[string]any {
	return map[string]any{
		"order_number": orderNumber,
		"status":       "failed",
		"error":        errorMsg,
	}
}
