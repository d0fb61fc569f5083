package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/supabase-community/supabase-go"

	"renovirt-backend/internal/config"
)

type Client struct {
	Supabase *supabase.Client
	Config   *config.Config
}

func NewClient(cfg *config.Config) (*Client, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		Supabase: client,
		Config:   cfg,
	}, nil
}

// RPCError is the error document PostgREST returns when a function raises.
type RPCError struct {
	Function string `json:"-"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Details  string `json:"details"`
	Hint     string `json:"hint"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc %s failed: %s (%s)", e.Function, e.Message, e.Code)
}

// Call invokes a Postgres function exposed through PostgREST and decodes
// its JSON result into out. out may be nil when the result is not needed.
func (c *Client) Call(ctx context.Context, fn string, params any, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return decodeRPC(fn, c.Supabase.Rpc(fn, "", params), out)
}

func decodeRPC(fn, raw string, out any) error {
	body := strings.TrimSpace(raw)
	if body == "" {
		return fmt.Errorf("rpc %s: empty response", fn)
	}

	if strings.HasPrefix(body, "{") {
		var rpcErr RPCError
		if err := json.Unmarshal([]byte(body), &rpcErr); err == nil && rpcErr.Code != "" && rpcErr.Message != "" {
			rpcErr.Function = fn
			return &rpcErr
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return fmt.Errorf("rpc %s: decode response: %w", fn, err)
	}
	return nil
}
