package service

import (
	"context"
	"log"
	"strconv"
	"strings"

	"noah-food/web-svc/internal/money"
	"noah-food/web-svc/internal/upstream"
)

const (
	KeyAPIBaseURL     = "noah_api_base_url"
	KeyAuthToken      = "noah_auth_token"
	KeyCart           = "noah_cart_v1"
	KeyRestaurantID   = "noah_restaurant_id"
	KeyLastOrderID    = "noah_last_order_id"
	KeyLastMenuItemID = "noah_last_menu_item_id"
	KeyCustomerID     = "noah_customer_id"
)

// ClientState gives typed access to the remembered values of one client.
// Read failures are logged and treated as absent values.
type ClientState struct {
	store          Storage
	defaultBaseURL string
}

func NewClientState(store Storage, defaultBaseURL string) *ClientState {
	return &ClientState{store: store, defaultBaseURL: defaultBaseURL}
}

func (s *ClientState) read(ctx context.Context, key string) string {
	v, ok, err := s.store.Get(ctx, key)
	if err != nil {
		log.Printf("Warning: failed to read %s: %v", key, err)
		return ""
	}
	if !ok {
		return ""
	}
	return v
}

func (s *ClientState) readInt(ctx context.Context, key string) (int, bool) {
	n, ok := money.ParseInt(s.read(ctx, key))
	if !ok || n == 0 {
		return 0, false
	}
	return n, true
}

func (s *ClientState) writeInt(ctx context.Context, key string, v int) error {
	return s.store.Set(ctx, key, strconv.Itoa(v))
}

// BaseURL prefers the persisted override over the configured default.
func (s *ClientState) BaseURL(ctx context.Context) string {
	if override := strings.TrimSpace(s.read(ctx, KeyAPIBaseURL)); override != "" {
		return strings.TrimRight(override, "/")
	}
	return strings.TrimRight(s.defaultBaseURL, "/")
}

// SetBaseURL stores an override. An empty value restores the default.
func (s *ClientState) SetBaseURL(ctx context.Context, raw string) error {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if raw == "" {
		return s.store.Remove(ctx, KeyAPIBaseURL)
	}
	return s.store.Set(ctx, KeyAPIBaseURL, raw)
}

func (s *ClientState) Credential(ctx context.Context) string {
	return upstream.NormalizeCredential(s.read(ctx, KeyAuthToken))
}

// SetCredential stores the token with its scheme prefix. An empty token clears it.
func (s *ClientState) SetCredential(ctx context.Context, token string) error {
	normalized := upstream.NormalizeCredential(token)
	if normalized == "" {
		return s.store.Remove(ctx, KeyAuthToken)
	}
	return s.store.Set(ctx, KeyAuthToken, normalized)
}

func (s *ClientState) ClearCredential(ctx context.Context) error {
	return s.store.Remove(ctx, KeyAuthToken)
}

func (s *ClientState) Upstream(ctx context.Context) upstream.Config {
	return upstream.Config{
		BaseURL:    s.BaseURL(ctx),
		Credential: s.Credential(ctx),
	}
}

func (s *ClientState) RestaurantID(ctx context.Context) (int, bool) {
	return s.readInt(ctx, KeyRestaurantID)
}

func (s *ClientState) SetRestaurantID(ctx context.Context, id int) error {
	return s.writeInt(ctx, KeyRestaurantID, id)
}

func (s *ClientState) LastOrderID(ctx context.Context) (int, bool) {
	return s.readInt(ctx, KeyLastOrderID)
}

func (s *ClientState) SetLastOrderID(ctx context.Context, id int) error {
	return s.writeInt(ctx, KeyLastOrderID, id)
}

func (s *ClientState) LastMenuItemID(ctx context.Context) (int, bool) {
	return s.readInt(ctx, KeyLastMenuItemID)
}

func (s *ClientState) SetLastMenuItemID(ctx context.Context, id int) error {
	return s.writeInt(ctx, KeyLastMenuItemID, id)
}

func (s *ClientState) CustomerID(ctx context.Context) (int, bool) {
	return s.readInt(ctx, KeyCustomerID)
}

func (s *ClientState) SetCustomerID(ctx context.Context, id int) error {
	return s.writeInt(ctx, KeyCustomerID, id)
}

func (s *ClientState) ClearCustomerID(ctx context.Context) error {
	return s.store.Remove(ctx, KeyCustomerID)
}
