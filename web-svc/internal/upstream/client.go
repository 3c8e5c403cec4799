package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"noah-food/web-svc/internal/domain"

	"github.com/google/uuid"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client executes built requests against the Noah Food REST API.
type Client struct {
	client HTTPClient
}

func NewClient(client HTTPClient) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{client: client}
}

// Execute runs req and returns the raw JSON body of a successful answer.
func (c *Client) Execute(ctx context.Context, req Request) (json.RawMessage, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	for k, v := range req.Header {
		httpReq.Header[k] = v
	}
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.client.Do(httpReq)
	if err != nil {
		log.Printf("ERROR: upstream %s %s failed: %v", req.Method, req.URL, err)
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, body)
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	if !json.Valid(body) {
		return nil, &TransportError{Err: fmt.Errorf("invalid JSON response: %s", truncate(string(body), 200))}
	}
	return json.RawMessage(body), nil
}

func (c *Client) call(ctx context.Context, cfg Config, method, path string, body any) (json.RawMessage, error) {
	req, err := BuildRequest(cfg, method, path, body)
	if err != nil {
		return nil, err
	}
	return c.Execute(ctx, req)
}

func (c *Client) ListCategories(ctx context.Context, cfg Config) ([]domain.MenuCategory, error) {
	raw, err := c.call(ctx, cfg, http.MethodGet, "/categories/", nil)
	if err != nil {
		return nil, err
	}
	return DecodeList[domain.MenuCategory](raw)
}

func (c *Client) ListMenuItems(ctx context.Context, cfg Config) ([]domain.MenuItem, error) {
	raw, err := c.call(ctx, cfg, http.MethodGet, "/menu-items/", nil)
	if err != nil {
		return nil, err
	}
	return DecodeList[domain.MenuItem](raw)
}

func (c *Client) GetMenuItem(ctx context.Context, cfg Config, id int) (*domain.MenuItem, error) {
	raw, err := c.call(ctx, cfg, http.MethodGet, "/menu-items/"+strconv.Itoa(id)+"/", nil)
	if err != nil {
		return nil, err
	}
	var item domain.MenuItem
	if err := decodeObject(raw, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) CreateOrder(ctx context.Context, cfg Config, req domain.OrderCreationRequest) (*domain.Order, error) {
	raw, err := c.call(ctx, cfg, http.MethodPost, "/orders/", req)
	if err != nil {
		return nil, err
	}
	var order domain.Order
	if err := decodeObject(raw, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) ListOrders(ctx context.Context, cfg Config) ([]domain.Order, error) {
	raw, err := c.call(ctx, cfg, http.MethodGet, "/orders/", nil)
	if err != nil {
		return nil, err
	}
	return DecodeList[domain.Order](raw)
}

// GetOrder fetches by numeric id or by public order number.
func (c *Client) GetOrder(ctx context.Context, cfg Config, ref string) (*domain.Order, error) {
	raw, err := c.call(ctx, cfg, http.MethodGet, "/orders/"+url.PathEscape(ref)+"/", nil)
	if err != nil {
		return nil, err
	}
	var order domain.Order
	if err := decodeObject(raw, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) Login(ctx context.Context, cfg Config, username, password string) (*domain.AuthResult, error) {
	raw, err := c.call(ctx, cfg, http.MethodPost, "/auth/login/", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	var result domain.AuthResult
	if err := decodeObject(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Register(ctx context.Context, cfg Config, req domain.RegisterRequest) (*domain.AuthResult, error) {
	raw, err := c.call(ctx, cfg, http.MethodPost, "/auth/register/", req)
	if err != nil {
		return nil, err
	}
	var result domain.AuthResult
	if err := decodeObject(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Me accepts both {"user": {...}} and a bare user object.
func (c *Client) Me(ctx context.Context, cfg Config) (*domain.AuthUser, error) {
	raw, err := c.call(ctx, cfg, http.MethodGet, "/auth/me/", nil)
	if err != nil {
		return nil, err
	}
	var envelope struct {
		User *domain.AuthUser `json:"user"`
	}
	if err := decodeObject(raw, &envelope); err != nil {
		return nil, err
	}
	if envelope.User != nil {
		return envelope.User, nil
	}
	var user domain.AuthUser
	if err := decodeObject(raw, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Logout(ctx context.Context, cfg Config) error {
	_, err := c.call(ctx, cfg, http.MethodPost, "/auth/logout/", map[string]any{})
	return err
}

// DecodeList accepts a bare array or a {"results": [...]} envelope.
// Any other shape yields an empty list.
func DecodeList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return []T{}, nil
	}

	switch trimmed[0] {
	case '[':
		var list []T
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, &TransportError{Err: fmt.Errorf("failed to decode list: %w", err)}
		}
		return list, nil
	case '{':
		var envelope struct {
			Results json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return []T{}, nil
		}
		results := bytes.TrimSpace(envelope.Results)
		if len(results) == 0 || results[0] != '[' {
			return []T{}, nil
		}
		var list []T
		if err := json.Unmarshal(results, &list); err != nil {
			return nil, &TransportError{Err: fmt.Errorf("failed to decode list: %w", err)}
		}
		return list, nil
	default:
		return []T{}, nil
	}
}

func decodeObject(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &TransportError{Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
