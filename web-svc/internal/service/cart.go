package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"noah-food/web-svc/internal/domain"
	"noah-food/web-svc/internal/money"
)

const defaultLineName = "Producto"

type AddOutcome string

const (
	OutcomeAdded             AddOutcome = "added"
	OutcomeNeedsConfirmation AddOutcome = "needs_confirmation"
)

// PendingChange is an addition held back until the customer agrees to
// discard a cart that belongs to another restaurant.
type PendingChange struct {
	Item                domain.MenuItem `json:"item"`
	Quantity            int             `json:"quantity"`
	CurrentRestaurantID int             `json:"current_restaurant_id"`
	NewRestaurantID     int             `json:"new_restaurant_id"`
}

type AddResult struct {
	Outcome AddOutcome     `json:"outcome"`
	Cart    domain.Cart    `json:"cart"`
	Pending *PendingChange `json:"pending,omitempty"`
}

// CartStore owns the persisted cart of a single client.
type CartStore struct {
	mu    sync.Mutex
	store Storage
	state *ClientState
}

func NewCartStore(store Storage, state *ClientState) *CartStore {
	return &CartStore{store: store, state: state}
}

func (s *CartStore) Read(ctx context.Context) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx)
}

func (s *CartStore) read(ctx context.Context) (domain.Cart, error) {
	raw, ok, err := s.store.Get(ctx, KeyCart)
	if err != nil {
		return domain.EmptyCart(), fmt.Errorf("failed to read cart: %w", err)
	}
	if !ok {
		return domain.EmptyCart(), nil
	}
	return decodeCart(raw), nil
}

func (s *CartStore) save(ctx context.Context, cart domain.Cart) error {
	payload, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.store.Set(ctx, KeyCart, string(payload)); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Add puts qty units of item in the cart. When the cart holds another
// restaurant's items nothing is changed and the pending change is returned.
func (s *CartStore) Add(ctx context.Context, item domain.MenuItem, qty int) (AddResult, error) {
	if item.ID <= 0 {
		return AddResult{}, ErrInvalidMenuItem
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.read(ctx)
	if err != nil {
		return AddResult{}, err
	}

	restaurant := positive(item.Restaurant)
	if len(cart.Items) > 0 && cart.RestaurantID != nil && restaurant != nil && *cart.RestaurantID != *restaurant {
		return AddResult{
			Outcome: OutcomeNeedsConfirmation,
			Cart:    cart,
			Pending: &PendingChange{
				Item:                item,
				Quantity:            money.AtLeastOne(qty),
				CurrentRestaurantID: *cart.RestaurantID,
				NewRestaurantID:     *restaurant,
			},
		}, nil
	}

	cart, err = s.apply(ctx, cart, item, qty)
	if err != nil {
		return AddResult{}, err
	}
	return AddResult{Outcome: OutcomeAdded, Cart: cart}, nil
}

// Confirm discards the current cart and applies the pending addition.
func (s *CartStore) Confirm(ctx context.Context, pending PendingChange) (domain.Cart, error) {
	if pending.Item.ID <= 0 {
		return domain.EmptyCart(), ErrInvalidMenuItem
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(ctx, domain.EmptyCart(), pending.Item, pending.Quantity)
}

// AddConfirmed resolves a restaurant conflict through confirm.
// A declined confirmation returns a nil cart and leaves storage untouched.
func (s *CartStore) AddConfirmed(ctx context.Context, item domain.MenuItem, qty int, confirm func(PendingChange) bool) (*domain.Cart, error) {
	result, err := s.Add(ctx, item, qty)
	if err != nil {
		return nil, err
	}
	if result.Outcome == OutcomeAdded {
		return &result.Cart, nil
	}
	if confirm == nil || !confirm(*result.Pending) {
		return nil, nil
	}
	cart, err := s.Confirm(ctx, *result.Pending)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (s *CartStore) apply(ctx context.Context, cart domain.Cart, item domain.MenuItem, qty int) (domain.Cart, error) {
	q := money.AtLeastOne(qty)
	restaurant := positive(item.Restaurant)

	if cart.RestaurantID == nil {
		if restaurant == nil {
			// A line without a restaurant may only join a cart whose
			// restaurant is known, otherwise the cart would have none.
			remembered, ok := s.state.RestaurantID(ctx)
			if !ok {
				return cart, ErrItemRestaurantUnknown
			}
			cart.RestaurantID = &remembered
		} else {
			id := *restaurant
			cart.RestaurantID = &id
			if err := s.state.SetRestaurantID(ctx, id); err != nil {
				return cart, fmt.Errorf("failed to remember restaurant: %w", err)
			}
		}
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ID == item.ID {
			cart.Items[i].Quantity += q
			found = true
			break
		}
	}
	if !found {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			name = defaultLineName
		}
		price := item.PriceCOP
		if price < 0 {
			price = 0
		}
		cart.Items = append(cart.Items, domain.CartLine{
			ID:           item.ID,
			Name:         name,
			UnitPriceCOP: price,
			ImageURL:     item.ImageURL,
			Quantity:     q,
			Restaurant:   restaurant,
			Category:     positive(item.Category),
		})
	}

	if err := s.save(ctx, cart); err != nil {
		return cart, err
	}
	return cart, nil
}

// SetQuantity sets a line quantity exactly, removing the line when qty <= 0.
// The cart is persisted even when id is not in it.
func (s *CartStore) SetQuantity(ctx context.Context, id, qty int) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setQuantity(ctx, id, func(int) int { return qty })
}

func (s *CartStore) Increment(ctx context.Context, id int) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setQuantity(ctx, id, func(q int) int { return q + 1 })
}

func (s *CartStore) Decrement(ctx context.Context, id int) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setQuantity(ctx, id, func(q int) int { return q - 1 })
}

func (s *CartStore) Remove(ctx context.Context, id int) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setQuantity(ctx, id, func(int) int { return 0 })
}

func (s *CartStore) setQuantity(ctx context.Context, id int, next func(current int) int) (domain.Cart, error) {
	cart, err := s.read(ctx)
	if err != nil {
		return cart, err
	}

	for i := range cart.Items {
		if cart.Items[i].ID != id {
			continue
		}
		qty := next(cart.Items[i].Quantity)
		if qty <= 0 {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
		} else {
			cart.Items[i].Quantity = qty
		}
		break
	}
	if len(cart.Items) == 0 {
		cart = domain.EmptyCart()
	}

	if err := s.save(ctx, cart); err != nil {
		return cart, err
	}
	return cart, nil
}

func (s *CartStore) Count(ctx context.Context) (int, error) {
	cart, err := s.Read(ctx)
	if err != nil {
		return 0, err
	}
	return CartCount(cart), nil
}

func (s *CartStore) Subtotal(ctx context.Context) (int64, error) {
	cart, err := s.Read(ctx)
	if err != nil {
		return 0, err
	}
	return CartSubtotal(cart), nil
}

func (s *CartStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, domain.EmptyCart())
}

func CartCount(cart domain.Cart) int {
	total := 0
	for _, line := range cart.Items {
		total += line.Quantity
	}
	return total
}

func CartSubtotal(cart domain.Cart) int64 {
	var total int64
	for _, line := range cart.Items {
		total += int64(line.Quantity) * line.UnitPriceCOP
	}
	return total
}

// decodeCart rebuilds a cart from stored JSON, coercing every field.
// Malformed input yields the empty cart.
func decodeCart(raw string) domain.Cart {
	var stored map[string]any
	if err := json.Unmarshal([]byte(raw), &stored); err != nil || stored == nil {
		return domain.EmptyCart()
	}

	rawItems, _ := stored["items"].([]any)
	cart := domain.EmptyCart()
	for _, entry := range rawItems {
		fields, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		line, ok := decodeLine(fields)
		if !ok {
			continue
		}
		cart.Items = append(cart.Items, line)
	}

	if len(cart.Items) == 0 {
		return domain.EmptyCart()
	}

	if id, ok := money.ParseInt(stored["restaurant_id"]); ok && id > 0 {
		cart.RestaurantID = &id
	} else {
		for _, line := range cart.Items {
			if line.Restaurant != nil {
				id := *line.Restaurant
				cart.RestaurantID = &id
				break
			}
		}
	}
	return cart
}

func decodeLine(fields map[string]any) (domain.CartLine, bool) {
	id, ok := money.ParseInt(fields["id"])
	if !ok || id == 0 {
		return domain.CartLine{}, false
	}

	name, _ := fields["name"].(string)
	if name == "" {
		name = defaultLineName
	}
	imageURL, _ := fields["image_url"].(string)

	price, hasPrice := fields["unit_price_cop"]
	if !hasPrice {
		price = fields["price_cop"]
	}

	qty, _ := money.ParseInt(fields["quantity"])

	return domain.CartLine{
		ID:           id,
		Name:         name,
		UnitPriceCOP: money.ParseAmount(price),
		ImageURL:     imageURL,
		Quantity:     money.AtLeastOne(qty),
		Restaurant:   optionalInt(fields["restaurant"]),
		Category:     optionalInt(fields["category"]),
	}, true
}

func optionalInt(v any) *int {
	n, ok := money.ParseInt(v)
	if !ok || n <= 0 {
		return nil
	}
	return &n
}

func positive(v *int) *int {
	if v == nil || *v <= 0 {
		return nil
	}
	n := *v
	return &n
}
