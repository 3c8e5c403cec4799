package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"noah-food/web-svc/internal/domain"
	"noah-food/web-svc/internal/upstream"
)

const (
	DefaultHandoffDelay = 600 * time.Millisecond
	publishTimeout      = 5 * time.Second

	msgOrderCreated           = "Pedido creado correctamente. Redirigiendo..."
	msgLoginToCheckout        = "Debes iniciar sesion desde Perfil para confirmar pedidos."
	msgRestaurantUndetermined = "No se pudo determinar el restaurante del pedido."

	EventOrderCreated = "order_created"
)

type CheckoutStatus string

const (
	CheckoutIdle       CheckoutStatus = "idle"
	CheckoutSubmitting CheckoutStatus = "submitting"
	CheckoutSucceeded  CheckoutStatus = "succeeded"
	CheckoutFailed     CheckoutStatus = "failed"
)

type CheckoutState struct {
	Status  CheckoutStatus `json:"status"`
	Message string         `json:"message,omitempty"`
	OrderID int            `json:"order_id,omitempty"`
}

// CheckoutInput holds what the customer typed on the checkout screen.
type CheckoutInput struct {
	Notes           string                  `json:"customer_notes"`
	Customer        *domain.CustomerInfo    `json:"customer,omitempty"`
	DeliveryAddress *domain.DeliveryAddress `json:"delivery_address,omitempty"`
	CouponCode      string                  `json:"coupon_code,omitempty"`
}

// Handoff tells the caller where to send the customer after a successful order.
type Handoff struct {
	OrderID     int           `json:"order_id,omitempty"`
	OrderNumber string        `json:"order_number,omitempty"`
	StatusPath  string        `json:"status_path"`
	Message     string        `json:"message"`
	Delay       time.Duration `json:"-"`
	DelayMS     int64         `json:"delay_ms"`
}

type CheckoutService struct {
	mu        sync.Mutex
	current   CheckoutState
	cart      *CartStore
	state     *ClientState
	orders    OrderAPI
	publisher EventPublisher
	delay     time.Duration
	inflight  sync.WaitGroup
}

// NewCheckoutService builds the orchestrator. publisher may be nil.
func NewCheckoutService(cart *CartStore, state *ClientState, orders OrderAPI, publisher EventPublisher, delay time.Duration) *CheckoutService {
	if delay <= 0 {
		delay = DefaultHandoffDelay
	}
	return &CheckoutService{
		current:   CheckoutState{Status: CheckoutIdle},
		cart:      cart,
		state:     state,
		orders:    orders,
		publisher: publisher,
		delay:     delay,
	}
}

func (s *CheckoutService) State() CheckoutState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Submit turns the cart into an order. Empty carts and concurrent submissions
// are rejected without touching the state.
func (s *CheckoutService) Submit(ctx context.Context, input CheckoutInput) (*Handoff, error) {
	s.mu.Lock()
	if s.current.Status == CheckoutSubmitting {
		s.mu.Unlock()
		return nil, ErrSubmitInProgress
	}

	cart, err := s.cart.Read(ctx)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if len(cart.Items) == 0 {
		s.mu.Unlock()
		return nil, ErrEmptyCart
	}

	restaurant := s.resolveRestaurant(ctx, cart)
	if restaurant == 0 {
		s.current = CheckoutState{Status: CheckoutFailed, Message: msgRestaurantUndetermined}
		s.mu.Unlock()
		return nil, userError(msgRestaurantUndetermined, ErrRestaurantUndetermined)
	}

	s.current = CheckoutState{Status: CheckoutSubmitting}
	s.mu.Unlock()

	req := BuildOrderRequest(cart, restaurant, input)
	order, err := s.orders.CreateOrder(ctx, s.state.Upstream(ctx), req)

	s.mu.Lock()
	if err != nil {
		msg := err.Error()
		if upstream.IsAuthError(err) {
			msg = msgLoginToCheckout
		}
		s.current = CheckoutState{Status: CheckoutFailed, Message: msg}
		s.mu.Unlock()
		return nil, userError(msg, err)
	}

	var created domain.Order
	if order != nil {
		created = *order
	}

	if created.ID != 0 {
		if err := s.state.SetLastOrderID(ctx, created.ID); err != nil {
			log.Printf("Warning: failed to remember order %d: %v", created.ID, err)
		}
	}
	if err := s.cart.Clear(ctx); err != nil {
		log.Printf("Warning: failed to clear cart after order %d: %v", created.ID, err)
	}
	s.current = CheckoutState{Status: CheckoutSucceeded, Message: msgOrderCreated, OrderID: created.ID}
	s.mu.Unlock()

	s.publish(ctx, created, req, cart)

	return &Handoff{
		OrderID:     created.ID,
		OrderNumber: created.OrderNumber,
		StatusPath:  StatusPath(created.ID),
		Message:     msgOrderCreated,
		Delay:       s.delay,
		DelayMS:     s.delay.Milliseconds(),
	}, nil
}

func (s *CheckoutService) resolveRestaurant(ctx context.Context, cart domain.Cart) int {
	if cart.RestaurantID != nil && *cart.RestaurantID > 0 {
		return *cart.RestaurantID
	}
	if id, ok := s.state.RestaurantID(ctx); ok && id > 0 {
		return id
	}
	if len(cart.Items) > 0 && cart.Items[0].Restaurant != nil {
		return *cart.Items[0].Restaurant
	}
	return 0
}

// publish emits the order event in the background so a slow broker never
// delays the handoff. The event outlives the request context but is bounded
// by publishTimeout.
func (s *CheckoutService) publish(ctx context.Context, order domain.Order, req domain.OrderCreationRequest, cart domain.Cart) {
	if s.publisher == nil {
		return
	}
	event := domain.OrderEvent{
		Type:         EventOrderCreated,
		OrderID:      order.ID,
		OrderNumber:  order.OrderNumber,
		RestaurantID: req.Restaurant,
		Channel:      req.Channel,
		ItemCount:    CartCount(cart),
		SubtotalCOP:  CartSubtotal(cart),
		Timestamp:    time.Now(),
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := s.publisher.PublishOrderEvent(publishCtx, event); err != nil {
			log.Printf("Warning: failed to publish %s for order %d: %v", EventOrderCreated, order.ID, err)
		}
	}()
}

// Wait blocks until every pending order event has been handed to the publisher.
func (s *CheckoutService) Wait() {
	s.inflight.Wait()
}

// BuildOrderRequest maps the cart lines in order into an order creation payload.
func BuildOrderRequest(cart domain.Cart, restaurant int, input CheckoutInput) domain.OrderCreationRequest {
	lines := make([]domain.OrderRequestLine, 0, len(cart.Items))
	for _, line := range cart.Items {
		lines = append(lines, domain.OrderRequestLine{MenuItemID: line.ID, Quantity: line.Quantity})
	}
	return domain.OrderCreationRequest{
		Restaurant:      restaurant,
		Channel:         domain.ChannelWeb,
		CustomerNotes:   strings.TrimSpace(input.Notes),
		Items:           lines,
		Customer:        input.Customer,
		DeliveryAddress: input.DeliveryAddress,
		CouponCode:      strings.TrimSpace(input.CouponCode),
	}
}

func StatusPath(orderID int) string {
	if orderID == 0 {
		return "/estado.html"
	}
	return fmt.Sprintf("/estado.html?order_id=%d", orderID)
}
