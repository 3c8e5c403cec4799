package domain

import "time"

type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusInProgress OrderStatus = "IN_PROGRESS"
	StatusReady      OrderStatus = "READY"
	StatusCompleted  OrderStatus = "COMPLETED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

// ChannelWeb tags orders placed from this client.
const ChannelWeb = "web"

type Cart struct {
	RestaurantID *int       `json:"restaurant_id"`
	Items        []CartLine `json:"items"`
}

// EmptyCart returns the canonical empty cart.
func EmptyCart() Cart {
	return Cart{RestaurantID: nil, Items: []CartLine{}}
}

type CartLine struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	UnitPriceCOP int64  `json:"unit_price_cop"`
	ImageURL     string `json:"image_url"`
	Quantity     int    `json:"quantity"`
	Restaurant   *int   `json:"restaurant"`
	Category     *int   `json:"category"`
}

type MenuCategory struct {
	ID          int    `json:"id"`
	Restaurant  *int   `json:"restaurant,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	SortOrder   int    `json:"sort_order,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

type MenuItem struct {
	ID           int    `json:"id"`
	Restaurant   *int   `json:"restaurant"`
	Category     *int   `json:"category"`
	CategoryName string `json:"category_name,omitempty"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	PriceCOP     int64  `json:"price_cop"`
	ImageURL     string `json:"image_url,omitempty"`
	IsActive     *bool  `json:"is_active,omitempty"`
}

type Order struct {
	ID             int         `json:"id"`
	OrderNumber    string      `json:"order_number"`
	Restaurant     int         `json:"restaurant"`
	Status         OrderStatus `json:"status"`
	SubtotalCOP    int64       `json:"subtotal_cop"`
	DiscountCOP    int64       `json:"discount_cop"`
	DeliveryFeeCOP int64       `json:"delivery_fee_cop"`
	TotalCOP       int64       `json:"total_cop"`
	CustomerNotes  string      `json:"customer_notes,omitempty"`
	Items          []OrderItem `json:"items"`

	CreatedAt    string `json:"created_at,omitempty"`
	PendingAt    string `json:"pending_at,omitempty"`
	InProgressAt string `json:"in_progress_at,omitempty"`
	ReadyAt      string `json:"ready_at,omitempty"`
	CompletedAt  string `json:"completed_at,omitempty"`
	CancelledAt  string `json:"cancelled_at,omitempty"`
}

type OrderItem struct {
	ID           int    `json:"id"`
	MenuItem     int    `json:"menu_item"`
	MenuItemName string `json:"menu_item_name"`
	Quantity     int    `json:"quantity"`
	UnitPriceCOP int64  `json:"unit_price_cop"`
	LineTotalCOP int64  `json:"line_total_cop"`
}

type OrderCreationRequest struct {
	Restaurant      int                `json:"restaurant"`
	Channel         string             `json:"channel"`
	CustomerNotes   string             `json:"customer_notes"`
	Items           []OrderRequestLine `json:"items"`
	Customer        *CustomerInfo      `json:"customer,omitempty"`
	DeliveryAddress *DeliveryAddress   `json:"delivery_address,omitempty"`
	CouponCode      string             `json:"coupon_code,omitempty"`
}

type OrderRequestLine struct {
	MenuItemID int `json:"menu_item_id"`
	Quantity   int `json:"quantity"`
}

type CustomerInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

type DeliveryAddress struct {
	AddressLine  string `json:"address_line"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

type AuthUser struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	IsStaff      bool   `json:"is_staff"`
	CustomerID   *int   `json:"customer_id"`
	CustomerName string `json:"customer_name"`
}

type AuthResult struct {
	Token string   `json:"token"`
	User  AuthUser `json:"user"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

type OrderEvent struct {
	Type         string    `json:"type"`
	OrderID      int       `json:"order_id"`
	OrderNumber  string    `json:"order_number"`
	RestaurantID int       `json:"restaurant_id"`
	Channel      string    `json:"channel"`
	ItemCount    int       `json:"item_count"`
	SubtotalCOP  int64     `json:"subtotal_cop"`
	Timestamp    time.Time `json:"timestamp"`
}
