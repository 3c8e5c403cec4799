package service

import (
	"context"
	"log"
	"strconv"
	"strings"

	"noah-food/web-svc/internal/domain"
	"noah-food/web-svc/internal/money"
	"noah-food/web-svc/internal/upstream"
)

const (
	msgNoOrders          = "No hay pedidos para mostrar."
	msgUnauthorizedOrder = "No autorizado para consultar pedidos. Inicia sesion en Perfil."
	msgOrderLookupFailed = "No se pudo consultar pedido: "
	msgOrderCancelled    = "Este pedido fue cancelado."
	defaultOrderTitle    = "Pedido Noah Food"
	timestampPlaceholder = "Pendiente"
)

const (
	ToneActive  = "active"
	ToneSuccess = "success"
	ToneDanger  = "danger"
)

var statusLabels = map[domain.OrderStatus]string{
	domain.StatusPending:    "PENDIENTE",
	domain.StatusInProgress: "EN PREPARACION",
	domain.StatusReady:      "LISTO",
	domain.StatusCompleted:  "ENTREGADO",
	domain.StatusCancelled:  "CANCELADO",
}

type TimelineStep struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Done    bool   `json:"done"`
	At      string `json:"at,omitempty"`
	Display string `json:"display"`
}

// StatusView is everything the order status screen shows.
type StatusView struct {
	Empty   bool   `json:"empty"`
	Message string `json:"message,omitempty"`

	Order       *domain.Order      `json:"order,omitempty"`
	Status      domain.OrderStatus `json:"status,omitempty"`
	Label       string             `json:"label,omitempty"`
	Tone        string             `json:"tone,omitempty"`
	Reference   string             `json:"reference,omitempty"`
	Title       string             `json:"title,omitempty"`
	ItemCount   int                `json:"item_count"`
	TotalCOP    int64              `json:"total_cop"`
	Total       string             `json:"total,omitempty"`
	Summary     string             `json:"summary,omitempty"`
	Timeline    []TimelineStep     `json:"timeline,omitempty"`
	Cancelled   bool               `json:"cancelled"`
	CancelledAt string             `json:"cancelled_at,omitempty"`
	Terminal    bool               `json:"terminal"`
}

type StatusService struct {
	orders OrderAPI
	state  *ClientState
}

func NewStatusService(orders OrderAPI, state *ClientState) *StatusService {
	return &StatusService{orders: orders, state: state}
}

// Resolve finds the order to show: ref, else the remembered order, else the
// first order of the customer's list.
func (s *StatusService) Resolve(ctx context.Context, ref string) (*StatusView, error) {
	order, err := s.lookup(ctx, strings.TrimSpace(ref))
	if err != nil {
		if upstream.IsAuthError(err) {
			return nil, userError(msgUnauthorizedOrder, err)
		}
		return nil, userError(msgOrderLookupFailed+err.Error(), err)
	}
	if order == nil {
		return &StatusView{Empty: true, Message: msgNoOrders}, nil
	}

	if order.ID != 0 {
		if err := s.state.SetLastOrderID(ctx, order.ID); err != nil {
			log.Printf("Warning: failed to remember order %d: %v", order.ID, err)
		}
	}
	view := BuildStatusView(*order)
	return &view, nil
}

func (s *StatusService) lookup(ctx context.Context, ref string) (*domain.Order, error) {
	cfg := s.state.Upstream(ctx)
	if ref == "" {
		if id, ok := s.state.LastOrderID(ctx); ok {
			ref = strconv.Itoa(id)
		}
	}
	if ref != "" {
		return s.orders.GetOrder(ctx, cfg, ref)
	}

	orders, err := s.orders.ListOrders(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}
	// The list is assumed to be most recent first.
	return &orders[0], nil
}

// BuildStatusView derives labels and the four step timeline from an order.
func BuildStatusView(order domain.Order) StatusView {
	status := order.Status
	if status == "" {
		status = domain.StatusPending
	}

	itemCount := 0
	for _, item := range order.Items {
		if item.Quantity > 0 {
			itemCount += item.Quantity
		}
	}
	total := order.TotalCOP
	if total < 0 {
		total = 0
	}

	view := StatusView{
		Order:     &order,
		Status:    status,
		Label:     StatusLabel(status),
		Tone:      StatusTone(status),
		Reference: "#" + OrderReference(order),
		Title:     orderTitle(order),
		ItemCount: itemCount,
		TotalCOP:  total,
		Total:     money.FormatCOP(total),
		Timeline:  Timeline(order, status),
		Terminal:  IsTerminal(status),
	}
	view.Summary = strconv.Itoa(itemCount) + " items - " + view.Total

	if status == domain.StatusCancelled {
		view.Cancelled = true
		view.Message = msgOrderCancelled
		view.CancelledAt = order.CancelledAt
	}
	return view
}

func Timeline(order domain.Order, status domain.OrderStatus) []TimelineStep {
	created := order.PendingAt
	if created == "" {
		created = order.CreatedAt
	}
	return []TimelineStep{
		step("new", "Nuevo", true, created),
		step("in_progress", "Preparacion", status == domain.StatusInProgress || status == domain.StatusReady || status == domain.StatusCompleted, order.InProgressAt),
		step("ready", "Listo", status == domain.StatusReady || status == domain.StatusCompleted, order.ReadyAt),
		step("completed", "Entregado", status == domain.StatusCompleted, order.CompletedAt),
	}
}

func step(key, label string, done bool, at string) TimelineStep {
	display := timestampPlaceholder
	if strings.TrimSpace(at) != "" {
		display = money.FormatTimestamp(at)
	}
	return TimelineStep{Key: key, Label: label, Done: done, At: at, Display: display}
}

// StatusLabel translates a known status. Unknown values pass through.
func StatusLabel(status domain.OrderStatus) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return string(status)
}

func StatusTone(status domain.OrderStatus) string {
	switch status {
	case domain.StatusCompleted:
		return ToneSuccess
	case domain.StatusCancelled:
		return ToneDanger
	default:
		return ToneActive
	}
}

func IsTerminal(status domain.OrderStatus) bool {
	return status == domain.StatusCompleted || status == domain.StatusCancelled
}

// OrderReference prefers the public order number over the numeric id.
func OrderReference(order domain.Order) string {
	if order.OrderNumber != "" {
		return order.OrderNumber
	}
	return strconv.Itoa(order.ID)
}

func orderTitle(order domain.Order) string {
	names := make([]string, 0, 2)
	for _, item := range order.Items {
		if item.MenuItemName == "" {
			continue
		}
		names = append(names, item.MenuItemName)
		if len(names) == 2 {
			break
		}
	}
	if len(names) == 0 {
		return defaultOrderTitle
	}
	return strings.Join(names, " + ")
}
