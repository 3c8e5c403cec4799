package service

import (
	"context"
	"log"
	"strings"

	"noah-food/web-svc/internal/domain"
	"noah-food/web-svc/internal/money"
	"noah-food/web-svc/internal/upstream"
)

const (
	maxProfileOrders = 10

	msgCredentialsRequired = "Usuario y contraseña son obligatorios."
	msgLoginFailed         = "Error de inicio de sesion: "
	msgRegisterFailed      = "Error de registro: "
	msgProfileFailed       = "No se pudo cargar el perfil: "
	msgLoggedOut           = "Sesion cerrada correctamente."
	msgNoOrdersYet         = "No tienes pedidos aun."

	guestName     = "Invitado"
	guestSubtitle = "Inicia sesion para ver tu perfil"
	guestPrompt   = "Inicia sesion para ver historial y pagar pedidos."
)

type OrderSummary struct {
	ID         int                `json:"id"`
	Reference  string             `json:"reference"`
	Status     domain.OrderStatus `json:"status"`
	Label      string             `json:"label"`
	Tone       string             `json:"tone"`
	ItemCount  int                `json:"item_count"`
	Total      string             `json:"total"`
	CreatedAt  string             `json:"created_at"`
	StatusPath string             `json:"status_path"`
}

type Profile struct {
	LoggedIn bool             `json:"logged_in"`
	Name     string           `json:"name"`
	Subtitle string           `json:"subtitle"`
	Message  string           `json:"message,omitempty"`
	User     *domain.AuthUser `json:"user,omitempty"`
	Orders   []OrderSummary   `json:"orders"`
}

type SessionService struct {
	auth   AuthAPI
	orders OrderAPI
	state  *ClientState
}

func NewSessionService(auth AuthAPI, orders OrderAPI, state *ClientState) *SessionService {
	return &SessionService{auth: auth, orders: orders, state: state}
}

func (s *SessionService) Login(ctx context.Context, username, password string) (*Profile, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, userError(msgCredentialsRequired, ErrCredentialsRequired)
	}

	result, err := s.auth.Login(ctx, s.state.Upstream(ctx), username, password)
	if err != nil {
		return nil, userError(msgLoginFailed+err.Error(), err)
	}
	if err := s.remember(ctx, result); err != nil {
		return nil, err
	}
	return s.Profile(ctx)
}

func (s *SessionService) Register(ctx context.Context, req domain.RegisterRequest) (*Profile, error) {
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return nil, userError(msgCredentialsRequired, ErrCredentialsRequired)
	}

	result, err := s.auth.Register(ctx, s.state.Upstream(ctx), req)
	if err != nil {
		return nil, userError(msgRegisterFailed+err.Error(), err)
	}
	if err := s.remember(ctx, result); err != nil {
		return nil, err
	}
	return s.Profile(ctx)
}

func (s *SessionService) remember(ctx context.Context, result *domain.AuthResult) error {
	if result == nil {
		return s.state.ClearCredential(ctx)
	}
	if err := s.state.SetCredential(ctx, result.Token); err != nil {
		return err
	}
	if result.User.CustomerID != nil && *result.User.CustomerID > 0 {
		if err := s.state.SetCustomerID(ctx, *result.User.CustomerID); err != nil {
			log.Printf("Warning: failed to remember customer %d: %v", *result.User.CustomerID, err)
		}
	}
	return nil
}

// Logout always forgets the local credential, even when upstream fails.
func (s *SessionService) Logout(ctx context.Context) error {
	if err := s.auth.Logout(ctx, s.state.Upstream(ctx)); err != nil {
		log.Printf("Warning: upstream logout failed: %v", err)
	}
	if err := s.state.ClearCredential(ctx); err != nil {
		return err
	}
	if err := s.state.ClearCustomerID(ctx); err != nil {
		log.Printf("Warning: failed to clear customer id: %v", err)
	}
	return nil
}

// Profile loads the signed in customer and their recent orders. An
// authorization failure drops the credential and returns the guest profile.
func (s *SessionService) Profile(ctx context.Context) (*Profile, error) {
	cfg := s.state.Upstream(ctx)
	if cfg.Credential == "" {
		return GuestProfile(guestPrompt), nil
	}

	user, err := s.auth.Me(ctx, cfg)
	if err == nil {
		var orders []domain.Order
		orders, err = s.orders.ListOrders(ctx, cfg)
		if err == nil {
			return buildProfile(user, orders), nil
		}
	}

	if upstream.IsAuthError(err) {
		if clearErr := s.state.ClearCredential(ctx); clearErr != nil {
			log.Printf("Warning: failed to clear credential: %v", clearErr)
		}
		return GuestProfile(guestPrompt), nil
	}
	return nil, userError(msgProfileFailed+err.Error(), err)
}

// GuestProfile is what a customer without a valid session sees.
func GuestProfile(message string) *Profile {
	return &Profile{
		Name:     guestName,
		Subtitle: guestSubtitle,
		Message:  message,
		Orders:   []OrderSummary{},
	}
}

// LoggedOutProfile is shown right after a logout.
func LoggedOutProfile() *Profile {
	return GuestProfile(msgLoggedOut)
}

func buildProfile(user *domain.AuthUser, orders []domain.Order) *Profile {
	if user == nil {
		user = &domain.AuthUser{}
	}
	name := firstNonEmpty(user.CustomerName, user.Username, "Usuario")
	profile := &Profile{
		LoggedIn: true,
		Name:     name,
		Subtitle: firstNonEmpty(user.Email, user.Username),
		User:     user,
		Orders:   []OrderSummary{},
	}

	if len(orders) > maxProfileOrders {
		orders = orders[:maxProfileOrders]
	}
	for _, order := range orders {
		profile.Orders = append(profile.Orders, summarize(order))
	}
	if len(profile.Orders) == 0 {
		profile.Message = msgNoOrdersYet
	}
	return profile
}

func summarize(order domain.Order) OrderSummary {
	qty := 0
	for _, item := range order.Items {
		if item.Quantity > 0 {
			qty += item.Quantity
		}
	}
	label := StatusLabel(order.Status)
	if order.Status == "" {
		label = "SIN ESTADO"
	}
	return OrderSummary{
		ID:         order.ID,
		Reference:  "Pedido #" + OrderReference(order),
		Status:     order.Status,
		Label:      label,
		Tone:       StatusTone(order.Status),
		ItemCount:  qty,
		Total:      money.FormatCOP(order.TotalCOP),
		CreatedAt:  money.FormatTimestamp(order.CreatedAt),
		StatusPath: StatusPath(order.ID),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
