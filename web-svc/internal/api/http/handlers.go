package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"noah-food/web-svc/internal/domain"
	"noah-food/web-svc/internal/money"
	"noah-food/web-svc/internal/service"

	"github.com/gorilla/mux"
)

const msgReplaceCart = "Tu carrito tiene items de otro restaurante. Vaciar carrito?"

type Handler struct {
	Workspaces   *Registry
	QR           service.QRGenerator
	PollInterval time.Duration
}

func NewHandler(workspaces *Registry, qr service.QRGenerator, pollInterval time.Duration) *Handler {
	return &Handler{Workspaces: workspaces, QR: qr, PollInterval: pollInterval}
}

func (h *Handler) workspace(r *http.Request) *service.Workspace {
	return h.Workspaces.Get(clientIDFrom(r.Context()))
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(withClientID)

	api.HandleFunc("/menu", h.browseMenu).Methods("GET")
	api.HandleFunc("/menu/categories", h.listCategories).Methods("GET")
	api.HandleFunc("/menu/items", h.listMenuItems).Methods("GET")
	api.HandleFunc("/menu/items/last", h.lastMenuItem).Methods("GET")
	api.HandleFunc("/menu/items/{id:[0-9]+}", h.getMenuItem).Methods("GET")

	api.HandleFunc("/cart", h.getCart).Methods("GET")
	api.HandleFunc("/cart", h.clearCart).Methods("DELETE")
	api.HandleFunc("/cart/items", h.addCartItem).Methods("POST")
	api.HandleFunc("/cart/items/{id:[0-9]+}", h.setCartQuantity).Methods("PUT")
	api.HandleFunc("/cart/items/{id:[0-9]+}", h.removeCartItem).Methods("DELETE")
	api.HandleFunc("/cart/items/{id:[0-9]+}/increment", h.incrementCartItem).Methods("POST")
	api.HandleFunc("/cart/items/{id:[0-9]+}/decrement", h.decrementCartItem).Methods("POST")

	api.HandleFunc("/checkout", h.getCheckout).Methods("GET")
	api.HandleFunc("/checkout", h.submitCheckout).Methods("POST")

	api.HandleFunc("/orders/status", h.getOrderStatus).Methods("GET")
	api.HandleFunc("/orders/status/ws", h.streamOrderStatus).Methods("GET")
	api.HandleFunc("/orders/{ref}/qrcode", h.getOrderQRCode).Methods("GET")

	api.HandleFunc("/auth/login", h.login).Methods("POST")
	api.HandleFunc("/auth/register", h.register).Methods("POST")
	api.HandleFunc("/auth/logout", h.logout).Methods("POST")
	api.HandleFunc("/profile", h.getProfile).Methods("GET")

	api.HandleFunc("/settings/api-base", h.setAPIBase).Methods("PUT")
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "web-svc",
	})
}

func (h *Handler) browseMenu(w http.ResponseWriter, r *http.Request) {
	filter := service.MenuFilter{Query: r.URL.Query().Get("q")}
	if id, ok := money.ParseInt(r.URL.Query().Get("category")); ok {
		filter.CategoryID = id
	}

	snapshot, err := h.workspace(r).Menu.Browse(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.workspace(r).Menu.ListCategories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) listMenuItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.workspace(r).Menu.ListMenuItems(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) getMenuItem(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	h.viewItem(w, r, id)
}

func (h *Handler) lastMenuItem(w http.ResponseWriter, r *http.Request) {
	h.viewItem(w, r, 0)
}

func (h *Handler) viewItem(w http.ResponseWriter, r *http.Request, id int) {
	item, err := h.workspace(r).Menu.ViewItem(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

type cartResponse struct {
	Cart        domain.Cart `json:"cart"`
	Count       int         `json:"count"`
	SubtotalCOP int64       `json:"subtotal_cop"`
	Subtotal    string      `json:"subtotal"`
}

func newCartResponse(cart domain.Cart) cartResponse {
	subtotal := service.CartSubtotal(cart)
	return cartResponse{
		Cart:        cart,
		Count:       service.CartCount(cart),
		SubtotalCOP: subtotal,
		Subtotal:    money.FormatCOP(subtotal),
	}
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.workspace(r).Cart.Read(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(cart))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.workspace(r).Cart.Clear(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(domain.EmptyCart()))
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Item           *domain.MenuItem `json:"item"`
		MenuItemID     int              `json:"menu_item_id"`
		Quantity       int              `json:"quantity"`
		ConfirmReplace bool             `json:"confirm_replace"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
		return
	}

	ws := h.workspace(r)
	item := payload.Item
	if item == nil || item.ID == 0 {
		if payload.MenuItemID == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing item or menu_item_id"})
			return
		}
		fetched, err := ws.Menu.GetMenuItem(r.Context(), payload.MenuItemID)
		if err != nil {
			writeError(w, err)
			return
		}
		item = fetched
	}

	result, err := ws.Cart.Add(r.Context(), *item, payload.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}

	if result.Outcome == service.OutcomeNeedsConfirmation {
		if !payload.ConfirmReplace {
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":   msgReplaceCart,
				"pending": result.Pending,
				"cart":    newCartResponse(result.Cart),
			})
			return
		}
		cart, err := ws.Cart.Confirm(r.Context(), *result.Pending)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newCartResponse(cart))
		return
	}

	writeJSON(w, http.StatusOK, newCartResponse(result.Cart))
}

func (h *Handler) setCartQuantity(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var payload struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
		return
	}

	cart, err := h.workspace(r).Cart.SetQuantity(r.Context(), id, payload.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(cart))
}

func (h *Handler) incrementCartItem(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	cart, err := h.workspace(r).Cart.Increment(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(cart))
}

func (h *Handler) decrementCartItem(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	cart, err := h.workspace(r).Cart.Decrement(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(cart))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	cart, err := h.workspace(r).Cart.Remove(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(cart))
}

func (h *Handler) getCheckout(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	cart, err := ws.Cart.Read(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	state := ws.Checkout.State()
	writeJSON(w, http.StatusOK, map[string]any{
		"state":      state,
		"can_submit": len(cart.Items) > 0 && state.Status != service.CheckoutSubmitting,
		"summary":    newCartResponse(cart),
	})
}

func (h *Handler) submitCheckout(w http.ResponseWriter, r *http.Request) {
	var input service.CheckoutInput
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
			return
		}
	}

	handoff, err := h.workspace(r).Checkout.Submit(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, handoff)
}

func (h *Handler) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("order_id")
	if ref == "" {
		ref = r.URL.Query().Get("id")
	}

	view, err := h.workspace(r).Status.Resolve(r.Context(), ref)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) getOrderQRCode(w http.ResponseWriter, r *http.Request) {
	ref := strings.TrimSpace(mux.Vars(r)["ref"])
	png, err := h.QR.Generate(ref)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(png); err != nil {
		log.Printf("Warning: failed to write qr code for order %s: %v", ref, err)
	}
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
		return
	}

	profile, err := h.workspace(r).Session.Login(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
		return
	}

	profile, err := h.workspace(r).Session.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.workspace(r).Session.Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, service.LoggedOutProfile())
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.workspace(r).Session.Profile(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) setAPIBase(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		APIBaseURL string `json:"api_base_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
		return
	}

	ws := h.workspace(r)
	if err := ws.State.SetBaseURL(r.Context(), payload.APIBaseURL); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"api_base_url": ws.State.BaseURL(r.Context())})
}
