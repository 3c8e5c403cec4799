package service

import "time"

type UpstreamAPI interface {
	MenuAPI
	OrderAPI
	AuthAPI
}

// Dependencies are shared by every client workspace.
type Dependencies struct {
	API            UpstreamAPI
	MenuCache      MenuCache
	Publisher      EventPublisher
	DefaultBaseURL string
	HandoffDelay   time.Duration
}

// Workspace bundles the services of one client over its own storage.
type Workspace struct {
	State    *ClientState
	Cart     CartServiceInterface
	Menu     MenuServiceInterface
	Checkout CheckoutServiceInterface
	Status   StatusServiceInterface
	Session  SessionServiceInterface
}

func NewWorkspace(store Storage, deps Dependencies) *Workspace {
	state := NewClientState(store, deps.DefaultBaseURL)
	cart := NewCartStore(store, state)
	return &Workspace{
		State:    state,
		Cart:     cart,
		Menu:     NewMenuService(deps.API, state, deps.MenuCache),
		Checkout: NewCheckoutService(cart, state, deps.API, deps.Publisher, deps.HandoffDelay),
		Status:   NewStatusService(deps.API, state),
		Session:  NewSessionService(deps.API, deps.API, state),
	}
}
