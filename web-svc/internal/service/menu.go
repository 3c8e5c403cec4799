package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"noah-food/web-svc/internal/domain"

	"golang.org/x/sync/errgroup"
)

const (
	menuKindCategories = "categories"
	menuKindItems      = "items"
)

type MenuSnapshot struct {
	Categories []domain.MenuCategory `json:"categories"`
	Items      []domain.MenuItem     `json:"items"`
}

// MenuFilter narrows a snapshot the way the menu screen does.
// Zero values disable the corresponding restriction.
type MenuFilter struct {
	RestaurantID int
	CategoryID   int
	Query        string
}

type MenuService struct {
	api   MenuAPI
	state *ClientState
	cache MenuCache
}

// NewMenuService builds the menu adapter. cache may be nil.
func NewMenuService(api MenuAPI, state *ClientState, cache MenuCache) *MenuService {
	return &MenuService{api: api, state: state, cache: cache}
}

func (s *MenuService) ListCategories(ctx context.Context) ([]domain.MenuCategory, error) {
	cfg := s.state.Upstream(ctx)
	var categories []domain.MenuCategory
	if s.loadCached(ctx, cfg.BaseURL, menuKindCategories, &categories) {
		return categories, nil
	}
	categories, err := s.api.ListCategories(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s.storeCached(ctx, cfg.BaseURL, menuKindCategories, categories)
	return categories, nil
}

func (s *MenuService) ListMenuItems(ctx context.Context) ([]domain.MenuItem, error) {
	cfg := s.state.Upstream(ctx)
	var items []domain.MenuItem
	if s.loadCached(ctx, cfg.BaseURL, menuKindItems, &items) {
		return items, nil
	}
	items, err := s.api.ListMenuItems(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s.storeCached(ctx, cfg.BaseURL, menuKindItems, items)
	return items, nil
}

func (s *MenuService) GetMenuItem(ctx context.Context, id int) (*domain.MenuItem, error) {
	return s.api.GetMenuItem(ctx, s.state.Upstream(ctx), id)
}

// ViewItem loads the detail of id, or of the last viewed item when id is 0.
func (s *MenuService) ViewItem(ctx context.Context, id int) (*domain.MenuItem, error) {
	if id <= 0 {
		last, ok := s.state.LastMenuItemID(ctx)
		if !ok {
			return nil, ErrItemNotSelected
		}
		id = last
	}

	item, err := s.GetMenuItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.state.SetLastMenuItemID(ctx, id); err != nil {
		log.Printf("Warning: failed to remember menu item %d: %v", id, err)
	}
	return item, nil
}

// Snapshot fetches categories and items concurrently.
func (s *MenuService) Snapshot(ctx context.Context) (*MenuSnapshot, error) {
	var snapshot MenuSnapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		categories, err := s.ListCategories(gctx)
		if err != nil {
			return err
		}
		snapshot.Categories = categories
		return nil
	})
	g.Go(func() error {
		items, err := s.ListMenuItems(gctx)
		if err != nil {
			return err
		}
		snapshot.Items = items
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, userError(fmt.Sprintf("No se pudo cargar el menu: %s", err.Error()), err)
	}
	return &snapshot, nil
}

// Browse returns the snapshot filtered to the remembered restaurant.
func (s *MenuService) Browse(ctx context.Context, filter MenuFilter) (*MenuSnapshot, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if filter.RestaurantID == 0 {
		if id, ok := s.state.RestaurantID(ctx); ok {
			filter.RestaurantID = id
		}
	}
	filtered := Filter(*snapshot, filter)
	return &filtered, nil
}

// Filter drops inactive entries and applies the restaurant, category and
// free-text restrictions.
func Filter(snapshot MenuSnapshot, filter MenuFilter) MenuSnapshot {
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	out := MenuSnapshot{
		Categories: []domain.MenuCategory{},
		Items:      []domain.MenuItem{},
	}

	for _, c := range snapshot.Categories {
		if c.IsActive != nil && !*c.IsActive {
			continue
		}
		if filter.RestaurantID != 0 && intValue(c.Restaurant) != filter.RestaurantID {
			continue
		}
		out.Categories = append(out.Categories, c)
	}

	for _, item := range snapshot.Items {
		if item.IsActive != nil && !*item.IsActive {
			continue
		}
		if filter.RestaurantID != 0 && intValue(item.Restaurant) != filter.RestaurantID {
			continue
		}
		if filter.CategoryID != 0 && intValue(item.Category) != filter.CategoryID {
			continue
		}
		if query != "" {
			text := strings.ToLower(item.Name + " " + item.Description + " " + item.CategoryName)
			if !strings.Contains(text, query) {
				continue
			}
		}
		out.Items = append(out.Items, item)
	}
	return out
}

func (s *MenuService) loadCached(ctx context.Context, baseURL, kind string, dst any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Load(ctx, s.cache.MenuKey(baseURL, kind), dst)
	if err != nil {
		log.Printf("Warning: menu cache read failed for %s: %v", kind, err)
		return false
	}
	return hit
}

func (s *MenuService) storeCached(ctx context.Context, baseURL, kind string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Store(ctx, s.cache.MenuKey(baseURL, kind), value); err != nil {
		log.Printf("Warning: menu cache write failed for %s: %v", kind, err)
	}
}

func intValue(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
