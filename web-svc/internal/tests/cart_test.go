package tests

import (
	"context"
	"errors"
	"testing"

	"noah-food/web-svc/internal/domain"
	"noah-food/web-svc/internal/mocks"
	"noah-food/web-svc/internal/service"
	"noah-food/web-svc/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "http://upstream.test/api"

func intPtr(v int) *int {
	return &v
}

func menuItem(id, restaurant int, price int64) domain.MenuItem {
	return domain.MenuItem{
		ID:         id,
		Restaurant: intPtr(restaurant),
		Category:   intPtr(1),
		Name:       "Item",
		PriceCOP:   price,
	}
}

func newCart(t *testing.T) (*service.CartStore, *service.ClientState, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	state := service.NewClientState(store, testBaseURL)
	return service.NewCartStore(store, state), state, store
}

func TestCartStore_CountAndSubtotal(t *testing.T) {
	cart, _, _ := newCart(t)
	ctx := context.Background()

	_, err := cart.Add(ctx, menuItem(10, 3, 15000), 2)
	require.NoError(t, err)
	_, err = cart.Add(ctx, menuItem(11, 3, 8000), 1)
	require.NoError(t, err)

	count, err := cart.Count(ctx)
	require.NoError(t, err)
	subtotal, err := cart.Subtotal(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, count)
	assert.Equal(t, int64(38000), subtotal)
}

func TestCartStore_Add(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		setup       func(cart *service.CartStore)
		item        domain.MenuItem
		qty         int
		wantOutcome service.AddOutcome
		wantLines   int
		wantQty     int
	}{
		{
			name:        "adopts_restaurant_on_empty_cart",
			setup:       func(cart *service.CartStore) {},
			item:        menuItem(1, 5, 1000),
			qty:         1,
			wantOutcome: service.OutcomeAdded,
			wantLines:   1,
			wantQty:     1,
		},
		{
			name:        "quantity_floored_to_one",
			setup:       func(cart *service.CartStore) {},
			item:        menuItem(1, 5, 1000),
			qty:         -3,
			wantOutcome: service.OutcomeAdded,
			wantLines:   1,
			wantQty:     1,
		},
		{
			name: "same_item_increments_quantity",
			setup: func(cart *service.CartStore) {
				_, _ = cart.Add(ctx, menuItem(1, 5, 1000), 2)
			},
			item:        menuItem(1, 5, 1000),
			qty:         3,
			wantOutcome: service.OutcomeAdded,
			wantLines:   1,
			wantQty:     5,
		},
		{
			name: "other_restaurant_needs_confirmation",
			setup: func(cart *service.CartStore) {
				_, _ = cart.Add(ctx, menuItem(1, 5, 1000), 2)
			},
			item:        menuItem(2, 6, 500),
			qty:         1,
			wantOutcome: service.OutcomeNeedsConfirmation,
			wantLines:   1,
			wantQty:     2,
		},
		{
			name: "item_without_restaurant_joins_cart",
			setup: func(cart *service.CartStore) {
				_, _ = cart.Add(ctx, menuItem(1, 5, 1000), 1)
			},
			item:        domain.MenuItem{ID: 2, Name: "Agua", PriceCOP: 3000},
			qty:         1,
			wantOutcome: service.OutcomeAdded,
			wantLines:   2,
			wantQty:     1,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			cart, _, _ := newCart(t)
			testCase.setup(cart)

			result, err := cart.Add(ctx, testCase.item, testCase.qty)
			require.NoError(t, err)
			assert.Equal(t, testCase.wantOutcome, result.Outcome)

			stored, err := cart.Read(ctx)
			require.NoError(t, err)
			assert.Len(t, stored.Items, testCase.wantLines)
			assert.Equal(t, testCase.wantQty, stored.Items[len(stored.Items)-1].Quantity)
			require.NotNil(t, stored.RestaurantID)
		})
	}
}

func TestCartStore_AddRemembersRestaurant(t *testing.T) {
	cart, state, _ := newCart(t)
	ctx := context.Background()

	result, err := cart.Add(ctx, menuItem(1, 7, 1000), 1)
	require.NoError(t, err)
	require.NotNil(t, result.Cart.RestaurantID)
	assert.Equal(t, 7, *result.Cart.RestaurantID)

	remembered, ok := state.RestaurantID(ctx)
	assert.True(t, ok)
	assert.Equal(t, 7, remembered)
}

func TestCartStore_ConflictLeavesStorageUntouched(t *testing.T) {
	cart, _, store := newCart(t)
	ctx := context.Background()

	_, err := cart.Add(ctx, menuItem(1, 5, 1000), 2)
	require.NoError(t, err)
	before, _, _ := store.Get(ctx, service.KeyCart)

	result, err := cart.Add(ctx, menuItem(2, 6, 500), 1)
	require.NoError(t, err)
	require.Equal(t, service.OutcomeNeedsConfirmation, result.Outcome)
	require.NotNil(t, result.Pending)
	assert.Equal(t, 5, result.Pending.CurrentRestaurantID)
	assert.Equal(t, 6, result.Pending.NewRestaurantID)

	after, _, _ := store.Get(ctx, service.KeyCart)
	assert.Equal(t, before, after)
}

func TestCartStore_ConfirmReplacesCart(t *testing.T) {
	cart, _, _ := newCart(t)
	ctx := context.Background()

	_, err := cart.Add(ctx, menuItem(1, 5, 1000), 2)
	require.NoError(t, err)
	result, err := cart.Add(ctx, menuItem(2, 6, 500), 4)
	require.NoError(t, err)

	replaced, err := cart.Confirm(ctx, *result.Pending)
	require.NoError(t, err)
	require.Len(t, replaced.Items, 1)
	assert.Equal(t, 2, replaced.Items[0].ID)
	assert.Equal(t, 4, replaced.Items[0].Quantity)
	require.NotNil(t, replaced.RestaurantID)
	assert.Equal(t, 6, *replaced.RestaurantID)
}

func TestCartStore_AddConfirmed(t *testing.T) {
	ctx := context.Background()

	t.Run("declined", func(t *testing.T) {
		cart, _, _ := newCart(t)
		_, err := cart.Add(ctx, menuItem(1, 5, 1000), 1)
		require.NoError(t, err)

		asked := false
		got, err := cart.AddConfirmed(ctx, menuItem(2, 6, 500), 1, func(service.PendingChange) bool {
			asked = true
			return false
		})
		require.NoError(t, err)
		assert.True(t, asked)
		assert.Nil(t, got)

		stored, _ := cart.Read(ctx)
		require.Len(t, stored.Items, 1)
		assert.Equal(t, 1, stored.Items[0].ID)
	})

	t.Run("accepted", func(t *testing.T) {
		cart, _, _ := newCart(t)
		_, err := cart.Add(ctx, menuItem(1, 5, 1000), 1)
		require.NoError(t, err)

		got, err := cart.AddConfirmed(ctx, menuItem(2, 6, 500), 1, func(service.PendingChange) bool { return true })
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Len(t, got.Items, 1)
		assert.Equal(t, 6, *got.RestaurantID)
	})
}

func TestCartStore_SetQuantity(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name           string
		id             int
		qty            int
		wantLines      int
		wantRestaurant bool
	}{
		{name: "set_exact", id: 1, qty: 9, wantLines: 2, wantRestaurant: true},
		{name: "zero_removes_line", id: 1, qty: 0, wantLines: 1, wantRestaurant: true},
		{name: "negative_removes_line", id: 2, qty: -1, wantLines: 1, wantRestaurant: true},
		{name: "unknown_id_keeps_cart", id: 99, qty: 3, wantLines: 2, wantRestaurant: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			cart, _, _ := newCart(t)
			_, _ = cart.Add(ctx, menuItem(1, 5, 1000), 1)
			_, _ = cart.Add(ctx, menuItem(2, 5, 2000), 1)

			got, err := cart.SetQuantity(ctx, testCase.id, testCase.qty)
			require.NoError(t, err)
			assert.Len(t, got.Items, testCase.wantLines)
			assert.Equal(t, testCase.wantRestaurant, got.RestaurantID != nil)
			for _, line := range got.Items {
				assert.GreaterOrEqual(t, line.Quantity, 1)
			}
		})
	}
}

func TestCartStore_EmptyingResetsRestaurant(t *testing.T) {
	cart, _, _ := newCart(t)
	ctx := context.Background()

	_, err := cart.Add(ctx, menuItem(1, 5, 1000), 1)
	require.NoError(t, err)

	got, err := cart.Decrement(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
	assert.Nil(t, got.RestaurantID)

	stored, err := cart.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.EmptyCart(), stored)
}

func TestCartStore_IncrementAndRemove(t *testing.T) {
	cart, _, _ := newCart(t)
	ctx := context.Background()

	_, _ = cart.Add(ctx, menuItem(1, 5, 1000), 1)
	_, _ = cart.Add(ctx, menuItem(2, 5, 2000), 1)

	got, err := cart.Increment(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Items[0].Quantity)

	got, err = cart.Remove(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 1, got.Items[0].ID)

	got, err = cart.Increment(ctx, 42)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)
}

func TestCartStore_Clear(t *testing.T) {
	cart, _, _ := newCart(t)
	ctx := context.Background()

	_, _ = cart.Add(ctx, menuItem(1, 5, 1000), 3)
	require.NoError(t, cart.Clear(ctx))

	count, err := cart.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	subtotal, err := cart.Subtotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), subtotal)
}

func TestCartStore_Read(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		stored  string
		present bool
		want    domain.Cart
	}{
		{
			name:    "missing",
			present: false,
			want:    domain.EmptyCart(),
		},
		{
			name:    "corrupted_json",
			stored:  "{not json",
			present: true,
			want:    domain.EmptyCart(),
		},
		{
			name:    "items_not_a_list",
			stored:  `{"restaurant_id":3,"items":"nope"}`,
			present: true,
			want:    domain.EmptyCart(),
		},
		{
			name:    "top_level_array",
			stored:  `[1,2,3]`,
			present: true,
			want:    domain.EmptyCart(),
		},
		{
			name:    "coerces_fields_and_drops_lines_without_id",
			stored:  `{"restaurant_id":"3","items":[{"id":"10","price_cop":"15000","quantity":0,"restaurant":3},{"name":"ghost"},{"id":0}]}`,
			present: true,
			want: domain.Cart{
				RestaurantID: intPtr(3),
				Items: []domain.CartLine{
					{ID: 10, Name: "Producto", UnitPriceCOP: 15000, Quantity: 1, Restaurant: intPtr(3)},
				},
			},
		},
		{
			name:    "stale_restaurant_on_empty_cart",
			stored:  `{"restaurant_id":3,"items":[]}`,
			present: true,
			want:    domain.EmptyCart(),
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			if testCase.present {
				require.NoError(t, store.Set(ctx, service.KeyCart, testCase.stored))
			}
			cart := service.NewCartStore(store, service.NewClientState(store, testBaseURL))

			got, err := cart.Read(ctx)
			require.NoError(t, err)
			assert.Equal(t, testCase.want, got)
		})
	}
}

func TestCartStore_RoundTrip(t *testing.T) {
	cart, _, _ := newCart(t)
	ctx := context.Background()

	first, err := cart.Add(ctx, menuItem(10, 3, 15000), 2)
	require.NoError(t, err)
	second, err := cart.Add(ctx, menuItem(11, 3, 8000), 1)
	require.NoError(t, err)
	assert.Len(t, first.Cart.Items, 1)

	stored, err := cart.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.Cart, stored)
}

func TestCartStore_StorageErrorSurfaces(t *testing.T) {
	store := mocks.NewStorage(t)
	ctx := context.Background()
	cart := service.NewCartStore(store, service.NewClientState(store, testBaseURL))

	store.On("Get", mock.Anything, service.KeyCart).Return("", false, errors.New("disk gone")).Once()

	_, err := cart.Read(ctx)
	assert.ErrorContains(t, err, "disk gone")
}

func TestCartStore_AddWithoutRestaurant(t *testing.T) {
	ctx := context.Background()
	water := domain.MenuItem{ID: 7, Name: "Agua", PriceCOP: 3000}

	t.Run("empty_cart_without_remembered_restaurant_is_rejected", func(t *testing.T) {
		cart, _, store := newCart(t)

		_, err := cart.Add(ctx, water, 1)
		assert.ErrorIs(t, err, service.ErrItemRestaurantUnknown)

		_, ok, _ := store.Get(ctx, service.KeyCart)
		assert.False(t, ok)
		stored, err := cart.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.EmptyCart(), stored)
	})

	t.Run("empty_cart_adopts_remembered_restaurant", func(t *testing.T) {
		cart, state, _ := newCart(t)
		require.NoError(t, state.SetRestaurantID(ctx, 4))

		result, err := cart.Add(ctx, water, 2)
		require.NoError(t, err)
		require.NotNil(t, result.Cart.RestaurantID)
		assert.Equal(t, 4, *result.Cart.RestaurantID)

		stored, err := cart.Read(ctx)
		require.NoError(t, err)
		require.Len(t, stored.Items, 1)
		require.NotNil(t, stored.RestaurantID)
		assert.Equal(t, 4, *stored.RestaurantID)
		assert.Equal(t, result.Cart, stored)
	})
}

func TestCartStore_RejectsNonPositiveItemID(t *testing.T) {
	ctx := context.Background()

	for _, id := range []int{0, -4} {
		cart, _, store := newCart(t)

		_, err := cart.Add(ctx, menuItem(id, 3, 1000), 1)
		assert.ErrorIs(t, err, service.ErrInvalidMenuItem)

		_, err = cart.Confirm(ctx, service.PendingChange{Item: menuItem(id, 3, 1000), Quantity: 1})
		assert.ErrorIs(t, err, service.ErrInvalidMenuItem)

		_, ok, _ := store.Get(ctx, service.KeyCart)
		assert.False(t, ok)
	}
}

func TestCartStore_TotalsHoldAfterEveryStep(t *testing.T) {
	ctx := context.Background()
	cart, _, _ := newCart(t)

	steps := []struct {
		name         string
		apply        func() error
		wantCount    int
		wantSubtotal int64
	}{
		{
			name:         "add_first_line",
			apply:        func() error { _, err := cart.Add(ctx, menuItem(10, 3, 15000), 2); return err },
			wantCount:    2,
			wantSubtotal: 30000,
		},
		{
			name:         "add_second_line",
			apply:        func() error { _, err := cart.Add(ctx, menuItem(11, 3, 8000), 1); return err },
			wantCount:    3,
			wantSubtotal: 38000,
		},
		{
			name:         "add_line_without_restaurant",
			apply:        func() error { _, err := cart.Add(ctx, domain.MenuItem{ID: 12, PriceCOP: 2500}, 4); return err },
			wantCount:    7,
			wantSubtotal: 48000,
		},
		{
			name:         "set_quantity",
			apply:        func() error { _, err := cart.SetQuantity(ctx, 10, 5); return err },
			wantCount:    10,
			wantSubtotal: 93000,
		},
		{
			name:         "set_quantity_of_missing_line",
			apply:        func() error { _, err := cart.SetQuantity(ctx, 99, 3); return err },
			wantCount:    10,
			wantSubtotal: 93000,
		},
		{
			name:         "decrement",
			apply:        func() error { _, err := cart.Decrement(ctx, 11); return err },
			wantCount:    9,
			wantSubtotal: 85000,
		},
		{
			name:         "conflicting_add_changes_nothing",
			apply:        func() error { _, err := cart.Add(ctx, menuItem(20, 4, 5000), 1); return err },
			wantCount:    9,
			wantSubtotal: 85000,
		},
		{
			name:         "set_quantity_zero_removes",
			apply:        func() error { _, err := cart.SetQuantity(ctx, 10, 0); return err },
			wantCount:    4,
			wantSubtotal: 10000,
		},
		{
			name:         "remove_last_line",
			apply:        func() error { _, err := cart.Remove(ctx, 12); return err },
			wantCount:    0,
			wantSubtotal: 0,
		},
		{
			name:         "add_after_emptying",
			apply:        func() error { _, err := cart.Add(ctx, menuItem(20, 4, 5000), 3); return err },
			wantCount:    3,
			wantSubtotal: 15000,
		},
	}

	for _, step := range steps {
		require.NoError(t, step.apply(), step.name)

		stored, err := cart.Read(ctx)
		require.NoError(t, err, step.name)

		count := 0
		var subtotal int64
		for _, line := range stored.Items {
			assert.GreaterOrEqual(t, line.Quantity, 1, step.name)
			count += line.Quantity
			subtotal += int64(line.Quantity) * line.UnitPriceCOP
		}

		gotCount, err := cart.Count(ctx)
		require.NoError(t, err, step.name)
		gotSubtotal, err := cart.Subtotal(ctx)
		require.NoError(t, err, step.name)

		assert.Equal(t, step.wantCount, gotCount, step.name)
		assert.Equal(t, count, gotCount, step.name)
		assert.Equal(t, step.wantSubtotal, gotSubtotal, step.name)
		assert.Equal(t, subtotal, gotSubtotal, step.name)
		assert.Equal(t, len(stored.Items) == 0, stored.RestaurantID == nil, step.name)
	}
}
