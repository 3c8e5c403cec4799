package tests

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"noah-food/web-svc/internal/domain"
	"noah-food/web-svc/internal/mocks"
	"noah-food/web-svc/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	_, ok, err := store.Get(ctx, "cart")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "cart", "{}"))
	v, ok, err := store.Get(ctx, "cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "{}", v)

	require.NoError(t, store.Remove(ctx, "cart"))
	_, ok, _ = store.Get(ctx, "cart")
	assert.False(t, ok)
}

func TestNamespaced_IsolatesClients(t *testing.T) {
	ctx := context.Background()
	shared := storage.NewMemoryStore()
	alice := storage.NewNamespaced(shared, "alice")
	bob := storage.NewNamespaced(shared, "bob")

	require.NoError(t, alice.Set(ctx, "auth_token", "Token a"))

	_, ok, err := bob.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.False(t, ok)

	raw, ok, _ := shared.Get(ctx, "client:alice:auth_token")
	assert.True(t, ok)
	assert.Equal(t, "Token a", raw)

	require.NoError(t, bob.Remove(ctx, "auth_token"))
	v, ok, _ := alice.Get(ctx, "auth_token")
	assert.True(t, ok)
	assert.Equal(t, "Token a", v)
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniredis(t)
	store := storage.NewRedisStore(client, "noah:", time.Hour)

	_, ok, err := store.Get(ctx, "cart")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "cart", `{"items":[]}`))
	assert.True(t, mr.Exists("noah:cart"))
	assert.Equal(t, time.Hour, mr.TTL("noah:cart"))

	v, ok, err := store.Get(ctx, "cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"items":[]}`, v)

	require.NoError(t, store.Remove(ctx, "cart"))
	assert.False(t, mr.Exists("noah:cart"))
}

func TestRedisStore_ConnectionError(t *testing.T) {
	mr, client := newMiniredis(t)
	store := storage.NewRedisStore(client, "", 0)
	mr.Close()

	_, _, err := store.Get(context.Background(), "cart")
	assert.Error(t, err)
}

func TestRedisMenuCache(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniredis(t)
	cache := storage.NewRedisMenuCache(client, 30*time.Second)

	key := cache.MenuKey("http://upstream.test/api", "items")
	assert.Equal(t, "menu:items:http://upstream.test/api", key)

	var items []domain.MenuItem
	hit, err := cache.Load(ctx, key, &items)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Store(ctx, key, []domain.MenuItem{menuItem(1, 2, 9000)}))
	assert.Equal(t, 30*time.Second, mr.TTL(key))

	hit, err = cache.Load(ctx, key, &items)
	require.NoError(t, err)
	assert.True(t, hit)
	require.Len(t, items, 1)
	assert.Equal(t, int64(9000), items[0].PriceCOP)

	mr.FastForward(31 * time.Second)
	hit, err = cache.Load(ctx, key, &items)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisMenuCache_CorruptEntry(t *testing.T) {
	mr, client := newMiniredis(t)
	cache := storage.NewRedisMenuCache(client, time.Minute)
	require.NoError(t, mr.Set("menu:items:x", "not json"))

	var items []domain.MenuItem
	hit, err := cache.Load(context.Background(), "menu:items:x", &items)
	assert.Error(t, err)
	assert.False(t, hit)
}

func TestPostgresStore_Get(t *testing.T) {
	selectQuery := regexp.QuoteMeta("SELECT value FROM client_state WHERE key = $1")

	tests := []struct {
		name         string
		prepareMocks func(m sqlmock.Sqlmock)
		wantValue    string
		wantFound    bool
		wantErr      bool
	}{
		{
			name: "found",
			prepareMocks: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(selectQuery).WithArgs("cart").
					WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`{"items":[]}`))
			},
			wantValue: `{"items":[]}`,
			wantFound: true,
		},
		{
			name: "missing",
			prepareMocks: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(selectQuery).WithArgs("cart").WillReturnError(sql.ErrNoRows)
			},
		},
		{
			name: "db_error",
			prepareMocks: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(selectQuery).WithArgs("cart").WillReturnError(errors.New("connection reset"))
			},
			wantErr: true,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			db, m, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			testCase.prepareMocks(m)

			store := storage.NewPostgresStore(db)
			v, found, err := store.Get(context.Background(), "cart")
			if testCase.wantErr {
				assert.ErrorContains(t, err, "failed to read client state")
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, testCase.wantFound, found)
			assert.Equal(t, testCase.wantValue, v)
			assert.NoError(t, m.ExpectationsWereMet())
		})
	}
}

func TestPostgresStore_SetAndRemove(t *testing.T) {
	ctx := context.Background()
	db, m, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	m.ExpectExec(regexp.QuoteMeta("INSERT INTO client_state (key,value,updated_at) VALUES ($1,$2,$3) ON CONFLICT (key) DO UPDATE")).
		WithArgs("auth_token", "Token abc", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	m.ExpectExec(regexp.QuoteMeta("DELETE FROM client_state WHERE key = $1")).
		WithArgs("auth_token").
		WillReturnResult(sqlmock.NewResult(0, 1))
	m.ExpectExec(regexp.QuoteMeta("DELETE FROM client_state WHERE key = $1")).
		WithArgs("cart").
		WillReturnError(errors.New("read-only transaction"))

	store := storage.NewPostgresStore(db)
	require.NoError(t, store.Set(ctx, "auth_token", "Token abc"))
	require.NoError(t, store.Remove(ctx, "auth_token"))
	assert.ErrorContains(t, store.Remove(ctx, "cart"), "failed to delete client state")
	assert.NoError(t, m.ExpectationsWereMet())
}

func TestKafkaPublisher_PublishOrderEvent(t *testing.T) {
	ctx := context.Background()
	writer := mocks.NewMessageWriter(t)
	publisher := storage.NewKafkaPublisher(writer)

	event := domain.OrderEvent{
		Type:         "order_created",
		OrderID:      77,
		OrderNumber:  "NF-77",
		RestaurantID: 3,
		Channel:      domain.ChannelWeb,
		ItemCount:    2,
		SubtotalCOP:  30000,
	}

	writer.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msg kafka.Message) bool {
		var decoded domain.OrderEvent
		if err := json.Unmarshal(msg.Value, &decoded); err != nil {
			return false
		}
		return string(msg.Key) == "77" && decoded.OrderNumber == "NF-77" && decoded.SubtotalCOP == 30000
	})).Return(nil).Once()

	require.NoError(t, publisher.PublishOrderEvent(ctx, event))
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	writer := mocks.NewMessageWriter(t)
	publisher := storage.NewKafkaPublisher(writer)

	writer.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("no brokers")).Once()

	err := publisher.PublishOrderEvent(context.Background(), domain.OrderEvent{OrderID: 1})
	assert.EqualError(t, err, "no brokers")
}
