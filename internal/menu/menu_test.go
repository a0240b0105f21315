package menu

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"restoran-pos/internal/cache"
	"restoran-pos/internal/models"
	"restoran-pos/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryStore() *memoryStore { return &memoryStore{data: map[string][]byte{}} }

func (m *memoryStore) GetJSON(_ context.Context, key string, dst any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(raw, dst)
}

func (m *memoryStore) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	return nil
}

func (m *memoryStore) DeletePrefix(_ context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

func useStore(t *testing.T, s cache.Store) {
	prev := cache.Default
	cache.Default = s
	t.Cleanup(func() { cache.Default = prev })
}

func TestPublicMenuReadsThroughCache(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	store := newMemoryStore()
	useStore(t, store)

	mock.ExpectQuery(`SELECT \* FROM "merchants"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "currency", "status"}).AddRow(7, "Kebab House", "TRY", "active"))
	mock.ExpectQuery(`SELECT \* FROM "menu_categories"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "merchant_id", "name", "sort_order"}).
			AddRow(1, 7, "Grill", 0).
			AddRow(2, 7, "Empty", 1))
	mock.ExpectQuery(`SELECT \* FROM "menu_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "merchant_id", "category_id", "name", "price", "available"}).
			AddRow(10, 7, 1, "Adana", 1800, true))

	first, err := LoadPublicMenu(context.Background(), db, 7, time.Minute)
	require.NoError(t, err)
	require.Len(t, first.Categories, 1)
	assert.Equal(t, "Adana", first.Categories[0].Items[0].Name)

	// second read must not touch the database
	second, err := LoadPublicMenu(context.Background(), db, 7, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.NoError(t, mock.ExpectationsWereMet())

	Invalidate(context.Background(), 7)
	assert.Empty(t, store.data)
}

func TestPublicMenuUnknownMerchant(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	useStore(t, newMemoryStore())

	mock.ExpectQuery(`SELECT \* FROM "merchants"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := LoadPublicMenu(context.Background(), db, 9, time.Minute)
	assert.ErrorIs(t, err, ErrMerchantNotFound)
}

func TestReorderRunsEveryUpdate(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 3; i++ {
		mock.ExpectExec(`UPDATE "menu_categories" SET "sort_order"`).WillReturnResult(sqlmock.NewResult(0, 1))
	}

	err := ReorderCategories(context.Background(), db, 7, []uint{3, 1, 2})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReorderFailureStillInvalidates(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	store := newMemoryStore()
	useStore(t, store)
	require.NoError(t, store.SetJSON(context.Background(), cache.MenuKey(7), PublicMenu{}, time.Minute))

	mock.ExpectExec(`UPDATE "menu_items" SET "sort_order"`).WillReturnError(errors.New("connection reset"))

	err := ReorderItems(context.Background(), db, 7, []uint{4})

	assert.Error(t, err)
	assert.Empty(t, store.data)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReorderRejectsDuplicates(t *testing.T) {
	db, _ := testutil.NewMockDB(t)
	assert.Error(t, ReorderItems(context.Background(), db, 7, []uint{1, 1}))
	assert.Error(t, ReorderItems(context.Background(), db, 7, nil))
}

func TestBuildPublicMenuHidesEmptyCategories(t *testing.T) {
	m := models.Merchant{ID: 7, Name: "Kebab House", Currency: "TRY"}
	out := buildPublicMenu(m, []models.MenuCategory{
		{ID: 1, Name: "Grill", Items: []models.MenuItem{{ID: 10, Name: "Adana", Price: 1800}}},
		{ID: 2, Name: "Seasonal"},
	})
	require.Len(t, out.Categories, 1)
	assert.Equal(t, "Grill", out.Categories[0].Name)
}
