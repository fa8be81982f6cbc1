package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/pricing"
	"github.com/fjod/storefront/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStorage struct {
	m       sync.Mutex
	inner   *storage.MemoryStorage
	failGet error
	failSet error
	failDel error
}

func (f *failingStorage) Get(ctx context.Context, key string) ([]byte, error) {
	f.m.Lock()
	defer f.m.Unlock()
	if f.failGet != nil {
		return nil, f.failGet
	}
	return f.inner.Get(ctx, key)
}

func (f *failingStorage) Set(ctx context.Context, key string, value []byte) error {
	f.m.Lock()
	defer f.m.Unlock()
	if f.failSet != nil {
		return f.failSet
	}
	return f.inner.Set(ctx, key, value)
}

func (f *failingStorage) Delete(ctx context.Context, key string) error {
	f.m.Lock()
	defer f.m.Unlock()
	if f.failDel != nil {
		return f.failDel
	}
	return f.inner.Delete(ctx, key)
}

func newStore(t *testing.T, st storage.Storage) *Store {
	s, err := Load(context.Background(), st, pricing.DefaultRules)
	require.NoError(t, err)
	return s
}

func TestLoad_EmptyStorageYieldsDefaults(t *testing.T) {
	s := newStore(t, storage.NewMemoryStorage())

	state := s.State()
	assert.Empty(t, state.Items)
	assert.NotNil(t, state.Items)
	assert.True(t, state.ShippingAddress.IsZero())
	assert.Equal(t, domain.DefaultPaymentMethod, state.PaymentMethod)
}

func TestLoad_CorruptedStorageYieldsDefaults(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()
	require.NoError(t, st.Set(ctx, storage.KeyCartItems, []byte(`{not json`)))
	require.NoError(t, st.Set(ctx, storage.KeyShippingAddress, []byte(`[1,2,3]`)))
	require.NoError(t, st.Set(ctx, storage.KeyPaymentMethod, []byte(`42`)))

	s := newStore(t, st)

	state := s.State()
	assert.Empty(t, state.Items)
	assert.True(t, state.ShippingAddress.IsZero())
	assert.Equal(t, domain.DefaultPaymentMethod, state.PaymentMethod)
}

func TestLoad_LegacyPaymentObjectIsNormalized(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()
	require.NoError(t, st.Set(ctx, storage.KeyPaymentMethod, []byte(`{"method":"cod"}`)))

	s := newStore(t, st)

	assert.Equal(t, domain.PaymentMethod("cod"), s.State().PaymentMethod)
}

func TestLoad_StorageFailureIsReturned(t *testing.T) {
	st := &failingStorage{inner: storage.NewMemoryStorage(), failGet: errors.New("connection refused")}

	_, err := Load(context.Background(), st, pricing.DefaultRules)
	require.ErrorContains(t, err, "connection refused")
}

func TestStore_RehydrationReproducesState(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()
	addr := domain.ShippingAddress{
		FullName: "Asha Rao", Address: "12 MG Road", City: "Pune",
		PostalCode: "411001", Country: "India", Phone: "9876543210",
	}

	first := newStore(t, st)
	require.NoError(t, first.Add(ctx, line("p1", "M", "black", 2)))
	require.NoError(t, first.Add(ctx, line("p2", "S", "white", 1)))
	require.NoError(t, first.SetShippingAddress(ctx, addr))
	require.NoError(t, first.SetPaymentMethod(ctx, "cod"))

	second := newStore(t, st)

	assert.Equal(t, first.State(), second.State())
}

func TestStore_ClearEmptiesMemoryAndStorageKey(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()
	s := newStore(t, st)
	require.NoError(t, s.Add(ctx, line("p1", "M", "black", 2)))

	require.NoError(t, s.Clear(ctx))

	assert.Empty(t, s.Items())
	_, err := st.Get(ctx, storage.KeyCartItems)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_FailedWriteKeepsPreviousState(t *testing.T) {
	ctx := context.Background()
	st := &failingStorage{inner: storage.NewMemoryStorage()}
	s := newStore(t, st)
	require.NoError(t, s.Add(ctx, line("p1", "M", "black", 2)))

	st.failSet = errors.New("disk full")
	err := s.Add(ctx, line("p2", "M", "black", 1))
	require.ErrorContains(t, err, "disk full")

	require.Len(t, s.Items(), 1)
	assert.Equal(t, "p1", s.Items()[0].ProductID)
}

func TestStore_FailedClearKeepsItems(t *testing.T) {
	ctx := context.Background()
	st := &failingStorage{inner: storage.NewMemoryStorage()}
	s := newStore(t, st)
	require.NoError(t, s.Add(ctx, line("p1", "M", "black", 2)))

	st.failDel = errors.New("timeout")
	require.Error(t, s.Clear(ctx))
	assert.Len(t, s.Items(), 1)
}

func TestStore_ValidationErrorDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()
	s := newStore(t, st)

	err := s.Add(ctx, line("p1", "M", "black", 0))
	assert.ErrorIs(t, err, ErrQuantityOutOfRange)
	assert.Equal(t, 0, st.Len())
}

func TestStore_UpdateAndRemove(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, storage.NewMemoryStorage())
	require.NoError(t, s.Add(ctx, line("p1", "M", "black", 2)))
	require.NoError(t, s.Add(ctx, line("p1", "L", "black", 1)))

	key := domain.LineKey{ProductID: "p1", Size: "M", Color: "black"}
	require.NoError(t, s.UpdateQuantity(ctx, key, 4))
	require.NoError(t, s.Remove(ctx, domain.LineKey{ProductID: "p1", Size: "L", Color: "black"}))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Qty)
}

func TestStore_SnapshotPricesItsOwnItems(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, storage.NewMemoryStorage())
	item := line("p1", "M", "black", 3)
	item.Price = 500
	require.NoError(t, s.Add(ctx, item))

	state, prices := s.Snapshot()
	require.Len(t, state.Items, 1)
	assert.Equal(t, domain.Prices{ItemsPrice: 1500, ShippingPrice: 0, TaxPrice: 270, TotalPrice: 1770}, prices)

	empty := newStore(t, storage.NewMemoryStorage())
	state, prices = empty.Snapshot()
	assert.NotNil(t, state.Items)
	assert.Equal(t, domain.Prices{ShippingPrice: 100, TotalPrice: 100}, prices)
}

func TestStore_EmptyItemsEncodeAsArray(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, storage.NewMemoryStorage())

	raw, err := json.Marshal(s.State())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"cartItems":[]`)

	require.NoError(t, s.Add(ctx, line("p1", "M", "black", 1)))
	require.NoError(t, s.Clear(ctx))
	assert.NotNil(t, s.Items())
}

func TestStore_ClearOrderedKeepsNewerLines(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()
	s := newStore(t, st)
	require.NoError(t, s.Add(ctx, line("p1", "M", "black", 1)))
	require.NoError(t, s.Add(ctx, line("p2", "L", "white", 2)))
	ordered := s.Items()

	// added and changed after the order was drafted
	require.NoError(t, s.Add(ctx, line("p3", "S", "red", 1)))
	require.NoError(t, s.UpdateQuantity(ctx, domain.LineKey{ProductID: "p2", Size: "L", Color: "white"}, 3))

	require.NoError(t, s.ClearOrdered(ctx, ordered))

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "p2", items[0].ProductID)
	assert.Equal(t, 3, items[0].Qty)
	assert.Equal(t, "p3", items[1].ProductID)

	// persisted
	reloaded := newStore(t, st)
	assert.Equal(t, items, reloaded.Items())

	require.NoError(t, s.ClearOrdered(ctx, items))
	assert.Empty(t, s.Items())
	_, err := st.Get(ctx, storage.KeyCartItems)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_StateIsACopy(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, storage.NewMemoryStorage())
	require.NoError(t, s.Add(ctx, line("p1", "M", "black", 2)))

	snapshot := s.State()
	snapshot.Items[0].Qty = 9

	assert.Equal(t, 2, s.Items()[0].Qty)
}
