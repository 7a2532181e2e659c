package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/mercando/internal/grocery"
	"github.com/dukerupert/mercando/internal/model"
)

func TestAddItemDefaults(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	u := registerUser(t, s, "ana@example.com")
	lid := createList(t, s, u.ID, "Mercado")

	id, err := s.AddItem(ctx, NewItem{ListID: lid, Name: "  leche deslactosada ", Quantity: 0})
	require.NoError(t, err)

	it, err := s.Item(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "leche deslactosada", it.Name)
	assert.Equal(t, grocery.Lacteos.String(), it.Category)
	assert.Equal(t, 1, it.Quantity)
	assert.False(t, it.Purchased)
	assert.Equal(t, 0, it.Order)
}

func TestAddItemCategoryCanonicalized(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	u := registerUser(t, s, "ana@example.com")
	lid := createList(t, s, u.ID, "Mercado")

	a, _ := s.AddItem(ctx, NewItem{ListID: lid, Name: "queso", Category: "lácteos"})
	b, _ := s.AddItem(ctx, NewItem{ListID: lid, Name: "tornillos", Category: "Ferretería"})

	itA, _ := s.Item(ctx, a)
	itB, _ := s.Item(ctx, b)
	assert.Equal(t, "Lácteos", itA.Category)
	assert.Equal(t, "Otros", itB.Category)
}

func TestAddItemOptionalFields(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	u := registerUser(t, s, "ana@example.com")
	lid := createList(t, s, u.ID, "Mercado")

	price := 3200.0
	notes := "la grande"
	id, err := s.AddItem(ctx, NewItem{ListID: lid, Name: "aceite", Quantity: 2, Price: &price, Notes: &notes})
	require.NoError(t, err)

	it, _ := s.Item(ctx, id)
	require.NotNil(t, it.Price)
	require.NotNil(t, it.Notes)
	assert.Equal(t, price, *it.Price)
	assert.Equal(t, notes, *it.Notes)
	assert.Equal(t, 2, it.Quantity)
}

func TestAddItemErrors(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	u := registerUser(t, s, "ana@example.com")
	lid := createList(t, s, u.ID, "Mercado")

	_, err := s.AddItem(ctx, NewItem{ListID: lid, Name: " "})
	assert.ErrorIs(t, err, ErrEmptyField)

	_, err = s.AddItem(ctx, NewItem{ListID: 999, Name: "leche"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SoftDelete(ctx, lid))
	_, err = s.AddItem(ctx, NewItem{ListID: lid, Name: "leche"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddItemConcurrentOrders(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	u := registerUser(t, s, "ana@example.com")
	lid := createList(t, s, u.ID, "Mercado")

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.AddItem(ctx, NewItem{ListID: lid, Name: "arroz"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	items, err := s.ItemsInList(ctx, lid)
	require.NoError(t, err)
	require.Len(t, items, n)
	seen := map[int]bool{}
	for _, it := range items {
		assert.False(t, seen[it.Order], "order %d reused", it.Order)
		seen[it.Order] = true
	}
}

func TestMarkItemPurchasedMissing(t *testing.T) {
	s := newTestService(t)
	assert.ErrorIs(t, s.MarkItemPurchased(context.Background(), 999, true), ErrNotFound)
}

func TestUpdateItem(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	u := registerUser(t, s, "ana@example.com")
	lid := createList(t, s, u.ID, "Mercado")
	id := addItem(t, s, lid, "leche", "")

	it, _ := s.Item(ctx, id)
	it.Name = "pan tajado"
	it.Category = ""
	it.Quantity = -3
	require.NoError(t, s.UpdateItem(ctx, it))

	got, _ := s.Item(ctx, id)
	assert.Equal(t, "pan tajado", got.Name)
	assert.Equal(t, "Panadería", got.Category)
	assert.Equal(t, 1, got.Quantity)

	it.Name = ""
	assert.ErrorIs(t, s.UpdateItem(ctx, it), ErrEmptyField)
	assert.ErrorIs(t, s.UpdateItem(ctx, &model.Item{ID: 999, Name: "x"}), ErrNotFound)
}

func TestUpdateItemAfterMarkKeepsPurchased(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	u := registerUser(t, s, "ana@example.com")
	lid := createList(t, s, u.ID, "Mercado")
	id := addItem(t, s, lid, "leche", "")

	edit, err := s.Item(ctx, id)
	require.NoError(t, err)
	require.NoError(t, s.MarkItemPurchased(ctx, id, true))

	edit.Quantity = 2
	require.NoError(t, s.UpdateItem(ctx, edit))

	got, err := s.Item(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.Purchased)
	assert.Equal(t, 2, got.Quantity)
}

func TestDeleteNilItem(t *testing.T) {
	s := newTestService(t)
	assert.ErrorIs(t, s.DeleteItem(context.Background(), nil), ErrNotFound)
}

func TestDeleteItemAndPurchased(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	u := registerUser(t, s, "ana@example.com")
	lid := createList(t, s, u.ID, "Mercado")
	a := addItem(t, s, lid, "leche", "")
	b := addItem(t, s, lid, "pan", "")
	c := addItem(t, s, lid, "huevos", "")
	require.NoError(t, s.MarkItemPurchased(ctx, b, true))
	require.NoError(t, s.MarkItemPurchased(ctx, c, true))

	it, _ := s.Item(ctx, a)
	require.NoError(t, s.DeleteItem(ctx, it))
	assert.ErrorIs(t, s.DeleteItem(ctx, it), ErrNotFound)

	n, err := s.DeletePurchasedItems(ctx, lid)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, total, _ := s.StatsFor(ctx, lid)
	assert.Zero(t, total)
}

func TestWatchItems(t *testing.T) {
	s := newTestService(t)
	u := registerUser(t, s, "ana@example.com")
	lid := createList(t, s, u.ID, "Mercado")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := s.WatchItems(ctx, lid)
	assert.Empty(t, recv(t, ch))

	addItem(t, s, lid, "leche", "")
	recvUntil(t, ch, func(items []model.Item) bool { return len(items) == 1 })

	detail := s.WatchList(ctx, lid)
	got := recv(t, detail)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.TotalItems())
}
