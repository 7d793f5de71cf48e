package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmrobles/ventas-api/internal/application/catalog"
	"github.com/jmrobles/ventas-api/internal/application/dto"
	"github.com/jmrobles/ventas-api/internal/application/testutil"
	"github.com/jmrobles/ventas-api/internal/domain"
	"github.com/jmrobles/ventas-api/internal/domain/entity"
)

const (
	productA = "00000000-0000-0000-0000-00000000000a"
	productB = "00000000-0000-0000-0000-00000000000b"
)

// fakeCache caché en memoria que cuenta hits y sets.
type fakeCache struct {
	entries map[string]entity.Product
	gets    int
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]entity.Product)}
}

func (c *fakeCache) Get(_ context.Context, id string) (*entity.Product, error) {
	c.gets++
	p, ok := c.entries[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (c *fakeCache) Set(_ context.Context, p *entity.Product) {
	c.sets++
	c.entries[p.ID] = *p
}

func newFixture(t *testing.T) (*testutil.Store, *catalog.UseCase, *fakeCache) {
	t.Helper()
	store := testutil.NewStore()
	store.AddProduct(entity.Product{ID: productA, Name: "Teclado", StockActual: 10, StockMinimo: 2})
	store.AddProduct(entity.Product{ID: productB, Name: "Mouse", StockActual: 1, StockMinimo: 3})
	cache := newFakeCache()
	uc := catalog.NewUseCase(testutil.NewProductRepo(store), cache)
	return store, uc, cache
}

func TestGetByID_ReadThrough(t *testing.T) {
	_, uc, cache := newFixture(t)
	ctx := context.Background()

	// Primer acceso: miss, lee del repo y puebla la caché.
	resp, err := uc.GetByID(ctx, productA)
	require.NoError(t, err)
	assert.Equal(t, "Teclado", resp.Name)
	assert.Equal(t, 1, cache.sets)

	// Segundo acceso: hit, no vuelve a poblar.
	resp, err = uc.GetByID(ctx, productA)
	require.NoError(t, err)
	assert.Equal(t, 10, resp.StockActual)
	assert.Equal(t, 2, cache.gets)
	assert.Equal(t, 1, cache.sets)
}

func TestGetByID_NoExiste(t *testing.T) {
	_, uc, _ := newFixture(t)
	_, err := uc.GetByID(context.Background(), "producto-fantasma")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList_PaginaYMarcaStockBajo(t *testing.T) {
	_, uc, _ := newFixture(t)

	resp, err := uc.List(context.Background(), dto.PageQuery{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 2, resp.LastPage)
	require.Len(t, resp.Data, 1)
	// Orden por nombre: Mouse primero, y está bajo su mínimo.
	assert.Equal(t, "Mouse", resp.Data[0].Name)
	assert.True(t, resp.Data[0].LowStock)
}

func TestListLowStock(t *testing.T) {
	_, uc, _ := newFixture(t)

	list, err := uc.ListLowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Mouse", list[0].Name)
}
