package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmrobles/ventas-api/internal/application/catalog"
	"github.com/jmrobles/ventas-api/internal/application/movements"
	"github.com/jmrobles/ventas-api/internal/application/purchases"
	"github.com/jmrobles/ventas-api/internal/application/sales"
	"github.com/jmrobles/ventas-api/internal/application/testutil"
	"github.com/jmrobles/ventas-api/internal/domain/entity"
	apphttp "github.com/jmrobles/ventas-api/internal/interfaces/http"
)

const (
	testUserID   = "00000000-0000-0000-0000-000000000001"
	testProductA = "00000000-0000-0000-0000-00000000000a"
	testProductB = "00000000-0000-0000-0000-00000000000b"
)

// buildTestApp monta la API completa sobre los fakes en memoria.
func buildTestApp(t *testing.T) (*fiber.App, *testutil.Store) {
	t.Helper()
	store := testutil.NewStore()
	store.AddUser(entity.User{ID: testUserID, Username: "vendedor"})
	store.AddProduct(entity.Product{ID: testProductA, Name: "Teclado", StockActual: 10, StockMinimo: 2})
	store.AddProduct(entity.Product{ID: testProductB, Name: "Mouse", StockActual: 1, StockMinimo: 3})

	txRunner := testutil.NewTxRunner(store)
	productRepo := testutil.NewProductRepo(store)
	userRepo := testutil.NewUserRepo(store)
	numbering := entity.Numbering{Prefix: "VEN", Width: 4}

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		SalesUC: sales.NewUseCase(txRunner, testutil.NewSaleRepo(store), productRepo,
			userRepo, testutil.NewClientRepo(store), numbering, nil),
		PurchasesUC: purchases.NewUseCase(txRunner, testutil.NewPurchaseRepo(store), productRepo,
			userRepo, entity.Numbering{Prefix: "COMP", Width: 4}, nil),
		MovementsUC: movements.NewUseCase(txRunner, testutil.NewMovementRepo(store), productRepo, userRepo, nil),
		CatalogUC:   catalog.NewUseCase(productRepo, nil),
	})
	return app, store
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func saleBody(productID string, qty int) map[string]any {
	return map[string]any{
		"id_usuario": testUserID,
		"estado":     "completada",
		"detalle_ventas": []map[string]any{
			{"id_producto": productID, "cantidad": qty, "precio_unitario": "25.00"},
		},
	}
}

func TestPostSales_CreaVentaYDevuelve201(t *testing.T) {
	app, store := buildTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/sales/", saleBody(testProductA, 3))

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "VEN-0001", body["numero_venta"])
	assert.Equal(t, "75", body["total"])
	assert.Equal(t, 7, store.StockOf(testProductA))
}

func TestPostSales_StockInsuficienteDevuelve409ConDetalle(t *testing.T) {
	app, store := buildTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/sales/", saleBody(testProductB, 4))

	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	assert.Equal(t, testProductB, body["id_producto"])
	assert.EqualValues(t, 1, body["disponible"])
	assert.EqualValues(t, 4, body["solicitado"])
	assert.EqualValues(t, 3, body["faltante"])
	assert.Contains(t, body["message"], "Mouse")
	assert.Equal(t, 1, store.StockOf(testProductB))
}

func TestPostSales_CuerpoInvalidoDevuelve400(t *testing.T) {
	app, _ := buildTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/sales/", bytes.NewBufferString("{no json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetSale_NoExisteDevuelve404(t *testing.T) {
	app, _ := buildTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/api/sales/venta-fantasma", nil)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestDeleteSale_RevierteYDevuelve200(t *testing.T) {
	app, store := buildTestApp(t)

	_, created := doJSON(t, app, http.MethodPost, "/api/sales/", saleBody(testProductA, 3))
	id := created["id_venta"].(string)

	resp, _ := doJSON(t, app, http.MethodDelete, "/api/sales/"+id, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 10, store.StockOf(testProductA))
}

func TestPutSale_InmutablesDevuelve400(t *testing.T) {
	app, _ := buildTestApp(t)

	_, created := doJSON(t, app, http.MethodPost, "/api/sales/", saleBody(testProductA, 1))
	id := created["id_venta"].(string)

	resp, body := doJSON(t, app, http.MethodPut, "/api/sales/"+id, map[string]any{"total": "999.00"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])
}

func TestGetProductsLowStock(t *testing.T) {
	app, _ := buildTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/products/low-stock", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list, 1, "solo Mouse está bajo su mínimo")
	assert.Equal(t, "Mouse", list[0]["nombre_producto"])
	assert.Equal(t, true, list[0]["stock_bajo"])
}

func TestPostMovements_AjusteManual(t *testing.T) {
	app, store := buildTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/movements/", map[string]any{
		"id_producto":     testProductA,
		"id_usuario":      testUserID,
		"tipo_movimiento": "salida",
		"cantidad":        4,
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "salida", body["tipo_movimiento"])
	assert.Equal(t, 6, store.StockOf(testProductA))
}
