package sales_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmrobles/ventas-api/internal/application/dto"
	"github.com/jmrobles/ventas-api/internal/application/sales"
	"github.com/jmrobles/ventas-api/internal/application/testutil"
	"github.com/jmrobles/ventas-api/internal/domain"
	"github.com/jmrobles/ventas-api/internal/domain/entity"
	"github.com/jmrobles/ventas-api/internal/domain/repository"
)

const (
	userID   = "00000000-0000-0000-0000-000000000001"
	clientID = "00000000-0000-0000-0000-000000000002"
	productA = "00000000-0000-0000-0000-00000000000a"
	productB = "00000000-0000-0000-0000-00000000000b"
	productC = "00000000-0000-0000-0000-00000000000c"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// newFixture arma el caso de uso sobre los fakes, con productos A (stock 10),
// B (stock 5) y C (stock 2), un usuario y un cliente.
func newFixture(t *testing.T) (*testutil.Store, *sales.UseCase, *testutil.Invalidator) {
	t.Helper()
	store := testutil.NewStore()
	store.AddUser(entity.User{ID: userID, Username: "vendedor"})
	store.AddClient(entity.Client{ID: clientID, FullName: "Cliente de Prueba"})
	store.AddProduct(entity.Product{ID: productA, Name: "Teclado", StockActual: 10, SalePrice: dec("25.00")})
	store.AddProduct(entity.Product{ID: productB, Name: "Mouse", StockActual: 5, SalePrice: dec("12.50")})
	store.AddProduct(entity.Product{ID: productC, Name: "Monitor", StockActual: 2, SalePrice: dec("180.00")})

	inv := &testutil.Invalidator{}
	uc := sales.NewUseCase(
		testutil.NewTxRunner(store),
		testutil.NewSaleRepo(store),
		testutil.NewProductRepo(store),
		testutil.NewUserRepo(store),
		testutil.NewClientRepo(store),
		entity.Numbering{Prefix: "VEN", Width: 4},
		inv,
	)
	return store, uc, inv
}

func createReq(lines ...dto.CreateSaleDetailRequest) dto.CreateSaleRequest {
	return dto.CreateSaleRequest{
		UserID:  userID,
		Status:  entity.SaleStatusCompletada,
		Details: lines,
	}
}

func line(productID string, qty int, price string) dto.CreateSaleDetailRequest {
	return dto.CreateSaleDetailRequest{ProductID: productID, Quantity: qty, UnitPrice: dec(price)}
}

// ─────────────────────────────────────────────────────────────────────────────
// Create
// ─────────────────────────────────────────────────────────────────────────────

func TestCreate_VentaCompletaDescuentaStockYRegistraMovimientos(t *testing.T) {
	store, uc, inv := newFixture(t)

	resp, err := uc.Create(context.Background(), createReq(
		line(productA, 3, "25.00"),
		line(productB, 2, "12.50"),
	))
	require.NoError(t, err)

	assert.Equal(t, "VEN-0001", resp.Number)
	assert.Equal(t, "75", resp.Details[0].Subtotal.String())
	assert.Equal(t, "25", resp.Details[1].Subtotal.String())
	assert.Equal(t, "100", resp.Subtotal.String())
	assert.Equal(t, "100", resp.Total.String())

	assert.Equal(t, 7, store.StockOf(productA))
	assert.Equal(t, 3, store.StockOf(productB))

	movs := store.Movements()
	require.Len(t, movs, 2)
	for _, m := range movs {
		assert.Equal(t, entity.MovementSalida, m.Type)
		assert.Equal(t, "VEN-0001", m.Reference)
		assert.Contains(t, m.Observations, "Venta #VEN-0001")
	}

	assert.ElementsMatch(t, []string{productA, productB}, inv.IDs)
}

func TestCreate_TotalesSiempreRecalculadosEnServidor(t *testing.T) {
	_, uc, _ := newFixture(t)

	req := createReq(line(productA, 2, "25.00"))
	req.Details[0].ItemDiscount = dec("5.00")
	req.Discount = dec("3.00")
	req.Tax = dec("8.00")

	resp, err := uc.Create(context.Background(), req)
	require.NoError(t, err)

	// línea: 2*25 - 5 = 45; total: 45 - 3 + 8 = 50
	assert.Equal(t, "45", resp.Subtotal.String())
	assert.Equal(t, "50", resp.Total.String())
}

func TestCreate_StockInsuficienteReportaFaltanteExacto(t *testing.T) {
	store, uc, _ := newFixture(t)

	_, err := uc.Create(context.Background(), createReq(line(productC, 5, "180.00")))
	require.Error(t, err)

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, productC, stockErr.ProductID)
	assert.Equal(t, "Monitor", stockErr.ProductName)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Equal(t, 3, stockErr.Shortfall())
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 2, store.StockOf(productC))
	assert.Zero(t, store.SaleCount())
	assert.Zero(t, store.MovementCount())
}

func TestCreate_FallaEnUnaLineaNoAplicaNada(t *testing.T) {
	// Tres líneas; la tercera excede el stock. Ni el stock de las dos
	// primeras ni la venta ni el libro deben cambiar.
	store, uc, inv := newFixture(t)

	_, err := uc.Create(context.Background(), createReq(
		line(productA, 1, "25.00"),
		line(productB, 1, "12.50"),
		line(productC, 3, "180.00"),
	))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 10, store.StockOf(productA))
	assert.Equal(t, 5, store.StockOf(productB))
	assert.Equal(t, 2, store.StockOf(productC))
	assert.Zero(t, store.SaleCount())
	assert.Zero(t, store.MovementCount())
	assert.Empty(t, inv.IDs)
}

func TestCreate_NumeracionConsecutivaSinHuecos(t *testing.T) {
	_, uc, _ := newFixture(t)
	ctx := context.Background()

	first, err := uc.Create(ctx, createReq(line(productA, 1, "25.00")))
	require.NoError(t, err)

	// Una venta fallida no consume número.
	_, err = uc.Create(ctx, createReq(line(productC, 99, "180.00")))
	require.Error(t, err)

	second, err := uc.Create(ctx, createReq(line(productA, 1, "25.00")))
	require.NoError(t, err)

	assert.Equal(t, "VEN-0001", first.Number)
	assert.Equal(t, "VEN-0002", second.Number)
}

func TestCreate_NumeracionRetomaDocumentosPreexistentes(t *testing.T) {
	store, uc, _ := newFixture(t)

	// Venta previa a la tabla de consecutivos.
	seeded := &entity.Sale{ID: "venta-vieja", Number: "VEN-0099", UserID: userID, Status: entity.SaleStatusCompletada}
	require.NoError(t, testutil.NewSaleRepo(store).Create(seeded))

	resp, err := uc.Create(context.Background(), createReq(line(productA, 1, "25.00")))
	require.NoError(t, err)
	assert.Equal(t, "VEN-0100", resp.Number)
}

func TestCreate_ValidacionesBasicas(t *testing.T) {
	_, uc, _ := newFixture(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateSaleRequest{UserID: userID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin líneas")

	_, err = uc.Create(ctx, dto.CreateSaleRequest{Details: []dto.CreateSaleDetailRequest{line(productA, 1, "25.00")}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin usuario")

	req := createReq(line(productA, 0, "25.00"))
	_, err = uc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero")

	req = createReq(line("producto-fantasma", 1, "25.00"))
	_, err = uc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrNotFound, "producto inexistente")

	req = createReq(line(productA, 1, "25.00"))
	req.UserID = "usuario-fantasma"
	_, err = uc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrNotFound, "usuario inexistente")

	req = createReq(line(productA, 1, "25.00"))
	req.Status = entity.SaleStatusCancelada
	_, err = uc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "no se crea cancelada")

	req = createReq(line(productA, 1, "25.00"))
	req.Discount = dec("1000.00")
	_, err = uc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "total negativo")
}

func TestCreate_ConcurrenciaNoDejaStockNegativoNiNumerosRepetidos(t *testing.T) {
	store, uc, _ := newFixture(t)

	// productC tiene stock 2: de 10 ventas de 1 unidad solo 2 pueden pasar.
	const attempts = 10
	var wg sync.WaitGroup
	results := make([]error, attempts)
	numbers := make([]string, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := uc.Create(context.Background(), createReq(line(productC, 1, "180.00")))
			results[i] = err
			if err == nil {
				numbers[i] = resp.Number
			}
		}(i)
	}
	wg.Wait()

	var oks int
	seen := make(map[string]bool)
	for i, err := range results {
		if err == nil {
			oks++
			assert.False(t, seen[numbers[i]], "número repetido %s", numbers[i])
			seen[numbers[i]] = true
		} else {
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		}
	}
	assert.Equal(t, 2, oks)
	assert.Equal(t, 0, store.StockOf(productC))
	assert.Equal(t, 2, store.SaleCount())
	assert.Equal(t, 2, store.MovementCount())
}

// ─────────────────────────────────────────────────────────────────────────────
// Update
// ─────────────────────────────────────────────────────────────────────────────

func mustCreate(t *testing.T, uc *sales.UseCase, req dto.CreateSaleRequest) *dto.SaleResponse {
	t.Helper()
	resp, err := uc.Create(context.Background(), req)
	require.NoError(t, err)
	return resp
}

func strPtr(s string) *string { return &s }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestUpdate_RechazaCamposInmutables(t *testing.T) {
	_, uc, _ := newFixture(t)
	created := mustCreate(t, uc, createReq(line(productA, 1, "25.00")))

	_, err := uc.Update(context.Background(), created.ID, dto.UpdateSaleRequest{
		Details: []dto.CreateSaleDetailRequest{line(productA, 5, "25.00")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Update(context.Background(), created.ID, dto.UpdateSaleRequest{Total: decPtr("1.00")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Update(context.Background(), created.ID, dto.UpdateSaleRequest{Number: strPtr("VEN-9999")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdate_DescuentoEImpuestoRecalculanTotal(t *testing.T) {
	_, uc, _ := newFixture(t)
	created := mustCreate(t, uc, createReq(line(productA, 4, "25.00"))) // subtotal 100

	resp, err := uc.Update(context.Background(), created.ID, dto.UpdateSaleRequest{
		Discount: decPtr("10.00"),
		Tax:      decPtr("19.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "109", resp.Total.String())
	assert.Equal(t, "100", resp.Subtotal.String())
}

func TestUpdate_CancelarRestauraStockConMovimientosDeEntrada(t *testing.T) {
	store, uc, _ := newFixture(t)
	created := mustCreate(t, uc, createReq(line(productA, 3, "25.00")))
	require.Equal(t, 7, store.StockOf(productA))

	resp, err := uc.Update(context.Background(), created.ID, dto.UpdateSaleRequest{
		Status: strPtr(entity.SaleStatusCancelada),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusCancelada, resp.Status)
	assert.Equal(t, 10, store.StockOf(productA))

	// El libro conserva la salida original y agrega la entrada de reversión.
	movs := store.Movements()
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementSalida, movs[0].Type)
	assert.Equal(t, entity.MovementEntrada, movs[1].Type)
	assert.Equal(t, created.Number, movs[1].Reference)
	assert.Contains(t, movs[1].Observations, "cancelación")
}

func TestUpdate_ReactivarVuelveADescontarValidandoStock(t *testing.T) {
	store, uc, _ := newFixture(t)
	created := mustCreate(t, uc, createReq(line(productC, 2, "180.00"))) // agota el stock

	_, err := uc.Update(context.Background(), created.ID, dto.UpdateSaleRequest{
		Status: strPtr(entity.SaleStatusCancelada),
	})
	require.NoError(t, err)
	require.Equal(t, 2, store.StockOf(productC))

	resp, err := uc.Update(context.Background(), created.ID, dto.UpdateSaleRequest{
		Status: strPtr(entity.SaleStatusCompletada),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusCompletada, resp.Status)
	assert.Equal(t, 0, store.StockOf(productC))
}

func TestUpdate_ReactivarFallaSiElStockYaSeVendio(t *testing.T) {
	store, uc, _ := newFixture(t)
	created := mustCreate(t, uc, createReq(line(productC, 2, "180.00")))

	_, err := uc.Update(context.Background(), created.ID, dto.UpdateSaleRequest{
		Status: strPtr(entity.SaleStatusCancelada),
	})
	require.NoError(t, err)

	// Otra venta consume el stock devuelto.
	mustCreate(t, uc, createReq(line(productC, 2, "180.00")))

	_, err = uc.Update(context.Background(), created.ID, dto.UpdateSaleRequest{
		Status: strPtr(entity.SaleStatusCompletada),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	// La venta sigue cancelada y el stock no cambió.
	got, gerr := uc.GetByID(context.Background(), created.ID)
	require.NoError(t, gerr)
	assert.Equal(t, entity.SaleStatusCancelada, got.Status)
	assert.Equal(t, 0, store.StockOf(productC))
}

func TestUpdate_CancelacionConcurrenteNoDuplicaLaReversion(t *testing.T) {
	store, uc, _ := newFixture(t)
	created := mustCreate(t, uc, createReq(line(productA, 3, "25.00")))
	require.Equal(t, 7, store.StockOf(productA))

	// Dos cancelaciones simultáneas de la misma venta: la decisión de
	// revertir se toma sobre la cabecera bloqueada, así que solo una agrega
	// movimientos; la otra encuentra la venta ya cancelada.
	start := make(chan struct{})
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = uc.Update(context.Background(), created.ID, dto.UpdateSaleRequest{
				Status: strPtr(entity.SaleStatusCancelada),
			})
		}(i)
	}
	close(start)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, 10, store.StockOf(productA), "el stock se restaura una sola vez")
	assert.Equal(t, 2, store.MovementCount(), "una salida original y una sola entrada de reversión")

	got, err := uc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusCancelada, got.Status)
}

func TestUpdate_DevueltaEsTerminal(t *testing.T) {
	store, uc, _ := newFixture(t)
	created := mustCreate(t, uc, createReq(line(productA, 1, "25.00")))

	// devuelta la fija el flujo de devoluciones, aquí directo al repo.
	repo := testutil.NewSaleRepo(store)
	s, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	s.Status = entity.SaleStatusDevuelta
	require.NoError(t, repo.Update(s))

	_, err = uc.Update(context.Background(), created.ID, dto.UpdateSaleRequest{
		Observations: strPtr("intento de edición"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Update(context.Background(), created.ID, dto.UpdateSaleRequest{
		Status: strPtr(entity.SaleStatusDevuelta),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete
// ─────────────────────────────────────────────────────────────────────────────

func TestDelete_RevierteStockYConservaElLibro(t *testing.T) {
	store, uc, _ := newFixture(t)
	created := mustCreate(t, uc, createReq(
		line(productA, 2, "25.00"),
		line(productB, 1, "12.50"),
	))
	require.Equal(t, 8, store.StockOf(productA))

	require.NoError(t, uc.Delete(context.Background(), created.ID))

	assert.Equal(t, 10, store.StockOf(productA))
	assert.Equal(t, 5, store.StockOf(productB))
	assert.Zero(t, store.SaleCount())

	// Efecto neto cero pero historia completa: 2 salidas + 2 entradas.
	movs := store.Movements()
	require.Len(t, movs, 4)
	assert.Contains(t, movs[2].Observations, "anulación de Venta #"+created.Number)

	_, err := uc.GetByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete_VentaCanceladaNoTocaStock(t *testing.T) {
	store, uc, _ := newFixture(t)
	created := mustCreate(t, uc, createReq(line(productA, 2, "25.00")))

	_, err := uc.Update(context.Background(), created.ID, dto.UpdateSaleRequest{
		Status: strPtr(entity.SaleStatusCancelada),
	})
	require.NoError(t, err)
	require.Equal(t, 10, store.StockOf(productA))
	movsBefore := store.MovementCount()

	require.NoError(t, uc.Delete(context.Background(), created.ID))

	assert.Equal(t, 10, store.StockOf(productA), "la cancelación ya había restaurado el stock")
	assert.Equal(t, movsBefore, store.MovementCount(), "borrar una cancelada no agrega movimientos")
	assert.Zero(t, store.SaleCount())
}

func TestDelete_ConcurrenteConCancelacionNoFabricaStock(t *testing.T) {
	store, uc, _ := newFixture(t)
	created := mustCreate(t, uc, createReq(line(productA, 3, "25.00")))

	// Cancelación y eliminación simultáneas: gane quien gane, la reversión
	// ocurre exactamente una vez.
	start := make(chan struct{})
	var wg sync.WaitGroup
	var cancelErr, delErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		<-start
		_, cancelErr = uc.Update(context.Background(), created.ID, dto.UpdateSaleRequest{
			Status: strPtr(entity.SaleStatusCancelada),
		})
	}()
	go func() {
		defer wg.Done()
		<-start
		delErr = uc.Delete(context.Background(), created.ID)
	}()
	close(start)
	wg.Wait()

	require.NoError(t, delErr)
	if cancelErr != nil {
		// La eliminación llegó primero y la cancelación ya no encontró la venta.
		assert.ErrorIs(t, cancelErr, domain.ErrNotFound)
	}
	assert.Equal(t, 10, store.StockOf(productA))
	assert.Equal(t, 2, store.MovementCount())
	assert.Zero(t, store.SaleCount())
}

func TestDelete_VentaDevueltaEsConflicto(t *testing.T) {
	store, uc, _ := newFixture(t)
	created := mustCreate(t, uc, createReq(line(productA, 1, "25.00")))

	repo := testutil.NewSaleRepo(store)
	s, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	s.Status = entity.SaleStatusDevuelta
	require.NoError(t, repo.Update(s))

	err = uc.Delete(context.Background(), created.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 1, store.SaleCount())
}

// ─────────────────────────────────────────────────────────────────────────────
// Lecturas
// ─────────────────────────────────────────────────────────────────────────────

func TestList_FiltraPorEstadoYPagina(t *testing.T) {
	_, uc, _ := newFixture(t)
	ctx := context.Background()

	mustCreate(t, uc, createReq(line(productA, 1, "25.00")))
	pending := createReq(line(productA, 1, "25.00"))
	pending.Status = entity.SaleStatusPendiente
	mustCreate(t, uc, pending)

	resp, err := uc.List(ctx, repositorySaleFilter(entity.SaleStatusPendiente), dto.PageQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, entity.SaleStatusPendiente, resp.Data[0].Status)

	_, err = uc.List(ctx, repositorySaleFilter("estado-raro"), dto.PageQuery{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDailyTotals_SoloVentasCompletadas(t *testing.T) {
	_, uc, _ := newFixture(t)
	ctx := context.Background()

	mustCreate(t, uc, createReq(line(productA, 4, "25.00"))) // completada, 100
	pending := createReq(line(productA, 1, "25.00"))
	pending.Status = entity.SaleStatusPendiente
	mustCreate(t, uc, pending)

	from := timeDaysAgo(1)
	to := timeDaysAhead(1)
	totals, err := uc.DailyTotals(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, 1, totals[0].Count)
	assert.Equal(t, "100", totals[0].Total.String())

	_, err = uc.DailyTotals(ctx, to, from)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "rango invertido")
}

func repositorySaleFilter(status string) repository.SaleFilter {
	return repository.SaleFilter{Status: status}
}

func timeDaysAgo(n int) time.Time   { return time.Now().AddDate(0, 0, -n) }
func timeDaysAhead(n int) time.Time { return time.Now().AddDate(0, 0, n) }
