package movements_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmrobles/ventas-api/internal/application/dto"
	"github.com/jmrobles/ventas-api/internal/application/movements"
	"github.com/jmrobles/ventas-api/internal/application/testutil"
	"github.com/jmrobles/ventas-api/internal/domain"
	"github.com/jmrobles/ventas-api/internal/domain/entity"
	"github.com/jmrobles/ventas-api/internal/domain/repository"
)

const (
	userID   = "00000000-0000-0000-0000-000000000001"
	productA = "00000000-0000-0000-0000-00000000000a"
)

func newFixture(t *testing.T) (*testutil.Store, *movements.UseCase) {
	t.Helper()
	store := testutil.NewStore()
	store.AddUser(entity.User{ID: userID, Username: "bodeguero"})
	store.AddProduct(entity.Product{ID: productA, Name: "Teclado", StockActual: 10})

	uc := movements.NewUseCase(
		testutil.NewTxRunner(store),
		testutil.NewMovementRepo(store),
		testutil.NewProductRepo(store),
		testutil.NewUserRepo(store),
		nil,
	)
	return store, uc
}

func adjust(tipo string, qty int) dto.CreateMovementRequest {
	return dto.CreateMovementRequest{
		ProductID: productA,
		UserID:    userID,
		Type:      tipo,
		Quantity:  qty,
	}
}

func TestCreate_EntradaYSalidaAjustanStock(t *testing.T) {
	store, uc := newFixture(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, adjust(entity.MovementEntrada, 5))
	require.NoError(t, err)
	assert.Equal(t, 15, store.StockOf(productA))

	_, err = uc.Create(ctx, adjust(entity.MovementSalida, 8))
	require.NoError(t, err)
	assert.Equal(t, 7, store.StockOf(productA))

	assert.Equal(t, 2, store.MovementCount())
}

func TestCreate_SalidaMayorAlStockFallaSinEfectos(t *testing.T) {
	store, uc := newFixture(t)

	_, err := uc.Create(context.Background(), adjust(entity.MovementSalida, 11))
	require.Error(t, err)

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Teclado", stockErr.ProductName)
	assert.Equal(t, 10, stockErr.Available)
	assert.Equal(t, 11, stockErr.Requested)

	assert.Equal(t, 10, store.StockOf(productA))
	assert.Zero(t, store.MovementCount(), "la transacción no dejó rastro")
}

func TestCreate_Validaciones(t *testing.T) {
	_, uc := newFixture(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, adjust("transferencia", 1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "tipo desconocido")

	_, err = uc.Create(ctx, adjust(entity.MovementEntrada, 0))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero")

	req := adjust(entity.MovementEntrada, 1)
	req.ProductID = "producto-fantasma"
	_, err = uc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	req = adjust(entity.MovementEntrada, 1)
	req.UserID = "usuario-fantasma"
	_, err = uc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_SoloCamposDescriptivos(t *testing.T) {
	_, uc := newFixture(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, adjust(entity.MovementEntrada, 5))
	require.NoError(t, err)

	qty := 99
	_, err = uc.Update(ctx, created.ID, dto.UpdateMovementRequest{Quantity: &qty})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad es inmutable")

	tipo := entity.MovementSalida
	_, err = uc.Update(ctx, created.ID, dto.UpdateMovementRequest{Type: &tipo})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "tipo es inmutable")

	ref := "conteo físico 2026-08"
	resp, err := uc.Update(ctx, created.ID, dto.UpdateMovementRequest{Reference: &ref})
	require.NoError(t, err)
	assert.Equal(t, ref, resp.Reference)
	assert.Equal(t, 5, resp.Quantity, "la cantidad no cambió")
}

func TestDelete_RegistraCompensatorioEnLugarDeBorrar(t *testing.T) {
	store, uc := newFixture(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, adjust(entity.MovementEntrada, 5))
	require.NoError(t, err)
	require.Equal(t, 15, store.StockOf(productA))

	comp, err := uc.Delete(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, 10, store.StockOf(productA), "el efecto neto quedó en cero")
	assert.Equal(t, entity.MovementSalida, comp.Type)
	assert.Equal(t, 5, comp.Quantity)
	assert.Equal(t, created.ID, comp.Reference, "el compensatorio referencia al original")

	// El libro es append-only: el original sigue ahí y se sumó el inverso.
	assert.Equal(t, 2, store.MovementCount())
	original, err := uc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementEntrada, original.Type)
}

func TestDelete_SegundaReversionEsConflicto(t *testing.T) {
	store, uc := newFixture(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, adjust(entity.MovementEntrada, 5))
	require.NoError(t, err)
	_, err = uc.Delete(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 10, store.StockOf(productA))

	// El original sigue en el libro, pero ya tiene compensatorio: repetir la
	// reversión corrompería el stock.
	_, err = uc.Delete(ctx, created.ID)
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 10, store.StockOf(productA))
	assert.Equal(t, 2, store.MovementCount())
}

func TestDelete_CompensatorioGuardadoContraStockNegativo(t *testing.T) {
	store, uc := newFixture(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, adjust(entity.MovementEntrada, 5))
	require.NoError(t, err)

	// El stock ingresado ya salió por otra vía.
	_, err = uc.Create(ctx, adjust(entity.MovementSalida, 12))
	require.NoError(t, err)
	require.Equal(t, 3, store.StockOf(productA))

	// Revertir la entrada de 5 dejaría stock en -2: se rechaza entero.
	_, err = uc.Delete(ctx, created.ID)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 3, store.StockOf(productA))
	assert.Equal(t, 2, store.MovementCount())
}

func TestList_FiltraPorTipoYProducto(t *testing.T) {
	_, uc := newFixture(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, adjust(entity.MovementEntrada, 5))
	require.NoError(t, err)
	_, err = uc.Create(ctx, adjust(entity.MovementSalida, 2))
	require.NoError(t, err)

	resp, err := uc.List(ctx, repository.MovementFilter{Type: entity.MovementSalida}, dto.PageQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, entity.MovementSalida, resp.Data[0].Type)

	_, err = uc.List(ctx, repository.MovementFilter{Type: "ajuste"}, dto.PageQuery{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_PrecioUnitarioNegativoRechazado(t *testing.T) {
	_, uc := newFixture(t)
	neg := decimal.NewFromInt(-1)
	req := adjust(entity.MovementEntrada, 1)
	req.UnitPrice = &neg
	_, err := uc.Create(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
