package sales

import (
	"context"

	"github.com/jmrobles/ventas-api/internal/domain/repository"
)

// TxRunner unidad de trabajo de ventas: fn recibe repositorios atados a una
// misma transacción (documento, libro de movimientos, stock y consecutivo).
// Todo se confirma o se revierte en bloque.
type TxRunner interface {
	RunSale(ctx context.Context, fn func(
		saleRepo repository.SaleRepository,
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
		seqRepo repository.SequenceRepository,
	) error) error
}

// StockInvalidator invalida caché de productos tras un commit que cambió stock.
type StockInvalidator interface {
	InvalidateProducts(ctx context.Context, productIDs ...string)
}
