package purchases

import (
	"context"

	"github.com/jmrobles/ventas-api/internal/domain/repository"
)

// TxRunner unidad de trabajo de compras: fn recibe repositorios atados a una
// misma transacción (documento, libro de movimientos, stock y consecutivo).
type TxRunner interface {
	RunPurchase(ctx context.Context, fn func(
		purchaseRepo repository.PurchaseRepository,
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
		seqRepo repository.SequenceRepository,
	) error) error
}

// StockInvalidator invalida caché de productos tras un commit que cambió stock.
type StockInvalidator interface {
	InvalidateProducts(ctx context.Context, productIDs ...string)
}
