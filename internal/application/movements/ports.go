package movements

import (
	"context"

	"github.com/jmrobles/ventas-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Es la unidad de trabajo: todo lo escrito en fn se confirma
// o se revierte en bloque.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// StockInvalidator invalida entradas de caché de productos después de un
// commit que cambió stock. Una implementación nil-safe (Noop) permite operar
// sin caché.
type StockInvalidator interface {
	InvalidateProducts(ctx context.Context, productIDs ...string)
}

// NoopInvalidator descarta las invalidaciones (sin caché configurado).
type NoopInvalidator struct{}

func (NoopInvalidator) InvalidateProducts(context.Context, ...string) {}
