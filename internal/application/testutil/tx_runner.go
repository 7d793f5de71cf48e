package testutil

import (
	"context"
	"sync"

	"github.com/jmrobles/ventas-api/internal/application/movements"
	"github.com/jmrobles/ventas-api/internal/application/purchases"
	"github.com/jmrobles/ventas-api/internal/application/sales"
	"github.com/jmrobles/ventas-api/internal/domain/repository"
)

var (
	_ movements.TxRunner = (*TxRunner)(nil)
	_ sales.TxRunner     = (*TxRunner)(nil)
	_ purchases.TxRunner = (*TxRunner)(nil)
)

// TxRunner unidad de trabajo en memoria: toma el lock del Store (las
// transacciones se serializan, como con el lock de fila del consecutivo),
// guarda un snapshot y lo restaura si fn falla. Los repos que recibe fn no
// lockean porque el runner ya sostiene el lock.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner sobre el Store.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Invalidator registra qué productos se invalidaron en caché, para
// verificarlo en los tests.
type Invalidator struct {
	mu  sync.Mutex
	IDs []string
}

func (i *Invalidator) InvalidateProducts(_ context.Context, productIDs ...string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.IDs = append(i.IDs, productIDs...)
}

// Run transacción de ajustes manuales.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	snap := r.store.snapshot()
	err := fn(
		&MovementRepo{s: r.store},
		&ProductRepo{s: r.store},
	)
	if err != nil {
		r.store.restore(snap)
	}
	return err
}

// RunSale transacción del flujo de ventas.
func (r *TxRunner) RunSale(ctx context.Context, fn func(
	saleRepo repository.SaleRepository,
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	seqRepo repository.SequenceRepository,
) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	snap := r.store.snapshot()
	err := fn(
		&SaleRepo{s: r.store},
		&MovementRepo{s: r.store},
		&ProductRepo{s: r.store},
		&SequenceRepo{s: r.store},
	)
	if err != nil {
		r.store.restore(snap)
	}
	return err
}

// RunPurchase transacción del flujo de compras.
func (r *TxRunner) RunPurchase(ctx context.Context, fn func(
	purchaseRepo repository.PurchaseRepository,
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	seqRepo repository.SequenceRepository,
) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	snap := r.store.snapshot()
	err := fn(
		&PurchaseRepo{s: r.store},
		&MovementRepo{s: r.store},
		&ProductRepo{s: r.store},
		&SequenceRepo{s: r.store},
	)
	if err != nil {
		r.store.restore(snap)
	}
	return err
}
