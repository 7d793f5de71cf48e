package movements

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmrobles/ventas-api/internal/domain/entity"
	"github.com/jmrobles/ventas-api/internal/domain/repository"
)

// Apply es la primitiva única de mutación de stock: ajusta stock_actual vía
// AdjustStock (condicional, evaluado por el almacenamiento) y agrega el
// movimiento correspondiente al libro. Los cuatro flujos (venta, compra,
// ajuste manual y sus reversiones) pasan por aquí, siempre con repositorios
// atados a la transacción del documento.
func Apply(
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	m *entity.InventoryMovement,
) error {
	if err := productRepo.AdjustStock(m.ProductID, m.StockDelta()); err != nil {
		return err
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.Date.IsZero() {
		m.Date = time.Now()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = m.Date
	}
	return movRepo.Create(m)
}
