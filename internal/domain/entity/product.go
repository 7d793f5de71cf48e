package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo. El motor de ventas solo lee
// StockActual y lo ajusta mediante ProductRepository.AdjustStock; nunca lo
// sobreescribe con un valor calculado en la aplicación.
type Product struct {
	ID            string
	Name          string
	Description   string
	StockActual   int // cantidad en existencia, >= 0 siempre
	StockMinimo   int // umbral de reposición, informativo
	PurchasePrice decimal.Decimal
	SalePrice     decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LowStock indica si el producto está en o bajo su umbral de reposición.
func (p *Product) LowStock() bool {
	return p.StockActual <= p.StockMinimo
}
