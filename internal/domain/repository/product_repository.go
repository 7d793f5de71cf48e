package repository

import "github.com/jmrobles/ventas-api/internal/domain/entity"

// ProductRepository puerto de lectura y ajuste de stock de productos.
// AdjustStock es la única vía para mutar stock_actual: un UPDATE condicional
// evaluado por el motor de almacenamiento (stock_actual + delta >= 0), usado
// dentro de la transacción de cada flujo para evitar lost updates.
type ProductRepository interface {
	GetByID(id string) (*entity.Product, error)
	// AdjustStock aplica delta (positivo o negativo) de forma atómica.
	// Devuelve domain.ErrNotFound si el producto no existe y
	// *domain.InsufficientStockError si el ajuste dejaría stock negativo.
	AdjustStock(productID string, delta int) error
	List(limit, offset int) ([]*entity.Product, int, error)
	ListLowStock() ([]*entity.Product, error)
}
