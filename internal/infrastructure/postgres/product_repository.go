package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jmrobles/ventas-api/internal/domain"
	"github.com/jmrobles/ventas-api/internal/domain/entity"
	"github.com/jmrobles/ventas-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id_producto, nombre_producto, descripcion, stock_actual, stock_minimo, precio_compra, precio_venta, created_at, updated_at`

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id_producto = $1`
	p, err := scanProduct(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// AdjustStock aplica delta sobre stock_actual en un solo UPDATE condicional:
// el motor evalúa la guarda de no-negatividad junto con la escritura, así dos
// transacciones concurrentes nunca pierden actualizaciones ni dejan stock
// negativo. Cero filas afectadas significa producto inexistente o guarda
// fallida; se relee el stock para distinguir y reportar el faltante.
func (r *ProductRepo) AdjustStock(productID string, delta int) error {
	query := `
		UPDATE products
		SET stock_actual = stock_actual + $2, updated_at = NOW()
		WHERE id_producto = $1 AND stock_actual + $2 >= 0`
	tag, err := r.q.Exec(context.Background(), query, productID, delta)
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var current int
	err = r.q.QueryRow(context.Background(),
		`SELECT stock_actual FROM products WHERE id_producto = $1`, productID,
	).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
		}
		return fmt.Errorf("adjust stock: %w", err)
	}
	return &domain.InsufficientStockError{
		ProductID: productID,
		Available: current,
		Requested: -delta,
	}
}

// List lista productos paginados con el total.
func (r *ProductRepo) List(limit, offset int) ([]*entity.Product, int, error) {
	var total int
	if err := r.q.QueryRow(context.Background(), `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}
	query := `SELECT ` + productColumns + ` FROM products ORDER BY nombre_producto LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	list, err := scanProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListLowStock productos con stock en o bajo su mínimo.
func (r *ProductRepo) ListLowStock() ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE stock_actual <= stock_minimo ORDER BY nombre_producto`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.StockActual, &p.StockMinimo,
		&p.PurchasePrice, &p.SalePrice, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanProducts(rows pgx.Rows) ([]*entity.Product, error) {
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
