package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jmrobles/ventas-api/internal/domain"
	"github.com/jmrobles/ventas-api/internal/domain/entity"
	"github.com/jmrobles/ventas-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo persistencia de ventas sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id_venta, numero_venta, id_usuario, id_cliente, fecha_venta, subtotal, descuento, impuesto, total, estado, observaciones, created_at, updated_at`

// Create persiste la cabecera de una venta. Un choque en numero_venta (único)
// se reporta como ErrConflict.
func (r *SaleRepo) Create(s *entity.Sale) error {
	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		s.ID, s.Number, s.UserID, s.ClientID, s.Date, s.Subtotal, s.Discount,
		s.Tax, s.Total, s.Status, s.Observations, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("numero_venta %s ya existe: %w", s.Number, domain.ErrConflict)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("usuario o cliente inexistente: %w", domain.ErrInvalidInput)
		}
		return fmt.Errorf("create sale: %w", err)
	}
	return nil
}

// CreateDetail persiste una línea de venta.
func (r *SaleRepo) CreateDetail(d *entity.SaleDetail) error {
	query := `
		INSERT INTO sale_details (id_detalle, id_venta, id_producto, cantidad, precio_unitario, descuento_item, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		d.ID, d.SaleID, d.ProductID, d.Quantity, d.UnitPrice, d.ItemDiscount, d.Subtotal,
	)
	if err != nil {
		return fmt.Errorf("create sale detail: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera de una venta (sin líneas).
func (r *SaleRepo) GetByID(id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id_venta = $1`
	s, err := scanSale(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return s, nil
}

// GetByIDForUpdate obtiene la cabecera bloqueándola (FOR UPDATE). Debe usarse
// dentro de una tx: serializa cancelaciones, reactivaciones y eliminaciones
// concurrentes del mismo documento.
func (r *SaleRepo) GetByIDForUpdate(id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id_venta = $1 FOR UPDATE`
	s, err := scanSale(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock sale: %w", err)
	}
	return s, nil
}

// GetDetails obtiene las líneas de una venta.
func (r *SaleRepo) GetDetails(saleID string) ([]*entity.SaleDetail, error) {
	query := `
		SELECT id_detalle, id_venta, id_producto, cantidad, precio_unitario, descuento_item, subtotal
		FROM sale_details WHERE id_venta = $1 ORDER BY id_detalle`
	rows, err := r.q.Query(context.Background(), query, saleID)
	if err != nil {
		return nil, fmt.Errorf("get sale details: %w", err)
	}
	defer rows.Close()
	var list []*entity.SaleDetail
	for rows.Next() {
		var d entity.SaleDetail
		if err := rows.Scan(&d.ID, &d.SaleID, &d.ProductID, &d.Quantity,
			&d.UnitPrice, &d.ItemDiscount, &d.Subtotal); err != nil {
			return nil, fmt.Errorf("scan sale detail: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// Update persiste los campos mutables de la cabecera.
func (r *SaleRepo) Update(s *entity.Sale) error {
	query := `
		UPDATE sales
		SET id_cliente = $2, estado = $3, observaciones = $4, descuento = $5, impuesto = $6, total = $7, updated_at = $8
		WHERE id_venta = $1`
	_, err := r.q.Exec(context.Background(), query,
		s.ID, s.ClientID, s.Status, s.Observations, s.Discount, s.Tax, s.Total, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	return nil
}

// DeleteDetails borra las líneas de una venta.
func (r *SaleRepo) DeleteDetails(saleID string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM sale_details WHERE id_venta = $1`, saleID)
	if err != nil {
		return fmt.Errorf("delete sale details: %w", err)
	}
	return nil
}

// Delete borra la cabecera de una venta.
func (r *SaleRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM sales WHERE id_venta = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	return nil
}

// List lista ventas con filtros y total, ordenadas por fecha descendente.
// Las cabeceras se devuelven sin líneas.
func (r *SaleRepo) List(filter repository.SaleFilter) ([]*entity.Sale, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	pos := 1
	if filter.ClientID != "" {
		where += fmt.Sprintf(" AND id_cliente = $%d", pos)
		args = append(args, filter.ClientID)
		pos++
	}
	if filter.UserID != "" {
		where += fmt.Sprintf(" AND id_usuario = $%d", pos)
		args = append(args, filter.UserID)
		pos++
	}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND estado = $%d", pos)
		args = append(args, filter.Status)
		pos++
	}
	if filter.Number != "" {
		where += fmt.Sprintf(" AND numero_venta ILIKE $%d", pos)
		args = append(args, "%"+filter.Number+"%")
		pos++
	}
	if filter.From != nil {
		where += fmt.Sprintf(" AND fecha_venta >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		where += fmt.Sprintf(" AND fecha_venta <= $%d", pos)
		args = append(args, *filter.To)
		pos++
	}

	var total int
	if err := r.q.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM sales`+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sales: %w", err)
	}

	query := `SELECT ` + saleColumns + ` FROM sales` + where +
		fmt.Sprintf(" ORDER BY fecha_venta DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, total, rows.Err()
}

// DailyTotals agrega ventas completadas por día dentro del rango.
func (r *SaleRepo) DailyTotals(from, to time.Time) ([]*entity.DailySalesTotal, error) {
	query := `
		SELECT DATE_TRUNC('day', fecha_venta) AS dia, COUNT(*), COALESCE(SUM(total), 0)
		FROM sales
		WHERE estado = $1 AND fecha_venta >= $2 AND fecha_venta <= $3
		GROUP BY dia ORDER BY dia`
	rows, err := r.q.Query(context.Background(), query, entity.SaleStatusCompletada, from, to)
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	defer rows.Close()
	var list []*entity.DailySalesTotal
	for rows.Next() {
		var t entity.DailySalesTotal
		if err := rows.Scan(&t.Day, &t.Count, &t.Total); err != nil {
			return nil, fmt.Errorf("scan daily total: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	err := row.Scan(&s.ID, &s.Number, &s.UserID, &s.ClientID, &s.Date, &s.Subtotal,
		&s.Discount, &s.Tax, &s.Total, &s.Status, &s.Observations, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
