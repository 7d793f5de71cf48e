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

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

// PurchaseRepo persistencia de compras sobre PostgreSQL (usable con pool o tx).
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

const purchaseColumns = `id_compra, numero_compra, id_usuario, fecha_compra, total, estado, observaciones, created_at, updated_at`

// Create persiste la cabecera de una compra. Un choque en numero_compra
// (único) se reporta como ErrConflict.
func (r *PurchaseRepo) Create(p *entity.Purchase) error {
	query := `
		INSERT INTO purchases (` + purchaseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		p.ID, p.Number, p.UserID, p.Date, p.Total, p.Status, p.Observations,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("numero_compra %s ya existe: %w", p.Number, domain.ErrConflict)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("usuario inexistente: %w", domain.ErrInvalidInput)
		}
		return fmt.Errorf("create purchase: %w", err)
	}
	return nil
}

// CreateDetail persiste una línea de compra.
func (r *PurchaseRepo) CreateDetail(d *entity.PurchaseDetail) error {
	query := `
		INSERT INTO purchase_details (id_detalle, id_compra, id_producto, cantidad, precio_unitario, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		d.ID, d.PurchaseID, d.ProductID, d.Quantity, d.UnitPrice, d.Subtotal,
	)
	if err != nil {
		return fmt.Errorf("create purchase detail: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera de una compra (sin líneas).
func (r *PurchaseRepo) GetByID(id string) (*entity.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE id_compra = $1`
	p, err := scanPurchase(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	return p, nil
}

// GetByIDForUpdate obtiene la cabecera bloqueándola (FOR UPDATE). Debe usarse
// dentro de una tx: serializa cancelaciones, reactivaciones y eliminaciones
// concurrentes del mismo documento.
func (r *PurchaseRepo) GetByIDForUpdate(id string) (*entity.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE id_compra = $1 FOR UPDATE`
	p, err := scanPurchase(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock purchase: %w", err)
	}
	return p, nil
}

// GetDetails obtiene las líneas de una compra.
func (r *PurchaseRepo) GetDetails(purchaseID string) ([]*entity.PurchaseDetail, error) {
	query := `
		SELECT id_detalle, id_compra, id_producto, cantidad, precio_unitario, subtotal
		FROM purchase_details WHERE id_compra = $1 ORDER BY id_detalle`
	rows, err := r.q.Query(context.Background(), query, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("get purchase details: %w", err)
	}
	defer rows.Close()
	var list []*entity.PurchaseDetail
	for rows.Next() {
		var d entity.PurchaseDetail
		if err := rows.Scan(&d.ID, &d.PurchaseID, &d.ProductID, &d.Quantity,
			&d.UnitPrice, &d.Subtotal); err != nil {
			return nil, fmt.Errorf("scan purchase detail: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// Update persiste los campos mutables de la cabecera.
func (r *PurchaseRepo) Update(p *entity.Purchase) error {
	query := `
		UPDATE purchases
		SET estado = $2, observaciones = $3, total = $4, updated_at = $5
		WHERE id_compra = $1`
	_, err := r.q.Exec(context.Background(), query,
		p.ID, p.Status, p.Observations, p.Total, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update purchase: %w", err)
	}
	return nil
}

// DeleteDetails borra las líneas de una compra.
func (r *PurchaseRepo) DeleteDetails(purchaseID string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM purchase_details WHERE id_compra = $1`, purchaseID)
	if err != nil {
		return fmt.Errorf("delete purchase details: %w", err)
	}
	return nil
}

// Delete borra la cabecera de una compra.
func (r *PurchaseRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM purchases WHERE id_compra = $1`, id)
	if err != nil {
		return fmt.Errorf("delete purchase: %w", err)
	}
	return nil
}

// List lista compras con filtros y total, ordenadas por fecha descendente.
func (r *PurchaseRepo) List(filter repository.PurchaseFilter) ([]*entity.Purchase, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	pos := 1
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
		where += fmt.Sprintf(" AND numero_compra ILIKE $%d", pos)
		args = append(args, "%"+filter.Number+"%")
		pos++
	}
	if filter.From != nil {
		where += fmt.Sprintf(" AND fecha_compra >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		where += fmt.Sprintf(" AND fecha_compra <= $%d", pos)
		args = append(args, *filter.To)
		pos++
	}

	var total int
	if err := r.q.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM purchases`+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count purchases: %w", err)
	}

	query := `SELECT ` + purchaseColumns + ` FROM purchases` + where +
		fmt.Sprintf(" ORDER BY fecha_compra DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()
	var list []*entity.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan purchase: %w", err)
		}
		list = append(list, p)
	}
	return list, total, rows.Err()
}

func scanPurchase(row pgx.Row) (*entity.Purchase, error) {
	var p entity.Purchase
	err := row.Scan(&p.ID, &p.Number, &p.UserID, &p.Date, &p.Total, &p.Status,
		&p.Observations, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
