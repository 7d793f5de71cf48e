package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jmrobles/ventas-api/internal/domain/entity"
	"github.com/jmrobles/ventas-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo libro de movimientos sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id_movimiento, id_producto, id_usuario, tipo_movimiento, cantidad, precio_unitario, referencia, observaciones, fecha_movimiento, created_at`

// Create agrega un movimiento al libro.
func (r *MovementRepo) Create(m *entity.InventoryMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.ProductID, m.UserID, m.Type, m.Quantity, m.UnitPrice,
		m.Reference, m.Observations, m.Date, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *MovementRepo) GetByID(id string) (*entity.InventoryMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE id_movimiento = $1`
	var m entity.InventoryMovement
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&m.ID, &m.ProductID, &m.UserID, &m.Type, &m.Quantity, &m.UnitPrice,
		&m.Reference, &m.Observations, &m.Date, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return &m, nil
}

// GetByIDForUpdate obtiene un movimiento bloqueándolo (FOR UPDATE). Debe
// usarse dentro de una tx: serializa reversiones concurrentes del mismo
// movimiento.
func (r *MovementRepo) GetByIDForUpdate(id string) (*entity.InventoryMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE id_movimiento = $1 FOR UPDATE`
	var m entity.InventoryMovement
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&m.ID, &m.ProductID, &m.UserID, &m.Type, &m.Quantity, &m.UnitPrice,
		&m.Reference, &m.Observations, &m.Date, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock movement: %w", err)
	}
	return &m, nil
}

// HasReversal informa si ya existe un compensatorio que referencia al
// movimiento dado.
func (r *MovementRepo) HasReversal(movementID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(context.Background(),
		`SELECT EXISTS(SELECT 1 FROM inventory_movements WHERE referencia = $1)`,
		movementID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("has reversal: %w", err)
	}
	return exists, nil
}

// Update persiste solo los campos descriptivos; cantidad y tipo no se tocan.
func (r *MovementRepo) Update(m *entity.InventoryMovement) error {
	query := `
		UPDATE inventory_movements
		SET precio_unitario = $2, referencia = $3, observaciones = $4, fecha_movimiento = $5
		WHERE id_movimiento = $1`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.UnitPrice, m.Reference, m.Observations, m.Date,
	)
	if err != nil {
		return fmt.Errorf("update movement: %w", err)
	}
	return nil
}

// List lista movimientos con filtros y total, ordenados por fecha descendente.
func (r *MovementRepo) List(filter repository.MovementFilter) ([]*entity.InventoryMovement, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	pos := 1
	if filter.ProductID != "" {
		where += fmt.Sprintf(" AND id_producto = $%d", pos)
		args = append(args, filter.ProductID)
		pos++
	}
	if filter.UserID != "" {
		where += fmt.Sprintf(" AND id_usuario = $%d", pos)
		args = append(args, filter.UserID)
		pos++
	}
	if filter.Type != "" {
		where += fmt.Sprintf(" AND tipo_movimiento = $%d", pos)
		args = append(args, filter.Type)
		pos++
	}
	if filter.From != nil {
		where += fmt.Sprintf(" AND fecha_movimiento >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		where += fmt.Sprintf(" AND fecha_movimiento <= $%d", pos)
		args = append(args, *filter.To)
		pos++
	}

	var total int
	if err := r.q.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM inventory_movements`+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	query := `SELECT ` + movementColumns + ` FROM inventory_movements` + where +
		fmt.Sprintf(" ORDER BY fecha_movimiento DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		var m entity.InventoryMovement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.UserID, &m.Type, &m.Quantity,
			&m.UnitPrice, &m.Reference, &m.Observations, &m.Date, &m.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, total, rows.Err()
}
