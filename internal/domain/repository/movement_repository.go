package repository

import (
	"time"

	"github.com/jmrobles/ventas-api/internal/domain/entity"
)

// MovementFilter filtros de listado de movimientos.
type MovementFilter struct {
	ProductID string
	UserID    string
	Type      string // entrada | salida | "" (todos)
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// MovementRepository puerto de persistencia del libro de movimientos.
// El libro es append-only: Update solo toca campos descriptivos
// (referencia, observaciones, precio_unitario, fecha), nunca cantidad ni tipo.
type MovementRepository interface {
	Create(m *entity.InventoryMovement) error
	GetByID(id string) (*entity.InventoryMovement, error)
	// GetByIDForUpdate bloquea el movimiento contra escritores concurrentes.
	// Usar dentro de una transacción antes de registrar su compensatorio.
	GetByIDForUpdate(id string) (*entity.InventoryMovement, error)
	// HasReversal informa si ya existe un compensatorio que referencia al
	// movimiento dado.
	HasReversal(movementID string) (bool, error)
	Update(m *entity.InventoryMovement) error
	List(filter MovementFilter) ([]*entity.InventoryMovement, int, error)
}
