package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMovementRequest ajuste manual de stock (entrada/salida directa, sin
// documento asociado).
type CreateMovementRequest struct {
	ProductID    string           `json:"id_producto"`
	UserID       string           `json:"id_usuario"`
	Type         string           `json:"tipo_movimiento"`
	Quantity     int              `json:"cantidad"`
	UnitPrice    *decimal.Decimal `json:"precio_unitario"`
	Reference    string           `json:"referencia"`
	Observations string           `json:"observaciones"`
	Date         *time.Time       `json:"fecha_movimiento"`
}

// UpdateMovementRequest parche de un movimiento: solo campos descriptivos.
// cantidad y tipo_movimiento se declaran para rechazarlos explícitamente.
type UpdateMovementRequest struct {
	UnitPrice    *decimal.Decimal `json:"precio_unitario"`
	Reference    *string          `json:"referencia"`
	Observations *string          `json:"observaciones"`
	Date         *time.Time       `json:"fecha_movimiento"`

	Quantity *int    `json:"cantidad"`
	Type     *string `json:"tipo_movimiento"`
}

// MovementResponse movimiento persistido.
type MovementResponse struct {
	ID           string           `json:"id_movimiento"`
	ProductID    string           `json:"id_producto"`
	UserID       string           `json:"id_usuario"`
	Type         string           `json:"tipo_movimiento"`
	Quantity     int              `json:"cantidad"`
	UnitPrice    *decimal.Decimal `json:"precio_unitario"`
	Reference    string           `json:"referencia"`
	Observations string           `json:"observaciones"`
	Date         time.Time        `json:"fecha_movimiento"`
}

// MovementListResponse página de movimientos.
type MovementListResponse struct {
	Data     []MovementResponse `json:"data"`
	Total    int                `json:"total"`
	Page     int                `json:"page"`
	Limit    int                `json:"limit"`
	LastPage int                `json:"lastPage"`
}
