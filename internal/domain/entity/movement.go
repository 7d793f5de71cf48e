package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementEntrada = "entrada" // aumenta stock
	MovementSalida  = "salida"  // disminuye stock
)

// ValidMovementType reporta si s es un tipo de movimiento conocido.
func ValidMovementType(s string) bool {
	return s == MovementEntrada || s == MovementSalida
}

// InventoryMovement es una entrada del libro de movimientos: el registro
// inmutable de por qué cambió el stock. Cantidad y tipo nunca se editan
// después de creados; las correcciones son siempre movimientos compensatorios.
type InventoryMovement struct {
	ID           string
	ProductID    string
	UserID       string
	Type         string // entrada | salida
	Quantity     int    // siempre > 0; el signo lo da Type
	UnitPrice    *decimal.Decimal
	Reference    string // número de documento asociado (VEN-0001) o referencia libre
	Observations string
	Date         time.Time
	CreatedAt    time.Time
}

// StockDelta devuelve el efecto del movimiento sobre stock_actual.
func (m *InventoryMovement) StockDelta() int {
	if m.Type == MovementSalida {
		return -m.Quantity
	}
	return m.Quantity
}

// Inverse construye el movimiento compensatorio exacto (dirección opuesta,
// misma cantidad). ID, fechas y textos los asigna el caller.
func (m *InventoryMovement) Inverse() *InventoryMovement {
	inv := &InventoryMovement{
		ProductID: m.ProductID,
		UserID:    m.UserID,
		Quantity:  m.Quantity,
		UnitPrice: m.UnitPrice,
	}
	if m.Type == MovementEntrada {
		inv.Type = MovementSalida
	} else {
		inv.Type = MovementEntrada
	}
	return inv
}
