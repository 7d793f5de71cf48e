package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una compra. completada y cancelada solo admiten cambios de
// estado y observaciones.
const (
	PurchaseStatusPendiente  = "pendiente"
	PurchaseStatusCompletada = "completada"
	PurchaseStatusCancelada  = "cancelada"
)

// ValidPurchaseStatus reporta si s es un estado de compra conocido.
func ValidPurchaseStatus(s string) bool {
	switch s {
	case PurchaseStatusPendiente, PurchaseStatusCompletada, PurchaseStatusCancelada:
		return true
	}
	return false
}

// Purchase documento de compra; espejo de Sale con el efecto de stock
// invertido: crear aumenta stock, eliminar lo descuenta.
type Purchase struct {
	ID           string
	Number       string // COMP-0001
	UserID       string
	Date         time.Time
	Total        decimal.Decimal // suma de subtotales de línea, recalculado
	Status       string
	Observations string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Details      []*PurchaseDetail
}

// PurchaseDetail línea de compra.
type PurchaseDetail struct {
	ID         string
	PurchaseID string
	ProductID  string
	Quantity   int // >= 1
	UnitPrice  decimal.Decimal
	Subtotal   decimal.Decimal // cantidad * precio_unitario
}

// ComputeSubtotal calcula y fija el subtotal de la línea.
func (d *PurchaseDetail) ComputeSubtotal() {
	d.Subtotal = decimal.NewFromInt(int64(d.Quantity)).Mul(d.UnitPrice)
}
