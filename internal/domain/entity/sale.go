package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta. Las transiciones válidas son
// pendiente -> completada y pendiente/completada <-> cancelada (con
// reversión de stock). devuelta es terminal y pertenece al flujo de
// devoluciones, fuera de este motor.
const (
	SaleStatusPendiente  = "pendiente"
	SaleStatusCompletada = "completada"
	SaleStatusCancelada  = "cancelada"
	SaleStatusDevuelta   = "devuelta"
)

// ValidSaleStatus reporta si s es un estado de venta conocido.
func ValidSaleStatus(s string) bool {
	switch s {
	case SaleStatusPendiente, SaleStatusCompletada, SaleStatusCancelada, SaleStatusDevuelta:
		return true
	}
	return false
}

// Sale documento de venta. Se crea atómicamente con sus líneas, el
// descuento de stock por línea y los movimientos de salida. Las líneas son
// inmutables después de la creación.
type Sale struct {
	ID           string
	Number       string // VEN-0001, único y creciente
	UserID       string
	ClientID     *string
	Date         time.Time
	Subtotal     decimal.Decimal
	Discount     decimal.Decimal
	Tax          decimal.Decimal
	Total        decimal.Decimal // subtotal - descuento + impuesto, siempre recalculado
	Status       string
	Observations string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Details      []*SaleDetail
}

// RecomputeTotal aplica total = subtotal - descuento + impuesto.
func (s *Sale) RecomputeTotal() {
	s.Total = s.Subtotal.Sub(s.Discount).Add(s.Tax)
}

// SaleDetail línea de venta.
type SaleDetail struct {
	ID           string
	SaleID       string
	ProductID    string
	Quantity     int // >= 1
	UnitPrice    decimal.Decimal
	ItemDiscount decimal.Decimal
	Subtotal     decimal.Decimal // cantidad*precio_unitario - descuento_item
}

// ComputeSubtotal calcula y fija el subtotal de la línea.
func (d *SaleDetail) ComputeSubtotal() {
	d.Subtotal = decimal.NewFromInt(int64(d.Quantity)).Mul(d.UnitPrice).Sub(d.ItemDiscount)
}

// DailySalesTotal total de ventas completadas de un día; lo consume el
// subsistema de pronósticos (solo lectura).
type DailySalesTotal struct {
	Day   time.Time
	Count int
	Total decimal.Decimal
}
