package dto

import (
	"github.com/shopspring/decimal"
)

// CreateSaleDetailRequest línea de una venta nueva.
type CreateSaleDetailRequest struct {
	ProductID    string          `json:"id_producto"`
	Quantity     int             `json:"cantidad"`
	UnitPrice    decimal.Decimal `json:"precio_unitario"`
	ItemDiscount decimal.Decimal `json:"descuento_item"`
}

// CreateSaleRequest petición de creación de venta. Subtotal y total se
// recalculan siempre en el servidor a partir de las líneas; solo descuento e
// impuesto se aceptan del caller.
type CreateSaleRequest struct {
	UserID       string                    `json:"id_usuario"`
	ClientID     *string                   `json:"id_cliente"`
	Status       string                    `json:"estado"`
	Observations string                    `json:"observaciones"`
	Discount     decimal.Decimal           `json:"descuento"`
	Tax          decimal.Decimal           `json:"impuesto"`
	Details      []CreateSaleDetailRequest `json:"detalle_ventas"`
}

// UpdateSaleRequest parche de venta. Solo id_cliente, estado, observaciones,
// descuento e impuesto son mutables; los demás campos se declaran para poder
// rechazarlos explícitamente.
type UpdateSaleRequest struct {
	ClientID     *string          `json:"id_cliente"`
	Status       *string          `json:"estado"`
	Observations *string          `json:"observaciones"`
	Discount     *decimal.Decimal `json:"descuento"`
	Tax          *decimal.Decimal `json:"impuesto"`

	// Inmutables: su presencia provoca un error de validación.
	Number   *string                   `json:"numero_venta"`
	Subtotal *decimal.Decimal          `json:"subtotal"`
	Total    *decimal.Decimal          `json:"total"`
	Details  []CreateSaleDetailRequest `json:"detalle_ventas"`
}

// SaleDetailResponse línea de venta persistida.
type SaleDetailResponse struct {
	ID           string          `json:"id_detalle"`
	ProductID    string          `json:"id_producto"`
	Quantity     int             `json:"cantidad"`
	UnitPrice    decimal.Decimal `json:"precio_unitario"`
	ItemDiscount decimal.Decimal `json:"descuento_item"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// SaleResponse venta persistida con sus líneas.
type SaleResponse struct {
	ID           string               `json:"id_venta"`
	Number       string               `json:"numero_venta"`
	UserID       string               `json:"id_usuario"`
	ClientID     *string              `json:"id_cliente"`
	Date         string               `json:"fecha_venta"`
	Subtotal     decimal.Decimal      `json:"subtotal"`
	Discount     decimal.Decimal      `json:"descuento"`
	Tax          decimal.Decimal      `json:"impuesto"`
	Total        decimal.Decimal      `json:"total"`
	Status       string               `json:"estado"`
	Observations string               `json:"observaciones"`
	Details      []SaleDetailResponse `json:"detalle_ventas"`
}

// SaleListResponse página de ventas.
type SaleListResponse struct {
	Data     []SaleResponse `json:"data"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	Limit    int            `json:"limit"`
	LastPage int            `json:"lastPage"`
}

// DailySalesTotalResponse total diario de ventas completadas (pronósticos).
type DailySalesTotalResponse struct {
	Day   string          `json:"fecha"`
	Count int             `json:"ventas"`
	Total decimal.Decimal `json:"total"`
}
