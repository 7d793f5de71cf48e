package dto

import (
	"github.com/shopspring/decimal"
)

// CreatePurchaseDetailRequest línea de una compra nueva.
type CreatePurchaseDetailRequest struct {
	ProductID string          `json:"id_producto"`
	Quantity  int             `json:"cantidad"`
	UnitPrice decimal.Decimal `json:"precio_unitario"`
}

// CreatePurchaseRequest petición de creación de compra. El total se
// recalcula siempre en el servidor.
type CreatePurchaseRequest struct {
	UserID       string                        `json:"id_usuario"`
	Status       string                        `json:"estado"`
	Observations string                        `json:"observaciones"`
	Details      []CreatePurchaseDetailRequest `json:"detalle_compras"`
}

// UpdatePurchaseRequest parche de compra: solo estado y observaciones.
type UpdatePurchaseRequest struct {
	Status       *string `json:"estado"`
	Observations *string `json:"observaciones"`

	// Inmutables: su presencia provoca un error de validación.
	Number  *string                       `json:"numero_compra"`
	Total   *decimal.Decimal              `json:"total"`
	Details []CreatePurchaseDetailRequest `json:"detalle_compras"`
}

// PurchaseDetailResponse línea de compra persistida.
type PurchaseDetailResponse struct {
	ID        string          `json:"id_detalle"`
	ProductID string          `json:"id_producto"`
	Quantity  int             `json:"cantidad"`
	UnitPrice decimal.Decimal `json:"precio_unitario"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// PurchaseResponse compra persistida con sus líneas.
type PurchaseResponse struct {
	ID           string                   `json:"id_compra"`
	Number       string                   `json:"numero_compra"`
	UserID       string                   `json:"id_usuario"`
	Date         string                   `json:"fecha_compra"`
	Total        decimal.Decimal          `json:"total"`
	Status       string                   `json:"estado"`
	Observations string                   `json:"observaciones"`
	Details      []PurchaseDetailResponse `json:"detalle_compras"`
}

// PurchaseListResponse página de compras.
type PurchaseListResponse struct {
	Data     []PurchaseResponse `json:"data"`
	Total    int                `json:"total"`
	Page     int                `json:"page"`
	Limit    int                `json:"limit"`
	LastPage int                `json:"lastPage"`
}
