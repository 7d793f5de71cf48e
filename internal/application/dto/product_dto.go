package dto

import (
	"github.com/shopspring/decimal"
)

// ProductResponse producto del catálogo con su stock actual.
type ProductResponse struct {
	ID            string          `json:"id_producto"`
	Name          string          `json:"nombre_producto"`
	Description   string          `json:"descripcion"`
	StockActual   int             `json:"stock_actual"`
	StockMinimo   int             `json:"stock_minimo"`
	PurchasePrice decimal.Decimal `json:"precio_compra"`
	SalePrice     decimal.Decimal `json:"precio_venta"`
	LowStock      bool            `json:"stock_bajo"`
}

// ProductListResponse página de productos.
type ProductListResponse struct {
	Data     []ProductResponse `json:"data"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
	LastPage int               `json:"lastPage"`
}
