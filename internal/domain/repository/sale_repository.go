package repository

import (
	"time"

	"github.com/jmrobles/ventas-api/internal/domain/entity"
)

// SaleFilter filtros de listado de ventas.
type SaleFilter struct {
	ClientID string
	UserID   string
	Status   string
	Number   string // coincidencia parcial
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// SaleRepository puerto de persistencia de ventas y sus líneas.
type SaleRepository interface {
	Create(s *entity.Sale) error
	CreateDetail(d *entity.SaleDetail) error
	GetByID(id string) (*entity.Sale, error)
	// GetByIDForUpdate bloquea la cabecera contra escritores concurrentes.
	// Usar dentro de una transacción, como primera lectura del documento.
	GetByIDForUpdate(id string) (*entity.Sale, error)
	GetDetails(saleID string) ([]*entity.SaleDetail, error)
	// Update toca solo los campos mutables de la cabecera:
	// id_cliente, estado, observaciones, descuento, impuesto, total, updated_at.
	Update(s *entity.Sale) error
	DeleteDetails(saleID string) error
	Delete(id string) error
	List(filter SaleFilter) ([]*entity.Sale, int, error)
	// DailyTotals agrega ventas completadas por día; lo consume pronósticos.
	DailyTotals(from, to time.Time) ([]*entity.DailySalesTotal, error)
}
