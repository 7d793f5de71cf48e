package repository

import (
	"time"

	"github.com/jmrobles/ventas-api/internal/domain/entity"
)

// PurchaseFilter filtros de listado de compras.
type PurchaseFilter struct {
	UserID string
	Status string
	Number string // coincidencia parcial
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// PurchaseRepository puerto de persistencia de compras y sus líneas.
type PurchaseRepository interface {
	Create(p *entity.Purchase) error
	CreateDetail(d *entity.PurchaseDetail) error
	GetByID(id string) (*entity.Purchase, error)
	// GetByIDForUpdate bloquea la cabecera contra escritores concurrentes.
	// Usar dentro de una transacción, como primera lectura del documento.
	GetByIDForUpdate(id string) (*entity.Purchase, error)
	GetDetails(purchaseID string) ([]*entity.PurchaseDetail, error)
	// Update toca solo estado, observaciones, total y updated_at.
	Update(p *entity.Purchase) error
	DeleteDetails(purchaseID string) error
	Delete(id string) error
	List(filter PurchaseFilter) ([]*entity.Purchase, int, error)
}
