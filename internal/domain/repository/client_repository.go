package repository

import "github.com/jmrobles/ventas-api/internal/domain/entity"

// ClientRepository puerto de lectura de clientes.
type ClientRepository interface {
	GetByID(id string) (*entity.Client, error)
}
