package repository

import "github.com/jmrobles/ventas-api/internal/domain/entity"

// UserRepository puerto de lectura de usuarios (el CRUD vive en otro
// subsistema; el motor solo valida existencia del actor).
type UserRepository interface {
	GetByID(id string) (*entity.User, error)
}
