package entity

import "time"

// User actor que registra documentos y movimientos. El CRUD de usuarios es
// de otro subsistema; aquí solo se valida existencia.
type User struct {
	ID        string
	Username  string
	FullName  string
	Email     string
	CreatedAt time.Time
}
