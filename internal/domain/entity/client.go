package entity

import "time"

// Client cliente opcional de una venta.
type Client struct {
	ID        string
	FullName  string
	Email     string
	Phone     string
	CreatedAt time.Time
}
