package dto

// ErrorResponse cuerpo de error estándar de la API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Detalle de stock insuficiente (solo en INSUFFICIENT_STOCK).
	ProductID string `json:"id_producto,omitempty"`
	Available *int   `json:"disponible,omitempty"`
	Requested *int   `json:"solicitado,omitempty"`
	Shortfall *int   `json:"faltante,omitempty"`
}

// PageQuery parámetros de paginación comunes.
type PageQuery struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

// Normalize aplica los defaults de paginación (page 1, limit 10, máx 100).
func (p *PageQuery) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}

// Offset devuelve el desplazamiento SQL correspondiente.
func (p PageQuery) Offset() int {
	return (p.Page - 1) * p.Limit
}

// LastPage calcula la última página para un total dado.
func (p PageQuery) LastPage(total int) int {
	if total == 0 {
		return 1
	}
	last := total / p.Limit
	if total%p.Limit != 0 {
		last++
	}
	return last
}
