package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jmrobles/ventas-api/internal/application/dto"
	"github.com/jmrobles/ventas-api/internal/application/movements"
	"github.com/jmrobles/ventas-api/internal/domain/repository"
)

// MovementHandler maneja las peticiones HTTP de ajustes manuales de stock.
type MovementHandler struct {
	uc *movements.UseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *movements.UseCase) *MovementHandler {
	return &MovementHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar ajuste de stock
// @Description  Entrada o salida directa sin documento asociado. El ajuste de stock y el registro en el libro son atómicos.
// @Tags         movements
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMovementRequest  true  "id_producto, id_usuario, tipo_movimiento, cantidad; opcionales precio_unitario, referencia, observaciones, fecha_movimiento"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	resp, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetByID godoc
// @Summary      Obtener movimiento
// @Tags         movements
// @Produce      json
// @Param        id  path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [get]
func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	resp, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// List godoc
// @Summary      Listar movimientos
// @Tags         movements
// @Produce      json
// @Param        page         query  int     false  "Página (default 1)"
// @Param        limit        query  int     false  "Tamaño de página (default 10, máx 100)"
// @Param        id_producto  query  string  false  "Filtrar por producto"
// @Param        id_usuario   query  string  false  "Filtrar por usuario"
// @Param        tipo         query  string  false  "entrada | salida"
// @Param        from         query  string  false  "Fecha desde (2006-01-02)"
// @Param        to           query  string  false  "Fecha hasta (2006-01-02)"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	var page dto.PageQuery
	if err := c.QueryParser(&page); err != nil {
		return invalidBody(c)
	}
	from, to, err := parseDateRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida, use 2006-01-02"})
	}
	filter := repository.MovementFilter{
		ProductID: c.Query("id_producto"),
		UserID:    c.Query("id_usuario"),
		Type:      c.Query("tipo"),
		From:      from,
		To:        to,
	}
	resp, err := h.uc.List(c.Context(), filter, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Update godoc
// @Summary      Corregir datos descriptivos de un movimiento
// @Description  Solo precio_unitario, referencia, observaciones y fecha_movimiento. Cantidad y tipo son inmutables: para corregirlos registre un ajuste compensatorio.
// @Tags         movements
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del movimiento"
// @Param        body  body  dto.UpdateMovementRequest  true  "Campos a corregir"
// @Success      200   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [put]
func (h *MovementHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	resp, err := h.uc.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Delete godoc
// @Summary      Revertir un ajuste
// @Description  El libro es append-only: en lugar de borrar, registra el movimiento compensatorio exacto y aplica el delta inverso de stock. Devuelve el movimiento compensatorio creado.
// @Tags         movements
// @Produce      json
// @Param        id  path  string  true  "ID del movimiento a revertir"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [delete]
func (h *MovementHandler) Delete(c *fiber.Ctx) error {
	resp, err := h.uc.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
