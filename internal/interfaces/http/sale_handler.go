package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jmrobles/ventas-api/internal/application/dto"
	"github.com/jmrobles/ventas-api/internal/application/sales"
	"github.com/jmrobles/ventas-api/internal/domain/repository"
)

// SaleHandler maneja las peticiones HTTP de ventas.
type SaleHandler struct {
	uc *sales.UseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *sales.UseCase) *SaleHandler {
	return &SaleHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Crea la venta con número consecutivo, descuenta stock por línea y registra los movimientos de salida, todo atómico. Subtotal y total se recalculan en el servidor.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "id_usuario, detalle_ventas (id_producto, cantidad, precio_unitario, descuento_item), opcionales id_cliente, estado, descuento, impuesto"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
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
// @Summary      Obtener venta
// @Tags         sales
// @Produce      json
// @Param        id  path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	resp, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// List godoc
// @Summary      Listar ventas
// @Tags         sales
// @Produce      json
// @Param        page      query  int     false  "Página (default 1)"
// @Param        limit     query  int     false  "Tamaño de página (default 10, máx 100)"
// @Param        id_cliente  query  string  false  "Filtrar por cliente"
// @Param        id_usuario  query  string  false  "Filtrar por usuario"
// @Param        estado      query  string  false  "pendiente | completada | cancelada | devuelta"
// @Param        numero      query  string  false  "Coincidencia parcial del número"
// @Param        from        query  string  false  "Fecha desde (2006-01-02)"
// @Param        to          query  string  false  "Fecha hasta (2006-01-02)"
// @Success      200  {object}  dto.SaleListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	var page dto.PageQuery
	if err := c.QueryParser(&page); err != nil {
		return invalidBody(c)
	}
	from, to, err := parseDateRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida, use 2006-01-02"})
	}
	filter := repository.SaleFilter{
		ClientID: c.Query("id_cliente"),
		UserID:   c.Query("id_usuario"),
		Status:   c.Query("estado"),
		Number:   c.Query("numero"),
		From:     from,
		To:       to,
	}
	resp, err := h.uc.List(c.Context(), filter, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Update godoc
// @Summary      Actualizar venta
// @Description  Solo id_cliente, estado, observaciones, descuento e impuesto. Cancelar revierte el stock; reactivar una cancelada lo vuelve a descontar.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la venta"
// @Param        body  body  dto.UpdateSaleRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [put]
func (h *SaleHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateSaleRequest
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
// @Summary      Eliminar venta
// @Description  Revierte el stock línea por línea (salvo ventas ya canceladas) y borra el documento, atómicamente.
// @Tags         sales
// @Produce      json
// @Param        id  path  string  true  "ID de la venta"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [delete]
func (h *SaleHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "venta eliminada"})
}

// DailyTotals godoc
// @Summary      Totales diarios de ventas completadas
// @Description  Vista de solo lectura para el consumidor de pronósticos.
// @Tags         sales
// @Produce      json
// @Param        from  query  string  true  "Fecha desde (2006-01-02)"
// @Param        to    query  string  true  "Fecha hasta (2006-01-02)"
// @Success      200  {array}   dto.DailySalesTotalResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sales/daily-totals [get]
func (h *SaleHandler) DailyTotals(c *fiber.Ctx) error {
	from, err := parseDate(c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido, use 2006-01-02"})
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido, use 2006-01-02"})
	}
	resp, err := h.uc.DailyTotals(c.Context(), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
