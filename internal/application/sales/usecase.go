package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/jmrobles/ventas-api/internal/application/dto"
	"github.com/jmrobles/ventas-api/internal/application/movements"
	"github.com/jmrobles/ventas-api/internal/domain"
	"github.com/jmrobles/ventas-api/internal/domain/entity"
	"github.com/jmrobles/ventas-api/internal/domain/repository"
)

// UseCase procesa ventas: creación, consulta, actualización restringida,
// cancelación/reactivación y eliminación con reversión, todo sobre la misma
// unidad de trabajo que descuenta stock y alimenta el libro de movimientos.
type UseCase struct {
	txRunner    TxRunner
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	clientRepo  repository.ClientRepository
	numbering   entity.Numbering
	cache       StockInvalidator
}

// NewUseCase construye el caso de uso. cache puede ser movements.NoopInvalidator.
func NewUseCase(
	txRunner TxRunner,
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	clientRepo repository.ClientRepository,
	numbering entity.Numbering,
	cache StockInvalidator,
) *UseCase {
	if cache == nil {
		cache = movements.NoopInvalidator{}
	}
	return &UseCase{
		txRunner:    txRunner,
		saleRepo:    saleRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		clientRepo:  clientRepo,
		numbering:   numbering,
		cache:       cache,
	}
}

// GetByID obtiene una venta con sus líneas.
func (uc *UseCase) GetByID(ctx context.Context, id string) (*dto.SaleResponse, error) {
	sale, err := uc.loadSale(id)
	if err != nil {
		return nil, err
	}
	return toResponse(sale), nil
}

// List lista ventas con filtros y paginación, ordenadas por fecha descendente.
func (uc *UseCase) List(ctx context.Context, filter repository.SaleFilter, page dto.PageQuery) (*dto.SaleListResponse, error) {
	page.Normalize()
	if filter.Status != "" && !entity.ValidSaleStatus(filter.Status) {
		return nil, fmt.Errorf("estado inválido: %w", domain.ErrInvalidInput)
	}
	filter.Limit = page.Limit
	filter.Offset = page.Offset()
	list, total, err := uc.saleRepo.List(filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.SaleListResponse{
		Data:     make([]dto.SaleResponse, 0, len(list)),
		Total:    total,
		Page:     page.Page,
		Limit:    page.Limit,
		LastPage: page.LastPage(total),
	}
	for _, s := range list {
		resp.Data = append(resp.Data, *toResponse(s))
	}
	return resp, nil
}

// DailyTotals totales de ventas completadas agrupados por día; es la vista
// de solo lectura que consume el subsistema de pronósticos. Los totales solo
// incluyen documentos confirmados: nunca se observan ventas a medio escribir.
func (uc *UseCase) DailyTotals(ctx context.Context, from, to time.Time) ([]dto.DailySalesTotalResponse, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("rango de fechas invertido: %w", domain.ErrInvalidInput)
	}
	totals, err := uc.saleRepo.DailyTotals(from, to)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DailySalesTotalResponse, 0, len(totals))
	for _, t := range totals {
		out = append(out, dto.DailySalesTotalResponse{
			Day:   t.Day.Format("2006-01-02"),
			Count: t.Count,
			Total: t.Total,
		})
	}
	return out, nil
}

// loadSale carga cabecera + líneas o ErrNotFound.
func (uc *UseCase) loadSale(id string) (*entity.Sale, error) {
	sale, err := uc.saleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("venta %s: %w", id, domain.ErrNotFound)
	}
	details, err := uc.saleRepo.GetDetails(id)
	if err != nil {
		return nil, err
	}
	sale.Details = details
	return sale, nil
}

func (uc *UseCase) productIDs(sale *entity.Sale) []string {
	ids := make([]string, 0, len(sale.Details))
	for _, d := range sale.Details {
		ids = append(ids, d.ProductID)
	}
	return ids
}

func toResponse(s *entity.Sale) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:           s.ID,
		Number:       s.Number,
		UserID:       s.UserID,
		ClientID:     s.ClientID,
		Date:         s.Date.Format(time.RFC3339),
		Subtotal:     s.Subtotal,
		Discount:     s.Discount,
		Tax:          s.Tax,
		Total:        s.Total,
		Status:       s.Status,
		Observations: s.Observations,
		Details:      make([]dto.SaleDetailResponse, 0, len(s.Details)),
	}
	for _, d := range s.Details {
		resp.Details = append(resp.Details, dto.SaleDetailResponse{
			ID:           d.ID,
			ProductID:    d.ProductID,
			Quantity:     d.Quantity,
			UnitPrice:    d.UnitPrice,
			ItemDiscount: d.ItemDiscount,
			Subtotal:     d.Subtotal,
		})
	}
	return resp
}
