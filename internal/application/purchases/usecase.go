package purchases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmrobles/ventas-api/internal/application/dto"
	"github.com/jmrobles/ventas-api/internal/application/movements"
	"github.com/jmrobles/ventas-api/internal/domain"
	"github.com/jmrobles/ventas-api/internal/domain/entity"
	"github.com/jmrobles/ventas-api/internal/domain/repository"
)

// UseCase procesa compras: entradas de mercancía que incrementan stock con su
// documento consecutivo, y las reversiones simétricas al cancelar o eliminar.
type UseCase struct {
	txRunner     TxRunner
	purchaseRepo repository.PurchaseRepository
	productRepo  repository.ProductRepository
	userRepo     repository.UserRepository
	numbering    entity.Numbering
	cache        StockInvalidator
}

// NewUseCase construye el caso de uso. cache puede ser movements.NoopInvalidator.
func NewUseCase(
	txRunner TxRunner,
	purchaseRepo repository.PurchaseRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	numbering entity.Numbering,
	cache StockInvalidator,
) *UseCase {
	if cache == nil {
		cache = movements.NoopInvalidator{}
	}
	return &UseCase{
		txRunner:     txRunner,
		purchaseRepo: purchaseRepo,
		productRepo:  productRepo,
		userRepo:     userRepo,
		numbering:    numbering,
		cache:        cache,
	}
}

// GetByID obtiene una compra con sus líneas.
func (uc *UseCase) GetByID(ctx context.Context, id string) (*dto.PurchaseResponse, error) {
	purchase, err := uc.loadPurchase(id)
	if err != nil {
		return nil, err
	}
	return toResponse(purchase), nil
}

// List lista compras con filtros y paginación, ordenadas por fecha descendente.
func (uc *UseCase) List(ctx context.Context, filter repository.PurchaseFilter, page dto.PageQuery) (*dto.PurchaseListResponse, error) {
	page.Normalize()
	if filter.Status != "" && !entity.ValidPurchaseStatus(filter.Status) {
		return nil, fmt.Errorf("estado inválido: %w", domain.ErrInvalidInput)
	}
	filter.Limit = page.Limit
	filter.Offset = page.Offset()
	list, total, err := uc.purchaseRepo.List(filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.PurchaseListResponse{
		Data:     make([]dto.PurchaseResponse, 0, len(list)),
		Total:    total,
		Page:     page.Page,
		Limit:    page.Limit,
		LastPage: page.LastPage(total),
	}
	for _, p := range list {
		resp.Data = append(resp.Data, *toResponse(p))
	}
	return resp, nil
}

// loadPurchase carga cabecera + líneas o ErrNotFound.
func (uc *UseCase) loadPurchase(id string) (*entity.Purchase, error) {
	purchase, err := uc.purchaseRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, fmt.Errorf("compra %s: %w", id, domain.ErrNotFound)
	}
	details, err := uc.purchaseRepo.GetDetails(id)
	if err != nil {
		return nil, err
	}
	purchase.Details = details
	return purchase, nil
}

func (uc *UseCase) productIDs(p *entity.Purchase) []string {
	ids := make([]string, 0, len(p.Details))
	for _, d := range p.Details {
		ids = append(ids, d.ProductID)
	}
	return ids
}

// describeStockErr completa el nombre del producto en errores de stock
// producidos al revertir una compra.
func (uc *UseCase) describeStockErr(err error) error {
	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) && stockErr.ProductName == "" {
		if p, pErr := uc.productRepo.GetByID(stockErr.ProductID); pErr == nil && p != nil {
			stockErr.ProductName = p.Name
		}
	}
	return err
}

func toResponse(p *entity.Purchase) *dto.PurchaseResponse {
	resp := &dto.PurchaseResponse{
		ID:           p.ID,
		Number:       p.Number,
		UserID:       p.UserID,
		Date:         p.Date.Format(time.RFC3339),
		Total:        p.Total,
		Status:       p.Status,
		Observations: p.Observations,
		Details:      make([]dto.PurchaseDetailResponse, 0, len(p.Details)),
	}
	for _, d := range p.Details {
		resp.Details = append(resp.Details, dto.PurchaseDetailResponse{
			ID:        d.ID,
			ProductID: d.ProductID,
			Quantity:  d.Quantity,
			UnitPrice: d.UnitPrice,
			Subtotal:  d.Subtotal,
		})
	}
	return resp
}
