package catalog

import (
	"context"
	"fmt"

	"github.com/jmrobles/ventas-api/internal/application/dto"
	"github.com/jmrobles/ventas-api/internal/domain"
	"github.com/jmrobles/ventas-api/internal/domain/entity"
	"github.com/jmrobles/ventas-api/internal/domain/repository"
)

// ProductCache caché de lectura de productos. Get devuelve (nil, nil) en miss;
// los errores de caché se tratan como miss y nunca interrumpen la consulta.
type ProductCache interface {
	Get(ctx context.Context, id string) (*entity.Product, error)
	Set(ctx context.Context, p *entity.Product)
}

// UseCase consultas de catálogo: producto por ID (con caché de lectura
// opcional), listado paginado y alertas de stock bajo.
type UseCase struct {
	productRepo repository.ProductRepository
	cache       ProductCache
}

func NewUseCase(productRepo repository.ProductRepository, cache ProductCache) *UseCase {
	return &UseCase{productRepo: productRepo, cache: cache}
}

// GetByID obtiene un producto, primero de caché si hay una configurada.
func (uc *UseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	if uc.cache != nil {
		if p, err := uc.cache.Get(ctx, id); err == nil && p != nil {
			return toResponse(p), nil
		}
	}
	p, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
	}
	if uc.cache != nil {
		uc.cache.Set(ctx, p)
	}
	return toResponse(p), nil
}

// List lista el catálogo paginado.
func (uc *UseCase) List(ctx context.Context, page dto.PageQuery) (*dto.ProductListResponse, error) {
	page.Normalize()
	list, total, err := uc.productRepo.List(page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	resp := &dto.ProductListResponse{
		Data:     make([]dto.ProductResponse, 0, len(list)),
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

// ListLowStock productos cuyo stock actual está en o bajo su mínimo.
func (uc *UseCase) ListLowStock(ctx context.Context) ([]dto.ProductResponse, error) {
	list, err := uc.productRepo.ListLowStock()
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *toResponse(p))
	}
	return out, nil
}

func toResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		StockActual:   p.StockActual,
		StockMinimo:   p.StockMinimo,
		PurchasePrice: p.PurchasePrice,
		SalePrice:     p.SalePrice,
		LowStock:      p.LowStock(),
	}
}
