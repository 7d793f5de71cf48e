package movements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmrobles/ventas-api/internal/application/dto"
	"github.com/jmrobles/ventas-api/internal/domain"
	"github.com/jmrobles/ventas-api/internal/domain/entity"
	"github.com/jmrobles/ventas-api/internal/domain/repository"
)

// UseCase gestiona ajustes manuales de stock: movimientos entrada/salida no
// ligados a un documento, usados para correcciones de inventario.
type UseCase struct {
	txRunner    TxRunner
	movRepo     repository.MovementRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	cache       StockInvalidator
}

// NewUseCase construye el caso de uso. cache puede ser NoopInvalidator.
func NewUseCase(
	txRunner TxRunner,
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	cache StockInvalidator,
) *UseCase {
	if cache == nil {
		cache = NoopInvalidator{}
	}
	return &UseCase{
		txRunner:    txRunner,
		movRepo:     movRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		cache:       cache,
	}
}

// Create registra un ajuste manual: valida producto y usuario, y en una sola
// transacción ajusta stock_actual y agrega el movimiento al libro. Una salida
// mayor al stock disponible falla con InsufficientStockError sin efectos.
func (uc *UseCase) Create(ctx context.Context, in dto.CreateMovementRequest) (*dto.MovementResponse, error) {
	if !entity.ValidMovementType(in.Type) {
		return nil, fmt.Errorf("tipo_movimiento debe ser entrada o salida: %w", domain.ErrInvalidInput)
	}
	if in.Quantity < 1 {
		return nil, fmt.Errorf("cantidad debe ser >= 1: %w", domain.ErrInvalidInput)
	}
	if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("precio_unitario no puede ser negativo: %w", domain.ErrInvalidInput)
	}

	product, err := uc.productRepo.GetByID(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("producto %s: %w", in.ProductID, domain.ErrNotFound)
	}
	user, err := uc.userRepo.GetByID(in.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("usuario %s: %w", in.UserID, domain.ErrNotFound)
	}

	date := time.Now()
	if in.Date != nil {
		date = *in.Date
	}
	m := &entity.InventoryMovement{
		ProductID:    in.ProductID,
		UserID:       in.UserID,
		Type:         in.Type,
		Quantity:     in.Quantity,
		UnitPrice:    in.UnitPrice,
		Reference:    in.Reference,
		Observations: in.Observations,
		Date:         date,
	}

	err = uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error {
		return Apply(movRepo, productRepo, m)
	})
	if err != nil {
		return nil, uc.describeStockErr(err, in.ProductID)
	}
	uc.cache.InvalidateProducts(ctx, in.ProductID)
	return toResponse(m), nil
}

// Update permite corregir solo los campos descriptivos de un movimiento.
// Cambiar cantidad o tipo rompería el libro retroactivamente: se rechaza y el
// caller debe registrar un ajuste compensatorio.
func (uc *UseCase) Update(ctx context.Context, id string, in dto.UpdateMovementRequest) (*dto.MovementResponse, error) {
	if in.Quantity != nil || in.Type != nil {
		return nil, fmt.Errorf("no se permite modificar cantidad ni tipo de un movimiento; registre un ajuste compensatorio: %w", domain.ErrInvalidInput)
	}
	m, err := uc.movRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("movimiento %s: %w", id, domain.ErrNotFound)
	}
	if in.UnitPrice != nil {
		if in.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("precio_unitario no puede ser negativo: %w", domain.ErrInvalidInput)
		}
		m.UnitPrice = in.UnitPrice
	}
	if in.Reference != nil {
		m.Reference = *in.Reference
	}
	if in.Observations != nil {
		m.Observations = *in.Observations
	}
	if in.Date != nil {
		m.Date = *in.Date
	}
	if err := uc.movRepo.Update(m); err != nil {
		return nil, err
	}
	return toResponse(m), nil
}

// Delete revierte el efecto de stock de un movimiento. El libro es
// append-only: no se borra la fila original, se agrega el movimiento
// compensatorio exacto (dirección opuesta, misma cantidad) y se aplica el
// delta inverso, protegido contra stock negativo. Un movimiento ya revertido
// no puede revertirse otra vez: el segundo intento falla con ErrConflict en
// lugar de duplicar la compensación. El movimiento se bloquea dentro de la
// transacción, así dos reversiones concurrentes se serializan.
func (uc *UseCase) Delete(ctx context.Context, id string) (*dto.MovementResponse, error) {
	var comp *entity.InventoryMovement
	var productID string
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error {
		m, err := movRepo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if m == nil {
			return fmt.Errorf("movimiento %s: %w", id, domain.ErrNotFound)
		}
		reversed, err := movRepo.HasReversal(id)
		if err != nil {
			return err
		}
		if reversed {
			return fmt.Errorf("el movimiento %s ya fue revertido: %w", id, domain.ErrConflict)
		}
		productID = m.ProductID

		comp = m.Inverse()
		comp.Reference = m.ID
		comp.Observations = fmt.Sprintf("Reversión de ajuste #%s", m.ID)
		comp.Date = time.Now()
		return Apply(movRepo, productRepo, comp)
	})
	if err != nil {
		return nil, uc.describeStockErr(err, productID)
	}
	uc.cache.InvalidateProducts(ctx, productID)
	return toResponse(comp), nil
}

// GetByID obtiene un movimiento.
func (uc *UseCase) GetByID(ctx context.Context, id string) (*dto.MovementResponse, error) {
	m, err := uc.movRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("movimiento %s: %w", id, domain.ErrNotFound)
	}
	return toResponse(m), nil
}

// List lista movimientos con filtros por producto, usuario, tipo y rango de
// fechas, paginado. El orden es por fecha de movimiento descendente.
func (uc *UseCase) List(ctx context.Context, filter repository.MovementFilter, page dto.PageQuery) (*dto.MovementListResponse, error) {
	page.Normalize()
	if filter.Type != "" && !entity.ValidMovementType(filter.Type) {
		return nil, fmt.Errorf("tipo_movimiento inválido: %w", domain.ErrInvalidInput)
	}
	filter.Limit = page.Limit
	filter.Offset = page.Offset()
	list, total, err := uc.movRepo.List(filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.MovementListResponse{
		Data:     make([]dto.MovementResponse, 0, len(list)),
		Total:    total,
		Page:     page.Page,
		Limit:    page.Limit,
		LastPage: page.LastPage(total),
	}
	for _, m := range list {
		resp.Data = append(resp.Data, *toResponse(m))
	}
	return resp, nil
}

// describeStockErr completa el nombre del producto en errores de stock, que
// el repositorio reporta solo con ID y cantidades.
func (uc *UseCase) describeStockErr(err error, productID string) error {
	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) && stockErr.ProductName == "" {
		if p, pErr := uc.productRepo.GetByID(productID); pErr == nil && p != nil {
			stockErr.ProductName = p.Name
		}
	}
	return err
}

func toResponse(m *entity.InventoryMovement) *dto.MovementResponse {
	return &dto.MovementResponse{
		ID:           m.ID,
		ProductID:    m.ProductID,
		UserID:       m.UserID,
		Type:         m.Type,
		Quantity:     m.Quantity,
		UnitPrice:    m.UnitPrice,
		Reference:    m.Reference,
		Observations: m.Observations,
		Date:         m.Date,
	}
}
