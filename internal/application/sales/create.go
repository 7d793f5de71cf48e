package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jmrobles/ventas-api/internal/application/dto"
	"github.com/jmrobles/ventas-api/internal/application/movements"
	"github.com/jmrobles/ventas-api/internal/domain"
	"github.com/jmrobles/ventas-api/internal/domain/entity"
	"github.com/jmrobles/ventas-api/internal/domain/repository"
)

// Create valida y persiste una venta de forma atómica: número consecutivo,
// cabecera, líneas, descuento de stock por línea y movimientos de salida, todo
// en una sola transacción. Subtotal y total se recalculan siempre en el
// servidor a partir de las líneas.
func (uc *UseCase) Create(ctx context.Context, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if in.UserID == "" || len(in.Details) == 0 {
		return nil, fmt.Errorf("id_usuario y al menos una línea son obligatorios: %w", domain.ErrInvalidInput)
	}
	status := in.Status
	if status == "" {
		status = entity.SaleStatusPendiente
	}
	if status != entity.SaleStatusPendiente && status != entity.SaleStatusCompletada {
		return nil, fmt.Errorf("una venta nueva solo puede ser pendiente o completada: %w", domain.ErrInvalidInput)
	}
	if in.Discount.IsNegative() || in.Tax.IsNegative() {
		return nil, fmt.Errorf("descuento e impuesto no pueden ser negativos: %w", domain.ErrInvalidInput)
	}

	user, err := uc.userRepo.GetByID(in.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("usuario %s: %w", in.UserID, domain.ErrNotFound)
	}
	if in.ClientID != nil && *in.ClientID != "" {
		client, err := uc.clientRepo.GetByID(*in.ClientID)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, fmt.Errorf("cliente %s: %w", *in.ClientID, domain.ErrNotFound)
		}
	}

	// Validación de líneas y chequeo temprano de stock. El chequeo da un
	// error preciso sin abrir la transacción; la garantía real bajo
	// concurrencia la da el decremento condicional dentro de la tx.
	subtotal := decimal.Zero
	details := make([]*entity.SaleDetail, 0, len(in.Details))
	productIDs := make([]string, 0, len(in.Details))
	for _, line := range in.Details {
		if line.ProductID == "" || line.Quantity < 1 {
			return nil, fmt.Errorf("cada línea requiere id_producto y cantidad >= 1: %w", domain.ErrInvalidInput)
		}
		if line.UnitPrice.IsNegative() || line.ItemDiscount.IsNegative() {
			return nil, fmt.Errorf("precio_unitario y descuento_item no pueden ser negativos: %w", domain.ErrInvalidInput)
		}
		product, err := uc.productRepo.GetByID(line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("producto %s: %w", line.ProductID, domain.ErrNotFound)
		}
		if product.StockActual < line.Quantity {
			return nil, &domain.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.StockActual,
				Requested:   line.Quantity,
			}
		}
		d := &entity.SaleDetail{
			ID:           uuid.New().String(),
			ProductID:    line.ProductID,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
			ItemDiscount: line.ItemDiscount,
		}
		d.ComputeSubtotal()
		subtotal = subtotal.Add(d.Subtotal)
		details = append(details, d)
		productIDs = append(productIDs, line.ProductID)
	}

	now := time.Now()
	sale := &entity.Sale{
		ID:           uuid.New().String(),
		UserID:       in.UserID,
		ClientID:     normalizeClientID(in.ClientID),
		Date:         now,
		Subtotal:     subtotal,
		Discount:     in.Discount,
		Tax:          in.Tax,
		Status:       status,
		Observations: in.Observations,
		CreatedAt:    now,
		UpdatedAt:    now,
		Details:      details,
	}
	sale.RecomputeTotal()
	if sale.Total.IsNegative() {
		return nil, fmt.Errorf("el total no puede ser negativo: %w", domain.ErrInvalidInput)
	}

	err = uc.txRunner.RunSale(ctx, func(
		saleRepo repository.SaleRepository,
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
		seqRepo repository.SequenceRepository,
	) error {
		// El consecutivo se reclama dentro de la tx: el lock de la fila
		// serializa la familia y un rollback libera el número.
		seq, err := seqRepo.Next(entity.DocumentFamilySales)
		if err != nil {
			return err
		}
		sale.Number = uc.numbering.Format(seq)

		if err := saleRepo.Create(sale); err != nil {
			return err
		}
		for _, d := range sale.Details {
			d.SaleID = sale.ID
			if err := saleRepo.CreateDetail(d); err != nil {
				return err
			}
		}
		for _, d := range sale.Details {
			mov := &entity.InventoryMovement{
				ProductID:    d.ProductID,
				UserID:       sale.UserID,
				Type:         entity.MovementSalida,
				Quantity:     d.Quantity,
				UnitPrice:    &d.UnitPrice,
				Reference:    sale.Number,
				Observations: fmt.Sprintf("Salida por Venta #%s", sale.Number),
				Date:         now,
			}
			if err := movements.Apply(movRepo, productRepo, mov); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, uc.describeStockErr(err)
	}

	uc.cache.InvalidateProducts(ctx, productIDs...)
	return toResponse(sale), nil
}

// normalizeClientID convierte "" en nil (venta sin cliente).
func normalizeClientID(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	return id
}

// describeStockErr completa el nombre del producto en errores de stock
// producidos por el decremento condicional dentro de la transacción.
func (uc *UseCase) describeStockErr(err error) error {
	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) && stockErr.ProductName == "" {
		if p, pErr := uc.productRepo.GetByID(stockErr.ProductID); pErr == nil && p != nil {
			stockErr.ProductName = p.Name
		}
	}
	return err
}
