package purchases

import (
	"context"
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

// Create valida y persiste una compra de forma atómica: número consecutivo,
// cabecera, líneas, incremento de stock por línea y movimientos de entrada, en
// una sola transacción. A diferencia de las ventas no hay chequeo de
// disponibilidad: una entrada nunca viola el invariante de stock.
func (uc *UseCase) Create(ctx context.Context, in dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error) {
	if in.UserID == "" || len(in.Details) == 0 {
		return nil, fmt.Errorf("id_usuario y al menos una línea son obligatorios: %w", domain.ErrInvalidInput)
	}
	status := in.Status
	if status == "" {
		status = entity.PurchaseStatusPendiente
	}
	if status != entity.PurchaseStatusPendiente && status != entity.PurchaseStatusCompletada {
		return nil, fmt.Errorf("una compra nueva solo puede ser pendiente o completada: %w", domain.ErrInvalidInput)
	}

	user, err := uc.userRepo.GetByID(in.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("usuario %s: %w", in.UserID, domain.ErrNotFound)
	}

	total := decimal.Zero
	details := make([]*entity.PurchaseDetail, 0, len(in.Details))
	productIDs := make([]string, 0, len(in.Details))
	for _, line := range in.Details {
		if line.ProductID == "" || line.Quantity < 1 {
			return nil, fmt.Errorf("cada línea requiere id_producto y cantidad >= 1: %w", domain.ErrInvalidInput)
		}
		if line.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("precio_unitario no puede ser negativo: %w", domain.ErrInvalidInput)
		}
		product, err := uc.productRepo.GetByID(line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("producto %s: %w", line.ProductID, domain.ErrNotFound)
		}
		d := &entity.PurchaseDetail{
			ID:        uuid.New().String(),
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		}
		d.ComputeSubtotal()
		total = total.Add(d.Subtotal)
		details = append(details, d)
		productIDs = append(productIDs, line.ProductID)
	}

	now := time.Now()
	purchase := &entity.Purchase{
		ID:           uuid.New().String(),
		UserID:       in.UserID,
		Date:         now,
		Total:        total,
		Status:       status,
		Observations: in.Observations,
		CreatedAt:    now,
		UpdatedAt:    now,
		Details:      details,
	}

	err = uc.txRunner.RunPurchase(ctx, func(
		purchaseRepo repository.PurchaseRepository,
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
		seqRepo repository.SequenceRepository,
	) error {
		seq, err := seqRepo.Next(entity.DocumentFamilyPurchases)
		if err != nil {
			return err
		}
		purchase.Number = uc.numbering.Format(seq)

		if err := purchaseRepo.Create(purchase); err != nil {
			return err
		}
		for _, d := range purchase.Details {
			d.PurchaseID = purchase.ID
			if err := purchaseRepo.CreateDetail(d); err != nil {
				return err
			}
		}
		for _, d := range purchase.Details {
			mov := &entity.InventoryMovement{
				ProductID:    d.ProductID,
				UserID:       purchase.UserID,
				Type:         entity.MovementEntrada,
				Quantity:     d.Quantity,
				UnitPrice:    &d.UnitPrice,
				Reference:    purchase.Number,
				Observations: fmt.Sprintf("Entrada por Compra #%s", purchase.Number),
				Date:         now,
			}
			if err := movements.Apply(movRepo, productRepo, mov); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.cache.InvalidateProducts(ctx, productIDs...)
	return toResponse(purchase), nil
}
