package purchases

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

// Update modifica estado y observaciones de una compra. Las líneas, el número
// y el total son inmutables. Cancelar descuenta el stock que la compra había
// ingresado (puede fallar por stock insuficiente si ya se vendió); reactivar
// una cancelada vuelve a ingresarlo. La decisión se toma sobre la cabecera
// bloqueada dentro de la transacción: dos reversiones concurrentes del mismo
// documento no pueden duplicarse.
func (uc *UseCase) Update(ctx context.Context, id string, in dto.UpdatePurchaseRequest) (*dto.PurchaseResponse, error) {
	if in.Details != nil || in.Number != nil || in.Total != nil {
		return nil, fmt.Errorf("solo se permiten actualizar estado y observaciones; para cambiar líneas anule la compra y cree una nueva: %w", domain.ErrInvalidInput)
	}
	if in.Status != nil && !entity.ValidPurchaseStatus(*in.Status) {
		return nil, fmt.Errorf("estado inválido: %w", domain.ErrInvalidInput)
	}

	var purchase *entity.Purchase
	var invalidate bool
	err := uc.txRunner.RunPurchase(ctx, func(
		purchaseRepo repository.PurchaseRepository,
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
		_ repository.SequenceRepository,
	) error {
		current, err := purchaseRepo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("compra %s: %w", id, domain.ErrNotFound)
		}
		details, err := purchaseRepo.GetDetails(id)
		if err != nil {
			return err
		}
		current.Details = details

		cancelling := in.Status != nil && *in.Status == entity.PurchaseStatusCancelada && current.Status != entity.PurchaseStatusCancelada
		reactivating := current.Status == entity.PurchaseStatusCancelada && in.Status != nil && *in.Status != entity.PurchaseStatusCancelada

		if in.Status != nil {
			current.Status = *in.Status
		}
		if in.Observations != nil {
			current.Observations = *in.Observations
		}
		current.UpdatedAt = time.Now()

		switch {
		case cancelling:
			if err := moveLines(movRepo, productRepo, current, entity.MovementSalida,
				fmt.Sprintf("Salida por cancelación de Compra #%s", current.Number)); err != nil {
				return err
			}
		case reactivating:
			if err := moveLines(movRepo, productRepo, current, entity.MovementEntrada,
				fmt.Sprintf("Entrada por reactivación de Compra #%s", current.Number)); err != nil {
				return err
			}
		}
		if err := purchaseRepo.Update(current); err != nil {
			return err
		}
		purchase = current
		invalidate = cancelling || reactivating
		return nil
	})
	if err != nil {
		return nil, uc.describeStockErr(err)
	}
	if invalidate {
		uc.cache.InvalidateProducts(ctx, uc.productIDs(purchase)...)
	}
	return toResponse(purchase), nil
}

// moveLines registra un movimiento por línea de la compra en la dirección
// dada y ajusta el stock de cada producto. Si alguna línea dejaría stock
// negativo, la transacción completa se aborta.
func moveLines(
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	purchase *entity.Purchase,
	movType, note string,
) error {
	now := time.Now()
	for _, d := range purchase.Details {
		mov := &entity.InventoryMovement{
			ProductID:    d.ProductID,
			UserID:       purchase.UserID,
			Type:         movType,
			Quantity:     d.Quantity,
			UnitPrice:    &d.UnitPrice,
			Reference:    purchase.Number,
			Observations: note,
			Date:         now,
		}
		if err := movements.Apply(movRepo, productRepo, mov); err != nil {
			return err
		}
	}
	return nil
}
