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

// Update modifica los campos mutables de una venta: id_cliente, estado,
// observaciones, descuento e impuesto. Las líneas, el número y los totales
// calculados son inmutables; para corregirlos se anula la venta y se crea una
// nueva. Cancelar revierte el stock; reactivar una cancelada vuelve a
// descontarlo, validando disponibilidad. La decisión de cancelar o reactivar
// se toma sobre la cabecera bloqueada dentro de la transacción: dos
// reversiones concurrentes del mismo documento no pueden duplicarse.
func (uc *UseCase) Update(ctx context.Context, id string, in dto.UpdateSaleRequest) (*dto.SaleResponse, error) {
	if in.Details != nil || in.Number != nil || in.Subtotal != nil || in.Total != nil {
		return nil, fmt.Errorf("solo se permiten actualizar id_cliente, estado, observaciones, descuento e impuesto; para cambiar líneas anule la venta y cree una nueva: %w", domain.ErrInvalidInput)
	}
	if in.Discount != nil && in.Discount.IsNegative() {
		return nil, fmt.Errorf("descuento no puede ser negativo: %w", domain.ErrInvalidInput)
	}
	if in.Tax != nil && in.Tax.IsNegative() {
		return nil, fmt.Errorf("impuesto no puede ser negativo: %w", domain.ErrInvalidInput)
	}
	if in.Status != nil {
		if !entity.ValidSaleStatus(*in.Status) {
			return nil, fmt.Errorf("estado inválido: %w", domain.ErrInvalidInput)
		}
		if *in.Status == entity.SaleStatusDevuelta {
			return nil, fmt.Errorf("devuelta solo se alcanza por el flujo de devoluciones: %w", domain.ErrInvalidInput)
		}
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

	var sale *entity.Sale
	var invalidate bool
	err := uc.txRunner.RunSale(ctx, func(
		saleRepo repository.SaleRepository,
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
		_ repository.SequenceRepository,
	) error {
		current, err := saleRepo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("venta %s: %w", id, domain.ErrNotFound)
		}
		if current.Status == entity.SaleStatusDevuelta {
			return fmt.Errorf("una venta devuelta es terminal: %w", domain.ErrInvalidInput)
		}
		details, err := saleRepo.GetDetails(id)
		if err != nil {
			return err
		}
		current.Details = details

		cancelling := in.Status != nil && *in.Status == entity.SaleStatusCancelada && current.Status != entity.SaleStatusCancelada
		reactivating := current.Status == entity.SaleStatusCancelada && in.Status != nil && *in.Status != entity.SaleStatusCancelada

		applyPatch(current, in)
		current.RecomputeTotal()
		if current.Total.IsNegative() {
			return fmt.Errorf("el total no puede ser negativo: %w", domain.ErrInvalidInput)
		}
		current.UpdatedAt = time.Now()

		switch {
		case cancelling:
			if err := moveLines(movRepo, productRepo, current, entity.MovementEntrada,
				fmt.Sprintf("Entrada por cancelación de Venta #%s", current.Number)); err != nil {
				return err
			}
		case reactivating:
			if err := moveLines(movRepo, productRepo, current, entity.MovementSalida,
				fmt.Sprintf("Salida por reactivación de Venta #%s", current.Number)); err != nil {
				return err
			}
		}
		if err := saleRepo.Update(current); err != nil {
			return err
		}
		sale = current
		invalidate = cancelling || reactivating
		return nil
	})
	if err != nil {
		return nil, uc.describeStockErr(err)
	}
	if invalidate {
		uc.cache.InvalidateProducts(ctx, uc.productIDs(sale)...)
	}
	return toResponse(sale), nil
}

func applyPatch(sale *entity.Sale, in dto.UpdateSaleRequest) {
	if in.ClientID != nil {
		sale.ClientID = normalizeClientID(in.ClientID)
	}
	if in.Status != nil {
		sale.Status = *in.Status
	}
	if in.Observations != nil {
		sale.Observations = *in.Observations
	}
	if in.Discount != nil {
		sale.Discount = *in.Discount
	}
	if in.Tax != nil {
		sale.Tax = *in.Tax
	}
}

// moveLines registra un movimiento por línea de la venta en la dirección dada
// y ajusta el stock de cada producto; cualquier fallo aborta la transacción.
func moveLines(
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	sale *entity.Sale,
	movType, note string,
) error {
	now := time.Now()
	for _, d := range sale.Details {
		mov := &entity.InventoryMovement{
			ProductID:    d.ProductID,
			UserID:       sale.UserID,
			Type:         movType,
			Quantity:     d.Quantity,
			UnitPrice:    &d.UnitPrice,
			Reference:    sale.Number,
			Observations: note,
			Date:         now,
		}
		if err := movements.Apply(movRepo, productRepo, mov); err != nil {
			return err
		}
	}
	return nil
}
