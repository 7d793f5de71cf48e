package sales

import (
	"context"
	"fmt"

	"github.com/jmrobles/ventas-api/internal/domain"
	"github.com/jmrobles/ventas-api/internal/domain/entity"
	"github.com/jmrobles/ventas-api/internal/domain/repository"
)

// Delete elimina una venta revirtiendo su efecto exacto: por cada línea
// devuelve el stock y agrega el movimiento de entrada anotado como
// anulación, luego borra líneas y cabecera, todo en una transacción. El libro
// de movimientos conserva tanto las salidas originales como las entradas de
// reversión (efecto neto cero). La cabecera se bloquea dentro de la
// transacción: el estado que decide si hay reversión es el vigente al borrar,
// no el que vio el caller.
//
// Una venta cancelada ya tuvo su stock revertido al cancelarse, así que solo
// se borran sus filas. Una venta devuelta pertenece al flujo de devoluciones
// y no puede eliminarse desde aquí.
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	var productIDs []string
	err := uc.txRunner.RunSale(ctx, func(
		saleRepo repository.SaleRepository,
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
		_ repository.SequenceRepository,
	) error {
		sale, err := saleRepo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if sale == nil {
			return fmt.Errorf("venta %s: %w", id, domain.ErrNotFound)
		}
		if sale.Status == entity.SaleStatusDevuelta {
			return fmt.Errorf("no se puede eliminar una venta devuelta: %w", domain.ErrConflict)
		}
		details, err := saleRepo.GetDetails(id)
		if err != nil {
			return err
		}
		sale.Details = details

		if sale.Status != entity.SaleStatusCancelada {
			if err := moveLines(movRepo, productRepo, sale, entity.MovementEntrada,
				fmt.Sprintf("Entrada por anulación de Venta #%s", sale.Number)); err != nil {
				return err
			}
			productIDs = uc.productIDs(sale)
		}
		if err := saleRepo.DeleteDetails(sale.ID); err != nil {
			return err
		}
		return saleRepo.Delete(sale.ID)
	})
	if err != nil {
		return uc.describeStockErr(err)
	}
	if len(productIDs) > 0 {
		uc.cache.InvalidateProducts(ctx, productIDs...)
	}
	return nil
}
