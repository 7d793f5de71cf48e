package purchases

import (
	"context"
	"fmt"

	"github.com/jmrobles/ventas-api/internal/domain"
	"github.com/jmrobles/ventas-api/internal/domain/entity"
	"github.com/jmrobles/ventas-api/internal/domain/repository"
)

// Delete elimina una compra revirtiendo su efecto exacto: por cada línea
// descuenta el stock que la compra había ingresado (movimiento de salida
// anotado como anulación), luego borra líneas y cabecera en una transacción.
// Si parte de esa mercancía ya salió, la reversión dejaría stock negativo y
// la operación completa falla con stock insuficiente. La cabecera se bloquea
// dentro de la transacción, así el estado que decide si hay reversión es el
// vigente al borrar.
//
// Una compra cancelada ya tuvo su stock revertido: solo se borran sus filas.
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	var productIDs []string
	err := uc.txRunner.RunPurchase(ctx, func(
		purchaseRepo repository.PurchaseRepository,
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
		_ repository.SequenceRepository,
	) error {
		purchase, err := purchaseRepo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if purchase == nil {
			return fmt.Errorf("compra %s: %w", id, domain.ErrNotFound)
		}
		details, err := purchaseRepo.GetDetails(id)
		if err != nil {
			return err
		}
		purchase.Details = details

		if purchase.Status != entity.PurchaseStatusCancelada {
			if err := moveLines(movRepo, productRepo, purchase, entity.MovementSalida,
				fmt.Sprintf("Salida por anulación de Compra #%s", purchase.Number)); err != nil {
				return err
			}
			productIDs = uc.productIDs(purchase)
		}
		if err := purchaseRepo.DeleteDetails(purchase.ID); err != nil {
			return err
		}
		return purchaseRepo.Delete(purchase.ID)
	})
	if err != nil {
		return uc.describeStockErr(err)
	}
	if len(productIDs) > 0 {
		uc.cache.InvalidateProducts(ctx, productIDs...)
	}
	return nil
}
