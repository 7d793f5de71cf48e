package repository

// SequenceRepository puerto del generador de números de documento.
// Next reclama el siguiente valor del consecutivo de la familia dada
// (entity.DocumentFamilySales / DocumentFamilyPurchases). Debe invocarse
// dentro de la transacción del documento: el reclamo serializa la familia y
// un rollback libera el número, así la numeración queda sin huecos y
// estrictamente creciente en orden de commit.
type SequenceRepository interface {
	Next(family string) (int, error)
}
