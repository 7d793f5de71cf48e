package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jmrobles/ventas-api/internal/domain"
	"github.com/jmrobles/ventas-api/internal/domain/entity"
	"github.com/jmrobles/ventas-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo consecutivos de documentos sobre PostgreSQL. Debe usarse con
// la tx del documento: el FOR UPDATE sobre la fila de la familia serializa a
// los escritores concurrentes y un rollback libera el número reclamado, así
// la numeración no tiene huecos ni duplicados.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar la tx del documento.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next reclama el siguiente valor del consecutivo de la familia.
func (r *SequenceRepo) Next(family string) (int, error) {
	ctx := context.Background()
	var last int
	err := r.q.QueryRow(ctx,
		`SELECT last_value FROM document_sequences WHERE family = $1 FOR UPDATE`,
		family,
	).Scan(&last)
	if errors.Is(err, pgx.ErrNoRows) {
		// Primera vez para la familia: sembrar desde el último documento
		// existente, para retomar numeraciones previas a la tabla de
		// consecutivos. El INSERT usa ON CONFLICT DO NOTHING porque una
		// violación de unicidad abortaría la tx completa del documento; si
		// otro escritor ganó la siembra, la relectura con lock espera su
		// commit y toma su valor.
		seeded, err := r.seed(ctx, family)
		if err != nil {
			return 0, err
		}
		_, err = r.q.Exec(ctx,
			`INSERT INTO document_sequences (family, last_value) VALUES ($1, $2)
			 ON CONFLICT (family) DO NOTHING`,
			family, seeded,
		)
		if err != nil {
			return 0, fmt.Errorf("seed sequence %s: %w", family, err)
		}
		err = r.q.QueryRow(ctx,
			`SELECT last_value FROM document_sequences WHERE family = $1 FOR UPDATE`,
			family,
		).Scan(&last)
		if err != nil {
			return 0, fmt.Errorf("reread sequence %s: %w", family, err)
		}
	} else if err != nil {
		return 0, fmt.Errorf("lock sequence %s: %w", family, err)
	}

	next := last + 1
	_, err = r.q.Exec(ctx,
		`UPDATE document_sequences SET last_value = $2 WHERE family = $1`,
		family, next,
	)
	if err != nil {
		return 0, fmt.Errorf("advance sequence %s: %w", family, err)
	}
	return next, nil
}

// seed obtiene el sufijo del documento más reciente de la familia, o 0 si no
// hay documentos o el número no es parseable.
func (r *SequenceRepo) seed(ctx context.Context, family string) (int, error) {
	var query string
	switch family {
	case entity.DocumentFamilySales:
		query = `SELECT numero_venta FROM sales ORDER BY created_at DESC LIMIT 1`
	case entity.DocumentFamilyPurchases:
		query = `SELECT numero_compra FROM purchases ORDER BY created_at DESC LIMIT 1`
	default:
		return 0, fmt.Errorf("familia de documentos desconocida %q: %w", family, domain.ErrInvalidInput)
	}
	var number string
	err := r.q.QueryRow(ctx, query).Scan(&number)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("seed sequence %s: %w", family, err)
	}
	return entity.ParseDocumentSuffix(number), nil
}
