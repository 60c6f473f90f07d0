package repository

import (
	"context"

	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
)

// PieceLedgerRepository define el puerto para el libro de piezas (sujeto, área) -> piezas.
// Se usa dentro de la misma transacción que bloquea al sujeto.
type PieceLedgerRepository interface {
	// Initialize inserta la primera fila del sujeto. Devuelve domain.ErrDuplicate si el sujeto ya tiene libro.
	Initialize(ctx context.Context, entry *entity.PieceEntry) error
	ListBySubject(ctx context.Context, subjectID string) ([]entity.PieceEntry, error)
	Upsert(ctx context.Context, entry *entity.PieceEntry) error
}
