package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/seguimiento-confeccion/internal/domain"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/repository"
)

var _ repository.PieceLedgerRepository = (*PieceLedgerRepo)(nil)

// PieceLedgerRepo libro de piezas (sujeto, área) sobre PostgreSQL.
type PieceLedgerRepo struct {
	q Querier
}

// NewPieceLedgerRepository construye el adaptador del libro de piezas.
func NewPieceLedgerRepository(q Querier) *PieceLedgerRepo {
	return &PieceLedgerRepo{q: q}
}

// Initialize crea la primera fila. Falla con ErrDuplicate si el sujeto ya tiene filas.
func (r *PieceLedgerRepo) Initialize(ctx context.Context, e *entity.PieceEntry) error {
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM piece_ledger WHERE subject_id = $1)`, e.SubjectID).Scan(&exists); err != nil {
		return fmt.Errorf("check ledger: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: el sujeto %s ya tiene libro de piezas", domain.ErrDuplicate, e.SubjectID)
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO piece_ledger (subject_kind, subject_id, area, pieces, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		string(e.SubjectKind), e.SubjectID, string(e.Area), e.Pieces, e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: el sujeto %s ya tiene libro de piezas", domain.ErrDuplicate, e.SubjectID)
		}
		return fmt.Errorf("init ledger: %w", err)
	}
	return nil
}

// ListBySubject devuelve las filas del sujeto, incluidas las que quedaron en cero.
func (r *PieceLedgerRepo) ListBySubject(ctx context.Context, subjectID string) ([]entity.PieceEntry, error) {
	rows, err := r.q.Query(ctx,
		`SELECT subject_kind, subject_id, area, pieces, updated_at FROM piece_ledger WHERE subject_id = $1 ORDER BY area`,
		subjectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()

	var list []entity.PieceEntry
	for rows.Next() {
		var e entity.PieceEntry
		var kind, area string
		if err := rows.Scan(&kind, &e.SubjectID, &area, &e.Pieces, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger: %w", err)
		}
		e.SubjectKind = entity.SubjectKind(kind)
		e.Area = entity.Area(area)
		list = append(list, e)
	}
	return list, rows.Err()
}

// Upsert fija las piezas del área. La columna tiene CHECK (pieces >= 0).
func (r *PieceLedgerRepo) Upsert(ctx context.Context, e *entity.PieceEntry) error {
	if e.Pieces < 0 {
		return domain.NewValidationError("pieces", "no puede ser negativo")
	}
	query := `
		INSERT INTO piece_ledger (subject_kind, subject_id, area, pieces, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (subject_id, area) DO UPDATE SET pieces = EXCLUDED.pieces, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query, string(e.SubjectKind), e.SubjectID, string(e.Area), e.Pieces, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert ledger: %w", err)
	}
	return nil
}
