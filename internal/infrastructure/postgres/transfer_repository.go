package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/seguimiento-confeccion/internal/domain"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo implementación del puerto TransferRepository sobre PostgreSQL.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador de persistencia para transferencias.
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferColumns = `id, subject_kind, subject_id, subject_folio, from_area, to_area, pieces, notes, status,
	requested_by, created_at, processed_by, processed_at`

func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	query := `INSERT INTO transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		t.ID, string(t.SubjectKind), t.SubjectID, t.SubjectFolio, string(t.FromArea), string(t.ToArea),
		t.Pieces, t.Notes, string(t.Status), t.RequestedBy, t.CreatedAt, t.ProcessedBy, t.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "get transfer", domain.ErrNotFound)
	}
	return t, nil
}

// GetForUpdate bloquea la fila; la segunda resolución concurrente espera y ve el estado ya procesado.
func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err, "get transfer for update", domain.ErrNotFound)
	}
	return t, nil
}

func (r *TransferRepo) Update(ctx context.Context, t *entity.Transfer) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE transfers SET status = $2, processed_by = $3, processed_at = $4 WHERE id = $1`,
		t.ID, string(t.Status), t.ProcessedBy, t.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("update transfer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List devuelve las transferencias más recientes primero.
func (r *TransferRepo) List(ctx context.Context, f repository.TransferFilter) ([]*entity.Transfer, error) {
	var w filter
	if f.SubjectID != "" {
		w.add("subject_id = ?", f.SubjectID)
	}
	if f.FromArea != nil {
		w.add("from_area = ?", string(*f.FromArea))
	}
	if f.ToArea != nil {
		w.add("to_area = ?", string(*f.ToArea))
	}
	if f.Status != nil {
		w.add("status = ?", string(*f.Status))
	}
	query := `SELECT ` + transferColumns + ` FROM transfers` + w.where() + ` ORDER BY created_at DESC` + w.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	var list []*entity.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *TransferRepo) PendingOut(ctx context.Context, subjectID string, from entity.Area) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(pieces), 0) FROM transfers WHERE subject_id = $1 AND from_area = $2 AND status = $3`,
		subjectID, string(from), string(entity.TransferPending),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("pending out: %w", err)
	}
	return n, nil
}

func (r *TransferRepo) LastRequestedAt(ctx context.Context, subjectID string, from, to entity.Area) (*time.Time, error) {
	var last *time.Time
	err := r.q.QueryRow(ctx,
		`SELECT MAX(created_at) FROM transfers WHERE subject_id = $1 AND from_area = $2 AND to_area = $3`,
		subjectID, string(from), string(to),
	).Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("last transfer request: %w", err)
	}
	return last, nil
}

func scanTransfer(row rowScanner) (*entity.Transfer, error) {
	var t entity.Transfer
	var kind, from, to, status string
	err := row.Scan(
		&t.ID, &kind, &t.SubjectID, &t.SubjectFolio, &from, &to, &t.Pieces, &t.Notes, &status,
		&t.RequestedBy, &t.CreatedAt, &t.ProcessedBy, &t.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}
	t.SubjectKind = entity.SubjectKind(kind)
	t.FromArea = entity.Area(from)
	t.ToArea = entity.Area(to)
	t.Status = entity.TransferStatus(status)
	return &t, nil
}
