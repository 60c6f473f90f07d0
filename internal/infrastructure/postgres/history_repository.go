package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/repository"
)

var _ repository.HistoryRepository = (*HistoryRepo)(nil)

// HistoryRepo historial append-only sobre PostgreSQL.
type HistoryRepo struct {
	q Querier
}

func NewHistoryRepository(q Querier) *HistoryRepo {
	return &HistoryRepo{q: q}
}

func (r *HistoryRepo) Append(ctx context.Context, e *entity.HistoryEvent) error {
	query := `
		INSERT INTO history_events (id, subject_kind, subject_id, action, from_area, to_area, pieces, transfer_id, user_id, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		e.ID, string(e.SubjectKind), e.SubjectID, string(e.Action), string(e.FromArea), string(e.ToArea),
		e.Pieces, e.TransferID, e.UserID, e.Description, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (r *HistoryRepo) ListBySubject(ctx context.Context, subjectID string) ([]*entity.HistoryEvent, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, subject_kind, subject_id, action, from_area, to_area, pieces, transfer_id, user_id, description, created_at
		FROM history_events WHERE subject_id = $1 ORDER BY created_at, id`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var list []*entity.HistoryEvent
	for rows.Next() {
		var e entity.HistoryEvent
		var kind, action, from, to string
		if err := rows.Scan(&e.ID, &kind, &e.SubjectID, &action, &from, &to, &e.Pieces, &e.TransferID,
			&e.UserID, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.SubjectKind = entity.SubjectKind(kind)
		e.Action = entity.HistoryAction(action)
		e.FromArea = entity.Area(from)
		e.ToArea = entity.Area(to)
		list = append(list, &e)
	}
	return list, rows.Err()
}

func (r *HistoryRepo) LastAt(ctx context.Context, subjectID string) (*time.Time, error) {
	var last *time.Time
	err := r.q.QueryRow(ctx, `SELECT MAX(created_at) FROM history_events WHERE subject_id = $1`, subjectID).Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("last history event: %w", err)
	}
	return last, nil
}
