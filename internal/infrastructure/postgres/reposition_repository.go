package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/seguimiento-confeccion/internal/domain"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/repository"
)

var _ repository.RepositionRepository = (*RepositionRepo)(nil)

// RepositionRepo implementación del puerto RepositionRepository sobre PostgreSQL.
// El desglose por talla se guarda como JSONB.
type RepositionRepo struct {
	q Querier
}

// NewRepositionRepository construye el adaptador de persistencia para reposiciones.
func NewRepositionRepository(q Querier) *RepositionRepo {
	return &RepositionRepo{q: q}
}

const repositionColumns = `id, folio, order_id, type, client, model, fabric, color, reason, requesting_area,
	pieces, total_pieces, current_area, status,
	is_paused, pause_reason, paused_by, paused_at, resumed_by, resumed_at,
	approved_by, approved_at, rejected_by, rejection_reason, rejected_at,
	created_by, created_at, updated_at, completed_at`

func (r *RepositionRepo) Create(ctx context.Context, rep *entity.Reposition) error {
	query := `INSERT INTO repositions (` + repositionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29)`
	_, err := r.q.Exec(ctx, query,
		rep.ID, rep.Folio, rep.OrderID, rep.Type, rep.Client, rep.Model, rep.Fabric, rep.Color, rep.Reason,
		string(rep.RequestingArea), rep.Pieces, rep.TotalPieces, string(rep.CurrentArea), string(rep.Status),
		rep.IsPaused, rep.PauseReason, rep.PausedBy, rep.PausedAt, rep.ResumedBy, rep.ResumedAt,
		rep.ApprovedBy, rep.ApprovedAt, rep.RejectedBy, rep.RejectionReason, rep.RejectedAt,
		rep.CreatedBy, rep.CreatedAt, rep.UpdatedAt, rep.CompletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: folio %s", domain.ErrDuplicate, rep.Folio)
		}
		return fmt.Errorf("insert reposition: %w", err)
	}
	return nil
}

func (r *RepositionRepo) GetByID(ctx context.Context, id string) (*entity.Reposition, error) {
	rep, err := scanReposition(r.q.QueryRow(ctx, `SELECT `+repositionColumns+` FROM repositions WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "get reposition", domain.ErrNotFound)
	}
	return rep, nil
}

func (r *RepositionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Reposition, error) {
	rep, err := scanReposition(r.q.QueryRow(ctx, `SELECT `+repositionColumns+` FROM repositions WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err, "get reposition for update", domain.ErrNotFound)
	}
	return rep, nil
}

// Update guarda estado, pausa, aprobación y área actual. El desglose no cambia después de crear.
func (r *RepositionRepo) Update(ctx context.Context, rep *entity.Reposition) error {
	query := `
		UPDATE repositions SET current_area = $2, status = $3,
			is_paused = $4, pause_reason = $5, paused_by = $6, paused_at = $7, resumed_by = $8, resumed_at = $9,
			approved_by = $10, approved_at = $11, rejected_by = $12, rejection_reason = $13, rejected_at = $14,
			updated_at = $15, completed_at = $16
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		rep.ID, string(rep.CurrentArea), string(rep.Status),
		rep.IsPaused, rep.PauseReason, rep.PausedBy, rep.PausedAt, rep.ResumedBy, rep.ResumedAt,
		rep.ApprovedBy, rep.ApprovedAt, rep.RejectedBy, rep.RejectionReason, rep.RejectedAt,
		rep.UpdatedAt, rep.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update reposition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List excluye las eliminadas salvo que se filtre explícitamente por ese estado.
func (r *RepositionRepo) List(ctx context.Context, f repository.RepositionFilter) ([]*entity.Reposition, error) {
	var w filter
	if f.Status != nil {
		w.add("status = ?", string(*f.Status))
	} else {
		w.add("status <> ?", string(entity.RepositionEliminado))
	}
	if f.OrderID != "" {
		w.add("order_id = ?", f.OrderID)
	}
	query := `SELECT ` + repositionColumns + ` FROM repositions` + w.where() + ` ORDER BY created_at DESC` + w.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list repositions: %w", err)
	}
	defer rows.Close()

	var list []*entity.Reposition
	for rows.Next() {
		rep, err := scanReposition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reposition: %w", err)
		}
		list = append(list, rep)
	}
	return list, rows.Err()
}

func (r *RepositionRepo) CountLiveByOrder(ctx context.Context, orderID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM repositions WHERE order_id = $1 AND status NOT IN ($2, $3)`,
		orderID, string(entity.RepositionEliminado), string(entity.RepositionCancelado),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count repositions by order: %w", err)
	}
	return n, nil
}

func (r *RepositionRepo) NextFolio(ctx context.Context) (string, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT nextval('reposition_folio_seq')`).Scan(&n); err != nil {
		return "", fmt.Errorf("next reposition folio: %w", err)
	}
	return fmt.Sprintf("REP-%06d", n), nil
}

func scanReposition(row rowScanner) (*entity.Reposition, error) {
	var rep entity.Reposition
	var requestingArea, currentArea, status string
	err := row.Scan(
		&rep.ID, &rep.Folio, &rep.OrderID, &rep.Type, &rep.Client, &rep.Model, &rep.Fabric, &rep.Color, &rep.Reason,
		&requestingArea, &rep.Pieces, &rep.TotalPieces, &currentArea, &status,
		&rep.IsPaused, &rep.PauseReason, &rep.PausedBy, &rep.PausedAt, &rep.ResumedBy, &rep.ResumedAt,
		&rep.ApprovedBy, &rep.ApprovedAt, &rep.RejectedBy, &rep.RejectionReason, &rep.RejectedAt,
		&rep.CreatedBy, &rep.CreatedAt, &rep.UpdatedAt, &rep.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	rep.RequestingArea = entity.Area(requestingArea)
	rep.CurrentArea = entity.Area(currentArea)
	rep.Status = entity.RepositionStatus(status)
	return &rep, nil
}
